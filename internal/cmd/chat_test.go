package cmd

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"charm.land/fantasy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/azchat/internal/agent"
	"github.com/dotcommander/azchat/internal/bridge"
	"github.com/dotcommander/azchat/internal/config"
	"github.com/dotcommander/azchat/internal/errs"
)

type stubCredential struct{}

func (stubCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "model-token"}, nil
}

type stubCreds struct {
	token    string
	tokenErr error
	credErr  error

	tokenCalls int
}

func (s *stubCreds) ToolToken(context.Context) (string, error) {
	s.tokenCalls++
	return s.token, s.tokenErr
}

func (s *stubCreds) ModelCredential() (azcore.TokenCredential, error) {
	if s.credErr != nil {
		return nil, s.credErr
	}
	return stubCredential{}, nil
}

type stubToolConn struct {
	tools  []mcp.Tool
	closed int
}

func (s *stubToolConn) Tools(context.Context) ([]mcp.Tool, error) { return s.tools, nil }

func (s *stubToolConn) CallTool(context.Context, string, []byte) (string, error) {
	return "", errors.New("no tools in this test")
}

func (s *stubToolConn) Close() error {
	s.closed++
	return nil
}

type stubCompletion struct {
	step bridge.Step

	deployments []string
}

func (s *stubCompletion) Complete(_ context.Context, deployment string, _ []bridge.Message, _ []fantasy.Tool) (bridge.Step, error) {
	s.deployments = append(s.deployments, deployment)
	return s.step, nil
}

func testConfig() config.Config {
	var c config.Config
	c.MCPServerURL = "https://mcp.example.com/mcp"
	c.AzureEndpoint = "https://example.openai.azure.com"
	c.DeploymentName = "gpt-4o"
	c.Scope = "api://tool-server/.default"
	c.APIVersion = "2024-02-15-preview"
	c.MCPTimeout = config.Duration(time.Second)
	c.MaxToolTurns = 3
	return c
}

func newTestRuntime(cfg config.Config, creds *stubCreds, conn *stubToolConn, client *stubCompletion) (*runtime, *bool, *bool) {
	dialed := new(bool)
	built := new(bool)
	rt := &runtime{
		cfg: cfg,
		creds: func(*config.Config) credentialProvider {
			return creds
		},
		dial: func(_ context.Context, _, _ string, _ time.Duration) (agent.ToolConn, error) {
			*dialed = true
			return conn, nil
		},
		clientFactory: func(bridge.Config) (agent.CompletionClient, error) {
			*built = true
			return client, nil
		},
	}
	return rt, dialed, built
}

func swapStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
	})
}

func TestRunChatValidatesBeforeAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Scope = ""
	creds := &stubCreds{token: "tok"}
	rt, dialed, _ := newTestRuntime(cfg, creds, &stubToolConn{}, &stubCompletion{})

	err := rt.runChat(context.Background())

	var merr errs.Error
	require.ErrorAs(t, err, &merr)
	assert.Zero(t, creds.tokenCalls)
	assert.False(t, *dialed)
}

func TestRunChatTokenFailure(t *testing.T) {
	creds := &stubCreds{tokenErr: errors.New("AADSTS700016")}
	rt, dialed, _ := newTestRuntime(testConfig(), creds, &stubToolConn{}, &stubCompletion{})

	err := rt.runChat(context.Background())

	var merr errs.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Could not acquire a token for the MCP server.", merr.Reason)
	assert.False(t, *dialed)
}

func TestRunChatDialFailure(t *testing.T) {
	creds := &stubCreds{token: "tok"}
	rt, _, built := newTestRuntime(testConfig(), creds, &stubToolConn{}, &stubCompletion{})
	rt.dial = func(_ context.Context, _, _ string, _ time.Duration) (agent.ToolConn, error) {
		return nil, errors.New("connection refused")
	}

	err := rt.runChat(context.Background())

	var merr errs.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Could not connect to the MCP server.", merr.Reason)
	assert.False(t, *built)
}

func TestRunChatSession(t *testing.T) {
	swapStdin(t, "hello\nquit\n")

	creds := &stubCreds{token: "tok"}
	conn := &stubToolConn{}
	client := &stubCompletion{step: bridge.Step{Text: "hi there"}}
	rt, dialed, built := newTestRuntime(testConfig(), creds, conn, client)

	err := rt.runChat(context.Background())

	require.NoError(t, err)
	assert.True(t, *dialed)
	assert.True(t, *built)
	assert.Equal(t, []string{"gpt-4o"}, client.deployments)
	assert.Equal(t, 1, conn.closed, "shutdown releases the connection exactly once")
}

func TestCloseGuarded(t *testing.T) {
	// Must not panic or propagate for any class of close result.
	closeGuarded("thing", nil)
	closeGuarded("thing", context.Canceled)
	closeGuarded("thing", errors.New("broken pipe"))
}
