package cmd

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/azchat/internal/agent"
	"github.com/dotcommander/azchat/internal/auth"
	"github.com/dotcommander/azchat/internal/bridge"
	"github.com/dotcommander/azchat/internal/chat"
	"github.com/dotcommander/azchat/internal/errs"
)

// shutdownSettle gives in-flight transport teardown a moment to finish
// before the process exits.
const shutdownSettle = 100 * time.Millisecond

// resources tracks what initialization has built so far. Initialization does
// not unwind on failure; the single deferred shutdown releases whatever
// exists, each step guarded independently.
type resources struct {
	shell     io.Closer
	conn      io.Closer
	modelHTTP *http.Client
}

func (r *resources) shutdown() {
	log.Info("cleaning up")

	switch {
	case r.shell != nil:
		// The shell owns the tool connection and closes it.
		closeGuarded("agent", r.shell.Close())
	case r.conn != nil:
		closeGuarded("MCP connection", r.conn.Close())
	}

	if r.modelHTTP != nil {
		r.modelHTTP.CloseIdleConnections()
	}

	time.Sleep(shutdownSettle)
}

// closeGuarded logs a close failure without propagating it. Teardown races
// from an already-canceled context or an already-closed transport are
// expected on interrupt and only logged at debug level.
func closeGuarded(name string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, net.ErrClosed):
		log.Debug("close raced with teardown", "resource", name, "err", err)
	default:
		log.Warn("could not close resource", "resource", name, "err", err)
	}
}

// runChat is the lifecycle manager: it validates configuration, builds the
// components in dependency order, runs the session loop, and always releases
// whatever was built.
func (rt *runtime) runChat(ctx context.Context) error {
	cfg := &rt.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	res := &resources{}
	defer res.shutdown()

	creds := rt.creds(cfg)

	toolToken, err := creds.ToolToken(ctx)
	if err != nil {
		return errs.Wrap(err, "Could not acquire a token for the MCP server.")
	}

	conn, err := rt.dial(ctx, cfg.MCPServerURL, toolToken, cfg.MCPTimeout.Std())
	if err != nil {
		return errs.Wrap(err, "Could not connect to the MCP server.")
	}
	res.conn = conn

	modelCred, err := creds.ModelCredential()
	if err != nil {
		return errs.Wrap(err, "Could not acquire Azure credentials for the model endpoint.")
	}
	res.modelHTTP = auth.NewHTTPClient(modelCred, cfg.APIVersion)

	client, err := rt.clientFactory(bridge.Config{
		Endpoint:   cfg.AzureEndpoint,
		HTTPClient: res.modelHTTP,
	})
	if err != nil {
		return errs.Wrap(err, "Could not create the model client.")
	}

	shell := agent.New(client, conn, agent.Options{
		Deployment:   cfg.DeploymentName,
		Instructions: cfg.Instructions,
		MaxToolTurns: cfg.MaxToolTurns,
		ToolTimeout:  cfg.MCPTimeout.Std(),
	})
	res.shell = shell

	if err := shell.Initialize(ctx); err != nil {
		return errs.Wrap(err, "Could not initialize the agent.")
	}

	loop := chat.New(shell, os.Stdin, os.Stderr, cfg.SystemPrompt)
	return loop.Run(ctx)
}
