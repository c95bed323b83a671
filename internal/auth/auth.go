// Package auth acquires Azure AD bearer tokens for the model endpoint and
// the MCP server.
package auth

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// ModelScope is the resource audience for Azure OpenAI requests.
const ModelScope = "https://cognitiveservices.azure.com/.default"

// Provider hands out credentials for the two remote services azchat talks to.
// Token refresh is owned by the underlying azidentity credential; Provider
// never inspects or caches tokens itself.
type Provider struct {
	privateAuthority string
	scope            string
}

// New creates a credential provider. scope is the token scope requested for
// the MCP server; privateAuthority, when non-empty, switches MCP token
// acquisition to an interactive browser sign-in against that authority.
func New(scope, privateAuthority string) *Provider {
	return &Provider{privateAuthority: privateAuthority, scope: scope}
}

// ModelCredential returns the ambient-identity credential used to
// authenticate Azure OpenAI requests.
func (p *Provider) ModelCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default azure credential: %w", err)
	}
	return cred, nil
}

// ToolToken acquires the bearer token presented to the MCP server. Identity
// provider errors propagate unrecovered; there is no retry here.
func (p *Provider) ToolToken(ctx context.Context) (string, error) {
	cred, err := p.toolCredential()
	if err != nil {
		return "", err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.scope}})
	if err != nil {
		return "", fmt.Errorf("acquire MCP token: %w", err)
	}
	return tok.Token, nil
}

func (p *Provider) toolCredential() (azcore.TokenCredential, error) {
	if p.privateAuthority == "" {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("default azure credential: %w", err)
		}
		return cred, nil
	}

	opts := &azidentity.InteractiveBrowserCredentialOptions{}
	opts.Cloud = cloud.Configuration{ActiveDirectoryAuthorityHost: p.privateAuthority}
	cred, err := azidentity.NewInteractiveBrowserCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("interactive browser credential: %w", err)
	}
	return cred, nil
}
