package auth

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// Transport injects an Azure AD bearer token and the Azure OpenAI api-version
// query parameter into every request. The token itself stays opaque: it is
// fetched from the credential and forwarded in the Authorization header.
type Transport struct {
	base       http.RoundTripper
	cred       azcore.TokenCredential
	scopes     []string
	apiVersion string
}

// NewTransport wraps base with bearer-token auth for the given credential.
// A nil base falls back to a clone of http.DefaultTransport with sensible
// timeouts.
func NewTransport(base http.RoundTripper, cred azcore.TokenCredential, apiVersion string) *Transport {
	if base == nil {
		base = defaultTransport()
	}
	return &Transport{
		base:       base,
		cred:       cred,
		scopes:     []string{ModelScope},
		apiVersion: apiVersion,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.cred.GetToken(req.Context(), policy.TokenRequestOptions{Scopes: t.scopes})
	if err != nil {
		return nil, fmt.Errorf("acquire model token: %w", err)
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+tok.Token)

	if t.apiVersion != "" {
		q := out.URL.Query()
		if q.Get("api-version") == "" {
			q.Set("api-version", t.apiVersion)
			out.URL.RawQuery = q.Encode()
		}
	}

	return t.base.RoundTrip(out)
}

// NewHTTPClient builds the HTTP client handed to the model provider.
func NewHTTPClient(cred azcore.TokenCredential, apiVersion string) *http.Client {
	return &http.Client{Transport: NewTransport(nil, cred, apiVersion)}
}

func defaultTransport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{}
	}
	tr := base.Clone()
	tr.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.IdleConnTimeout = 90 * time.Second
	tr.ExpectContinueTimeout = 1 * time.Second
	return tr
}
