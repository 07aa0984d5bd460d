// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package client opens MCP client sessions against a remote server over
// server-sent events or streamable HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcpany/fdaclient/pkg/appconsts"
	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientSession is the part of *mcp.ClientSession the application uses.
type ClientSession interface {
	// InitializeResult returns what the server reported during the handshake.
	InitializeResult() *mcp.InitializeResult
	// ListTools lists the tools available in the session.
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	// ListResources lists the resources available in the session.
	ListResources(ctx context.Context, params *mcp.ListResourcesParams) (*mcp.ListResourcesResult, error)
	// ListPrompts lists the prompts available in the session.
	ListPrompts(ctx context.Context, params *mcp.ListPromptsParams) (*mcp.ListPromptsResult, error)
	// CallTool calls a tool in the session.
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	// Ping checks that the server is still responsive.
	Ping(ctx context.Context, params *mcp.PingParams) error
	// Close closes the session.
	Close() error
}

var _ ClientSession = (*mcp.ClientSession)(nil)

var connectForTesting func(client *mcp.Client, ctx context.Context, transport mcp.Transport) (ClientSession, error)

// SetConnectForTesting provides a hook for injecting a fake session in place
// of mcp.Client.Connect. Passing nil restores the real behaviour. This should
// only be used for testing purposes.
func SetConnectForTesting(f func(client *mcp.Client, ctx context.Context, transport mcp.Transport) (ClientSession, error)) {
	connectForTesting = f
}

// Transport selects the wire variant used to reach the server.
type Transport string

const (
	// TransportSSE uses an HTTP GET event stream plus POSTed messages.
	TransportSSE Transport = "sse"
	// TransportStreamable uses the streamable HTTP transport.
	TransportStreamable Transport = "streamable"
)

// ParseTransport reads a transport name. "streamable-http" and "http" are
// accepted as aliases of "streamable".
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sse":
		return TransportSSE, nil
	case "streamable", "streamable-http", "http":
		return TransportStreamable, nil
	default:
		return "", fmt.Errorf("unknown transport %q (want sse or streamable)", s)
	}
}

// Options configures Connect.
type Options struct {
	Transport     Transport
	Endpoint      string
	Authenticator auth.UpstreamAuthenticator
	// ClientName and ClientVersion are announced during the handshake.
	ClientName    string
	ClientVersion string
	// HTTPClient is the base client. Its transport is wrapped with the
	// authenticator. Nil uses a fresh client.
	HTTPClient *http.Client
	// OnToolListChanged runs when the server announces that its tool list
	// changed.
	OnToolListChanged func()
}

const maxRedirects = 10

// ErrNoEndpoint is returned when Options.Endpoint is empty.
var ErrNoEndpoint = errors.New("no server endpoint configured")

// ValidateEndpoint checks that endpoint is an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return ErrNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// NewHTTPClient returns a client whose every request goes through
// authenticator. No overall timeout is set because the SSE stream stays open
// for the life of the session; callers bound each request with a context.
func NewHTTPClient(base *http.Client, authenticator auth.UpstreamAuthenticator) *http.Client {
	c := &http.Client{}
	if base != nil {
		clone := *base
		c = &clone
	}
	c.Timeout = 0
	// Credentials must not follow a redirect to another host.
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if req.URL.Host != via[0].URL.Host {
			return http.ErrUseLastResponse
		}
		return nil
	}
	c.Transport = &authenticatedRoundTripper{
		authenticator: authenticator,
		base:          c.Transport,
	}
	return c
}

// NewTransport builds the go-sdk transport for opts.
func NewTransport(opts Options, httpClient *http.Client) (mcp.Transport, error) {
	switch opts.Transport {
	case TransportSSE:
		return &mcp.SSEClientTransport{
			Endpoint:   opts.Endpoint,
			HTTPClient: httpClient,
		}, nil
	case TransportStreamable, "":
		return &mcp.StreamableClientTransport{
			Endpoint:   opts.Endpoint,
			HTTPClient: httpClient,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", opts.Transport)
	}
}

// Connect performs the MCP handshake and returns an open session. The caller
// owns the session and must Close it.
func Connect(ctx context.Context, opts Options) (ClientSession, error) {
	if err := ValidateEndpoint(opts.Endpoint); err != nil {
		return nil, err
	}
	if opts.Transport == "" {
		opts.Transport = TransportStreamable
	}

	httpClient := NewHTTPClient(opts.HTTPClient, opts.Authenticator)
	transport, err := NewTransport(opts, httpClient)
	if err != nil {
		return nil, err
	}

	name := opts.ClientName
	if name == "" {
		name = appconsts.Name
	}
	version := opts.ClientVersion
	if version == "" {
		version = appconsts.Version
	}
	var clientOpts *mcp.ClientOptions
	if opts.OnToolListChanged != nil {
		clientOpts = &mcp.ClientOptions{
			ToolListChangedHandler: func(context.Context, *mcp.ToolListChangedRequest) {
				opts.OnToolListChanged()
			},
		}
	}
	mcpClient := mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, clientOpts)

	logging.GetLogger().Debug("Connecting to MCP server", "endpoint", opts.Endpoint, "transport", opts.Transport)

	var cs ClientSession
	if connectForTesting != nil {
		cs, err = connectForTesting(mcpClient, ctx, transport)
	} else {
		cs, err = mcpClient.Connect(ctx, transport, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Endpoint, err)
	}
	return cs, nil
}

// authenticatedRoundTripper is an http.RoundTripper that wraps another
// RoundTripper and applies an UpstreamAuthenticator to each request.
type authenticatedRoundTripper struct {
	authenticator auth.UpstreamAuthenticator
	base          http.RoundTripper
}

// RoundTrip applies the configured authenticator to a copy of the request and
// then passes it to the base RoundTripper.
func (rt *authenticatedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.authenticator != nil {
		req = req.Clone(req.Context())
		if err := rt.authenticator.Authenticate(req); err != nil {
			return nil, fmt.Errorf("failed to authenticate mcp request: %w", err)
		}
	}
	base := rt.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
