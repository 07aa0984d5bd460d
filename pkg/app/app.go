// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package app implements the client's commands on top of a scoped MCP
// session.
package app

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/mcpany/fdaclient/pkg/catalog"
	"github.com/mcpany/fdaclient/pkg/client"
	"github.com/mcpany/fdaclient/pkg/config"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/metrics"
	"github.com/mcpany/fdaclient/pkg/render"
	"github.com/mcpany/fdaclient/pkg/synth"
	"github.com/mcpany/fdaclient/pkg/util"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Runner is the set of commands the CLI exposes.
type Runner interface {
	Info(ctx context.Context) error
	Tools(ctx context.Context) error
	Resources(ctx context.Context) error
	Prompts(ctx context.Context) error
	Explore(ctx context.Context, tool string) error
	Call(ctx context.Context, tool, rawArgs string) error
	Walkthrough(ctx context.Context) error
	Health(ctx context.Context) error
}

// ConnectFunc opens a session.
type ConnectFunc func(ctx context.Context) (client.ClientSession, error)

// Application runs commands against the endpoint named by its settings.
type Application struct {
	settings  *config.Settings
	printer   *render.Printer
	synth     *synth.Synthesizer
	connect   ConnectFunc
	transport client.Transport
	runID     string

	// openCatalog is the tool catalog of the open session, if any.
	openCatalog atomic.Pointer[catalog.Catalog]
}

var _ Runner = (*Application)(nil)

// Option customizes an Application.
type Option func(*Application)

// WithConnectFunc replaces how sessions are opened.
func WithConnectFunc(f ConnectFunc) Option {
	return func(a *Application) {
		a.connect = f
	}
}

// WithSynthesizer replaces the argument synthesizer.
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(a *Application) {
		a.synth = s
	}
}

// NewApplication resolves credentials and prepares the session factory.
// Console output goes to out.
func NewApplication(settings *config.Settings, out io.Writer, opts ...Option) (*Application, error) {
	transport, err := client.ParseTransport(settings.Transport)
	if err != nil {
		return nil, err
	}

	a := &Application{
		settings: settings,
		printer: render.NewPrinter(out, render.Options{
			MaxTextLength:       settings.MaxTextLength,
			MaxJSONLength:       settings.MaxJSONLength,
			MaxDescriptionLines: settings.MaxDescriptionLines,
		}),
		synth:     synth.New(),
		transport: transport,
		runID:     util.GenerateUUID(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.connect == nil {
		authenticator, err := auth.NewUpstreamAuthenticator(settings.Credentials)
		if err != nil {
			return nil, &config.ActionableError{
				Err:        err,
				Suggestion: "pass --api-key and --user-code, or set FDACLIENT_API_KEY and FDACLIENT_USER_CODE",
			}
		}
		a.connect = func(ctx context.Context) (client.ClientSession, error) {
			return client.Connect(ctx, client.Options{
				Transport:         transport,
				Endpoint:          settings.Endpoint,
				Authenticator:     authenticator,
				OnToolListChanged: a.toolListChanged,
			})
		}
	}

	logging.GetLogger().Debug("Application ready",
		"run_id", a.runID,
		"profile", settings.ProfileName,
		"endpoint", settings.Endpoint,
		"transport", transport,
		"close_policy", settings.ClosePolicy)
	return a, nil
}

// Session is an open connection plus the helpers commands use with it.
type Session struct {
	client.ClientSession
	Catalog *catalog.Catalog
	Printer *render.Printer
	timeout time.Duration
}

// RequestContext bounds one request by the configured timeout.
func (s *Session) RequestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// WithSession connects, waits for the configured ready delay, runs fn and
// releases the session according to the close policy. Connection failures
// are returned as *ConnectionError.
func (a *Application) WithSession(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	log := logging.GetLogger().With("run_id", a.runID, "endpoint", a.settings.Endpoint)

	// The session outlives the connect call, so the connect timeout cancels
	// through a timer rather than a deadline on the session context.
	sessCtx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(a.settings.Timeout, func() {
		cancel(fmt.Errorf("no answer within %s: %w", a.settings.Timeout, context.DeadlineExceeded))
	})

	start := time.Now()
	cs, err := a.connect(sessCtx)
	timer.Stop()
	if err != nil {
		if cause := context.Cause(sessCtx); cause != nil && cause != ctx.Err() {
			err = fmt.Errorf("%w (%v)", cause, err)
		}
		cancel(nil)
		metrics.IncrCounter([]string{"session", "connect_failed"}, 1)
		log.Error("Connection failed", "error", err)
		return classifyConnectError(a.settings.Endpoint, err)
	}
	metrics.MeasureSince([]string{"session", "connect"}, start)
	log.Info("Connected", "transport", a.transport, "elapsed", time.Since(start))

	defer func() {
		if err != nil && a.settings.ClosePolicy == config.CloseOnSuccess {
			log.Warn("Leaving session open after failure", "error", err)
			return
		}
		if closeErr := cs.Close(); closeErr != nil {
			log.Warn("Failed to close session", "error", closeErr)
		} else {
			log.Debug("Session closed")
		}
		cancel(nil)
	}()

	if d := a.settings.ReadyDelay; d > 0 {
		a.printer.Printf("Waiting %s for the server to become ready...\n", d)
		select {
		case <-time.After(d):
		case <-sessCtx.Done():
			return context.Cause(sessCtx)
		}
		a.printer.Println("Server ready.")
		a.printer.Blank()
	}

	sess := &Session{
		ClientSession: &instrumentedSession{ClientSession: cs},
		Printer:       a.printer,
		timeout:       a.settings.Timeout,
	}
	sess.Catalog = catalog.New(a.settings.Endpoint, sess, a.settings.CatalogTTL)
	a.openCatalog.Store(sess.Catalog)
	defer a.openCatalog.Store(nil)
	return fn(sessCtx, sess)
}

// toolListChanged drops the cached tool list of the open session.
func (a *Application) toolListChanged() {
	logging.GetLogger().Debug("Server tool list changed", "run_id", a.runID)
	if c := a.openCatalog.Load(); c != nil {
		c.Invalidate()
	}
}

// instrumentedSession records metrics for every tool call.
type instrumentedSession struct {
	client.ClientSession
}

func (s *instrumentedSession) CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	start := time.Now()
	res, err := s.ClientSession.CallTool(ctx, params)
	observed := err
	if err == nil && res != nil && res.IsError {
		observed = errToolReported
	}
	metrics.ObserveCall(params.Name, start, observed)
	return res, err
}
