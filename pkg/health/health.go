// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package health checks whether a remote MCP endpoint is reachable and
// answers the protocol handshake.
package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/mcpany/fdaclient/pkg/client"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

const (
	healthStatusGauge = "endpoint_health_status"

	// CheckReachability dials the endpoint's host and port.
	CheckReachability = "reachability"
	// CheckHandshake opens an MCP session, pings it and closes it.
	CheckHandshake = "mcp-handshake"

	defaultTimeout = 10 * time.Second
)

// ConnectFunc opens a session against the checked endpoint.
type ConnectFunc func(ctx context.Context) (client.ClientSession, error)

// CheckOutcome is the result of one named check.
type CheckOutcome struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Report is the result of one Check call.
type Report struct {
	Endpoint string
	Status   health.AvailabilityStatus
	Checks   []CheckOutcome
}

// Up reports whether every check passed.
func (r Report) Up() bool {
	return r.Status == health.StatusUp
}

// Checker runs the endpoint checks.
type Checker struct {
	endpoint string
	checker  health.Checker

	mu       sync.Mutex
	round    int
	outcomes map[string]CheckOutcome
}

// checkNames lists every registered check.
var checkNames = []string{CheckReachability, CheckHandshake}

// NewChecker creates a checker for endpoint. timeout bounds each check; zero
// uses ten seconds.
func NewChecker(endpoint string, connect ConnectFunc, timeout time.Duration) *Checker {
	c := &Checker{
		endpoint: endpoint,
		outcomes: map[string]CheckOutcome{},
	}
	timeout = lo.Ternary(timeout > 0, timeout, defaultTimeout)

	opts := []health.CheckerOption{
		health.WithDisabledCache(),
		health.WithStatusListener(func(_ context.Context, state health.CheckerState) {
			status := float32(0.0)
			if state.Status == health.StatusUp {
				status = 1.0
			}
			metrics.SetGauge(healthStatusGauge, status, endpoint)
			logging.GetLogger().Info("health status changed", "endpoint", endpoint, "status", state.Status)
		}),
		health.WithCheck(health.Check{
			Name:    CheckReachability,
			Timeout: timeout,
			Check:   c.record(CheckReachability, func(ctx context.Context) error { return checkConnection(ctx, endpoint) }),
		}),
		health.WithCheck(health.Check{
			Name:    CheckHandshake,
			Timeout: timeout,
			Check:   c.record(CheckHandshake, func(ctx context.Context) error { return checkHandshake(ctx, connect) }),
		}),
	}
	c.checker = health.NewChecker(opts...)
	return c
}

// Check runs every check once.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.Lock()
	c.round++
	c.outcomes = map[string]CheckOutcome{}
	c.mu.Unlock()

	start := time.Now()
	res := c.checker.Check(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	// A check that hit its timeout is abandoned before it records anything.
	for _, name := range checkNames {
		if _, ok := c.outcomes[name]; !ok {
			c.outcomes[name] = CheckOutcome{Name: name, Err: health.CheckTimeoutErr, Duration: time.Since(start)}
		}
	}
	checks := lo.Values(c.outcomes)
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })
	return Report{Endpoint: c.endpoint, Status: res.Status, Checks: checks}
}

func (c *Checker) record(name string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		c.mu.Lock()
		round := c.round
		c.mu.Unlock()

		start := time.Now()
		err := fn(ctx)

		c.mu.Lock()
		if c.round == round {
			c.outcomes[name] = CheckOutcome{Name: name, Err: err, Duration: time.Since(start)}
		}
		c.mu.Unlock()
		return err
	}
}

func checkConnection(ctx context.Context, endpoint string) error {
	address, err := hostPort(endpoint)
	if err != nil {
		return err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to address %s: %w", address, err)
	}
	_ = conn.Close()
	return nil
}

func checkHandshake(ctx context.Context, connect ConnectFunc) error {
	if connect == nil {
		return fmt.Errorf("no connect function configured")
	}
	cs, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cs.Close() }()
	if err := cs.Ping(ctx, &mcp.PingParams{}); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func hostPort(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	port := u.Port()
	if port == "" {
		port = lo.Ternary(u.Scheme == "https", "443", "80")
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
