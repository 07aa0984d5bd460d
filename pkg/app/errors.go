// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ConnectionKind classifies a failed connection attempt.
type ConnectionKind string

const (
	// ConnectionRefused means nothing accepted the connection.
	ConnectionRefused ConnectionKind = "refused"
	// ConnectionTimeout means the server did not answer in time.
	ConnectionTimeout ConnectionKind = "timeout"
	// ConnectionOther covers every other failure, including rejected
	// credentials and protocol errors.
	ConnectionOther ConnectionKind = "other"
)

// ConnectionError aborts a command when the session cannot be established.
type ConnectionError struct {
	Endpoint string
	Kind     ConnectionKind
	Err      error
}

// Error implements the error interface. The message ends with a hint.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v\n\t-> Fix: %s", e.Endpoint, e.Err, e.Hint())
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Hint suggests what to check for this kind of failure.
func (e *ConnectionError) Hint() string {
	switch e.Kind {
	case ConnectionRefused:
		return "make sure the server is running and the URL is correct"
	case ConnectionTimeout:
		return "the server did not answer in time; check the network or raise --timeout"
	default:
		return "check the URL, the transport (sse or streamable) and the api key and user code"
	}
}

// classifyConnectError wraps err in a ConnectionError of the matching kind.
func classifyConnectError(endpoint string, err error) *ConnectionError {
	return &ConnectionError{Endpoint: endpoint, Kind: connectionKind(err), Err: err}
}

func connectionKind(err error) ConnectionKind {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectionTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectionTimeout
	}
	// Some transport errors reach us flattened to text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "econnrefused"):
		return ConnectionRefused
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return ConnectionTimeout
	}
	return ConnectionOther
}

// errToolReported marks a result whose isError flag was set.
var errToolReported = errors.New("tool reported an error")
