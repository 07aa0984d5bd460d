// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package auth attaches credentials to the HTTP requests sent to a remote MCP
// server.
package auth

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// DefaultAPIKeyHeader carries the account key expected by the FDA MCP
	// servers.
	DefaultAPIKeyHeader = "emcp-key"
	// DefaultUserCodeHeader carries the user code expected by the FDA MCP
	// servers.
	DefaultUserCodeHeader = "emcp-usercode"
)

// UpstreamAuthenticator defines the interface for authentication methods used
// when communicating with a remote server. Each implementation is responsible
// for modifying the HTTP request to include the necessary credentials.
type UpstreamAuthenticator interface {
	// Authenticate modifies the given HTTP request to add authentication
	// information.
	Authenticate(req *http.Request) error
}

// Credentials describes the header credentials of one endpoint. Values are
// secret references resolved with ResolveSecretValue.
type Credentials struct {
	APIKey         *SecretValue
	UserCode       *SecretValue
	APIKeyHeader   string
	UserCodeHeader string
}

// NewUpstreamAuthenticator creates an UpstreamAuthenticator from creds. Empty
// credentials produce a nil authenticator and no error.
func NewUpstreamAuthenticator(creds Credentials) (UpstreamAuthenticator, error) {
	var chain ChainAuth

	add := func(header, defaultHeader string, secret *SecretValue, what string) error {
		if secret.IsZero() {
			return nil
		}
		value, err := ResolveSecretValue(secret)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", what, err)
		}
		if value == "" {
			return nil
		}
		if header == "" {
			header = defaultHeader
		}
		chain = append(chain, &APIKeyAuth{HeaderName: header, HeaderValue: value})
		return nil
	}

	if err := add(creds.APIKeyHeader, DefaultAPIKeyHeader, creds.APIKey, "api key"); err != nil {
		return nil, err
	}
	if err := add(creds.UserCodeHeader, DefaultUserCodeHeader, creds.UserCode, "user code"); err != nil {
		return nil, err
	}

	if len(chain) == 0 {
		return nil, nil
	}
	return chain, nil
}

// APIKeyAuth implements UpstreamAuthenticator for static header credentials.
type APIKeyAuth struct {
	HeaderName  string
	HeaderValue string
}

// Authenticate adds the configured header to the request.
func (a *APIKeyAuth) Authenticate(req *http.Request) error {
	if a.HeaderName == "" {
		return errors.New("api key authentication requires a header name")
	}
	req.Header.Set(a.HeaderName, a.HeaderValue)
	return nil
}

// ChainAuth applies several authenticators in order.
type ChainAuth []UpstreamAuthenticator

// Authenticate runs every authenticator and stops at the first error.
func (c ChainAuth) Authenticate(req *http.Request) error {
	for _, a := range c {
		if a == nil {
			continue
		}
		if err := a.Authenticate(req); err != nil {
			return err
		}
	}
	return nil
}
