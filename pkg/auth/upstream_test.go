// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpstreamAuthenticator(t *testing.T) {
	t.Run("NoCredentials", func(t *testing.T) {
		a, err := NewUpstreamAuthenticator(Credentials{})
		assert.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("DefaultHeaders", func(t *testing.T) {
		a, err := NewUpstreamAuthenticator(Credentials{
			APIKey:   &SecretValue{PlainText: "test-key"},
			UserCode: &SecretValue{PlainText: "test-code"},
		})
		require.NoError(t, err)
		require.NotNil(t, a)

		req, _ := http.NewRequest("GET", "/", nil)
		require.NoError(t, a.Authenticate(req))
		assert.Equal(t, "test-key", req.Header.Get("emcp-key"))
		assert.Equal(t, "test-code", req.Header.Get("emcp-usercode"))
	})

	t.Run("CustomHeaders", func(t *testing.T) {
		a, err := NewUpstreamAuthenticator(Credentials{
			APIKey:         &SecretValue{PlainText: "k"},
			APIKeyHeader:   "X-API-Key",
			UserCode:       &SecretValue{PlainText: "u"},
			UserCodeHeader: "X-User",
		})
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/", nil)
		require.NoError(t, a.Authenticate(req))
		assert.Equal(t, "k", req.Header.Get("X-API-Key"))
		assert.Equal(t, "u", req.Header.Get("X-User"))
		assert.Empty(t, req.Header.Get("emcp-key"))
	})

	t.Run("OnlyAPIKey", func(t *testing.T) {
		a, err := NewUpstreamAuthenticator(Credentials{APIKey: &SecretValue{PlainText: "k"}})
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/", nil)
		require.NoError(t, a.Authenticate(req))
		assert.Equal(t, "k", req.Header.Get("emcp-key"))
		_, present := req.Header["Emcp-Usercode"]
		assert.False(t, present)
	})

	t.Run("UnresolvableSecret", func(t *testing.T) {
		_, err := NewUpstreamAuthenticator(Credentials{
			APIKey: &SecretValue{EnvironmentVariable: "FDACLIENT_TEST_UNSET_VARIABLE"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to resolve api key")
	})
}

type failingAuth struct{}

func (failingAuth) Authenticate(*http.Request) error { return errors.New("nope") }

func TestChainAuth(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	chain := ChainAuth{&APIKeyAuth{HeaderName: "A", HeaderValue: "1"}, nil, failingAuth{}, &APIKeyAuth{HeaderName: "B", HeaderValue: "2"}}

	err := chain.Authenticate(req)
	assert.EqualError(t, err, "nope")
	assert.Equal(t, "1", req.Header.Get("A"))
	assert.Empty(t, req.Header.Get("B"))
}

func TestAPIKeyAuth_RequiresHeaderName(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	assert.Error(t, (&APIKeyAuth{HeaderValue: "x"}).Authenticate(req))
}
