// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_DefaultsToInfo(t *testing.T) {
	ForTestsOnlyResetLogger()
	t.Cleanup(ForTestsOnlyResetLogger)

	logger := GetLogger()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, logger, GetLogger())
}

func TestInit_OnlyFirstCallCounts(t *testing.T) {
	ForTestsOnlyResetLogger()
	t.Cleanup(ForTestsOnlyResetLogger)

	var first, second bytes.Buffer
	Init(slog.LevelDebug, &first)
	Init(slog.LevelError, &second)

	GetLogger().Debug("listing tools", "endpoint", "http://localhost/mcp")
	assert.Contains(t, first.String(), "listing tools")
	assert.Contains(t, first.String(), "endpoint=http://localhost/mcp")
	assert.Empty(t, second.String())
}

func TestInit_MasksCredentials(t *testing.T) {
	ForTestsOnlyResetLogger()
	t.Cleanup(ForTestsOnlyResetLogger)

	var buf bytes.Buffer
	Init(slog.LevelInfo, &buf)

	const key = "fake-account-key-0123456789WXYZ"
	GetLogger().Info("connecting", "api_key", key, "user_code", "ab", "emcp-key", key, "tool", "get_drug_warnings")

	out := buf.String()
	assert.NotContains(t, out, key)
	assert.Contains(t, out, "api_key=***WXYZ")
	assert.Contains(t, out, "emcp-key=***WXYZ")
	assert.Contains(t, out, "user_code=***")
	assert.Contains(t, out, "tool=get_drug_warnings")
}

func TestInit_MasksMultiByteCredentials(t *testing.T) {
	ForTestsOnlyResetLogger()
	t.Cleanup(ForTestsOnlyResetLogger)

	var buf bytes.Buffer
	Init(slog.LevelInfo, &buf)

	GetLogger().Info("connecting", "user_code", "código-ñandú")

	out := buf.String()
	assert.NotContains(t, out, "código")
	assert.Contains(t, out, "user_code=***andú")
	assert.True(t, utf8.ValidString(out))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
