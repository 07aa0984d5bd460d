// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcpany/fdaclient/pkg/util"
)

var (
	once          sync.Once
	defaultLogger *slog.Logger
)

// sensitiveKeys lists attribute keys whose values are credentials. Their values
// are masked before they reach the handler.
var sensitiveKeys = map[string]struct{}{
	"api_key":   {},
	"user_code": {},
	"emcp-key":  {},
}

// ForTestsOnlyResetLogger is for use in tests to reset the `sync.Once`
// mechanism. This allows the global logger to be re-initialized in different
// test cases. This function should not be used in production code.
func ForTestsOnlyResetLogger() {
	once = sync.Once{}
	defaultLogger = nil
}

// Init initializes the application's global logger with a specific log level
// and output destination. Only the first call has an effect; later calls are
// no-ops so that the logger stays consistent for the whole run.
//
// Parameters:
//   - level: The minimum log level to be recorded (e.g., `slog.LevelInfo`).
//   - output: The `io.Writer` to which log entries will be written.
func Init(level slog.Level, output io.Writer) {
	once.Do(func() {
		defaultLogger = newLogger(level, output)
	})
}

// GetLogger returns the shared global logger instance. If the logger has not yet
// been initialized through a call to `Init`, it is initialized with default
// settings: logging to `os.Stderr` at `slog.LevelInfo`.
func GetLogger() *slog.Logger {
	once.Do(func() {
		defaultLogger = newLogger(slog.LevelInfo, os.Stderr)
	})
	return defaultLogger
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error") into a
// slog.Level. The comparison is case-insensitive.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func newLogger(level slog.Level, output io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: redactAttr,
	}))
}

// redactAttr masks credential values, keeping only the last four characters.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; !ok {
		return a
	}
	return slog.String(a.Key, util.MaskSecret(a.Value.String()))
}
