// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package config resolves the client's settings from flags, the environment,
// an optional .env file and YAML or JSON profile files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcpany/fdaclient/pkg/appconsts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag defaults.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxTextLength = 500
	DefaultMaxJSONLength = 1000
	DefaultEnvFile       = ".env"
	DefaultCatalogTTL    = 5 * time.Minute
)

// BindFlags registers the persistent flags on cmd and binds them to viper.
// Every flag can also be given as an environment variable named after it,
// e.g. FDACLIENT_API_KEY for --api-key.
func BindFlags(cmd *cobra.Command) {
	viper.SetEnvPrefix(appconsts.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	f := cmd.PersistentFlags()
	f.String("profile", "", "Named server profile (built-in: openfda-sse, fda-streamable). Env: FDACLIENT_PROFILE")
	f.String("url", "", "Server endpoint URL; overrides the profile. Env: FDACLIENT_URL")
	f.String("transport", "", "Transport: sse or streamable. Env: FDACLIENT_TRANSPORT")
	f.String("api-key", "", "Account key sent in the api key header; accepts env:NAME or file:PATH. Env: FDACLIENT_API_KEY")
	f.String("user-code", "", "User code sent in the user code header; accepts env:NAME or file:PATH. Env: FDACLIENT_USER_CODE")
	f.String("api-key-header", "", "Header carrying the api key (default emcp-key). Env: FDACLIENT_API_KEY_HEADER")
	f.String("user-code-header", "", "Header carrying the user code (default emcp-usercode). Env: FDACLIENT_USER_CODE_HEADER")
	f.StringSlice("config-path", []string{}, "Profile files or directories (.yaml, .yml, .json). Can be specified multiple times. Env: FDACLIENT_CONFIG_PATH")
	f.String("env-file", DefaultEnvFile, "Optional dotenv file loaded before reading the environment. Env: FDACLIENT_ENV_FILE")
	f.Bool("debug", false, "Enable debug logging. Env: FDACLIENT_DEBUG")
	f.String("log-level", "info", "Log level: debug, info, warn or error. Env: FDACLIENT_LOG_LEVEL")
	f.String("logfile", "", "Path to a file to write logs to. If not set, logs are written to stderr.")
	f.Duration("timeout", DefaultTimeout, "Per-request timeout. Env: FDACLIENT_TIMEOUT")
	f.Duration("ready-delay", 0, "Pause after connecting before the first request; defaults to the profile's value. Env: FDACLIENT_READY_DELAY")
	f.Int("max-text-length", DefaultMaxTextLength, "Maximum characters of plain text printed per result. Env: FDACLIENT_MAX_TEXT_LENGTH")
	f.Int("max-json-length", DefaultMaxJSONLength, "Maximum characters of pretty-printed JSON per result. Env: FDACLIENT_MAX_JSON_LENGTH")
	f.Int("max-description-lines", 0, "Maximum lines printed per tool, parameter or prompt description; 0 prints all. Env: FDACLIENT_MAX_DESCRIPTION_LINES")
	f.String("close-policy", string(CloseAlways), "When to close the session: always or on-success. Env: FDACLIENT_CLOSE_POLICY")
	f.String("metrics-sink", "none", "Metrics sink: none, inmem or prometheus. Env: FDACLIENT_METRICS_SINK")
	f.String("metrics-listen-address", "", "Address serving /metrics when the prometheus sink is used. Env: FDACLIENT_METRICS_LISTEN_ADDRESS")
	f.Duration("catalog-ttl", DefaultCatalogTTL, "How long a fetched tool list is reused. Env: FDACLIENT_CATALOG_TTL")

	if err := viper.BindPFlags(f); err != nil {
		fmt.Printf("Error binding command line flags: %v\n", err)
		os.Exit(1)
	}
}

// explicit reports whether key was given on the command line or through its
// environment variable.
func explicit(cmd *cobra.Command, key string) bool {
	if cmd != nil {
		if f := cmd.Flag(key); f != nil && f.Changed {
			return true
		}
	}
	_, ok := os.LookupEnv(envName(key))
	return ok
}

func envName(key string) string {
	return appconsts.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
