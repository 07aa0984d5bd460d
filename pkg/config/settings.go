// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ClosePolicy decides whether a session is closed when the work using it
// fails.
type ClosePolicy string

const (
	// CloseAlways closes the session on success and on failure.
	CloseAlways ClosePolicy = "always"
	// CloseOnSuccess closes only after the work succeeded, leaving teardown
	// of a failed session to process exit.
	CloseOnSuccess ClosePolicy = "on-success"
)

// Settings is the fully resolved client configuration.
type Settings struct {
	ProfileName string
	Endpoint    string `validate:"required,url,startswith=http"`
	Transport   string `validate:"oneof=sse streamable streamable-http http"`
	Credentials auth.Credentials `validate:"-"`

	Timeout       time.Duration `validate:"gt=0"`
	ReadyDelay    time.Duration `validate:"gte=0"`
	MaxTextLength int           `validate:"gt=0"`
	MaxJSONLength int           `validate:"gt=0"`
	ClosePolicy   ClosePolicy   `validate:"oneof=always on-success"`
	CatalogTTL    time.Duration `validate:"gte=0"`

	// MaxDescriptionLines caps printed descriptions; zero prints all.
	MaxDescriptionLines int `validate:"gte=0"`

	MetricsSink          string `validate:"oneof=none inmem prometheus"`
	MetricsListenAddress string `validate:"required_if=MetricsSink prometheus"`

	Debug       bool
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFile     string
	ConfigPaths []string
	EnvFile     string

	// Profiles holds every known profile, built-in and loaded from files.
	Profiles map[string]Profile `validate:"-"`
}

// Load resolves settings. Precedence, highest first: flags, environment
// (including the .env file), the selected profile, built-in defaults.
func Load(cmd *cobra.Command, fs afero.Fs) (*Settings, error) {
	s := &Settings{
		EnvFile:     viper.GetString("env-file"),
		ConfigPaths: viper.GetStringSlice("config-path"),
	}

	if err := loadEnvFile(fs, s.EnvFile, explicit(cmd, "env-file")); err != nil {
		return nil, err
	}

	s.Profiles = BuiltinProfiles()
	if len(s.ConfigPaths) > 0 {
		doc, err := NewFileStore(fs, s.ConfigPaths).Load()
		if err != nil {
			return nil, WrapActionableError("failed to load profiles", err)
		}
		if err := ValidateProfiles(doc); err != nil {
			return nil, err
		}
		s.Profiles = MergeProfiles(s.Profiles, doc)
	}

	url := viper.GetString("url")
	s.ProfileName = viper.GetString("profile")
	if s.ProfileName == "" && url == "" {
		s.ProfileName = DefaultProfile
	}
	var profile Profile
	if s.ProfileName != "" {
		p, ok := s.Profiles[s.ProfileName]
		if !ok {
			return nil, &ActionableError{
				Err:        fmt.Errorf("unknown profile %q", s.ProfileName),
				Suggestion: "use one of: " + strings.Join(ProfileNames(s.Profiles), ", "),
			}
		}
		profile = p
	}

	s.Endpoint = lo.CoalesceOrEmpty(url, profile.URL)
	s.Transport = strings.ToLower(lo.CoalesceOrEmpty(viper.GetString("transport"), profile.Transport, guessTransport(s.Endpoint)))

	s.Credentials = auth.Credentials{
		APIKey:         secretOr(viper.GetString("api-key"), profile.APIKey),
		UserCode:       secretOr(viper.GetString("user-code"), profile.UserCode),
		APIKeyHeader:   lo.CoalesceOrEmpty(viper.GetString("api-key-header"), profile.APIKeyHeader),
		UserCodeHeader: lo.CoalesceOrEmpty(viper.GetString("user-code-header"), profile.UserCodeHeader),
	}

	s.ReadyDelay = profile.ReadyDelay.Std()
	if explicit(cmd, "ready-delay") {
		s.ReadyDelay = viper.GetDuration("ready-delay")
	}

	s.Timeout = viper.GetDuration("timeout")
	s.MaxTextLength = viper.GetInt("max-text-length")
	s.MaxJSONLength = viper.GetInt("max-json-length")
	s.MaxDescriptionLines = viper.GetInt("max-description-lines")
	s.ClosePolicy = ClosePolicy(strings.ToLower(viper.GetString("close-policy")))
	s.CatalogTTL = viper.GetDuration("catalog-ttl")
	s.MetricsSink = strings.ToLower(viper.GetString("metrics-sink"))
	s.MetricsListenAddress = viper.GetString("metrics-listen-address")
	s.Debug = viper.GetBool("debug")
	s.LogFile = viper.GetString("logfile")
	s.LogLevel = strings.ToLower(viper.GetString("log-level"))
	if s.Debug {
		s.LogLevel = "debug"
	}

	if err := ValidateSettings(s); err != nil {
		return nil, err
	}
	return s, nil
}

// loadEnvFile reads a dotenv file and exports the variables that are not
// already set. A missing default file is not an error.
func loadEnvFile(fs afero.Fs, path string, required bool) error {
	if path == "" {
		return nil
	}
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return &ActionableError{
			Err:        fmt.Errorf("failed to open env file %s: %w", path, err),
			Suggestion: "check the --env-file path or unset FDACLIENT_ENV_FILE",
		}
	}
	defer func() { _ = f.Close() }()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to export %s from %s: %w", k, path, err)
		}
	}
	logging.GetLogger().Debug("Loaded env file", "path", path, "variables", len(vars))
	return nil
}

// guessTransport picks sse for endpoints ending in /sse and streamable
// otherwise.
func guessTransport(endpoint string) string {
	if strings.HasSuffix(strings.TrimRight(endpoint, "/"), "/sse") {
		return "sse"
	}
	return "streamable"
}

func secretOr(ref string, fallback *auth.SecretValue) *auth.SecretValue {
	if s := auth.ParseSecretRef(ref); s != nil {
		return s
	}
	return fallback
}
