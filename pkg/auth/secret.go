// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	envPrefix  = "env:"
	filePrefix = "file:"
)

// SecretValue is a credential given as plain text, as the name of an
// environment variable, or as the path of a file holding it. At most one
// source may be set.
type SecretValue struct {
	PlainText           string `json:"plain_text,omitempty" yaml:"plain_text,omitempty"`
	EnvironmentVariable string `json:"environment_variable,omitempty" yaml:"environment_variable,omitempty"`
	FilePath            string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// ParseSecretRef reads the compact flag form of a secret: "env:NAME",
// "file:/path" or a plain value. An empty string yields nil.
func ParseSecretRef(ref string) *SecretValue {
	switch {
	case ref == "":
		return nil
	case strings.HasPrefix(ref, envPrefix):
		return &SecretValue{EnvironmentVariable: strings.TrimPrefix(ref, envPrefix)}
	case strings.HasPrefix(ref, filePrefix):
		return &SecretValue{FilePath: strings.TrimPrefix(ref, filePrefix)}
	default:
		return &SecretValue{PlainText: ref}
	}
}

// IsZero reports whether no source is set.
func (s *SecretValue) IsZero() bool {
	return s == nil || (s.PlainText == "" && s.EnvironmentVariable == "" && s.FilePath == "")
}

// Validate rejects secrets with more than one source.
func (s *SecretValue) Validate() error {
	if s == nil {
		return nil
	}
	n := 0
	for _, v := range []string{s.PlainText, s.EnvironmentVariable, s.FilePath} {
		if v != "" {
			n++
		}
	}
	if n > 1 {
		return errors.New("secret must set only one of plain_text, environment_variable or file_path")
	}
	return nil
}

// ResolveSecretValue retrieves the string value of a secret from whichever
// source it names.
func ResolveSecretValue(secret *SecretValue) (string, error) {
	if secret.IsZero() {
		return "", nil
	}
	if err := secret.Validate(); err != nil {
		return "", err
	}
	switch {
	case secret.EnvironmentVariable != "":
		val := os.Getenv(secret.EnvironmentVariable)
		if val == "" {
			return "", fmt.Errorf("environment variable %q is not set", secret.EnvironmentVariable)
		}
		return val, nil
	case secret.FilePath != "":
		content, err := os.ReadFile(secret.FilePath)
		if err != nil {
			return "", fmt.Errorf("could not read secret from file %q: %w", secret.FilePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	default:
		return secret.PlainText, nil
	}
}
