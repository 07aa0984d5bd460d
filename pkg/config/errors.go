// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
)

// ActionableError is an error that includes a suggestion for fixing the issue.
type ActionableError struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	return fmt.Sprintf("%v\n\t-> Fix: %s", e.Err, e.Suggestion)
}

// Unwrap returns the underlying error.
func (e *ActionableError) Unwrap() error {
	return e.Err
}

// WrapActionableError wraps an error with context. When the cause is an
// ActionableError the result is one too, carrying the same suggestion.
func WrapActionableError(context string, err error) error {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return &ActionableError{
			Err:        fmt.Errorf("%s: %w", context, ae.Err),
			Suggestion: ae.Suggestion,
		}
	}
	return fmt.Errorf("%s: %w", context, err)
}
