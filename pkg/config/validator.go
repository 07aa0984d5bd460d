// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateProfiles checks every profile and rejects duplicate names within
// the same document set.
func ValidateProfiles(pf *ProfilesFile) error {
	if pf == nil {
		return nil
	}
	if err := structValidator().Struct(pf); err != nil {
		return &ActionableError{
			Err:        fmt.Errorf("invalid profile: %s", describeValidationError(err)),
			Suggestion: "each profile needs a name and an http(s) url; transport is sse or streamable",
		}
	}
	seen := map[string]bool{}
	for _, p := range pf.Profiles {
		if seen[p.Name] {
			return &ActionableError{
				Err:        fmt.Errorf("profile %q is defined more than once", p.Name),
				Suggestion: "rename or remove one of the duplicate profiles",
			}
		}
		seen[p.Name] = true
		if err := p.APIKey.Validate(); err != nil {
			return secretError(p.Name, "api_key", err)
		}
		if err := p.UserCode.Validate(); err != nil {
			return secretError(p.Name, "user_code", err)
		}
	}
	return nil
}

func secretError(profile, field string, err error) error {
	return &ActionableError{
		Err:        fmt.Errorf("profile %q %s: %w", profile, field, err),
		Suggestion: "set exactly one of plain_text, environment_variable or file_path",
	}
}

// ValidateSettings checks resolved settings.
func ValidateSettings(s *Settings) error {
	if err := structValidator().Struct(s); err != nil {
		return &ActionableError{
			Err:        fmt.Errorf("invalid settings: %s", describeValidationError(err)),
			Suggestion: "run with --help to see the accepted values of each flag",
		}
	}
	return nil
}

func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
