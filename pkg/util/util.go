// Copyright 2025 Author(s) of MCP Any
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maskVisibleSuffix = 4

// GenerateUUID creates a new version 4 UUID and returns it as a string. It is
// used to tag all log lines of a single command run.
func GenerateUUID() string {
	return uuid.New().String()
}

// MaskSecret hides a credential for display, keeping only its last four
// characters, e.g. "***kZB1". Secrets of four characters or fewer are fully
// masked and an empty secret stays empty.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if utf8.RuneCountInString(secret) <= maskVisibleSuffix {
		return "***"
	}
	runes := []rune(secret)
	return "***" + string(runes[len(runes)-maskVisibleSuffix:])
}

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SplitLines splits a multi-line description into its lines and drops lines
// that contain only whitespace. Carriage returns are discarded.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r", ""), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
