// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// IsJSON reports whether s is a complete JSON document.
func IsJSON(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && gjson.Valid(s)
}

// PrettyJSON indents a JSON document. Invalid input is returned unchanged.
func PrettyJSON(s string) string {
	if !IsJSON(s) {
		return s
	}
	return strings.TrimRight(string(pretty.PrettyOptions([]byte(strings.TrimSpace(s)), prettyOptions)), "\n")
}

// MarshalPretty encodes v and indents it.
func MarshalPretty(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return PrettyJSON(string(b)), nil
}
