// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package synth

import (
	"strings"

	"github.com/mcpany/fdaclient/pkg/catalog"
	"github.com/samber/lo"
)

const (
	// DefaultSubject is the example drug used for search, query, drug and name
	// parameters.
	DefaultSubject = "aspirin"
	// DefaultPlaceholder is the value given to otherwise unmatched string
	// parameters.
	DefaultPlaceholder = "example text"
	// DefaultLimit is the value given to limit-like parameters.
	DefaultLimit = 3
)

// Rule maps a parameter to an example value. A rule matches when every
// condition it declares holds: NameContains is a case-insensitive substring
// test against the parameter name (any entry may match) and Types is a set of
// accepted declared types. A rule with no condition never matches.
type Rule struct {
	// Label identifies the rule in logs and tests.
	Label        string
	NameContains []string
	Types        []catalog.ParamType
	Value        any
}

// IsNameRule reports whether the rule inspects parameter names.
func (r Rule) IsNameRule() bool {
	return len(r.NameContains) > 0
}

func (r Rule) matches(lowerName string, typ catalog.ParamType) bool {
	if len(r.NameContains) == 0 && len(r.Types) == 0 {
		return false
	}
	if len(r.NameContains) > 0 && !lo.SomeBy(r.NameContains, func(sub string) bool {
		return strings.Contains(lowerName, strings.ToLower(sub))
	}) {
		return false
	}
	if len(r.Types) > 0 && !lo.Contains(r.Types, typ) {
		return false
	}
	return true
}

// DefaultRules returns the rule table in evaluation order. The order is
// significant: the first matching rule wins.
func DefaultRules() []Rule {
	return RulesFor(DefaultSubject)
}

// RulesFor returns the default rule table with a different example subject.
func RulesFor(subject string) []Rule {
	return []Rule{
		{Label: "search-or-query", NameContains: []string{"search", "query"}, Value: subject},
		{Label: "drug-or-name", NameContains: []string{"drug", "name"}, Value: subject},
		{Label: "limit", NameContains: []string{"limit"}, Value: DefaultLimit},
		{Label: "string", Types: []catalog.ParamType{catalog.TypeString}, Value: DefaultPlaceholder},
		{Label: "number", Types: []catalog.ParamType{catalog.TypeNumber, catalog.TypeInteger}, Value: 1},
		{Label: "boolean", Types: []catalog.ParamType{catalog.TypeBoolean}, Value: true},
	}
}
