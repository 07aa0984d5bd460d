// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package synth builds plausible call arguments for remote tools whose
// parameters are only known from their declared schema.
//
// Arguments come from an explicit per-tool example registry when one exists
// and otherwise from an ordered table of name and type rules. Synthesis is a
// pure function of the schema: the same schema always yields the same
// arguments and no error is ever returned. A parameter that no rule maps is
// simply left out.
package synth

import (
	"maps"
	"strings"

	"github.com/mcpany/fdaclient/pkg/catalog"
)

// ArgumentSet is the concrete input passed when invoking a tool.
type ArgumentSet map[string]any

// Clone returns a shallow copy. Values produced by the synthesizer are
// scalars, so a shallow copy is enough to keep callers independent.
func (a ArgumentSet) Clone() ArgumentSet {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Origin tells where an ArgumentSet came from.
type Origin string

const (
	// OriginRegistry marks arguments taken from the example registry.
	OriginRegistry Origin = "registry"
	// OriginHeuristic marks arguments built from the rule table.
	OriginHeuristic Origin = "heuristic"
)

// Options tunes the synthesizer.
type Options struct {
	// FillOptionalByName also fills optional parameters, but only through
	// rules that match on the parameter name. Type fallbacks stay limited to
	// required parameters.
	FillOptionalByName bool
}

// Synthesizer produces ArgumentSets from tool schemas.
type Synthesizer struct {
	Rules    []Rule
	Registry Registry
	Options  Options
}

// New returns a synthesizer with the default rule table, the default example
// registry and optional parameters filled by name.
func New() *Synthesizer {
	return &Synthesizer{
		Rules:    DefaultRules(),
		Registry: DefaultRegistry(),
		Options:  Options{FillOptionalByName: true},
	}
}

// Synthesize builds arguments for schema using the rule table only. Every
// required parameter gets a value unless its type has no fallback (object,
// array).
func (s *Synthesizer) Synthesize(schema *catalog.ToolSchema) ArgumentSet {
	args := ArgumentSet{}
	if schema == nil {
		return args
	}

	for _, name := range schema.Required {
		p, _ := schema.Lookup(name)
		if v, ok := s.match(name, effectiveType(p), false); ok {
			args[name] = v
		}
	}

	if !s.Options.FillOptionalByName {
		return args
	}
	for _, p := range schema.Parameters() {
		if p.Required {
			continue
		}
		if _, done := args[p.Name]; done {
			continue
		}
		if v, ok := s.match(p.Name, p.Type, true); ok {
			args[p.Name] = v
		}
	}
	return args
}

// ForTool returns the registered example for the tool when there is one and
// falls back to Synthesize otherwise. The result is always a fresh map.
func (s *Synthesizer) ForTool(name string, schema *catalog.ToolSchema) (ArgumentSet, Origin) {
	if args, ok := s.Registry.Lookup(name); ok {
		return args, OriginRegistry
	}
	return s.Synthesize(schema), OriginHeuristic
}

func (s *Synthesizer) match(name string, typ catalog.ParamType, nameRulesOnly bool) (any, bool) {
	lower := strings.ToLower(name)
	for _, r := range s.Rules {
		if nameRulesOnly && !r.IsNameRule() {
			continue
		}
		if r.matches(lower, typ) {
			return r.Value, true
		}
	}
	return nil, false
}

// effectiveType treats a required parameter without a declared type as a
// string.
func effectiveType(p catalog.Parameter) catalog.ParamType {
	if p.Type == catalog.TypeUnknown {
		return catalog.TypeString
	}
	return p.Type
}
