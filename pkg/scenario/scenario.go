// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package scenario runs scripted tool calls against an OpenFDA MCP server and
// prints selected fields of each response.
//
// A scenario is data: a tool, its arguments and a list of jq expressions
// picking fields out of the JSON payload. A failure in one scenario is
// printed and counted; it never stops the remaining scenarios.
package scenario

import (
	"github.com/mcpany/fdaclient/pkg/synth"
)

// Field selects one value from a response.
type Field struct {
	// Label is printed before the value.
	Label string
	// Query is a jq expression evaluated against the decoded payload.
	Query string
	// MaxLength truncates the value, in runes. Zero keeps it whole.
	MaxLength int
	// Missing is printed when the query yields nothing. Empty skips the
	// field silently.
	Missing string
}

// Scenario is one scripted call.
type Scenario struct {
	Title     string
	Tool      string
	Arguments synth.ArgumentSet
	// Found is a jq expression deciding whether the payload holds any
	// record at all. Empty uses DefaultFound.
	Found  string
	Fields []Field
	// Raw prints the text payload itself, truncated at RawMaxLength,
	// instead of decoding it as JSON.
	Raw          bool
	RawMaxLength int
}

// Batch repeats one call over several subjects and prints one line per
// subject.
type Batch struct {
	Title string
	Tool  string
	// SubjectKey is the argument receiving each subject.
	SubjectKey string
	Subjects   []string
	// Arguments are merged into every call.
	Arguments synth.ArgumentSet
	Found     string
	// Field is the value printed for each subject.
	Field Field
}

// Plan is an ordered walkthrough.
type Plan struct {
	Title     string
	Scenarios []Scenario
	Batches   []Batch
}

// DefaultFound is true when an OpenFDA payload has at least one result.
const DefaultFound = `(.results // []) | length > 0`

// Validate compiles every query in the plan.
func (p Plan) Validate() error {
	for _, s := range p.Scenarios {
		if _, err := compileQuery(foundQuery(s.Found)); err != nil {
			return err
		}
		for _, f := range s.Fields {
			if _, err := compileQuery(f.Query); err != nil {
				return err
			}
		}
	}
	for _, b := range p.Batches {
		if _, err := compileQuery(foundQuery(b.Found)); err != nil {
			return err
		}
		if _, err := compileQuery(b.Field.Query); err != nil {
			return err
		}
	}
	return nil
}

func foundQuery(q string) string {
	if q == "" {
		return DefaultFound
	}
	return q
}
