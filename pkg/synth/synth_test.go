// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package synth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mcpany/fdaclient/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaOf(t *testing.T, raw string) *catalog.ToolSchema {
	t.Helper()
	s, err := catalog.ParseInputSchema(raw)
	require.NoError(t, err)
	return s
}

func TestSynthesize_RequiredByName(t *testing.T) {
	s := New()

	tests := []struct {
		name   string
		schema string
		want   ArgumentSet
	}{
		{
			name:   "search gets the subject",
			schema: `{"type":"object","properties":{"search":{"type":"string"}},"required":["search"]}`,
			want:   ArgumentSet{"search": "aspirin"},
		},
		{
			name:   "query matches case-insensitively",
			schema: `{"properties":{"UserQuery":{"type":"string"}},"required":["UserQuery"]}`,
			want:   ArgumentSet{"UserQuery": "aspirin"},
		},
		{
			name:   "drug_name gets the subject",
			schema: `{"properties":{"drug_name":{"type":"string"}},"required":["drug_name"]}`,
			want:   ArgumentSet{"drug_name": "aspirin"},
		},
		{
			name:   "limit gets a positive integer",
			schema: `{"properties":{"max_limit":{"type":"integer"}},"required":["max_limit"]}`,
			want:   ArgumentSet{"max_limit": 3},
		},
		{
			name:   "type fallbacks",
			schema: `{"properties":{"text":{"type":"string"},"ratio":{"type":"number"},"count":{"type":"integer"},"flag":{"type":"boolean"}},"required":["text","ratio","count","flag"]}`,
			want:   ArgumentSet{"text": "example text", "ratio": 1, "count": 1, "flag": true},
		},
		{
			name:   "object and array stay unset",
			schema: `{"properties":{"filter":{"type":"object"},"ids":{"type":"array"}},"required":["filter","ids"]}`,
			want:   ArgumentSet{},
		},
		{
			name:   "untyped required parameter is a string",
			schema: `{"properties":{"mystery":{}},"required":["mystery","ghost"]}`,
			want:   ArgumentSet{"mystery": "example text", "ghost": "example text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Synthesize(schemaOf(t, tt.schema))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSynthesize_RuleOrderMatters(t *testing.T) {
	s := New()
	// "name_limit" hits both the drug-or-name and the limit rules; the first
	// one in the table wins.
	got := s.Synthesize(schemaOf(t, `{"properties":{"name_limit":{"type":"integer"}},"required":["name_limit"]}`))
	assert.Equal(t, ArgumentSet{"name_limit": "aspirin"}, got)

	s.Rules = []Rule{
		{Label: "limit", NameContains: []string{"limit"}, Value: 10},
		{Label: "name", NameContains: []string{"name"}, Value: "x"},
	}
	got = s.Synthesize(schemaOf(t, `{"properties":{"name_limit":{"type":"integer"}},"required":["name_limit"]}`))
	assert.Equal(t, ArgumentSet{"name_limit": 10}, got)
}

func TestSynthesize_OptionalParameters(t *testing.T) {
	schema := `{"type":"object","properties":{"search":{"type":"string"},"limit":{"type":"integer"},"skip":{"type":"integer"},"exact":{"type":"boolean"}},"required":["search"]}`

	t.Run("filled by name rules only", func(t *testing.T) {
		s := New()
		got := s.Synthesize(schemaOf(t, schema))
		assert.Equal(t, ArgumentSet{"search": "aspirin", "limit": 3}, got)
	})

	t.Run("required only", func(t *testing.T) {
		s := New()
		s.Options.FillOptionalByName = false
		got := s.Synthesize(schemaOf(t, schema))
		assert.Equal(t, ArgumentSet{"search": "aspirin"}, got)
	})
}

func TestSynthesize_Idempotent(t *testing.T) {
	s := New()
	schema := schemaOf(t, `{"properties":{"search":{"type":"string"},"limit":{"type":"integer"},"verbose":{"type":"boolean"}},"required":["search","verbose"]}`)

	first := s.Synthesize(schema)
	second := s.Synthesize(schema)
	assert.Equal(t, first, second)

	first["search"] = "changed"
	assert.Equal(t, "aspirin", second["search"])
}

func TestSynthesize_NilAndEmptySchema(t *testing.T) {
	s := New()
	assert.Empty(t, s.Synthesize(nil))
	assert.Empty(t, s.Synthesize(&catalog.ToolSchema{}))
}

func TestForTool(t *testing.T) {
	s := New()

	args, origin := s.ForTool("get_drug_warnings", nil)
	assert.Equal(t, OriginRegistry, origin)
	assert.Equal(t, ArgumentSet{"drug_name": "aspirin", "limit": 2}, args)

	args["drug_name"] = "ibuprofen"
	again, _ := s.ForTool("get_drug_warnings", nil)
	assert.Equal(t, "aspirin", again["drug_name"], "registry entries must not be mutated through returned copies")

	rag, origin := s.ForTool("ae_pipeline_rag", nil)
	assert.Equal(t, OriginRegistry, origin)
	assert.Equal(t, ArgumentSet{"drug": "aspirin", "query": "What are the main side effects?", "top_k": 3}, rag)

	args, origin = s.ForTool("lookup_recalls", schemaOf(t, `{"properties":{"product_name":{"type":"string"}},"required":["product_name"]}`))
	assert.Equal(t, OriginHeuristic, origin)
	assert.Equal(t, ArgumentSet{"product_name": "aspirin"}, args)
}

func TestDefaultRegistry_EntriesAreIndependent(t *testing.T) {
	r := DefaultRegistry()
	r["get_drug_warnings"]["limit"] = 99
	assert.Equal(t, 2, r["get_drug_indications"]["limit"])
	assert.Equal(t, 2, DefaultRegistry()["get_drug_warnings"]["limit"])
}

func TestRulesFor(t *testing.T) {
	s := New()
	s.Rules = RulesFor("ibuprofen")
	got := s.Synthesize(schemaOf(t, `{"properties":{"drug":{"type":"string"}},"required":["drug"]}`))
	assert.Equal(t, ArgumentSet{"drug": "ibuprofen"}, got)
}

func TestRule_NoConditionNeverMatches(t *testing.T) {
	assert.False(t, Rule{Value: 1}.matches("anything", catalog.TypeString))
}

func TestValidate(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search": map[string]any{"type": "string"},
			"limit":  map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []any{"search"},
	}

	require.NoError(t, Validate(schema, ArgumentSet{"search": "aspirin", "limit": 3}))

	err := Validate(schema, ArgumentSet{"limit": 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arguments do not match input schema")

	assert.Error(t, Validate(schema, ArgumentSet{"search": "aspirin", "limit": 0}))
	assert.Error(t, Validate(schema, nil))
	assert.NoError(t, Validate(nil, ArgumentSet{"anything": true}))
}

func TestValidate_SynthesizedArgumentsPass(t *testing.T) {
	raw := `{"type":"object","properties":{"search":{"type":"string"},"limit":{"type":"integer"},"strict":{"type":"boolean"}},"required":["search","strict"]}`
	args := New().Synthesize(schemaOf(t, raw))
	assert.NoError(t, Validate([]byte(raw), args))
}

func TestValidate_BadSchema(t *testing.T) {
	err := Validate(map[string]any{"type": 12}, ArgumentSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input schema")
}
