// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputSchema(t *testing.T) {
	input := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search":  map[string]any{"type": "string", "description": "Lucene query"},
			"limit":   map[string]any{"type": "integer"},
			"filter":  map[string]any{"type": []any{"null", "object"}},
			"mystery": map[string]any{},
		},
		"required": []any{"search", "search"},
	}

	schema, err := ParseInputSchema(input)
	require.NoError(t, err)

	want := &ToolSchema{
		Properties: map[string]Parameter{
			"search":  {Name: "search", Type: TypeString, Description: "Lucene query", Required: true},
			"limit":   {Name: "limit", Type: TypeInteger},
			"filter":  {Name: "filter", Type: TypeObject},
			"mystery": {Name: "mystery", Type: TypeUnknown},
		},
		Required: []string{"search"},
	}
	if diff := cmp.Diff(want, schema); diff != "" {
		t.Errorf("ParseInputSchema() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"filter", "limit", "mystery", "search"}, schema.Names())
	assert.Equal(t, "unknown", schema.Properties["mystery"].DisplayType())
}

func TestParseInputSchema_Forms(t *testing.T) {
	raw := `{"type":"object","properties":{"drug_name":{"type":"string"}},"required":["drug_name"]}`

	t.Run("raw message", func(t *testing.T) {
		schema, err := ParseInputSchema(json.RawMessage(raw))
		require.NoError(t, err)
		assert.True(t, schema.IsRequired("drug_name"))
	})

	t.Run("string", func(t *testing.T) {
		schema, err := ParseInputSchema(raw)
		require.NoError(t, err)
		assert.Equal(t, TypeString, schema.Properties["drug_name"].Type)
	})

	t.Run("nil", func(t *testing.T) {
		schema, err := ParseInputSchema(nil)
		require.NoError(t, err)
		assert.Empty(t, schema.Properties)
		assert.Empty(t, schema.Required)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseInputSchema("{not json")
		assert.Error(t, err)
	})
}

func TestToolSchema_Lookup(t *testing.T) {
	schema := &ToolSchema{
		Properties: map[string]Parameter{"limit": {Name: "limit", Type: TypeInteger}},
		Required:   []string{"drug"},
	}

	p, ok := schema.Lookup("limit")
	assert.True(t, ok)
	assert.Equal(t, TypeInteger, p.Type)

	p, ok = schema.Lookup("drug")
	assert.True(t, ok)
	assert.Equal(t, Parameter{Name: "drug", Type: TypeString, Required: true}, p)

	_, ok = schema.Lookup("missing")
	assert.False(t, ok)

	var nilSchema *ToolSchema
	_, ok = nilSchema.Lookup("x")
	assert.False(t, ok)
	assert.Nil(t, nilSchema.Names())
}
