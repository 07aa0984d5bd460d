// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package catalog models the operation catalog advertised by a remote MCP
// server: the tools it exposes and the parameter schema each tool declares.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ParamType is the JSON Schema type of a single tool parameter.
type ParamType string

const (
	// TypeString is a JSON string parameter.
	TypeString ParamType = "string"
	// TypeNumber is a JSON number parameter.
	TypeNumber ParamType = "number"
	// TypeInteger is a JSON integer parameter.
	TypeInteger ParamType = "integer"
	// TypeBoolean is a JSON boolean parameter.
	TypeBoolean ParamType = "boolean"
	// TypeObject is a JSON object parameter.
	TypeObject ParamType = "object"
	// TypeArray is a JSON array parameter.
	TypeArray ParamType = "array"
	// TypeUnknown is used when a property declares no usable type.
	TypeUnknown ParamType = ""
)

// Parameter describes one property of a tool's input schema.
type Parameter struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// DisplayType returns the declared type, or "unknown" when none was declared.
func (p Parameter) DisplayType() string {
	if p.Type == TypeUnknown {
		return "unknown"
	}
	return string(p.Type)
}

// ToolSchema is the parameter schema of one remote operation. It is read-only
// once parsed.
type ToolSchema struct {
	// Properties maps the parameter name to its descriptor.
	Properties map[string]Parameter
	// Required lists required parameter names in declaration order.
	Required []string
}

// Names returns all property names in lexical order.
func (s *ToolSchema) Names() []string {
	if s == nil {
		return nil
	}
	names := lo.Keys(s.Properties)
	sort.Strings(names)
	return names
}

// Parameters returns every declared property in lexical order.
func (s *ToolSchema) Parameters() []Parameter {
	if s == nil {
		return nil
	}
	return lo.Map(s.Names(), func(name string, _ int) Parameter {
		return s.Properties[name]
	})
}

// IsRequired reports whether name is listed as required.
func (s *ToolSchema) IsRequired(name string) bool {
	return s != nil && lo.Contains(s.Required, name)
}

// Lookup returns the descriptor of a parameter. A required name without a
// property entry yields a string parameter, the same assumption the remote
// demo clients make.
func (s *ToolSchema) Lookup(name string) (Parameter, bool) {
	if s == nil {
		return Parameter{}, false
	}
	if p, ok := s.Properties[name]; ok {
		return p, true
	}
	if s.IsRequired(name) {
		return Parameter{Name: name, Type: TypeString, Required: true}, true
	}
	return Parameter{}, false
}

// rawSchema mirrors the subset of JSON Schema that tool input schemas use.
type rawSchema struct {
	Type       any                    `json:"type"`
	Properties map[string]rawProperty `json:"properties"`
	Required   []string               `json:"required"`
}

type rawProperty struct {
	Type        any    `json:"type"`
	Description string `json:"description"`
}

// ParseInputSchema converts a tool's inputSchema, as received from the MCP
// SDK, into a ToolSchema. The input may be any JSON-serializable value: a
// map, a json.RawMessage, raw bytes or a typed schema struct. A nil schema
// yields an empty ToolSchema.
func ParseInputSchema(inputSchema any) (*ToolSchema, error) {
	schema := &ToolSchema{Properties: map[string]Parameter{}}
	if inputSchema == nil {
		return schema, nil
	}

	var data []byte
	switch v := inputSchema.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input schema: %w", err)
		}
		data = b
	}
	if len(data) == 0 || string(data) == "null" {
		return schema, nil
	}

	var raw rawSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode input schema: %w", err)
	}

	schema.Required = lo.Uniq(raw.Required)
	for name, prop := range raw.Properties {
		schema.Properties[name] = Parameter{
			Name:        name,
			Type:        parseType(prop.Type),
			Description: prop.Description,
			Required:    lo.Contains(schema.Required, name),
		}
	}
	return schema, nil
}

// parseType reads a JSON Schema "type" keyword. A type union such as
// ["string", "null"] resolves to its first non-null member.
func parseType(t any) ParamType {
	switch v := t.(type) {
	case string:
		return ParamType(strings.ToLower(v))
	case []any:
		for _, member := range v {
			if s, ok := member.(string); ok && s != "null" {
				return ParamType(strings.ToLower(s))
			}
		}
	}
	return TypeUnknown
}
