// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package synth

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "input_schema.json"

// Validate checks args against a tool's JSON Schema input schema. A nil
// schema accepts anything.
func Validate(inputSchema any, args ArgumentSet) error {
	if inputSchema == nil {
		return nil
	}
	var schemaJSON []byte
	switch v := inputSchema.(type) {
	case json.RawMessage:
		schemaJSON = v
	case []byte:
		schemaJSON = v
	case string:
		schemaJSON = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal input schema: %w", err)
		}
		schemaJSON = b
	}
	if len(schemaJSON) == 0 || string(schemaJSON) == "null" {
		return nil
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to add input schema resource: %w", err)
	}
	sch, err := c.Compile(schemaResource)
	if err != nil {
		return fmt.Errorf("invalid input schema: %w", err)
	}

	if args == nil {
		args = ArgumentSet{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(argsJSON))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}

	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("arguments do not match input schema: %w", err)
	}
	return nil
}
