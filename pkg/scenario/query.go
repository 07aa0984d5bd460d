// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

var (
	codeMu    sync.Mutex
	codeCache = map[string]*gojq.Code{}
)

// compileQuery parses and compiles a jq expression, memoizing the result.
func compileQuery(src string) (*gojq.Code, error) {
	codeMu.Lock()
	defer codeMu.Unlock()
	if code, ok := codeCache[src]; ok {
		return code, nil
	}
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query %q: %w", src, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query %q: %w", src, err)
	}
	codeCache[src] = code
	return code, nil
}

// evalQuery runs src against doc and returns every non-null output.
func evalQuery(ctx context.Context, src string, doc any) ([]any, error) {
	code, err := compileQuery(src)
	if err != nil {
		return nil, err
	}
	var out []any
	iter := code.RunWithContext(ctx, doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query %q: %w", src, err)
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// truthy applies jq truthiness to the first output of src.
func truthy(ctx context.Context, src string, doc any) (bool, error) {
	vals, err := evalQuery(ctx, src, doc)
	if err != nil {
		return false, err
	}
	if len(vals) == 0 {
		return false, nil
	}
	b, isBool := vals[0].(bool)
	return !isBool || b, nil
}

// stringify renders a query output for the console: strings as-is, arrays
// joined with ", ", anything else as JSON.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
