// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides an in-process FDA MCP server for tests and local
// demos.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Label is one drug label record in the OpenFDA response shape.
type Label struct {
	OpenFDA struct {
		BrandName        []string `json:"brand_name,omitempty"`
		GenericName      []string `json:"generic_name,omitempty"`
		ManufacturerName []string `json:"manufacturer_name,omitempty"`
	} `json:"openfda"`
	IndicationsAndUsage []string `json:"indications_and_usage,omitempty"`
	AdverseReactions    []string `json:"adverse_reactions,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

// DefaultLabels returns the canned label data served for known drugs.
func DefaultLabels() map[string]Label {
	mk := func(brands, generics, makers []string, ind, adv, warn string) Label {
		var l Label
		l.OpenFDA.BrandName = brands
		l.OpenFDA.GenericName = generics
		l.OpenFDA.ManufacturerName = makers
		l.IndicationsAndUsage = []string{ind}
		l.AdverseReactions = []string{adv}
		l.Warnings = []string{warn}
		return l
	}
	return map[string]Label{
		"aspirin": mk(
			[]string{"Bayer Aspirin", "Ecotrin", "Bufferin"},
			[]string{"ASPIRIN"},
			[]string{"Bayer HealthCare LLC"},
			"Uses temporarily relieves minor aches and pains due to headache, muscle pain, toothache and the common cold.",
			"Stomach bleeding warning: this product contains an NSAID, which may cause severe stomach bleeding.",
			"Reye's syndrome: children and teenagers who have or are recovering from chicken pox or flu-like symptoms should not use this product.",
		),
		"ibuprofen": mk(
			[]string{"Advil", "Motrin IB", "Midol", "Nuprin"},
			[]string{"IBUPROFEN", "IBUPROFEN SODIUM", "IBUPROFEN LYSINE", "IBUPROFEN AND FAMOTIDINE"},
			[]string{"Pfizer Consumer Healthcare", "Johnson & Johnson", "Perrigo"},
			"Uses temporarily relieves minor aches and pains due to headache, toothache, backache, menstrual cramps, the common cold, muscular aches and minor pain of arthritis, and temporarily reduces fever.",
			"Heart attack and stroke warning: NSAIDs, except aspirin, increase the risk of heart attack, heart failure, and stroke.",
			"Allergy alert: ibuprofen may cause a severe allergic reaction, especially in people allergic to aspirin.",
		),
		"acetaminophen": mk(
			[]string{"Tylenol"},
			[]string{"ACETAMINOPHEN"},
			[]string{"Kenvue"},
			"Uses temporarily relieves minor aches and pains and temporarily reduces fever.",
			"Skin reactions such as skin reddening, blisters and rash have been reported.",
			"Liver warning: this product contains acetaminophen. Severe liver damage may occur if you take more than the maximum daily amount.",
		),
	}
}

// RecordedRequest captures the headers of one request seen by the server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
}

// FDAServer is a fake OpenFDA MCP server.
type FDAServer struct {
	Labels map[string]Label
	// FailDrugs makes every tool call about these drugs return a protocol
	// error.
	FailDrugs map[string]bool

	mu       sync.Mutex
	requests []RecordedRequest
	server   *mcp.Server
}

// NewFDAServer returns a server preloaded with DefaultLabels.
func NewFDAServer() *FDAServer {
	s := &FDAServer{
		Labels:    DefaultLabels(),
		FailDrugs: map[string]bool{},
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "openfda-mock",
		Version: "1.0.0",
	}, &mcp.ServerOptions{HasResources: true, HasPrompts: true})
	s.register()
	return s
}

// Server returns the underlying MCP server.
func (s *FDAServer) Server() *mcp.Server {
	return s.server
}

// Handler returns an HTTP handler serving the streamable transport. Every
// request is recorded.
func (s *FDAServer) Handler() http.Handler {
	return s.record(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
}

// SSEHandler returns an HTTP handler serving the SSE transport: a GET opens
// the event stream and messages are POSTed to the endpoint it announces.
// Every request is recorded.
func (s *FDAServer) SSEHandler() http.Handler {
	return s.record(mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
}

func (s *FDAServer) record(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		s.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

// Requests returns a copy of the recorded requests.
func (s *FDAServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// StartHTTP serves the fake over httptest for the duration of the test and
// returns the MCP endpoint URL.
func (s *FDAServer) StartHTTP(t testing.TB) string {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/mcp"
}

// StartSSE serves the SSE transport over httptest for the duration of the
// test and returns the event stream URL.
func (s *FDAServer) StartSSE(t testing.TB) string {
	t.Helper()
	ts := httptest.NewServer(s.SSEHandler())
	t.Cleanup(ts.Close)
	return ts.URL + "/sse"
}

func objectSchema(required []string, props map[string]string) map[string]any {
	properties := map[string]any{}
	for name, typ := range props {
		properties[name] = map[string]any{"type": typ}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func (s *FDAServer) register() {
	s.server.AddTool(&mcp.Tool{
		Name:        "search_drug_labels",
		Description: "Search FDA drug labels.\nSupports free-text search.",
		InputSchema: objectSchema([]string{"search"}, map[string]string{"search": "string", "limit": "integer", "skip": "integer"}),
	}, s.labelTool("search", func(l Label) any { return l }))

	s.server.AddTool(&mcp.Tool{
		Name:        "get_drug_adverse_reactions",
		Description: "Adverse reactions section of a drug label.",
		InputSchema: objectSchema([]string{"drug_name"}, map[string]string{"drug_name": "string", "limit": "integer"}),
	}, s.labelTool("drug_name", func(l Label) any {
		return map[string]any{"openfda": l.OpenFDA, "adverse_reactions": l.AdverseReactions}
	}))

	s.server.AddTool(&mcp.Tool{
		Name:        "get_drug_warnings",
		Description: "Warnings section of a drug label.",
		InputSchema: objectSchema([]string{"drug_name"}, map[string]string{"drug_name": "string", "limit": "integer"}),
	}, s.labelTool("drug_name", func(l Label) any {
		return map[string]any{"openfda": l.OpenFDA, "warnings": l.Warnings}
	}))

	s.server.AddTool(&mcp.Tool{
		Name:        "get_drug_indications",
		Description: "Indications and usage section of a drug label.",
		InputSchema: objectSchema([]string{"drug_name"}, map[string]string{"drug_name": "string", "limit": "integer"}),
	}, s.labelTool("drug_name", func(l Label) any {
		return map[string]any{"openfda": l.OpenFDA, "indications_and_usage": l.IndicationsAndUsage}
	}))

	s.server.AddTool(&mcp.Tool{
		Name:        "ae_pipeline_rag",
		Description: "Retrieval-augmented adverse event analysis.",
		InputSchema: objectSchema([]string{"query"}, map[string]string{"query": "string", "drug": "string", "top_k": "integer"}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArgs(req)
		if err != nil {
			return nil, err
		}
		drug, _ := args["drug"].(string)
		query, _ := args["query"].(string)
		if s.FailDrugs[strings.ToLower(drug)] {
			return nil, fmt.Errorf("rag pipeline unavailable for %s", drug)
		}
		text := fmt.Sprintf("Analysis of %q for %s. ", query, drug) +
			strings.Repeat("Reported events include gastrointestinal bleeding and elevated blood pressure. ", 8)
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil
	})

	s.server.AddResource(&mcp.Resource{
		URI:         "fda://datasets/drug-label",
		Name:        "drug-label",
		Description: "OpenFDA drug label dataset",
		MIMEType:    "application/json",
	}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{URI: req.Params.URI, Text: "{}"}}}, nil
	})

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize_label",
		Description: "Summarize a drug label",
		Arguments:   []*mcp.PromptArgument{{Name: "drug_name", Description: "Drug to summarize", Required: true}},
	}, func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Messages: []*mcp.PromptMessage{{Role: "user", Content: &mcp.TextContent{Text: "Summarize the label."}}},
		}, nil
	})
}

func decodeArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	args := map[string]any{}
	if len(req.Params.Arguments) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments json: %w", err)
	}
	return args, nil
}

func (s *FDAServer) labelTool(key string, view func(Label) any) mcp.ToolHandler {
	return func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArgs(req)
		if err != nil {
			return nil, err
		}
		drug, _ := args[key].(string)
		drug = strings.ToLower(drug)
		if s.FailDrugs[drug] {
			return nil, fmt.Errorf("upstream query for %s failed", drug)
		}
		results := []any{}
		if l, ok := s.Labels[drug]; ok {
			results = append(results, view(l))
		}
		body, err := json.Marshal(map[string]any{
			"meta":    map[string]any{"results": map[string]any{"total": len(results)}},
			"results": results,
		})
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}, nil
	}
}
