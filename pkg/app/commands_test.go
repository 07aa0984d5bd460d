// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/testutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFakeApp(t *testing.T, fda *testutil.FDAServer) (*Application, *bytes.Buffer) {
	t.Helper()
	settings := testSettings(fda.StartHTTP(t))
	settings.Credentials = auth.Credentials{
		APIKey:   &auth.SecretValue{PlainText: "test-key"},
		UserCode: &auth.SecretValue{PlainText: "test-user"},
	}
	var out bytes.Buffer
	a, err := NewApplication(settings, &out)
	require.NoError(t, err)
	return a, &out
}

func TestInfo(t *testing.T) {
	fda := testutil.NewFDAServer()
	a, out := newFakeApp(t, fda)

	require.NoError(t, a.Info(context.Background()))
	assert.Contains(t, out.String(), "Name: openfda-mock")
	assert.Contains(t, out.String(), "✓ tools")

	reqs := fda.Requests()
	require.NotEmpty(t, reqs)
	for _, r := range reqs {
		assert.Equal(t, "test-key", r.Header.Get(auth.DefaultAPIKeyHeader), "%s %s", r.Method, r.Path)
		assert.Equal(t, "test-user", r.Header.Get(auth.DefaultUserCodeHeader), "%s %s", r.Method, r.Path)
	}
}

func TestListings(t *testing.T) {
	a, out := newFakeApp(t, testutil.NewFDAServer())
	ctx := context.Background()

	require.NoError(t, a.Tools(ctx))
	assert.Contains(t, out.String(), "Tool: search_drug_labels")
	assert.Contains(t, out.String(), "search (string) [required]")

	out.Reset()
	require.NoError(t, a.Resources(ctx))
	assert.Contains(t, out.String(), "URI: fda://datasets/drug-label")

	out.Reset()
	require.NoError(t, a.Prompts(ctx))
	assert.Contains(t, out.String(), "Name: summarize_label")
	assert.Contains(t, out.String(), "drug_name [required]")
}

func TestTools_MaxDescriptionLines(t *testing.T) {
	settings := testSettings(testutil.NewFDAServer().StartHTTP(t))
	settings.MaxDescriptionLines = 1
	var out bytes.Buffer
	a, err := NewApplication(settings, &out)
	require.NoError(t, err)

	require.NoError(t, a.Tools(context.Background()))
	assert.Contains(t, out.String(), "Search FDA drug labels.")
	assert.NotContains(t, out.String(), "Supports free-text search.")
}

func TestCatalogFollowsToolListChanges(t *testing.T) {
	fda := testutil.NewFDAServer()
	a, _ := newFakeApp(t, fda)

	err := a.WithSession(context.Background(), func(ctx context.Context, s *Session) error {
		tools, err := s.Catalog.Tools(ctx)
		require.NoError(t, err)
		before := len(tools)

		fda.Server().AddTool(&mcp.Tool{
			Name:        "get_drug_recalls",
			InputSchema: map[string]any{"type": "object"},
		}, func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{}, nil
		})

		assert.Eventually(t, func() bool {
			tools, err := s.Catalog.Tools(ctx)
			return err == nil && len(tools) == before+1
		}, 5*time.Second, 20*time.Millisecond)
		return nil
	})
	require.NoError(t, err)
}

func TestExplore(t *testing.T) {
	a, out := newFakeApp(t, testutil.NewFDAServer())

	require.NoError(t, a.Explore(context.Background(), "get_drug_warnings"))
	got := out.String()
	assert.Contains(t, got, "MCP server exploration")
	assert.Contains(t, got, "Tool: get_drug_indications")
	assert.Contains(t, got, "fda://datasets/drug-label")
	assert.Contains(t, got, "summarize_label")
	assert.Contains(t, got, "Calling get_drug_warnings")
	assert.Contains(t, got, `"drug_name": "aspirin"`)
	assert.Contains(t, got, "Reye")
}

func TestExplore_FailedCallDoesNotFail(t *testing.T) {
	fda := testutil.NewFDAServer()
	fda.FailDrugs["aspirin"] = true
	a, out := newFakeApp(t, fda)

	require.NoError(t, a.Explore(context.Background(), "get_drug_warnings"))
	assert.Contains(t, out.String(), "Calling get_drug_warnings")
}

func TestExplore_ToleratesMissingResourcesAndPrompts(t *testing.T) {
	sess := new(MockClientSession)
	sess.On("InitializeResult").Return(&mcp.InitializeResult{
		ServerInfo:   &mcp.Implementation{Name: "bare", Version: "0.1"},
		Capabilities: &mcp.ServerCapabilities{Tools: &mcp.ToolCapabilities{}},
	})
	sess.On("ListTools", mock.Anything, mock.Anything).Return(&mcp.ListToolsResult{
		Tools: []*mcp.Tool{{Name: "echo", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
			"required":   []string{"text"},
		}}},
	}, nil)
	sess.On("ListResources", mock.Anything, mock.Anything).Return(nil, errors.New("Method not found"))
	sess.On("ListPrompts", mock.Anything, mock.Anything).Return(nil, errors.New("Method not found"))
	sess.On("CallTool", mock.Anything, mock.MatchedBy(func(p *mcp.CallToolParams) bool {
		args, ok := p.Arguments.(map[string]any)
		return ok && p.Name == "echo" && args["text"] == "example text"
	})).Return(&mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "example text"}}}, nil)
	sess.On("Close").Return(nil)

	a, out := newMockApp(t, testSettings("http://localhost/mcp"), sess)
	require.NoError(t, a.Explore(context.Background(), ""))

	got := out.String()
	assert.Contains(t, got, "server does not support resources")
	assert.Contains(t, got, "server does not support prompts")
	assert.Contains(t, got, "Calling echo")
	sess.AssertExpectations(t)
}

func TestCall(t *testing.T) {
	t.Run("explicit arguments", func(t *testing.T) {
		a, out := newFakeApp(t, testutil.NewFDAServer())
		require.NoError(t, a.Call(context.Background(), "get_drug_indications", `{"drug_name": "ibuprofen", "limit": 1}`))
		assert.Contains(t, out.String(), "Advil")
	})

	t.Run("synthesized arguments", func(t *testing.T) {
		a, out := newFakeApp(t, testutil.NewFDAServer())
		require.NoError(t, a.Call(context.Background(), "search_drug_labels", ""))
		assert.Contains(t, out.String(), `"search": "aspirin"`)
		assert.Contains(t, out.String(), "Bayer Aspirin")
	})

	t.Run("unknown tool", func(t *testing.T) {
		a, _ := newFakeApp(t, testutil.NewFDAServer())
		err := a.Call(context.Background(), "no_such_tool", "")
		assert.ErrorContains(t, err, "no_such_tool")
	})

	t.Run("server failure", func(t *testing.T) {
		fda := testutil.NewFDAServer()
		fda.FailDrugs["aspirin"] = true
		a, _ := newFakeApp(t, fda)
		assert.Error(t, a.Call(context.Background(), "get_drug_warnings", `{"drug_name": "aspirin"}`))
	})

	t.Run("bad arguments never connect", func(t *testing.T) {
		sess := new(MockClientSession)
		a, _ := newMockApp(t, testSettings("http://localhost/mcp"), sess)
		assert.Error(t, a.Call(context.Background(), "echo", "[1]"))
		sess.AssertNotCalled(t, "Close")
	})
}

func TestCall_OverSSE(t *testing.T) {
	fda := testutil.NewFDAServer()
	settings := testSettings(fda.StartSSE(t))
	settings.Transport = "sse"
	settings.Timeout = 300 * time.Millisecond
	settings.ReadyDelay = 600 * time.Millisecond
	settings.Credentials = auth.Credentials{
		APIKey:   &auth.SecretValue{PlainText: "test-key"},
		UserCode: &auth.SecretValue{PlainText: "test-user"},
	}
	var out bytes.Buffer
	a, err := NewApplication(settings, &out)
	require.NoError(t, err)

	require.NoError(t, a.Call(context.Background(), "search_drug_labels", ""))
	assert.Contains(t, out.String(), "Server ready.")
	assert.Contains(t, out.String(), "Bayer Aspirin")

	reqs := fda.Requests()
	methods := map[string]bool{}
	for _, r := range reqs {
		methods[r.Method] = true
		assert.Equal(t, "test-key", r.Header.Get(auth.DefaultAPIKeyHeader), "%s %s", r.Method, r.Path)
		assert.Equal(t, "test-user", r.Header.Get(auth.DefaultUserCodeHeader), "%s %s", r.Method, r.Path)
	}
	assert.True(t, methods[http.MethodGet], "event stream request missing")
	assert.True(t, methods[http.MethodPost], "message requests missing")
}

func TestWalkthrough(t *testing.T) {
	logging.ForTestsOnlyResetLogger()
	t.Cleanup(logging.ForTestsOnlyResetLogger)
	var logs bytes.Buffer
	logging.Init(slog.LevelInfo, &logs)

	fda := testutil.NewFDAServer()
	fda.FailDrugs["acetaminophen"] = true
	a, out := newFakeApp(t, fda)

	require.NoError(t, a.Walkthrough(context.Background()))
	got := out.String()
	assert.Contains(t, got, "Advil")
	assert.Contains(t, got, "(not found)")
	assert.Contains(t, got, "Done:")
	assert.Contains(t, got, "1 failed")
	assert.Contains(t, logs.String(), "level=WARN msg=\"Walkthrough finished\"")
}

func TestWalkthrough_NoFailuresLogsInfo(t *testing.T) {
	logging.ForTestsOnlyResetLogger()
	t.Cleanup(logging.ForTestsOnlyResetLogger)
	var logs bytes.Buffer
	logging.Init(slog.LevelInfo, &logs)

	a, _ := newFakeApp(t, testutil.NewFDAServer())

	require.NoError(t, a.Walkthrough(context.Background()))
	assert.Contains(t, logs.String(), "level=INFO msg=\"Walkthrough finished\"")
	assert.Contains(t, logs.String(), "failed=0")
}

func TestHealth(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		a, out := newFakeApp(t, testutil.NewFDAServer())
		require.NoError(t, a.Health(context.Background()))
		assert.Contains(t, out.String(), "✓ reachability")
		assert.Contains(t, out.String(), "✓ mcp-handshake")
	})

	t.Run("down", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().String()
		require.NoError(t, l.Close())

		settings := testSettings("http://" + addr + "/mcp")
		var out bytes.Buffer
		a, err := NewApplication(settings, &out)
		require.NoError(t, err)

		assert.Error(t, a.Health(context.Background()))
		assert.Contains(t, out.String(), "✗ reachability")
	})
}
