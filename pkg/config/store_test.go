// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Load(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/b.json", []byte(`{"profiles":[{"name":"b","url":"http://b/mcp","ready_delay":"2s"}]}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/a.yaml", []byte("profiles:\n  - name: a\n    url: http://a/sse\n    transport: sse\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/notes.txt", []byte("ignored"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/empty.yml", nil, 0o644))

	doc, err := NewFileStore(fs, []string{"/cfg"}).Load()
	require.NoError(t, err)

	want := []Profile{
		{Name: "a", URL: "http://a/sse", Transport: "sse"},
		{Name: "b", URL: "http://b/mcp", ReadyDelay: Duration(2 * time.Second)},
	}
	if diff := cmp.Diff(want, doc.Profiles); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/profiles.toml", []byte(""), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/typo.yaml", []byte("profiles:\n  - name: x\n    uri: http://x\n"), 0o644))

	_, err := NewFileStore(fs, []string{"/missing"}).Load()
	assert.ErrorContains(t, err, "failed to stat path")

	_, err = NewFileStore(fs, []string{"/profiles.toml"}).Load()
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = NewFileStore(fs, []string{"/typo.yaml"}).Load()
	require.Error(t, err)
	var ae *ActionableError
	assert.True(t, errors.As(err, &ae), "unknown fields should come with a suggestion")
}

func TestValidateProfiles(t *testing.T) {
	ok := &ProfilesFile{Profiles: []Profile{{Name: "a", URL: "https://a.example.com/sse", Transport: "sse"}}}
	assert.NoError(t, ValidateProfiles(ok))
	assert.NoError(t, ValidateProfiles(nil))

	dup := &ProfilesFile{Profiles: []Profile{{Name: "a", URL: "http://a/sse"}, {Name: "a", URL: "http://b/sse"}}}
	assert.ErrorContains(t, ValidateProfiles(dup), "defined more than once")

	badTransport := &ProfilesFile{Profiles: []Profile{{Name: "a", URL: "http://a/sse", Transport: "grpc"}}}
	assert.ErrorContains(t, ValidateProfiles(badTransport), "Transport")

	noName := &ProfilesFile{Profiles: []Profile{{URL: "http://a/sse"}}}
	assert.ErrorContains(t, ValidateProfiles(noName), "Name")

	twoSources := &ProfilesFile{Profiles: []Profile{{
		Name:   "a",
		URL:    "http://a/sse",
		APIKey: &auth.SecretValue{PlainText: "k", FilePath: "/k"},
	}}}
	assert.ErrorContains(t, ValidateProfiles(twoSources), "api_key")
}

func TestMergeProfiles(t *testing.T) {
	builtin := BuiltinProfiles()
	merged := MergeProfiles(builtin, nil, &ProfilesFile{Profiles: []Profile{{Name: "x", URL: "http://x/sse"}}})
	assert.Len(t, merged, 3)
	assert.Len(t, builtin, 2, "built-in map must not be modified")
	assert.Equal(t, []string{"fda-streamable", "openfda-sse", "x"}, ProfileNames(merged))
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Std())

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	assert.Error(t, d.UnmarshalJSON([]byte(`5`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`"-1s"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
}

func TestWrapActionableError(t *testing.T) {
	assert.Nil(t, WrapActionableError("ctx", nil))

	plain := WrapActionableError("ctx", errors.New("boom"))
	var ae *ActionableError
	assert.False(t, errors.As(plain, &ae))
	assert.EqualError(t, plain, "ctx: boom")

	wrapped := WrapActionableError("ctx", &ActionableError{Err: errors.New("boom"), Suggestion: "fix it"})
	require.True(t, errors.As(wrapped, &ae))
	assert.Equal(t, "fix it", ae.Suggestion)
	assert.Contains(t, wrapped.Error(), "-> Fix: fix it")
}

func TestWrapActionableError_SingleFixLine(t *testing.T) {
	cause := &ActionableError{Err: errors.New("profile not found"), Suggestion: "run with --profile default"}
	wrapped := WrapActionableError("load config", WrapActionableError("read profiles", cause))

	assert.Equal(t, 1, strings.Count(wrapped.Error(), "-> Fix:"))
	assert.Equal(t, "load config: read profiles: profile not found\n\t-> Fix: run with --profile default", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause.Err)
}
