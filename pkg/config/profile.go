// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"sort"
	"time"

	"github.com/mcpany/fdaclient/pkg/auth"
	"github.com/samber/lo"
)

const (
	// ProfileOpenFDASSE is the public OpenFDA server reached over SSE.
	ProfileOpenFDASSE = "openfda-sse"
	// ProfileFDAStreamable is the FDA server reached over streamable HTTP.
	ProfileFDAStreamable = "fda-streamable"
	// DefaultProfile is used when no profile or URL is given.
	DefaultProfile = ProfileOpenFDASSE
)

// Profile names a remote server and how to reach it.
type Profile struct {
	Name           string            `json:"name" yaml:"name" validate:"required"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	URL            string            `json:"url" yaml:"url" validate:"required,url,startswith=http"`
	Transport      string            `json:"transport,omitempty" yaml:"transport,omitempty" validate:"omitempty,oneof=sse streamable streamable-http http"`
	APIKey         *auth.SecretValue `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	UserCode       *auth.SecretValue `json:"user_code,omitempty" yaml:"user_code,omitempty"`
	APIKeyHeader   string            `json:"api_key_header,omitempty" yaml:"api_key_header,omitempty"`
	UserCodeHeader string            `json:"user_code_header,omitempty" yaml:"user_code_header,omitempty"`
	// ReadyDelay is waited after connecting and before the first request.
	ReadyDelay Duration `json:"ready_delay,omitempty" yaml:"ready_delay,omitempty"`
}

// ProfilesFile is the document format of profile files.
type ProfilesFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles" validate:"dive"`
}

// BuiltinProfiles returns the profiles compiled into the binary. They carry
// no credentials; keys come from flags, the environment or a profile file.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileOpenFDASSE: {
			Name:        ProfileOpenFDASSE,
			Description: "OpenFDA drug database over server-sent events",
			URL:         "http://openfda.mcp.kaleido.guru/sse",
			Transport:   "sse",
		},
		ProfileFDAStreamable: {
			Name:        ProfileFDAStreamable,
			Description: "FDA drug database over streamable HTTP",
			URL:         "http://fda.sitmcp.kaleido.guru/mcp",
			Transport:   "streamable",
			ReadyDelay:  Duration(3 * time.Second),
		},
	}
}

// MergeProfiles overlays file profiles on the built-in ones. Later entries
// replace earlier entries with the same name.
func MergeProfiles(builtin map[string]Profile, files ...*ProfilesFile) map[string]Profile {
	merged := lo.Assign(builtin)
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, p := range f.Profiles {
			merged[p.Name] = p
		}
	}
	return merged
}

// ProfileNames returns the names of profiles in lexical order.
func ProfileNames(profiles map[string]Profile) []string {
	names := lo.Keys(profiles)
	sort.Strings(names)
	return names
}
