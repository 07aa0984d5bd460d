// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Engine defines the interface for configuration unmarshaling from different
// file formats.
type Engine interface {
	// Unmarshal parses the given byte slice into v.
	Unmarshal(b []byte, v any) error
}

// NewEngine returns a configuration engine capable of unmarshaling the format
// indicated by the file extension of the given path. It supports .json,
// .yaml and .yml.
func NewEngine(path string) (Engine, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return &jsonEngine{}, nil
	case ".yaml", ".yml":
		return &yamlEngine{}, nil
	default:
		return nil, fmt.Errorf("unsupported config file extension '%s' for file %s", ext, path)
	}
}

type yamlEngine struct{}

// Unmarshal parses YAML, rejecting unknown fields.
func (e *yamlEngine) Unmarshal(b []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return nil
}

type jsonEngine struct{}

// Unmarshal parses JSON, rejecting unknown fields.
func (e *jsonEngine) Unmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// Store loads profile documents.
type Store interface {
	Load() (*ProfilesFile, error)
}

// FileStore implements Store for one or more files or directories on a
// filesystem.
type FileStore struct {
	fs    afero.Fs
	paths []string
}

// NewFileStore creates a FileStore reading paths from fs.
func NewFileStore(fs afero.Fs, paths []string) *FileStore {
	return &FileStore{fs: fs, paths: paths}
}

// Load reads every supported file under the configured paths in lexical
// order and concatenates their profiles. Later files win on name clashes when
// the result is merged with MergeProfiles.
func (s *FileStore) Load() (*ProfilesFile, error) {
	merged := &ProfilesFile{}

	filePaths, err := s.collectFilePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to collect config file paths: %w", err)
	}

	for _, path := range filePaths {
		b, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}

		engine, err := NewEngine(path)
		if err != nil {
			return nil, err
		}

		var doc ProfilesFile
		if err := engine.Unmarshal(b, &doc); err != nil {
			return nil, &ActionableError{
				Err:        fmt.Errorf("failed to unmarshal config from %s: %w", path, err),
				Suggestion: "profile files hold a top-level 'profiles' list; check field names and indentation",
			}
		}
		merged.Profiles = append(merged.Profiles, doc.Profiles...)
	}

	return merged, nil
}

// collectFilePaths recursively scans the configured paths and returns the
// supported config files.
func (s *FileStore) collectFilePaths() ([]string, error) {
	var files []string
	for _, path := range s.paths {
		info, err := s.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			err := afero.Walk(s.fs, path, func(p string, fi os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !fi.IsDir() {
					if _, err := NewEngine(p); err == nil {
						files = append(files, p)
					}
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
			}
		} else {
			if _, err := NewEngine(path); err != nil {
				return nil, err
			}
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
