// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcpany/fdaclient/pkg/health"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/scenario"
	"github.com/mcpany/fdaclient/pkg/synth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

const maxListPages = 100

// Info prints the server identity and capabilities.
func (a *Application) Info(ctx context.Context) error {
	return a.WithSession(ctx, func(_ context.Context, s *Session) error {
		s.Printer.ServerInfo(s.InitializeResult())
		s.Printer.Blank()
		s.Printer.Capabilities(capabilities(s))
		return nil
	})
}

// Tools prints the tool catalog.
func (a *Application) Tools(ctx context.Context) error {
	return a.WithSession(ctx, a.printTools)
}

// Resources prints the resource list. A server without resource support is
// reported, not treated as a failure.
func (a *Application) Resources(ctx context.Context) error {
	return a.WithSession(ctx, a.printResources)
}

// Prompts prints the prompt list. A server without prompt support is
// reported, not treated as a failure.
func (a *Application) Prompts(ctx context.Context) error {
	return a.WithSession(ctx, a.printPrompts)
}

// Explore runs the full demo flow: identity, capabilities, tools, resources,
// prompts and one call with synthesized arguments. tool selects the tool to
// call; empty means the first advertised tool. A failing call is printed and
// does not fail the command.
func (a *Application) Explore(ctx context.Context, tool string) error {
	return a.WithSession(ctx, func(ctx context.Context, s *Session) error {
		s.Printer.Banner("MCP server exploration")
		s.Printer.Printf("Endpoint:  %s\n", a.settings.Endpoint)
		s.Printer.Printf("Transport: %s\n", a.transport)
		s.Printer.Blank()

		s.Printer.ServerInfo(s.InitializeResult())
		s.Printer.Blank()
		s.Printer.Capabilities(capabilities(s))
		s.Printer.Blank()

		if err := a.printTools(ctx, s); err != nil {
			return err
		}
		s.Printer.Blank()
		_ = a.printResources(ctx, s)
		s.Printer.Blank()
		_ = a.printPrompts(ctx, s)
		s.Printer.Blank()

		tools, err := s.Catalog.Tools(ctx)
		if err != nil {
			return err
		}
		if len(tools) == 0 {
			s.Printer.Println("No tools to call.")
			return nil
		}
		name := lo.CoalesceOrEmpty(tool, tools[0].Name)

		if err := a.callTool(ctx, s, name, nil); err != nil {
			s.Printer.Printf("Tool call failed: %v\n", err)
			logging.GetLogger().Warn("Tool call failed", "tool", name, "error", err)
		}
		return nil
	})
}

// Call invokes one tool. rawArgs is a JSON object; when empty the arguments
// are synthesized from the tool's schema.
func (a *Application) Call(ctx context.Context, tool, rawArgs string) error {
	var args synth.ArgumentSet
	if strings.TrimSpace(rawArgs) != "" {
		parsed, err := parseArguments(rawArgs)
		if err != nil {
			return err
		}
		args = parsed
	}
	return a.WithSession(ctx, func(ctx context.Context, s *Session) error {
		return a.callTool(ctx, s, tool, args)
	})
}

// Walkthrough runs the OpenFDA scenarios. Individual failures are printed
// and tallied; the command itself succeeds.
func (a *Application) Walkthrough(ctx context.Context) error {
	return a.WithSession(ctx, func(ctx context.Context, s *Session) error {
		runner := &scenario.Runner{
			Caller:  s,
			Printer: s.Printer,
			Timeout: a.settings.Timeout,
		}
		sum, err := runner.Run(ctx, scenario.OpenFDA())
		if err != nil {
			return err
		}
		log := logging.GetLogger().Info
		if sum.Failed() {
			log = logging.GetLogger().Warn
		}
		log("Walkthrough finished",
			"found", sum.Count(scenario.OutcomeFound),
			"empty", sum.Count(scenario.OutcomeEmpty),
			"failed", sum.Count(scenario.OutcomeFailed))
		return nil
	})
}

// Health checks reachability and the MCP handshake. It fails when any check
// fails.
func (a *Application) Health(ctx context.Context) error {
	checker := health.NewChecker(a.settings.Endpoint, health.ConnectFunc(a.connect), a.settings.Timeout)
	report := checker.Check(ctx)

	a.printer.Section("Health of " + report.Endpoint)
	for _, c := range report.Checks {
		if c.Err != nil {
			a.printer.Printf("  ✗ %-15s %v\n", c.Name, c.Err)
			continue
		}
		a.printer.Printf("  ✓ %-15s %s\n", c.Name, c.Duration.Round(time.Millisecond))
	}
	a.printer.Printf("Status: %s\n", report.Status)
	if !report.Up() {
		return fmt.Errorf("endpoint %s is %s", report.Endpoint, report.Status)
	}
	return nil
}

func (a *Application) printTools(ctx context.Context, s *Session) error {
	reqCtx, cancel := s.RequestContext(ctx)
	defer cancel()
	tools, err := s.Catalog.Tools(reqCtx)
	if err != nil {
		return err
	}
	s.Printer.Section(fmt.Sprintf("Tools (%d)", len(tools)))
	s.Printer.Tools(tools)
	return nil
}

func (a *Application) printResources(ctx context.Context, s *Session) error {
	reqCtx, cancel := s.RequestContext(ctx)
	defer cancel()

	s.Printer.Section("Resources")
	var resources []*mcp.Resource
	params := &mcp.ListResourcesParams{}
	for range maxListPages {
		res, err := s.ListResources(reqCtx, params)
		if err != nil {
			s.Printer.Unsupported("resources", err)
			logging.GetLogger().Debug("Listing resources failed", "error", err)
			return err
		}
		resources = append(resources, res.Resources...)
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListResourcesParams{Cursor: res.NextCursor}
	}
	s.Printer.Resources(resources)
	return nil
}

func (a *Application) printPrompts(ctx context.Context, s *Session) error {
	reqCtx, cancel := s.RequestContext(ctx)
	defer cancel()

	s.Printer.Section("Prompts")
	var prompts []*mcp.Prompt
	params := &mcp.ListPromptsParams{}
	for range maxListPages {
		res, err := s.ListPrompts(reqCtx, params)
		if err != nil {
			s.Printer.Unsupported("prompts", err)
			logging.GetLogger().Debug("Listing prompts failed", "error", err)
			return err
		}
		prompts = append(prompts, res.Prompts...)
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListPromptsParams{Cursor: res.NextCursor}
	}
	s.Printer.Prompts(prompts)
	return nil
}

// callTool looks the tool up, fills in arguments when args is nil, prints
// them, calls the tool and prints the result.
func (a *Application) callTool(ctx context.Context, s *Session, name string, args synth.ArgumentSet) error {
	log := logging.GetLogger().With("tool", name)

	lookupCtx, cancel := s.RequestContext(ctx)
	tool, schema, err := s.Catalog.Lookup(lookupCtx, name)
	cancel()
	if err != nil {
		return err
	}

	if args == nil {
		var origin synth.Origin
		args, origin = a.synth.ForTool(name, schema)
		log.Debug("Synthesized arguments", "origin", origin)
	}
	if err := synth.Validate(tool.InputSchema, args); err != nil {
		log.Warn("Arguments may be rejected by the server", "error", err)
	}

	s.Printer.Section("Calling " + name)
	s.Printer.Arguments(args)
	s.Printer.Blank()

	callCtx, cancel := s.RequestContext(ctx)
	defer cancel()
	res, err := s.CallTool(callCtx, &mcp.CallToolParams{Name: name, Arguments: map[string]any(args)})
	if err != nil {
		return fmt.Errorf("failed to call tool %s: %w", name, err)
	}
	s.Printer.Result(res)
	if res.IsError {
		return fmt.Errorf("%s: %w", name, errToolReported)
	}
	return nil
}

func capabilities(s *Session) *mcp.ServerCapabilities {
	if res := s.InitializeResult(); res != nil {
		return res.Capabilities
	}
	return nil
}

// parseArguments decodes a JSON object, keeping numbers exact.
func parseArguments(raw string) (synth.ArgumentSet, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var args synth.ArgumentSet
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid --args: %w", err)
	}
	if args == nil {
		return nil, errors.New("invalid --args: expected a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid --args: trailing data after the JSON object")
	}
	return args, nil
}
