// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package render prints what a remote MCP server offers and returns in a
// human-readable console layout. All truncation goes through one utility
// parameterized by Options.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcpany/fdaclient/pkg/catalog"
	"github.com/mcpany/fdaclient/pkg/util"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

const ruleWidth = 70

// Options bounds how much of each payload is printed.
type Options struct {
	// MaxTextLength caps plain text content, in runes.
	MaxTextLength int
	// MaxJSONLength caps pretty-printed JSON content, in runes.
	MaxJSONLength int
	// MaxDescriptionLines caps multi-line descriptions; zero prints all.
	MaxDescriptionLines int
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxTextLength: 500,
		MaxJSONLength: 1000,
	}
}

// Printer writes console output.
type Printer struct {
	out  io.Writer
	opts Options
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, opts Options) *Printer {
	return &Printer{out: out, opts: opts}
}

// Options returns the printer's limits.
func (p *Printer) Options() Options {
	return p.opts
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) println(s string) {
	_, _ = io.WriteString(p.out, s+"\n")
}

// Println writes one line.
func (p *Printer) Println(s string) {
	p.println(s)
}

// Printf writes formatted text.
func (p *Printer) Printf(format string, args ...any) {
	p.printf(format, args...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	p.println("")
}

// Banner prints a title framed by double rules.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.println(rule)
	p.println(title)
	p.println(rule)
	p.Blank()
}

// Section prints a heading followed by a single rule.
func (p *Printer) Section(title string) {
	p.println(title)
	p.println(strings.Repeat("-", ruleWidth))
}

// ServerInfo prints the server identity from the handshake.
func (p *Printer) ServerInfo(res *mcp.InitializeResult) {
	p.println("Server info:")
	if res == nil || res.ServerInfo == nil {
		p.println("   (server did not identify itself)")
		return
	}
	p.printf("   Name: %s\n", res.ServerInfo.Name)
	p.printf("   Version: %s\n", lo.CoalesceOrEmpty(res.ServerInfo.Version, "unknown"))
	p.printf("   Protocol version: %s\n", lo.CoalesceOrEmpty(res.ProtocolVersion, "unknown"))
}

// Capabilities prints which features the server advertises.
func (p *Printer) Capabilities(caps *mcp.ServerCapabilities) {
	p.println("Server capabilities:")
	if caps == nil {
		p.println("   (none advertised)")
		return
	}
	supported := []struct {
		on   bool
		name string
	}{
		{caps.Tools != nil, "tools"},
		{caps.Resources != nil, "resources"},
		{caps.Prompts != nil, "prompts"},
		{caps.Logging != nil, "logging"},
		{caps.Completions != nil, "completions"},
	}
	shown := false
	for _, c := range supported {
		if c.on {
			p.printf("   ✓ %s\n", c.name)
			shown = true
		}
	}
	if !shown {
		p.println("   (none advertised)")
	}
}

// Tools prints the tool catalog with each tool's parameters.
func (p *Printer) Tools(tools []*mcp.Tool) {
	if len(tools) == 0 {
		p.println("   (no tools available)")
		return
	}
	for i, t := range tools {
		if t == nil {
			continue
		}
		p.printf("\n%d. Tool: %s\n", i+1, t.Name)
		p.description("   Description: ", "                ", t.Description)

		schema, err := catalog.ParseInputSchema(t.InputSchema)
		if err != nil {
			p.printf("   Parameters: (unreadable schema: %v)\n", err)
			continue
		}
		params := schema.Parameters()
		if len(params) == 0 {
			continue
		}
		p.println("   Parameters:")
		for _, prm := range params {
			p.printf("     • %s (%s) %s\n", prm.Name, prm.DisplayType(), lo.Ternary(prm.Required, "[required]", "[optional]"))
			p.description("       ", "       ", prm.Description)
		}
	}
}

// Resources prints the resource list.
func (p *Printer) Resources(resources []*mcp.Resource) {
	if len(resources) == 0 {
		p.println("   (no resources available)")
		return
	}
	for i, r := range resources {
		if r == nil {
			continue
		}
		p.printf("%d. URI: %s\n", i+1, r.URI)
		if r.Name != "" {
			p.printf("   Name: %s\n", r.Name)
		}
		if r.Description != "" {
			p.description("   Description: ", "                ", r.Description)
		}
		if r.MIMEType != "" {
			p.printf("   MIME type: %s\n", r.MIMEType)
		}
	}
}

// Prompts prints the prompt list with argument requirements.
func (p *Printer) Prompts(prompts []*mcp.Prompt) {
	if len(prompts) == 0 {
		p.println("   (no prompts available)")
		return
	}
	for i, pr := range prompts {
		if pr == nil {
			continue
		}
		p.printf("%d. Name: %s\n", i+1, pr.Name)
		if pr.Description != "" {
			p.description("   Description: ", "                ", pr.Description)
		}
		if len(pr.Arguments) == 0 {
			continue
		}
		p.println("   Arguments:")
		for _, a := range pr.Arguments {
			if a == nil {
				continue
			}
			p.printf("     • %s %s\n", a.Name, lo.Ternary(a.Required, "[required]", "[optional]"))
			p.description("       ", "       ", a.Description)
		}
	}
}

// Unsupported prints the tolerated failure of an optional listing.
func (p *Printer) Unsupported(feature string, err error) {
	p.printf("   (server does not support %s or the request failed: %v)\n", feature, err)
}

// Arguments prints call arguments as indented JSON.
func (p *Printer) Arguments(args map[string]any) {
	if args == nil {
		args = map[string]any{}
	}
	s, err := MarshalPretty(args)
	if err != nil {
		p.printf("Arguments: (unprintable: %v)\n", err)
		return
	}
	p.printf("Arguments: %s\n", s)
}

// Result prints every content part of a tool result.
func (p *Printer) Result(res *mcp.CallToolResult) {
	if res == nil || len(res.Content) == 0 {
		if res != nil && res.StructuredContent != nil {
			p.println("\nStructured content (JSON):")
			if s, err := MarshalPretty(res.StructuredContent); err == nil {
				p.JSON(s)
				return
			}
		}
		p.println("   (empty result)")
		return
	}
	if res.IsError {
		p.println("   ! the tool reported an error")
	}
	for i, c := range res.Content {
		p.content(i+1, c)
	}
}

func (p *Printer) content(idx int, c mcp.Content) {
	switch v := c.(type) {
	case *mcp.TextContent:
		if IsJSON(v.Text) {
			p.printf("\nContent %d (JSON):\n", idx)
			p.JSON(PrettyJSON(v.Text))
			return
		}
		p.printf("\nContent %d (text):\n", idx)
		p.Text(v.Text)
	case *mcp.ImageContent:
		p.printf("\nContent %d (image): %s, %d bytes\n", idx, v.MIMEType, len(v.Data))
	case *mcp.AudioContent:
		p.printf("\nContent %d (audio): %s, %d bytes\n", idx, v.MIMEType, len(v.Data))
	case *mcp.ResourceLink:
		p.printf("\nContent %d (resource link): %s\n", idx, v.URI)
	case *mcp.EmbeddedResource:
		uri := ""
		if v.Resource != nil {
			uri = v.Resource.URI
		}
		p.printf("\nContent %d (embedded resource): %s\n", idx, uri)
		if v.Resource != nil && v.Resource.Text != "" {
			p.Text(v.Resource.Text)
		}
	default:
		p.printf("\nContent %d (%T): nothing to show\n", idx, c)
	}
}

// JSON prints an already formatted JSON document, truncated at
// MaxJSONLength.
func (p *Printer) JSON(s string) {
	out, cut := Truncate(s, p.opts.MaxJSONLength)
	p.println(out)
	if cut {
		p.println("... (result truncated)")
	}
}

// Text prints plain text, truncated at MaxTextLength with the full length
// reported.
func (p *Printer) Text(s string) {
	out, cut := Truncate(s, p.opts.MaxTextLength)
	p.println(out)
	if cut {
		p.printf("... (result too long, truncated; full result has %d characters)\n", RuneLen(s))
	}
}

// description prints a possibly multi-line description, first line after
// firstPrefix and the rest after restPrefix. Blank lines are skipped.
func (p *Printer) description(firstPrefix, restPrefix, desc string) {
	lines := util.SplitLines(desc)
	if len(lines) == 0 {
		return
	}
	if limit := p.opts.MaxDescriptionLines; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit:limit], "...")
	}
	p.println(firstPrefix + lines[0])
	for _, l := range lines[1:] {
		p.println(restPrefix + l)
	}
}
