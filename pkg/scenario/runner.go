// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/render"
	"github.com/mcpany/fdaclient/pkg/synth"
	"github.com/mcpany/fdaclient/pkg/util"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Caller invokes a remote tool.
type Caller interface {
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
}

// Outcome classifies how one step ended.
type Outcome string

const (
	// OutcomeFound means the payload held data and it was printed.
	OutcomeFound Outcome = "found"
	// OutcomeEmpty means the call succeeded but there was nothing to show.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means the call or the payload decoding failed.
	OutcomeFailed Outcome = "failed"
)

// StepResult records one scenario or one batch subject.
type StepResult struct {
	Title   string
	Outcome Outcome
	Err     error
}

// Summary tallies a run.
type Summary struct {
	Steps []StepResult
}

// Count returns how many steps ended with o.
func (s Summary) Count(o Outcome) int {
	n := 0
	for _, st := range s.Steps {
		if st.Outcome == o {
			n++
		}
	}
	return n
}

// Failed reports whether any step failed.
func (s Summary) Failed() bool {
	return s.Count(OutcomeFailed) > 0
}

// ErrEmptyPayload is returned when a call produced no text content.
var ErrEmptyPayload = errors.New("no text content in result")

// ToolError carries the message of a result flagged isError.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s reported an error: %s", e.Tool, e.Message)
}

// Runner executes plans.
type Runner struct {
	Caller  Caller
	Printer *render.Printer
	// Timeout bounds each call. Zero leaves only the parent context.
	Timeout time.Duration
}

// Run executes every scenario then every batch. It returns an error only
// when the plan itself is invalid; call failures are recorded in the summary.
func (r *Runner) Run(ctx context.Context, plan Plan) (Summary, error) {
	var sum Summary
	if err := plan.Validate(); err != nil {
		return sum, err
	}

	if plan.Title != "" {
		r.Printer.Banner(plan.Title)
	}
	for _, s := range plan.Scenarios {
		sum.Steps = append(sum.Steps, r.runScenario(ctx, s))
	}
	for _, b := range plan.Batches {
		sum.Steps = append(sum.Steps, r.runBatch(ctx, b)...)
	}

	r.Printer.Printf("Done: %d found, %d empty, %d failed.\n",
		sum.Count(OutcomeFound), sum.Count(OutcomeEmpty), sum.Count(OutcomeFailed))
	return sum, nil
}

func (r *Runner) runScenario(ctx context.Context, s Scenario) StepResult {
	p := r.Printer
	p.Section(s.Title)
	defer p.Blank()

	step := StepResult{Title: s.Title}
	text, err := r.call(ctx, s.Tool, s.Arguments)
	if errors.Is(err, ErrEmptyPayload) {
		p.Println("   no information found")
		step.Outcome = OutcomeEmpty
		return step
	}
	if err != nil {
		logging.GetLogger().Warn("Scenario call failed", "scenario", s.Title, "tool", s.Tool, "error", err)
		p.Printf("   query failed: %v\n", err)
		step.Outcome, step.Err = OutcomeFailed, err
		return step
	}

	if s.Raw {
		out, cut := render.Truncate(text, s.RawMaxLength)
		p.Println("   Result:")
		p.Printf("   %s%s\n", out, ellipsis(cut))
		if cut {
			p.Printf("   (full result has %d characters)\n", render.RuneLen(text))
		}
		step.Outcome = OutcomeFound
		return step
	}

	doc, ok := decode(text)
	if !ok {
		p.Println("   nothing to show (payload is not JSON)")
		step.Outcome = OutcomeEmpty
		return step
	}
	found, err := truthy(ctx, foundQuery(s.Found), doc)
	if err != nil {
		p.Printf("   query failed: %v\n", err)
		step.Outcome, step.Err = OutcomeFailed, err
		return step
	}
	if !found {
		p.Println("   no information found")
		step.Outcome = OutcomeEmpty
		return step
	}

	p.Println("   Found:")
	for _, f := range s.Fields {
		value, err := r.field(ctx, f, doc)
		if err != nil {
			p.Printf("   %s: (query failed: %v)\n", f.Label, err)
			continue
		}
		switch {
		case value != "":
			p.Printf("   %s: %s\n", f.Label, value)
		case f.Missing != "":
			p.Printf("   %s\n", f.Missing)
		}
	}
	step.Outcome = OutcomeFound
	return step
}

func (r *Runner) runBatch(ctx context.Context, b Batch) []StepResult {
	p := r.Printer
	p.Section(b.Title)
	defer p.Blank()

	steps := make([]StepResult, 0, len(b.Subjects))
	for _, subject := range b.Subjects {
		args := synth.ArgumentSet{}
		maps.Copy(args, b.Arguments)
		args[b.SubjectKey] = subject

		step := StepResult{Title: b.Title + ": " + subject}
		label := util.Capitalize(subject)

		text, err := r.call(ctx, b.Tool, args)
		if errors.Is(err, ErrEmptyPayload) {
			p.Printf("   • %s: (not found)\n", label)
			step.Outcome = OutcomeEmpty
			steps = append(steps, step)
			continue
		}
		if err != nil {
			logging.GetLogger().Warn("Batch call failed", "tool", b.Tool, "subject", subject, "error", err)
			p.Printf("   • %s: (query failed)\n", label)
			step.Outcome, step.Err = OutcomeFailed, err
			steps = append(steps, step)
			continue
		}

		doc, ok := decode(text)
		found := false
		if ok {
			found, err = truthy(ctx, foundQuery(b.Found), doc)
		}
		if err != nil || !found {
			p.Printf("   • %s: (not found)\n", label)
			step.Outcome = OutcomeEmpty
			steps = append(steps, step)
			continue
		}

		value, err := r.field(ctx, b.Field, doc)
		if err != nil || value == "" {
			value = b.Field.Missing
		}
		p.Printf("   • %s: %s\n", label, value)
		step.Outcome = OutcomeFound
		steps = append(steps, step)
	}
	return steps
}

// call invokes tool and returns the text of the first content part.
func (r *Runner) call(ctx context.Context, tool string, args synth.ArgumentSet) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	res, err := r.Caller.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: map[string]any(args)})
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Content) == 0 {
		return "", ErrEmptyPayload
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok || tc.Text == "" {
		if res.IsError {
			return "", &ToolError{Tool: tool}
		}
		return "", ErrEmptyPayload
	}
	if res.IsError {
		return "", &ToolError{Tool: tool, Message: tc.Text}
	}
	return tc.Text, nil
}

func (r *Runner) field(ctx context.Context, f Field, doc any) (string, error) {
	vals, err := evalQuery(ctx, f.Query, doc)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", nil
	}
	s := stringify(vals[0])
	out, cut := render.Truncate(s, f.MaxLength)
	return out + ellipsis(cut), nil
}

func decode(text string) (any, bool) {
	if !render.IsJSON(text) {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

func ellipsis(cut bool) string {
	if cut {
		return "..."
	}
	return ""
}
