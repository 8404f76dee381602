package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"mdit/internal/chat"
	"mdit/internal/provider"
	"mdit/internal/tools"
)

// DefaultMaxSteps bounds one agent run. The step budget is the only
// cancellation mechanism the loop itself applies; callers may additionally
// cancel the context.
const DefaultMaxSteps = 64

// ToolResult is one executed tool call within a step.
type ToolResult struct {
	CallID    string
	Name      string
	Arguments string
	Output    string
}

// Step is one assistant turn with its executed tool calls, in call order.
type Step struct {
	Content     string
	ToolResults []ToolResult
}

// RunRequest describes one agent run.
type RunRequest struct {
	SystemPrompt string
	UserPrompt   string
	Registry     *tools.Registry
	// FinishTool names the tool whose successful result stops the loop.
	FinishTool string
}

// Config shapes a Driver.
type Config struct {
	MaxSteps int
	Logger   *slog.Logger
}

// Driver runs the cooperative tool-calling loop: one provider call per step,
// one tool call executed at a time, stop on a successful finish result or
// when the step budget runs out. It does not enforce batch invariants; the
// caller re-checks the returned steps.
type Driver struct {
	provider provider.Provider
	maxSteps int
	log      *slog.Logger
	tok      *Tokenizer
}

func NewDriver(p provider.Provider, cfg Config) *Driver {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		provider: p,
		maxSteps: maxSteps,
		log:      log,
		tok:      NewTokenizerForModel(p.CurrentModel()),
	}
}

// Run executes the loop and returns the ordered steps. A nil error does not
// mean the batch finished; the step budget may simply be exhausted.
func (d *Driver) Run(ctx context.Context, req RunRequest) ([]Step, error) {
	messages := []chat.Message{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserPrompt},
	}
	defs := req.Registry.Definitions()
	steps := make([]Step, 0, 8)

	for step := 0; step < d.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		d.log.Debug("agent step",
			"step", step,
			"prompt_tokens", d.tok.Count(messages),
			"messages", len(messages))

		resp, err := d.provider.Chat(ctx, provider.ChatRequest{
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return steps, fmt.Errorf("provider chat: %w", err)
		}

		messages = append(messages, chat.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		st := Step{Content: resp.Content}

		if len(resp.ToolCalls) == 0 {
			steps = append(steps, st)
			// The model stopped talking instead of finishing. Remind it once
			// per occurrence; the step budget still bounds the run.
			messages = append(messages, chat.Message{
				Role:    "user",
				Content: fmt.Sprintf("Continue with the tools. Call %s when every target is handled.", req.FinishTool),
			})
			continue
		}

		finished := false
		for _, call := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return steps, err
			}
			name := call.Function.Name
			out, err := req.Registry.Execute(ctx, name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				// Precondition violations abort the run; per-target failures
				// are reported inside tool output, not as errors.
				return steps, fmt.Errorf("tool %s: %w", name, err)
			}
			messages = append(messages, chat.Message{
				Role:       "tool",
				Name:       name,
				ToolCallID: call.ID,
				Content:    out,
			})
			st.ToolResults = append(st.ToolResults, ToolResult{
				CallID:    call.ID,
				Name:      name,
				Arguments: call.Function.Arguments,
				Output:    out,
			})
			if name == req.FinishTool && FinishReported(out) {
				finished = true
			}
		}
		steps = append(steps, st)
		if finished {
			return steps, nil
		}
	}
	d.log.Warn("agent step budget exhausted", "max_steps", d.maxSteps)
	return steps, nil
}

// FinishReported parses a finish tool output and reports whether it declared
// success. Used by the loop's stop condition and re-checked independently by
// batch finalizers.
func FinishReported(output string) bool {
	var res struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		return false
	}
	return res.Success
}

// FinishSucceeded scans completed steps for a successful result of the named
// finish tool.
func FinishSucceeded(steps []Step, finishTool string) bool {
	for _, st := range steps {
		for _, tr := range st.ToolResults {
			if tr.Name == finishTool && FinishReported(tr.Output) {
				return true
			}
		}
	}
	return false
}
