// Package agent abstracts the execution backend that turns a rendered prompt
// into an actual tool call. Calibration only observes success, failure and
// duration; the model and its reasoning policy are a black box.
package agent

import (
	"context"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/promptcal", "agent")

// Runner executes one rendered prompt with a capped step budget and returns
// the agent's final output. Every call runs in a freshly isolated session:
// no conversational or memory state is shared between calls, so a failed
// attempt cannot contaminate the next one.
type Runner interface {
	Run(ctx context.Context, prompt string, maxSteps int) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, prompt string, maxSteps int) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, prompt string, maxSteps int) (string, error) {
	return f(ctx, prompt, maxSteps)
}

// ToolDispatcher executes a tool call requested by the model and returns the
// tool output to feed back. Arguments arrive as the raw JSON string emitted
// by the model.
type ToolDispatcher func(ctx context.Context, name, arguments string) (string, error)
