// Package fallback retries a failed tool call with alternate prompt
// strategies until one succeeds or the chain is exhausted.
package fallback

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/agent"
	"github.com/effective-security/promptcal/strategy"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/promptcal", "fallback")

// ErrChainExhausted is returned when every strategy in the chain failed.
var ErrChainExhausted = errors.New("all fallback strategies failed")

// DefaultMaxSteps caps the agent step budget per fallback attempt.
const DefaultMaxSteps = 6

// ChainFor selects the fallback chain for a parameter shape.
// Arrays take precedence over numbers; a single plain parameter gets the
// short chain.
func ChainFor(shape strategy.Shape) []strategy.Name {
	switch {
	case shape.HasArrays:
		return []strategy.Name{strategy.StepByStep, strategy.NaturalExplicit, strategy.Imperative}
	case shape.HasNumbers:
		return []strategy.Name{strategy.NaturalExplicit, strategy.StepByStep, strategy.Imperative}
	case shape.ParamCount <= 1:
		return []strategy.Name{strategy.Imperative, strategy.StepByStep}
	default:
		return []strategy.Name{strategy.Imperative, strategy.NaturalExplicit, strategy.StepByStep}
	}
}

// Result reports a successful fallback execution.
type Result struct {
	Strategy     strategy.Name
	Output       string
	DurationMs   int64
	FallbackUsed bool
	// Attempted lists every strategy tried, the failed primary first.
	Attempted []strategy.Name
}

// Executor retries alternate strategies after a primary failure.
// Attempts run sequentially; each one uses a fresh isolated agent session.
type Executor struct {
	runner   agent.Runner
	maxSteps int
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxSteps overrides the per-attempt step budget.
func WithMaxSteps(n int) Option {
	return func(e *Executor) {
		e.maxSteps = n
	}
}

// NewExecutor returns an Executor over the given runner.
func NewExecutor(runner agent.Runner, opts ...Option) *Executor {
	e := &Executor{
		runner:   runner,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute retries the tool call with alternates from the chain chosen for
// the parameter shape, never repeating the strategy that already failed.
// Per-attempt errors are recorded and swallowed; only full exhaustion
// returns an error, wrapping ErrChainExhausted with every attempted name.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]any, failedStrategy strategy.Name) (*Result, error) {
	chain := ChainFor(strategy.Classify(params))

	attempted := []strategy.Name{failedStrategy}
	for _, name := range chain {
		if name == failedStrategy {
			continue
		}
		attempted = append(attempted, name)

		prompt := strategy.Render(name, toolName, params)
		started := time.Now()
		output, err := e.runner.Run(ctx, prompt, e.maxSteps)
		durationMs := time.Since(started).Milliseconds()
		if err != nil {
			logger.KV(xlog.DEBUG,
				"tool", toolName,
				"strategy", name,
				"status", "failed",
				"duration_ms", durationMs,
				"err", err.Error(),
			)
			continue
		}

		logger.KV(xlog.DEBUG,
			"tool", toolName,
			"strategy", name,
			"status", "succeeded",
			"duration_ms", durationMs,
		)
		return &Result{
			Strategy:     name,
			Output:       output,
			DurationMs:   durationMs,
			FallbackUsed: true,
			Attempted:    attempted,
		}, nil
	}

	return nil, errors.WithMessagef(ErrChainExhausted,
		"tool %s, attempted %s", toolName, joinNames(attempted))
}

func joinNames(names []strategy.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
