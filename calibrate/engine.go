package calibrate

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/agent"
	"github.com/effective-security/promptcal/pkg/metricskey"
	"github.com/effective-security/promptcal/store"
	"github.com/effective-security/promptcal/strategy"
	"github.com/effective-security/promptcal/synth"
	"github.com/effective-security/promptcal/tools"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/promptcal", "calibrate")

// ErrCatalogUnavailable marks a failure to obtain a server's tool catalog.
// It is fatal to that server's pass only.
var ErrCatalogUnavailable = errors.New("tool catalog unavailable")

// Attempt records one (tool, strategy) trial.
type Attempt struct {
	Strategy   strategy.Name `json:"strategyName"`
	Success    bool          `json:"success"`
	DurationMs int64         `json:"durationMs"`
	Error      string        `json:"errorMessage,omitempty"`
}

// Result is the calibration outcome for one tool. It is produced once per
// run and never mutated afterwards.
type Result struct {
	ToolName       string         `json:"toolName"`
	ServerName     string         `json:"serverName"`
	SampleParams   map[string]any `json:"sampleParams"`
	BestStrategy   strategy.Name  `json:"bestStrategy,omitempty"`
	BestDurationMs int64          `json:"bestDurationMs"`
	AllAttempts    []Attempt      `json:"allAttempts"`
	AllFailed      bool           `json:"allFailed"`
}

// ServerReport aggregates one server's calibration pass.
type ServerReport struct {
	RunID       string                 `json:"runId"`
	Server      string                 `json:"serverName"`
	StartedAt   string                 `json:"startedAt"`
	CompletedAt string                 `json:"completedAt"`
	Results     []Result               `json:"results"`
	Skipped     []string               `json:"skippedTools,omitempty"`
	Unchanged   []string               `json:"unchangedTools,omitempty"`
	Distribution map[strategy.Name]int `json:"strategyDistribution"`
}

// Engine measures every strategy against every tool of a server, selects
// the fastest reliably-successful strategy per tool, and persists results.
// Trials run strictly sequentially: the backend corrupts shared state and
// skews latency under concurrent access.
type Engine struct {
	catalog tools.Catalog
	runner  agent.Runner
	store   store.MappingStore
	synth   *synth.Synthesizer
	cfg     Config
}

// NewEngine constructs an Engine. The mapping store is injected; load and
// save happen only at pass boundaries.
func NewEngine(catalog tools.Catalog, runner agent.Runner, st store.MappingStore, opts ...Option) *Engine {
	return &Engine{
		catalog: catalog,
		runner:  runner,
		store:   st,
		synth:   synth.New(),
		cfg:     NewConfig(opts...),
	}
}

// RunAll calibrates every configured server. A server whose catalog cannot
// be obtained is skipped; its error is combined into the returned error and
// other servers, and previously persisted mappings, are unaffected.
func (e *Engine) RunAll(ctx context.Context) ([]*ServerReport, error) {
	var reports []*ServerReport
	var errs error
	for _, server := range e.catalog.Servers() {
		report, err := e.Run(ctx, server)
		if err != nil {
			logger.KV(xlog.ERROR, "server", server, "err", err.Error())
			errs = errors.CombineErrors(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errs
}

// Run calibrates one server and persists the merged mapping and reports.
func (e *Engine) Run(ctx context.Context, server string) (*ServerReport, error) {
	started := time.Now()
	defer metricskey.PerfServerPass.MeasureSince(started, server)

	list, err := e.catalog.Tools(ctx, server)
	if err != nil {
		return nil, errors.Mark(
			errors.WithMessagef(err, "failed to obtain catalog for %s", server),
			ErrCatalogUnavailable)
	}

	mapping, err := e.store.LoadMapping(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load mapping for %s", server)
	}

	report := &ServerReport{
		RunID:        uuid.New().String(),
		Server:       server,
		StartedAt:    started.UTC().Format(time.RFC3339),
		Distribution: map[strategy.Name]int{},
	}
	entries := map[string]store.ToolEntry{}

	for _, desc := range list {
		hash := store.FormatSchemaHash(desc.InputSchema.Fingerprint())
		if !e.cfg.Force {
			if prev, ok := mapping.Tools[desc.Name]; ok && prev.SchemaHash != "" && prev.SchemaHash == hash {
				logger.KV(xlog.DEBUG, "server", server, "tool", desc.Name, "status", "unchanged")
				report.Unchanged = append(report.Unchanged, desc.Name)
				continue
			}
		}

		sample := e.synth.Sample(desc)
		if len(sample) == 0 {
			// no testable parameters, never attempt an invocation
			logger.KV(xlog.INFO, "server", server, "tool", desc.Name, "status", "skipped")
			metricskey.StatsToolsSkipped.IncrCounter(1, server)
			report.Skipped = append(report.Skipped, desc.Name)
			continue
		}

		result := e.calibrateTool(ctx, server, desc, sample)
		if err := ctx.Err(); err != nil {
			return nil, errors.WithMessage(err, "calibration aborted")
		}
		report.Results = append(report.Results, *result)

		if result.AllFailed {
			continue
		}
		report.Distribution[result.BestStrategy]++
		metricskey.StatsToolsCalibrated.IncrCounter(1, server)
		entries[desc.Name] = store.ToolEntry{
			Server:     server,
			Tool:       desc.Name,
			Strategy:   result.BestStrategy,
			SchemaHash: hash,
		}
	}

	report.CompletedAt = time.Now().UTC().Format(time.RFC3339)

	if len(entries) > 0 {
		mapping.Merge(entries)
		if err := e.store.SaveMapping(ctx, mapping); err != nil {
			return nil, errors.WithMessagef(err, "failed to save mapping for %s", server)
		}
	}

	if e.cfg.OutputDir != "" {
		if err := WriteReports(e.cfg.OutputDir, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// calibrateTool tries every strategy in the fixed enumeration order.
// A per-trial failure truncates only that trial.
func (e *Engine) calibrateTool(ctx context.Context, server string, desc tools.Descriptor, sample map[string]any) *Result {
	result := &Result{
		ToolName:     desc.Name,
		ServerName:   server,
		SampleParams: sample,
	}

	best := -1
	for _, name := range strategy.All() {
		for i := 0; i < e.cfg.Samples; i++ {
			attempt := e.trial(ctx, server, desc.Name, name, sample)
			result.AllAttempts = append(result.AllAttempts, attempt)
			if attempt.Success &&
				(best < 0 || attempt.DurationMs < result.AllAttempts[best].DurationMs) {
				best = len(result.AllAttempts) - 1
			}

			// cooperative backpressure against the calibrated backend
			if e.cfg.AttemptDelay > 0 {
				select {
				case <-ctx.Done():
					return result
				case <-time.After(e.cfg.AttemptDelay):
				}
			}
		}
	}

	if best < 0 {
		result.AllFailed = true
		logger.KV(xlog.WARNING, "server", server, "tool", desc.Name, "status", "all_strategies_failed")
		return result
	}
	result.BestStrategy = result.AllAttempts[best].Strategy
	result.BestDurationMs = result.AllAttempts[best].DurationMs
	return result
}

// trial renders and executes one prompt; duration covers only the
// invocation itself.
func (e *Engine) trial(ctx context.Context, server, toolName string, name strategy.Name, sample map[string]any) Attempt {
	prompt := strategy.Render(name, toolName, sample)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TrialTimeout)
	defer cancel()

	started := time.Now()
	_, err := e.runner.Run(ctx, prompt, e.cfg.MaxSteps)
	durationMs := time.Since(started).Milliseconds()
	metricskey.PerfTrial.MeasureSince(started, server, string(name))

	attempt := Attempt{
		Strategy:   name,
		DurationMs: durationMs,
	}
	if err != nil {
		attempt.Error = err.Error()
		metricskey.StatsTrialsFailed.IncrCounter(1, server, string(name))
		logger.KV(xlog.INFO,
			"tool", toolName,
			"strategy", name,
			"status", "failed",
			"duration_ms", durationMs,
			"err", err.Error(),
		)
		return attempt
	}

	attempt.Success = true
	metricskey.StatsTrialsSucceeded.IncrCounter(1, server, string(name))
	logger.KV(xlog.INFO,
		"tool", toolName,
		"strategy", name,
		"status", "succeeded",
		"duration_ms", durationMs,
	)
	return attempt
}
