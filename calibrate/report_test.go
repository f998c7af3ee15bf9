package calibrate_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/promptcal/calibrate"
	"github.com/effective-security/promptcal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteReports(t *testing.T) {
	dir := t.TempDir()
	report := &calibrate.ServerReport{
		RunID:       "4f2c1f57-0000-0000-0000-000000000000",
		Server:      "filesystem",
		StartedAt:   "2026-08-30T10:00:00Z",
		CompletedAt: "2026-08-30T10:01:30Z",
		Results: []calibrate.Result{
			{
				ToolName:       "list_directory",
				ServerName:     "filesystem",
				SampleParams:   map[string]any{"path": "/tmp/example.txt"},
				BestStrategy:   strategy.Imperative,
				BestDurationMs: 500,
				AllAttempts: []calibrate.Attempt{
					{Strategy: strategy.Imperative, Success: true, DurationMs: 500},
					{Strategy: strategy.NaturalExplicit, Success: true, DurationMs: 700},
					{Strategy: strategy.StepByStep, Success: false, DurationMs: 900, Error: "timeout"},
				},
			},
			{
				ToolName:    "broken_tool",
				ServerName:  "filesystem",
				AllFailed:   true,
				AllAttempts: []calibrate.Attempt{{Strategy: strategy.Imperative, DurationMs: 60000, Error: "timeout"}},
			},
		},
		Skipped:      []string{"heartbeat"},
		Distribution: map[strategy.Name]int{strategy.Imperative: 1},
	}

	require.NoError(t, calibrate.WriteReports(dir, report))

	raw, err := os.ReadFile(filepath.Join(dir, "filesystem-calibration.json"))
	require.NoError(t, err)
	var results []calibrate.Result
	require.NoError(t, json.Unmarshal(raw, &results))
	require.Len(t, results, 2)
	assert.Equal(t, strategy.Imperative, results[0].BestStrategy)
	assert.EqualValues(t, 500, results[0].BestDurationMs)
	assert.True(t, results[1].AllFailed)

	text, err := os.ReadFile(filepath.Join(dir, "filesystem-calibration.txt"))
	require.NoError(t, err)
	out := string(text)
	assert.Contains(t, out, "Calibration report: filesystem")
	assert.Contains(t, out, "best imperative (500ms)")
	assert.Contains(t, out, "naturalExplicit: ok in 700ms")
	assert.Contains(t, out, "stepByStep: failed in 900ms (timeout)")
	assert.Contains(t, out, "broken_tool:")
	assert.Contains(t, out, "ALL STRATEGIES FAILED")
	assert.Contains(t, out, "Skipped (no testable parameters): heartbeat")
	assert.Contains(t, out, "imperative: 1")
}

func Test_WriteReports_EmptyResults(t *testing.T) {
	dir := t.TempDir()
	report := &calibrate.ServerReport{
		RunID:  "r",
		Server: "empty",
	}
	require.NoError(t, calibrate.WriteReports(dir, report))

	raw, err := os.ReadFile(filepath.Join(dir, "empty-calibration.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}
