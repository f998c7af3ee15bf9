// Package metricskey describes the metrics emitted by calibration.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsTrialsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_calibration_trials_succeeded",
		Help:         "stats_calibration_trials_succeeded provides total successful calibration trials",
		RequiredTags: []string{"server", "strategy"},
	}

	StatsTrialsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_calibration_trials_failed",
		Help:         "stats_calibration_trials_failed provides total failed calibration trials",
		RequiredTags: []string{"server", "strategy"},
	}

	StatsToolsSkipped = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_calibration_tools_skipped",
		Help:         "stats_calibration_tools_skipped provides total tools skipped for lack of testable parameters",
		RequiredTags: []string{"server"},
	}

	StatsToolsCalibrated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_calibration_tools_calibrated",
		Help:         "stats_calibration_tools_calibrated provides total tools with a selected strategy",
		RequiredTags: []string{"server"},
	}
)

// Perf
var (
	PerfTrial = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_calibration_trial",
		Help:         "perf_calibration_trial provides the duration of a single calibration trial",
		RequiredTags: []string{"server", "strategy"},
	}

	PerfServerPass = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_calibration_server_pass",
		Help:         "perf_calibration_server_pass provides the duration of a full server calibration pass",
		RequiredTags: []string{"server"},
	}
)

// Metrics returns the metrics descriptions defined in this package.
func Metrics() []*metrics.Describe {
	return []*metrics.Describe{
		&StatsTrialsSucceeded,
		&StatsTrialsFailed,
		&StatsToolsSkipped,
		&StatsToolsCalibrated,
		&PerfTrial,
		&PerfServerPass,
	}
}
