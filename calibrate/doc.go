// Package calibrate benchmarks every prompt strategy against every tool of
// a server, selects the fastest reliably-successful strategy per tool, and
// persists the merged mapping together with per-server reports.
package calibrate
