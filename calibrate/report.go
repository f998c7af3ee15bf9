package calibrate

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/llmutils"
	"github.com/effective-security/xlog"
)

var reportTemplate = template.Must(
	template.New("report").Funcs(sprig.TxtFuncMap()).Parse(reportText))

const reportText = `Calibration report: {{ .Server }}
Run {{ .RunID }}
Started   {{ .StartedAt }}
Completed {{ .CompletedAt }}

Tools calibrated: {{ len .Results }}
{{- with .Skipped }}
Skipped (no testable parameters): {{ join ", " . }}
{{- end }}
{{- with .Unchanged }}
Unchanged (schema fingerprint match): {{ join ", " . }}
{{- end }}

{{ range .Results -}}
{{ .ToolName }}:
{{- if .AllFailed }} ALL STRATEGIES FAILED
{{- else }} best {{ .BestStrategy }} ({{ .BestDurationMs }}ms)
{{- end }}
{{- range .AllAttempts }}
    {{ .Strategy }}: {{ if .Success }}ok{{ else }}failed{{ end }} in {{ .DurationMs }}ms{{ with .Error }} ({{ . }}){{ end }}
{{- end }}
{{ end -}}
{{ with .Distribution }}
Strategy distribution:
{{- range $name, $count := . }}
    {{ $name }}: {{ $count }}
{{- end }}
{{ end -}}
`

// WriteReports writes the machine-readable JSON report (the Result array)
// and the parallel human-readable text report for a server pass.
func WriteReports(dir string, report *ServerReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithMessage(err, "failed to create report directory")
	}

	results := report.Results
	if results == nil {
		results = []Result{}
	}
	jsonPath := filepath.Join(dir, report.Server+"-calibration.json")
	js := llmutils.ToJSONIndent(results)
	if err := os.WriteFile(jsonPath, []byte(js+"\n"), 0o644); err != nil {
		return errors.WithMessagef(err, "failed to write %q", jsonPath)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return errors.WithMessage(err, "failed to render report")
	}
	textPath := filepath.Join(dir, report.Server+"-calibration.txt")
	if err := os.WriteFile(textPath, buf.Bytes(), 0o644); err != nil {
		return errors.WithMessagef(err, "failed to write %q", textPath)
	}

	logger.KV(xlog.INFO, "server", report.Server, "report", jsonPath)
	return nil
}
