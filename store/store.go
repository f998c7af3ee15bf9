// Package store persists the tool to strategy mapping produced by
// calibration. Saves are additive merges: calibrating one server never
// removes or alters entries belonging to another.
package store

import (
	"context"
	"strconv"
	"time"

	"github.com/effective-security/promptcal/strategy"
)

// ToolEntry is the persisted calibration outcome for one tool.
type ToolEntry struct {
	Server   string        `json:"server" yaml:"server"`
	Tool     string        `json:"tool" yaml:"tool"`
	Strategy strategy.Name `json:"strategy" yaml:"strategy"`
	// SchemaHash fingerprints the input schema the entry was calibrated
	// against, so unchanged tools can be skipped on later runs.
	SchemaHash string `json:"schemaHash,omitempty" yaml:"schemaHash,omitempty"`
}

// Mapping is the persisted tool to best-strategy lookup table.
type Mapping struct {
	Tools       map[string]ToolEntry `json:"tools" yaml:"tools"`
	Default     strategy.Name        `json:"default" yaml:"default"`
	LastUpdated string               `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// NewMapping returns an empty mapping with the library default strategy.
func NewMapping() *Mapping {
	return &Mapping{
		Tools:   map[string]ToolEntry{},
		Default: strategy.Default,
	}
}

// Lookup returns the calibrated strategy for a tool, if present.
func (m *Mapping) Lookup(toolName string) (strategy.Name, bool) {
	if m == nil {
		return "", false
	}
	entry, ok := m.Tools[toolName]
	if !ok {
		return "", false
	}
	return entry.Strategy, true
}

// DefaultStrategy returns the mapping default, falling back to the library
// default when the mapping is empty or was persisted without one.
func (m *Mapping) DefaultStrategy() strategy.Name {
	if m == nil || m.Default == "" {
		return strategy.Default
	}
	return m.Default
}

// Merge adds entries to the mapping, leaving unrelated tools untouched,
// and stamps LastUpdated.
func (m *Mapping) Merge(entries map[string]ToolEntry) {
	if m.Tools == nil {
		m.Tools = map[string]ToolEntry{}
	}
	for name, entry := range entries {
		m.Tools[name] = entry
	}
	if m.Default == "" {
		m.Default = strategy.Default
	}
	m.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// FormatSchemaHash renders a schema fingerprint for persistence.
func FormatSchemaHash(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// MappingStore loads and saves the persisted mapping.
// Load never fails on absence; a missing mapping is an empty one.
type MappingStore interface {
	LoadMapping(ctx context.Context) (*Mapping, error)
	SaveMapping(ctx context.Context, m *Mapping) error
}
