package tools

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/effective-security/promptcal/llmutils"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Property describes a single parameter in a tool's input schema.
type Property struct {
	Type        string    `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []any     `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items       *Property `json:"items,omitempty" yaml:"items,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Schema is the declared input schema of a tool.
// Property order is preserved as declared, the synthesizer depends on it.
type Schema struct {
	Properties *orderedmap.OrderedMap[string, *Property] `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string                                  `json:"required,omitempty" yaml:"required,omitempty"`
}

// Names returns the property names in declared order.
func (s *Schema) Names() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Property returns the named property, or nil.
func (s *Schema) Property(name string) *Property {
	if s == nil || s.Properties == nil {
		return nil
	}
	p, _ := s.Properties.Get(name)
	return p
}

// Len returns the number of declared properties.
func (s *Schema) Len() int {
	if s == nil || s.Properties == nil {
		return 0
	}
	return s.Properties.Len()
}

// Fingerprint returns a stable hash of the schema.
// Calibration entries carry it so that unchanged tools can be skipped.
func (s *Schema) Fingerprint() uint64 {
	return xxhash.Sum64String(llmutils.ToJSON(s))
}

// Descriptor declares a callable tool exposed to the agent.
// It is supplied externally and treated as read-only.
type Descriptor struct {
	Name        string `json:"name" yaml:"name"`
	Server      string `json:"server" yaml:"server"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema Schema `json:"inputSchema" yaml:"inputSchema"`
}

// Catalog supplies the set of declared tools per server.
type Catalog interface {
	// Servers returns the configured server names.
	Servers() []string
	// Tools returns the declared tools of a server.
	Tools(ctx context.Context, server string) ([]Descriptor, error)
}
