// Package synth builds plausible sample arguments from a tool's declared
// input schema, for live calibration trials.
package synth

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/promptcal/tools"
)

// fixed seed so that repeated runs sample comparable values
const fakerSeed = 11

// Synthesizer produces one concrete parameter object per tool.
type Synthesizer struct {
	faker *gofakeit.Faker
}

// New returns a Synthesizer with a seeded value generator.
func New() *Synthesizer {
	return &Synthesizer{
		faker: gofakeit.New(fakerSeed),
	}
}

// Sample synthesizes arguments for the tool.
// Required properties are filled when declared; otherwise the first three
// declared properties are used. An empty result means the tool has no
// testable parameters and must be skipped, not invoked.
func (s *Synthesizer) Sample(desc tools.Descriptor) map[string]any {
	sc := &desc.InputSchema

	names := sc.Required
	if len(names) == 0 {
		names = sc.Names()
		if len(names) > 3 {
			names = names[:3]
		}
	}

	params := map[string]any{}
	for _, name := range names {
		prop := sc.Property(name)
		if prop == nil {
			continue
		}
		if val, ok := s.value(name, prop); ok {
			params[name] = val
		}
	}
	return params
}

func (s *Synthesizer) value(name string, prop *tools.Property) (any, bool) {
	switch prop.Type {
	case "string":
		if len(prop.Enum) > 0 {
			if v, ok := prop.Enum[0].(string); ok {
				return v, true
			}
		}
		return s.stringValue(name), true
	case "number", "integer":
		if prop.Default != nil {
			return prop.Default, true
		}
		return numberValue(name), true
	case "boolean":
		if prop.Default != nil {
			return prop.Default, true
		}
		return false, true
	case "array":
		if prop.Items != nil && prop.Items.Type == "string" {
			return []any{s.stringValue(name)}, true
		}
		return []any{}, true
	case "object":
		return map[string]any{}, true
	}
	return nil, false
}

// stringValue applies keyword heuristics on the parameter name.
func (s *Synthesizer) stringValue(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "path"):
		return "/tmp/example.txt"
	case strings.Contains(lower, "url"):
		return s.faker.URL()
	case strings.Contains(lower, "query"):
		return s.faker.Word()
	case strings.Contains(lower, "name"), strings.Contains(lower, "library"):
		return s.faker.AppName()
	case strings.Contains(lower, "pattern"):
		return "*.txt"
	case strings.Contains(lower, "id"):
		return s.faker.UUID()
	}
	return "test"
}

func numberValue(name string) int {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "depth"):
		return 2
	case strings.Contains(lower, "max"):
		return 3
	case strings.Contains(lower, "token"):
		return 2000
	}
	return 1
}
