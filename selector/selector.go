// Package selector picks a prompt strategy for a tool call under a policy,
// using calibrated mappings, parameter shape rules, or both.
package selector

import (
	"github.com/effective-security/promptcal/store"
	"github.com/effective-security/promptcal/strategy"
)

// Policy names a selection discipline, chosen at construction time.
type Policy string

const (
	// ToolBased uses the calibrated mapping, falling back to its default.
	ToolBased Policy = "toolBased"
	// ParamBased derives the strategy from parameter shape alone.
	ParamBased Policy = "paramBased"
	// Hybrid prefers the mapping and falls back to shape rules.
	Hybrid Policy = "hybrid"
)

// Selector returns a strategy for a (tool, params) pair.
// Select never fails and always returns a member of the strategy library.
type Selector struct {
	policy  Policy
	mapping *store.Mapping
}

// New constructs a Selector. The mapping is injected as a value loaded at
// process start; a nil mapping behaves as an empty one.
func New(policy Policy, mapping *store.Mapping) *Selector {
	if mapping == nil {
		mapping = store.NewMapping()
	}
	return &Selector{
		policy:  policy,
		mapping: mapping,
	}
}

// Select picks the strategy for a tool call.
func (s *Selector) Select(toolName string, params map[string]any) strategy.Name {
	switch s.policy {
	case ToolBased:
		if name, ok := s.mapping.Lookup(toolName); ok {
			return name
		}
		return s.mapping.DefaultStrategy()
	case ParamBased:
		return FromShape(strategy.Classify(params))
	case Hybrid:
		if name, ok := s.mapping.Lookup(toolName); ok {
			return name
		}
		return FromShape(strategy.Classify(params))
	}
	return s.mapping.DefaultStrategy()
}

// FromShape applies the fixed shape precedence rules:
// arrays and numbers need explicit typing, many or complex parameters get
// step-by-step guidance, anything else takes the cheap imperative form.
func FromShape(shape strategy.Shape) strategy.Name {
	switch {
	case shape.HasArrays:
		return strategy.NaturalExplicit
	case shape.HasNumbers:
		return strategy.NaturalExplicit
	case shape.ParamCount > 2 || shape.HasComplex:
		return strategy.StepByStep
	default:
		return strategy.Imperative
	}
}
