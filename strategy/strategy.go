package strategy

import (
	"fmt"
	"strings"

	"github.com/effective-security/promptcal/llmutils"
)

// Name identifies a prompt rendering style.
// The set is closed; rendering dispatches with an exhaustive switch.
type Name string

const (
	// Imperative is a single directive line with a flat parameter list,
	// minimal token cost.
	Imperative Name = "imperative"
	// NaturalExplicit spells out the type of every parameter, which
	// disambiguates array and numeric arguments.
	NaturalExplicit Name = "naturalExplicit"
	// StepByStep renders a numbered list ending with an explicit call
	// instruction, for agents with weak tool-completion signaling.
	StepByStep Name = "stepByStep"
	// DirectWithSchema renders function-call notation with JSON arguments.
	DirectWithSchema Name = "directWithSchema"
	// ExplicitTypes annotates each value with its type name.
	ExplicitTypes Name = "explicitTypes"
)

// Default is the strategy assumed when no calibration data exists.
const Default = Imperative

// All returns every strategy in the fixed enumeration order used by
// calibration sweeps.
func All() []Name {
	return []Name{Imperative, NaturalExplicit, StepByStep, DirectWithSchema, ExplicitTypes}
}

// Parse normalizes a strategy name; unknown names map to Default.
func Parse(s string) Name {
	switch Name(s) {
	case Imperative, NaturalExplicit, StepByStep, DirectWithSchema, ExplicitTypes:
		return Name(s)
	}
	return Default
}

// Render produces the instruction prompt for a tool call.
// Rendering is pure and deterministic: parameters are iterated in sorted key
// order and every key is referenced. Unknown names render as Default.
func Render(name Name, toolName string, params map[string]any) string {
	switch name {
	case NaturalExplicit:
		return renderNaturalExplicit(toolName, params)
	case StepByStep:
		return renderStepByStep(toolName, params)
	case DirectWithSchema:
		return renderDirectWithSchema(toolName, params)
	case ExplicitTypes:
		return renderExplicitTypes(toolName, params)
	case Imperative:
		return renderImperative(toolName, params)
	}
	return renderImperative(toolName, params)
}

func renderImperative(toolName string, params map[string]any) string {
	if len(params) == 0 {
		return fmt.Sprintf("Call the %s tool now.", toolName)
	}
	parts := make([]string, 0, len(params))
	for _, key := range llmutils.SortedKeys(params) {
		parts = append(parts, fmt.Sprintf("%s: %s", key, llmutils.Stringify(params[key])))
	}
	return fmt.Sprintf("Call the %s tool now with %s.", toolName, strings.Join(parts, ", "))
}

func renderNaturalExplicit(toolName string, params map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please call the %s tool.", toolName)
	for _, key := range llmutils.SortedKeys(params) {
		val := params[key]
		switch llmutils.TypeName(val) {
		case "array":
			fmt.Fprintf(&b, " Pass %s as an array containing %s.", key, llmutils.ToJSON(val))
		case "number", "integer":
			fmt.Fprintf(&b, " Pass %s as the number %s.", key, llmutils.Stringify(val))
		case "boolean":
			fmt.Fprintf(&b, " Pass %s as the boolean value %s.", key, llmutils.Stringify(val))
		case "object":
			fmt.Fprintf(&b, " Pass %s as the object %s.", key, llmutils.ToJSON(val))
		default:
			fmt.Fprintf(&b, " Pass %s as the string %q.", key, llmutils.Stringify(val))
		}
	}
	return b.String()
}

func renderStepByStep(toolName string, params map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Follow these steps to use the %s tool:\n", toolName)
	step := 1
	for _, key := range llmutils.SortedKeys(params) {
		fmt.Fprintf(&b, "%d. Set %s to %s.\n", step, key, llmutils.Stringify(params[key]))
		step++
	}
	fmt.Fprintf(&b, "%d. Call the %s tool now with these parameters.", step, toolName)
	return b.String()
}

func renderDirectWithSchema(toolName string, params map[string]any) string {
	return fmt.Sprintf("Execute this call: %s(%s)", toolName, llmutils.ToJSON(params))
}

func renderExplicitTypes(toolName string, params map[string]any) string {
	if len(params) == 0 {
		return fmt.Sprintf("Call the %s tool now.", toolName)
	}
	parts := make([]string, 0, len(params))
	for _, key := range llmutils.SortedKeys(params) {
		val := params[key]
		parts = append(parts, fmt.Sprintf("%s=%s (%s)", key, llmutils.Stringify(val), llmutils.TypeName(val)))
	}
	return fmt.Sprintf("Call the %s tool with %s.", toolName, strings.Join(parts, ", "))
}
