// Package strategy is the library of prompt rendering styles used to elicit
// tool calls from an LLM agent, plus the parameter shape classification that
// drives selection and fallback rules.
package strategy
