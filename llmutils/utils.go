// Package llmutils provides JSON and formatting helpers shared by the prompt
// renderers, reports and agent runners.
package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

// ToJSON serializes the value to compact JSON.
// Map keys are emitted in sorted order, so the output is stable.
func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

// ToJSONIndent serializes the value to indented JSON.
func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

// BackticksJSON wraps JSON in a fenced code block.
func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}

// SortedKeys returns the map keys in sorted order.
// Prompt renderers iterate parameters with it so that rendering is
// deterministic regardless of map iteration order.
func SortedKeys(m map[string]any) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Stringify renders a single parameter value for inclusion in a prompt line.
// Scalars are rendered bare; everything else becomes compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return ToJSON(v)
	}
}

// TypeName returns the JSON type name of a value, used by renderers that
// annotate each parameter with its type.
func TypeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if t == float64(int64(t)) {
			return "integer"
		}
		return "number"
	case float32, json.Number:
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "object"
	}
}

// CleanJSON trims any prose the model wrapped around a JSON payload,
// like "Sure, here you go: {...}".
func CleanJSON(bs []byte) []byte {
	start := len(bs)
	if i := bytes.IndexByte(bs, '{'); i >= 0 {
		start = i
	}
	if i := bytes.IndexByte(bs, '['); i >= 0 && i < start {
		start = i
	}
	if start == len(bs) {
		return bs
	}
	end := -1
	if i := bytes.LastIndexByte(bs, '}'); i > end {
		end = i
	}
	if i := bytes.LastIndexByte(bs, ']'); i > end {
		end = i
	}
	if end < start {
		return bs
	}
	return bs[start : end+1]
}
