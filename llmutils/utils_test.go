package llmutils_test

import (
	"testing"

	"github.com/effective-security/promptcal/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_ToJSON(t *testing.T) {
	val := map[string]any{"b": 1, "a": "x"}
	assert.Equal(t, `{"a":"x","b":1}`, llmutils.ToJSON(val))
	assert.Equal(t, "{\n\t\"a\": \"x\",\n\t\"b\": 1\n}", llmutils.ToJSONIndent(val))
}

func Test_SortedKeys(t *testing.T) {
	keys := llmutils.SortedKeys(map[string]any{"z": 1, "a": 2, "m": 3})
	assert.Equal(t, []string{"a", "m", "z"}, keys)
}

func Test_Stringify(t *testing.T) {
	assert.Equal(t, "test", llmutils.Stringify("test"))
	assert.Equal(t, "true", llmutils.Stringify(true))
	assert.Equal(t, "3", llmutils.Stringify(float64(3)))
	assert.Equal(t, "2.5", llmutils.Stringify(2.5))
	assert.Equal(t, "null", llmutils.Stringify(nil))
	assert.Equal(t, `["a","b"]`, llmutils.Stringify([]any{"a", "b"}))
	assert.Equal(t, `{"k":"v"}`, llmutils.Stringify(map[string]any{"k": "v"}))
}

func Test_TypeName(t *testing.T) {
	assert.Equal(t, "string", llmutils.TypeName("x"))
	assert.Equal(t, "boolean", llmutils.TypeName(false))
	assert.Equal(t, "integer", llmutils.TypeName(float64(3)))
	assert.Equal(t, "number", llmutils.TypeName(2.5))
	assert.Equal(t, "array", llmutils.TypeName([]any{}))
	assert.Equal(t, "object", llmutils.TypeName(map[string]any{}))
	assert.Equal(t, "null", llmutils.TypeName(nil))
}

func Test_CleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(llmutils.CleanJSON([]byte("Sure, here you go: {\"a\":1}"))))
	assert.Equal(t, `["a"]`, string(llmutils.CleanJSON([]byte("```json\n[\"a\"]\n```"))))
	assert.Equal(t, "no json here", string(llmutils.CleanJSON([]byte("no json here"))))
}
