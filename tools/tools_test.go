package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/effective-security/promptcal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func newSchema(required []string, props ...*orderedmap.Pair[string, *tools.Property]) tools.Schema {
	om := orderedmap.New[string, *tools.Property]()
	for _, p := range props {
		om.Set(p.Key, p.Value)
	}
	return tools.Schema{Properties: om, Required: required}
}

func prop(name string, p *tools.Property) *orderedmap.Pair[string, *tools.Property] {
	return &orderedmap.Pair[string, *tools.Property]{Key: name, Value: p}
}

func Test_SchemaOrder(t *testing.T) {
	s := newSchema([]string{"path"},
		prop("path", &tools.Property{Type: "string"}),
		prop("depth", &tools.Property{Type: "integer"}),
		prop("follow", &tools.Property{Type: "boolean"}),
	)
	assert.Equal(t, []string{"path", "depth", "follow"}, s.Names())
	assert.Equal(t, 3, s.Len())
	require.NotNil(t, s.Property("depth"))
	assert.Equal(t, "integer", s.Property("depth").Type)
	assert.Nil(t, s.Property("missing"))
}

func Test_SchemaUnmarshalKeepsOrder(t *testing.T) {
	js := `{
		"properties": {
			"query": {"type": "string"},
			"max_results": {"type": "integer", "default": 5},
			"tags": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["query"]
	}`
	var s tools.Schema
	require.NoError(t, json.Unmarshal([]byte(js), &s))
	assert.Equal(t, []string{"query", "max_results", "tags"}, s.Names())
	assert.Equal(t, []string{"query"}, s.Required)
	assert.Equal(t, "string", s.Property("tags").Items.Type)
}

func Test_SchemaFingerprint(t *testing.T) {
	a := newSchema(nil, prop("path", &tools.Property{Type: "string"}))
	b := newSchema(nil, prop("path", &tools.Property{Type: "string"}))
	c := newSchema(nil, prop("path", &tools.Property{Type: "number"}))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func Test_StaticCatalog(t *testing.T) {
	ctx := context.Background()
	cat := tools.NewStaticCatalog(map[string][]tools.Descriptor{
		"filesystem": {
			{Name: "list_directory", InputSchema: newSchema([]string{"path"}, prop("path", &tools.Property{Type: "string"}))},
		},
		"web": {
			{Name: "tavily-extract", Server: "web"},
		},
	})

	assert.Equal(t, []string{"filesystem", "web"}, cat.Servers())

	list, err := cat.Tools(ctx, "filesystem")
	require.NoError(t, err)
	require.Len(t, list, 1)
	// server name is filled in from the catalog key
	assert.Equal(t, "filesystem", list[0].Server)

	_, err = cat.Tools(ctx, "nope")
	assert.EqualError(t, err, `unknown server "nope"`)
}
