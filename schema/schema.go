// Package schema builds tool input schemas from Go types, so that catalogs
// can be declared in code as well as loaded from documents.
package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/tools"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]tools.Schema)
	cacheMu sync.RWMutex
)

// For returns the input schema for the given request type.
func For[T any]() (tools.Schema, error) {
	var v T
	return From(reflect.TypeOf(v))
}

// From builds a tool input schema from a Go type.
// Property order follows field declaration order.
func From(t reflect.Type) (tools.Schema, error) {
	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := build(t)
	if err != nil {
		return tools.Schema{}, err
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s, nil
}

func build(t reflect.Type) (tools.Schema, error) {
	r := new(jsonschema.Reflector)
	// Disambiguate same-named structs from different packages,
	// see https://github.com/invopop/jsonschema/issues/42
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			full := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(full), 10)
		}
		return name
	}

	js := r.ReflectFromType(t)
	rootID := strings.TrimPrefix(js.Ref, "#/$defs/")
	root, ok := js.Definitions[rootID]
	if !ok {
		return tools.Schema{}, errors.Errorf("schema root %q not found for %s", rootID, t.String())
	}

	props := orderedmap.New[string, *tools.Property]()
	if root.Properties != nil {
		for pair := root.Properties.Oldest(); pair != nil; pair = pair.Next() {
			p, err := convert(pair.Value, js.Definitions)
			if err != nil {
				return tools.Schema{}, errors.WithMessagef(err, "property %q", pair.Key)
			}
			props.Set(pair.Key, p)
		}
	}

	return tools.Schema{
		Properties: props,
		Required:   root.Required,
	}, nil
}

func convert(js *jsonschema.Schema, defs jsonschema.Definitions) (*tools.Property, error) {
	js, err := deref(js, defs)
	if err != nil {
		return nil, err
	}

	p := &tools.Property{
		Type:        js.Type,
		Description: js.Description,
		Enum:        js.Enum,
		Default:     js.Default,
	}
	if js.Items != nil {
		p.Items, err = convert(js.Items, defs)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func deref(js *jsonschema.Schema, defs jsonschema.Definitions) (*jsonschema.Schema, error) {
	if js.Ref == "" {
		return js, nil
	}
	name := strings.TrimPrefix(js.Ref, "#/$defs/")
	def, ok := defs[name]
	if !ok {
		return nil, errors.Errorf("unresolved schema ref %q", js.Ref)
	}
	return def, nil
}
