package tools

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"golang.org/x/exp/maps"
)

// CatalogFile is the on-disk form of a tool catalog:
// a mapping of server name to declared tools.
type CatalogFile struct {
	Servers map[string][]Descriptor `json:"servers" yaml:"servers"`
}

type staticCatalog struct {
	servers map[string][]Descriptor
}

// NewStaticCatalog returns a Catalog over an in-memory server mapping.
func NewStaticCatalog(servers map[string][]Descriptor) Catalog {
	return &staticCatalog{servers: servers}
}

// LoadCatalog reads a catalog document (YAML or JSON) from a file.
func LoadCatalog(file string) (Catalog, error) {
	var doc CatalogFile
	err := configloader.UnmarshalAndExpand(file, &doc)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load catalog %q", file)
	}
	return &staticCatalog{servers: doc.Servers}, nil
}

func (c *staticCatalog) Servers() []string {
	names := maps.Keys(c.servers)
	slices.Sort(names)
	return names
}

func (c *staticCatalog) Tools(_ context.Context, server string) ([]Descriptor, error) {
	list, ok := c.servers[server]
	if !ok {
		return nil, errors.Errorf("unknown server %q", server)
	}
	out := make([]Descriptor, len(list))
	copy(out, list)
	for i := range out {
		if out[i].Server == "" {
			out[i].Server = server
		}
	}
	return out, nil
}
