package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/promptcal/strategy"
	"github.com/effective-security/xlog"
	"github.com/tidwall/sjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/promptcal", "store")

type fileStore struct {
	path string
}

// NewFileStore persists the mapping as a JSON document at path.
func NewFileStore(path string) MappingStore {
	return &fileStore{path: path}
}

func (s *fileStore) LoadMapping(_ context.Context) (*Mapping, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMapping(), nil
		}
		return nil, errors.WithMessagef(err, "failed to read mapping %q", s.path)
	}

	m := NewMapping()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.WithMessagef(err, "invalid mapping %q", s.path)
	}
	if m.Tools == nil {
		m.Tools = map[string]ToolEntry{}
	}
	if m.Default == "" {
		m.Default = strategy.Default
	}
	return m, nil
}

// SaveMapping rewrites the mapping file by setting each entry into the
// existing document, so entries and fields written by others survive even
// if the in-memory mapping was loaded before them.
func (s *fileStore) SaveMapping(_ context.Context, m *Mapping) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.WithMessagef(err, "failed to read mapping %q", s.path)
		}
		data = []byte("{}")
	}

	for name, entry := range m.Tools {
		data, err = sjson.SetBytes(data, "tools."+escapeKey(name), entry)
		if err != nil {
			return errors.WithMessagef(err, "failed to set entry %q", name)
		}
	}
	data, err = sjson.SetBytes(data, "default", m.DefaultStrategy())
	if err != nil {
		return errors.WithMessage(err, "failed to set default")
	}
	if m.LastUpdated != "" {
		data, err = sjson.SetBytes(data, "lastUpdated", m.LastUpdated)
		if err != nil {
			return errors.WithMessage(err, "failed to set lastUpdated")
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.WithMessage(err, "failed to create mapping directory")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.WithMessagef(err, "failed to write mapping %q", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.WithMessagef(err, "failed to replace mapping %q", s.path)
	}

	logger.KV(xlog.DEBUG, "mapping", s.path, "tools", len(m.Tools))
	return nil
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
)

// escapeKey quotes sjson path syntax in tool names
func escapeKey(name string) string {
	return keyEscaper.Replace(name)
}
