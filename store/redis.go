package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps the mapping in a single key so that several hosts
// can share calibration results. The single-writer assumption still holds:
// only one calibration pass writes at a time.
// Keys are namespaced as /<prefix>/promptcal/mapping.

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a MappingStore backed by Redis.
func NewRedisStore(client *redis.Client, prefix string) MappingStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *redisStore) mappingKey() string {
	return path.Join(s.prefix, "promptcal", "mapping")
}

func (s *redisStore) LoadMapping(ctx context.Context) (*Mapping, error) {
	data, err := s.client.Get(ctx, s.mappingKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewMapping(), nil
		}
		return nil, errors.Wrap(err, "failed to get mapping from Redis")
	}

	m := NewMapping()
	if err := json.Unmarshal([]byte(data), m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal mapping")
	}
	if m.Tools == nil {
		m.Tools = map[string]ToolEntry{}
	}
	return m, nil
}

func (s *redisStore) SaveMapping(ctx context.Context, m *Mapping) error {
	// merge against the stored mapping, the in-memory copy may be stale
	current, err := s.LoadMapping(ctx)
	if err != nil {
		return err
	}
	current.Merge(m.Tools)
	current.Default = m.DefaultStrategy()
	if m.LastUpdated != "" {
		current.LastUpdated = m.LastUpdated
	}

	data, err := json.Marshal(current)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mapping")
	}
	err = s.client.Set(ctx, s.mappingKey(), data, 0).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store mapping in Redis")
	}
	return nil
}
