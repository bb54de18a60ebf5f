package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Scoped prefixes every key of an inner cache and carries a default TTL.
// It lets several clients share one backend without key collisions:
//
//	search := cache.Scope(backend, "maven:search:", 24*time.Hour)
//	search.SetJSON(ctx, query, docs) // stored as "maven:search:<query>"
type Scoped struct {
	inner  Cache
	prefix string
	ttl    time.Duration
}

// Scope wraps inner so all keys are prefixed with prefix.
// A nil inner behaves like [NullCache].
func Scope(inner Cache, prefix string, ttl time.Duration) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	if s, ok := inner.(*Scoped); ok {
		return &Scoped{inner: s.inner, prefix: s.prefix + prefix, ttl: ttl}
	}
	return &Scoped{inner: inner, prefix: prefix, ttl: ttl}
}

// Key returns the backend key for key.
func (s *Scoped) Key(key string) string { return s.prefix + key }

// TTL returns the default expiry applied by [Scoped.SetJSON].
func (s *Scoped) TTL() time.Duration { return s.ttl }

// Get implements [Cache].
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.Key(key))
}

// Set implements [Cache].
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.Key(key), data, ttl)
}

// Delete implements [Cache].
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.Key(key))
}

// Close closes the inner cache.
func (s *Scoped) Close() error { return s.inner.Close() }

// GetJSON decodes the entry for key into v.
// Returns [ErrCacheMiss] when there is no entry. An entry that no longer
// decodes is deleted and reported as a miss.
func (s *Scoped) GetJSON(ctx context.Context, key string, v any) error {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = s.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key with the default TTL.
func (s *Scoped) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, s.ttl)
}

var _ Cache = (*Scoped)(nil)
