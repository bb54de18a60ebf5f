package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "maven:search:g:junit")
	if err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "maven:search:g:junit", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "maven:search:g:junit")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get data = %q, want payload", data)
	}

	if err := c.Delete(ctx, "maven:search:g:junit"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "maven:search:g:junit"); hit {
		t.Error("entry should be gone after Delete")
	}

	// Deleting a missing key is fine
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}

	// Zero TTL never expires
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero TTL entry should hit")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry should be gone after Clear")
	}
}

func TestScopedJSON(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	s := Scope(backend, "maven:", time.Hour)

	var got []string
	if err := s.GetJSON(ctx, "versions", &got); err != ErrCacheMiss {
		t.Fatalf("GetJSON before Set = %v, want ErrCacheMiss", err)
	}

	if err := s.SetJSON(ctx, "versions", []string{"1.0", "2.0"}); err != nil {
		t.Fatalf("SetJSON error: %v", err)
	}
	if err := s.GetJSON(ctx, "versions", &got); err != nil {
		t.Fatalf("GetJSON error: %v", err)
	}
	if len(got) != 2 || got[0] != "1.0" || got[1] != "2.0" {
		t.Errorf("GetJSON = %v", got)
	}

	// The backend sees the prefixed key
	if _, hit, _ := backend.Get(ctx, "maven:versions"); !hit {
		t.Error("backend should hold maven:versions")
	}

	// Nested scopes concatenate prefixes
	nested := Scope(s, "search:", time.Minute)
	if k := nested.Key("q"); k != "maven:search:q" {
		t.Errorf("nested key = %q", k)
	}
	if nested.TTL() != time.Minute {
		t.Errorf("nested TTL = %v", nested.TTL())
	}
}

func TestScopedCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	s := Scope(backend, "p:", 0)
	if err := s.Set(ctx, "k", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	var v map[string]any
	if err := s.GetJSON(ctx, "k", &v); err != ErrCacheMiss {
		t.Errorf("GetJSON corrupt = %v, want ErrCacheMiss", err)
	}
	if _, hit, _ := backend.Get(ctx, "p:k"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestScopeNilInner(t *testing.T) {
	s := Scope(nil, "x:", 0)
	if _, hit, err := s.Get(context.Background(), "k"); hit || err != nil {
		t.Errorf("nil inner should behave like NullCache, hit=%v err=%v", hit, err)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache should fail when Redis is unreachable")
	}
}
