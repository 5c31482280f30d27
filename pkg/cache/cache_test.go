package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
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

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Policy: "walshaw", Seed: 1})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Policy: "walshaw", Seed: 2})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Policy: "walshaw", Seed: 1}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey unexpected prefix: %s", lk1)
	}

	// Same options, different graphs
	if lk1 == k.LayoutKey("hash456", LayoutKeyOpts{Policy: "walshaw", Seed: 1}) {
		t.Error("Different graph hashes should produce different keys")
	}

	// DiscretiseKey
	dk1 := k.DiscretiseKey("hash123", DiscretiseKeyOpts{Times: []float64{1, 2}})
	dk2 := k.DiscretiseKey("hash123", DiscretiseKeyOpts{Times: []float64{1, 2}, Radius: 0.5})
	if dk1 == dk2 {
		t.Error("Different DiscretiseKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Time: 1})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot", Time: 1})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:svg:") {
		t.Errorf("ArtifactKey unexpected prefix: %s", ak1)
	}
}

func TestWithScope(t *testing.T) {
	inner := NewDefaultKeyer()
	opts := LayoutKeyOpts{Policy: "solar_merger"}

	for _, scope := range []string{"staging", "staging:"} {
		k := WithScope(inner, scope)
		if got, want := k.LayoutKey("h", opts), "staging:"+inner.LayoutKey("h", opts); got != want {
			t.Errorf("WithScope(%q).LayoutKey = %s, want %s", scope, got, want)
		}
	}

	k := WithScope(nil, "tenant-7")
	if got := k.DiscretiseKey("h", DiscretiseKeyOpts{}); !strings.HasPrefix(got, "tenant-7:discretise:v1:") {
		t.Errorf("DiscretiseKey = %s", got)
	}
	if got := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "tenant-7:artifact:svg:") {
		t.Errorf("ArtifactKey = %s", got)
	}

	if WithScope(inner, "") != inner {
		t.Error("an empty scope should return the inner keyer")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get missing = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "a", []byte("alpha"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "alpha" {
		t.Fatalf("Get a = %q, hit %v, err %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted entry should be a miss")
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir not empty: %d entries", len(entries))
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	buf := []byte("alpha")
	if err := c.Set(ctx, "a", buf, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	buf[0] = 'X'
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "alpha" {
		t.Fatalf("Get a = %q, hit %v; Set must copy the data", data, hit)
	}

	// "a" was read last, so "b" is evicted when "c" arrives.
	_ = c.Set(ctx, "b", []byte("beta"), 0)
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("gamma"), 0)
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("recently used entry should survive")
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted entry should be a miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, Len = %d", c.Len())
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "layout:v1:keep", []byte("k"), 0)
	_ = c.Set(ctx, "layout:v1:old", []byte("o"), time.Minute)
	corrupt := c.path("artifact:v1:bad")
	if err := os.MkdirAll(filepath.Dir(corrupt), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Hour)
	n, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Errorf("Prune removed %d entries, want 2", n)
	}
	if _, hit, _ := c.Get(ctx, "layout:v1:keep"); !hit {
		t.Error("entry without ttl should survive Prune")
	}

	entry, err := readEntry(c.path("layout:v1:keep"))
	if err != nil {
		t.Fatalf("readEntry: %v", err)
	}
	if entry.Kind != "layout" {
		t.Errorf("Kind = %q, want layout", entry.Kind)
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	defer func(prev func() backoff.BackOff) { newBackOff = prev }(newBackOff)
	newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
	}

	calls := 0
	if err := withRetry(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	err := withRetry(ctx, func() error { calls++; return errPermanent })
	if !errors.Is(err, errPermanent) || calls != 1 {
		t.Errorf("permanent error: err %v, calls %d; want no retry", err, calls)
	}

	calls = 0
	err = withRetry(ctx, func() error {
		calls++
		if calls < 2 {
			return fmt.Errorf("%w: reset", ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("transient error: err %v, calls %d; want success on retry", err, calls)
	}

	calls = 0
	err = withRetry(ctx, func() error { calls++; return ErrNetwork })
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted retries: err %v, calls %d; want 3 attempts", err, calls)
	}
}

var errPermanent = errors.New("permanent")

func TestWithRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, func() error { return ErrNetwork })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("withRetry() = %v, want context.Canceled", err)
	}
}

func TestTransient(t *testing.T) {
	if !transient(io.EOF) {
		t.Error("EOF should be transient")
	}
	if !transient(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Error("net.OpError should be transient")
	}
	if transient(errors.New("WRONGTYPE")) {
		t.Error("protocol errors should not be retried")
	}
	if err := classify("get", "k", io.EOF); !errors.Is(err, ErrNetwork) {
		t.Errorf("classify(EOF) = %v, want ErrNetwork", err)
	}
}
