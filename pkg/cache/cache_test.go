package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bands:x"); hit || err != nil {
		t.Fatalf("empty cache Get = (%v, %v)", hit, err)
	}

	if err := c.Set(ctx, "bands:x", []byte("spectrum"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "bands:x")
	if err != nil || !hit || string(data) != "spectrum" {
		t.Fatalf("Get = (%q, %v, %v), want spectrum hit", data, hit, err)
	}

	entries, size, err := c.Stats()
	if err != nil || entries != 1 || size == 0 {
		t.Errorf("Stats = (%d, %d, %v), want one non-empty entry", entries, size, err)
	}

	if err := c.Delete(ctx, "bands:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "bands:x"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "bands:x"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry reported as hit")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = (%v, %v), want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for i := range 3 {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _, err := c.Stats()
	if err != nil || entries != 0 {
		t.Errorf("Stats after Clear = (%d, %v)", entries, err)
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir missing after Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := BandsKeyOpts{Lattice: "square", P: 1, Q: 4, A0: 1, T: []float64{1}, Samples: 101}

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"same bands", k.BandsKey(base), k.BandsKey(base), true},
		{"flux differs", k.BandsKey(base), k.BandsKey(BandsKeyOpts{Lattice: "square", P: 3, Q: 4, A0: 1, T: []float64{1}, Samples: 101}), false},
		{"hopping differs", k.BandsKey(base), k.BandsKey(BandsKeyOpts{Lattice: "square", P: 1, Q: 4, A0: 1, T: []float64{1, 0.5}, Samples: 101}), false},
		{"butterfly q differs", k.ButterflyKey(ButterflyKeyOpts{Lattice: "square", Q: 97}), k.ButterflyKey(ButterflyKeyOpts{Lattice: "square", Q: 89}), false},
		{"artifact format differs", k.ArtifactKey("h", ArtifactKeyOpts{Kind: "bands", Format: "svg"}), k.ArtifactKey("h", ArtifactKeyOpts{Kind: "bands", Format: "png"}), false},
		{"artifact result differs", k.ArtifactKey("h1", ArtifactKeyOpts{Kind: "bands"}), k.ArtifactKey("h2", ArtifactKeyOpts{Kind: "bands"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.a == tt.b) != tt.same {
				t.Errorf("keys %s and %s: same = %v, want %v", tt.a, tt.b, tt.a == tt.b, tt.same)
			}
		})
	}

	if key := k.BandsKey(base); !strings.HasPrefix(key, "bands:") {
		t.Errorf("BandsKey prefix: %s", key)
	}
	if key := k.ButterflyKey(ButterflyKeyOpts{}); !strings.HasPrefix(key, "butterfly:") {
		t.Errorf("ButterflyKey prefix: %s", key)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "lab-a:")

	opts := ButterflyKeyOpts{Lattice: "honeycomb", Q: 97}
	if got, want := scoped.ButterflyKey(opts), "lab-a:"+inner.ButterflyKey(opts); got != want {
		t.Errorf("ButterflyKey = %s, want %s", got, want)
	}
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, "lab-a:artifact:") {
		t.Errorf("ArtifactKey should be prefixed: %s", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.BandsKey(BandsKeyOpts{}); got != "p:"+inner.BandsKey(BandsKeyOpts{}) {
		t.Errorf("nil inner keyer: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message not preserved: %s", err)
	}
	if IsRetryable(ErrNotFound) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 1, false},
		{"non-retryable stops", 5, ErrNotFound, 1, true},
		{"retry then succeed", 1, Retryable(ErrNetwork), 2, false},
		{"gives up after three", 5, Retryable(ErrNetwork), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(context.DeadlineExceeded); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("deadline should be a retryable network error: %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if err := classify(plain); err != plain {
		t.Errorf("classify(plain) = %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("HOFSTADTER_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOFSTADTER_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: fmt.Sprintf("test:%d:", time.Now().UnixNano())})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty = (%v, %v)", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Fatalf("Get = (%q, %v, %v)", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry present after Delete")
	}
}
