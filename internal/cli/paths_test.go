package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmatter/hofstadter/internal/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(config.CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".cache", appName)) {
		t.Errorf("cacheDir() = %q, want it under ~/.cache/%s", dir, appName)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir(config.CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir(config.CacheConfig{Dir: "/srv/hofstadter-cache"})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/hofstadter-cache" {
		t.Errorf("cacheDir() = %q, want the configured directory", dir)
	}
}

func TestOutputDir(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "runs/band_structure_square_nphi_1_4_t_1.json", "runs"},
		{"", "bundle.json", "."},
		{"figures", "runs/bundle.json", "figures"},
	}
	for _, tt := range tests {
		if got := outputDir(tt.output, tt.input); got != tt.want {
			t.Errorf("outputDir(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}
