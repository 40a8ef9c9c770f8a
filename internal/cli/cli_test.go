package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/qmatter/hofstadter/internal/config"
	"github.com/qmatter/hofstadter/pkg/cache"
	"github.com/qmatter/hofstadter/pkg/catalog"
	"github.com/qmatter/hofstadter/pkg/errors"
)

// isolate points every XDG directory at a temporary tree and moves into
// an empty working directory, so no user config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Chdir(root)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	sort.Strings(names)

	for _, want := range []string{"bands", "butterfly", "cache", "completion", "config", "paths", "plot", "runs"} {
		i := sort.SearchStrings(names, want)
		if i == len(names) || names[i] != want {
			t.Errorf("root command lacks %q (have %v)", want, names)
		}
	}
}

func TestConfigShow(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "hofstadter.toml")
	doc := "[run]\nlattice = \"kagome\"\n\n[catalog]\nbackend = \"none\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"config", "show", "--config", path},
		{"config", "show"}, // found in the working directory
	} {
		out, err := execute(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if !strings.Contains(out, `lattice = "kagome"`) {
			t.Errorf("%v printed:\n%s", args, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "conf", "hofstadter.yaml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Butterfly.Q != config.DefaultButterflyQ {
		t.Errorf("written config has butterfly q = %d", cfg.Butterfly.Q)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}
	if _, err := execute(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestBadConfigFails(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "broken.toml")
	if err := os.WriteFile(path, []byte("[run]\nlatice = \"square\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "config", "show", "--config", path)
	if err == nil {
		t.Fatal("misspelled key accepted")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("error %v is not a configuration error", err)
	}
}

func TestRunsEmptyCatalog(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "hofstadter.toml")
	doc := "[catalog]\nbackend = \"sqlite\"\npath = " + `"` + filepath.ToSlash(filepath.Join(root, "runs.db")) + `"` + "\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "runs", "--config", path); err != nil {
		t.Fatalf("runs: %v", err)
	}

	_, err := execute(t, "runs", "show", "--config", path, "6f1c2a1e-9b7d-4f55-8d2a-0c4b3e5f6a70")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("runs show of an unknown id: %v, want NotFound", err)
	}
	_, err = execute(t, "runs", "show", "--config", path, "nope")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runs show of a malformed id: %v, want InvalidInput", err)
	}
}

func TestNewCache(t *testing.T) {
	dir := t.TempDir()

	c, err := newCache(context.Background(), config.CacheConfig{Backend: config.CacheFile, Dir: dir}, false)
	if err != nil {
		t.Fatalf("newCache(file): %v", err)
	}
	if fc, ok := c.(*cache.FileCache); !ok || fc.Dir() != dir {
		t.Errorf("newCache(file) = %T, want a file cache in %s", c, dir)
	}

	for _, tt := range []struct {
		name    string
		cfg     config.CacheConfig
		noCache bool
	}{
		{"backend none", config.CacheConfig{Backend: config.CacheNone}, false},
		{"--no-cache", config.CacheConfig{Backend: config.CacheFile, Dir: dir}, true},
	} {
		c, err := newCache(context.Background(), tt.cfg, tt.noCache)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if _, ok := c.(*cache.NullCache); !ok {
			t.Errorf("%s: got %T, want a null cache", tt.name, c)
		}
	}
}

func TestNewRunnerWithoutCatalog(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Backend = config.CacheNone
	c.Config.Cache.Scope = "ci"
	c.noCatalog = true

	r, err := c.newRunner(context.Background())
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close()

	if _, ok := r.Catalog.(catalog.Nop); !ok {
		t.Errorf("runner catalog = %T, want catalog.Nop", r.Catalog)
	}
}
