package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/internal/config"
	"github.com/qmatter/hofstadter/pkg/buildinfo"
	"github.com/qmatter/hofstadter/pkg/cache"
	"github.com/qmatter/hofstadter/pkg/catalog"
	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config *config.Config

	configPath string // --config
	noCache    bool   // --no-cache
	noCatalog  bool   // --no-catalog
}

// New creates a new CLI instance with a default logger and the default
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Hofstadter computes band structures and butterflies of lattices in a magnetic field",
		Long: `Hofstadter computes the band structure, Berry curvature, Chern numbers and
Wannier centers of tight-binding lattices threaded by a rational magnetic
flux n_phi = p/q, and sweeps the flux to draw the Hofstadter butterfly.

Defaults come from a config file (see 'hofstadter config path'); flags
override them. Results are cached and every saved run is recorded in a
local catalog (see 'hofstadter runs').`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search $HOFSTADTER_CONFIG, ./hofstadter.toml, ~/.config/hofstadter/)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")
	root.PersistentFlags().BoolVar(&c.noCatalog, "no-catalog", false, "do not record runs in the catalog")

	root.AddCommand(c.bandsCommand())
	root.AddCommand(c.butterflyCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.pathsCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or searches the default locations.
func (c *CLI) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, path, err = config.LoadFromPath(c.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A catalog that cannot
// be opened is reported and replaced by one that records nothing.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, c.Config.Cache, c.noCache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if scope := c.Config.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.Version = buildinfo.Version
	runner.TTL = c.Config.Cache.TTL.Std()

	if !c.noCatalog {
		cat, err := c.openCatalog(ctx)
		if err != nil {
			c.Logger.Warn("run catalog unavailable", "err", err)
		} else {
			runner.Catalog = cat
		}
	}
	return runner, nil
}

func (c *CLI) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	cfg, err := c.Config.CatalogConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(ctx, cfg)
}

// newCache opens the configured cache backend. A file cache whose
// directory cannot be determined falls back to no caching.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		return rc, nil
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the file cache directory: the configured one, or the
// XDG default (~/.cache/hofstadter/).
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
