// Package config loads hofstadter configuration files.
//
// A config file holds the defaults a user wants for every run: model,
// sampling, output formats, and the cache and catalog backends. Command
// line flags override file values. Both TOML and YAML are accepted; the
// file extension picks the parser.
//
//	[run]
//	lattice = "triangular"
//	t = [1.0, 0.25]
//	nphi = [1, 5]
//	samples = 51
//
//	[butterfly]
//	q = 97
//	color = "avron"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[catalog]
//	backend = "sqlite"
//
// Config file locations are listed on [FindConfigPath].
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/qmatter/hofstadter/pkg/catalog"
	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/pipeline"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	CatalogSQLite = "sqlite"
	CatalogMongo  = "mongo"
	CatalogNone   = "none"
)

// Default values that have no pipeline counterpart.
const (
	DefaultP             = 1
	DefaultQ             = 4
	DefaultButterflyQ    = 199
	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPrefix   = "hofstadter:"
	DefaultMongoDatabase = "hofstadter"
	catalogFileName      = "runs.db"
)

// Config is the complete file configuration.
type Config struct {
	Run       RunConfig       `toml:"run" yaml:"run"`
	Butterfly ButterflyConfig `toml:"butterfly" yaml:"butterfly"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Catalog   CatalogConfig   `toml:"catalog" yaml:"catalog"`
}

// RunConfig holds model and band-structure settings.
type RunConfig struct {
	Lattice      string    `toml:"lattice" yaml:"lattice"`
	T            []float64 `toml:"t" yaml:"t"`
	A0           float64   `toml:"a0,omitempty" yaml:"a0,omitempty"`
	Nphi         []int     `toml:"nphi" yaml:"nphi"` // [p, q]
	Samples      int       `toml:"samples" yaml:"samples"`
	GapThreshold float64   `toml:"bgt" yaml:"bgt"`
	Workers      int       `toml:"workers,omitempty" yaml:"workers,omitempty"`
	Formats      []string  `toml:"formats" yaml:"formats"`
	Display      string    `toml:"display" yaml:"display"`
	Wilson       bool      `toml:"wilson" yaml:"wilson"`
	OutDir       string    `toml:"out_dir" yaml:"out_dir"`
}

// ButterflyConfig holds flux-sweep settings.
type ButterflyConfig struct {
	Q       int    `toml:"q" yaml:"q"`
	Color   string `toml:"color" yaml:"color"`
	Palette string `toml:"palette" yaml:"palette"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend" yaml:"backend"` // file, redis or none
	Dir           string   `toml:"dir,omitempty" yaml:"dir,omitempty"`
	RedisAddr     string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string   `toml:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	RedisPrefix   string   `toml:"redis_prefix" yaml:"redis_prefix"`
	Scope         string   `toml:"scope,omitempty" yaml:"scope,omitempty"` // key namespace for shared caches
	TTL           Duration `toml:"ttl,omitempty" yaml:"ttl,omitempty"` // zero keeps per-kind lifetimes
}

// CatalogConfig selects the run catalog.
type CatalogConfig struct {
	Backend  string `toml:"backend" yaml:"backend"` // sqlite, mongo or none
	Path     string `toml:"path,omitempty" yaml:"path,omitempty"`
	URI      string `toml:"uri,omitempty" yaml:"uri,omitempty"`
	Database string `toml:"database,omitempty" yaml:"database,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none is
// found. The second return value is the path that was loaded.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Unknown keys are errors.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Parse decodes a config document; ext (".toml", ".yaml" or ".yml")
// selects the syntax.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %v", undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves the defaults.
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (want .toml or .yaml)", ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path in the syntax its extension names.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		buf.Write(data)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (want .toml or .yaml)", filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values.
func (c *Config) applyDefaults() {
	r := &c.Run
	if r.Lattice == "" {
		r.Lattice = string(pipeline.DefaultLattice)
	}
	if len(r.T) == 0 {
		r.T = []float64{1}
	}
	if r.A0 == 0 {
		r.A0 = pipeline.DefaultLatticeConstant
	}
	if len(r.Nphi) == 0 {
		r.Nphi = []int{DefaultP, DefaultQ}
	}
	if r.Samples == 0 {
		r.Samples = pipeline.DefaultSamples
	}
	if r.GapThreshold == 0 {
		r.GapThreshold = pipeline.DefaultGapThreshold
	}
	if len(r.Formats) == 0 {
		r.Formats = []string{pipeline.FormatSVG}
	}
	if r.Display == "" {
		r.Display = string(pipeline.DefaultDisplay)
	}
	if r.OutDir == "" {
		r.OutDir = "."
	}

	b := &c.Butterfly
	if b.Q == 0 {
		b.Q = DefaultButterflyQ
	}
	if b.Color == "" {
		b.Color = string(pipeline.DefaultColoring)
	}
	if b.Palette == "" {
		b.Palette = pipeline.DefaultPalette
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = DefaultRedisPrefix
	}

	if c.Catalog.Backend == "" {
		c.Catalog.Backend = CatalogSQLite
	}
	if c.Catalog.Database == "" {
		c.Catalog.Database = DefaultMongoDatabase
	}
}

// Validate checks the settings that are not validated by the pipeline.
func (c *Config) Validate() error {
	if len(c.Run.Nphi) != 2 {
		return errors.New(errors.ErrCodeInvalidInput, "run.nphi must be [p, q], got %v", c.Run.Nphi)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Catalog.Backend {
	case CatalogSQLite, CatalogNone:
	case CatalogMongo:
		if c.Catalog.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "catalog.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown catalog backend %q (want sqlite, mongo or none)", c.Catalog.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// BandsOptions returns the pipeline options of a band-structure run.
func (c *Config) BandsOptions() pipeline.Options {
	r := c.Run
	opts := pipeline.Options{
		Lattice:      r.Lattice,
		T:            append([]float64(nil), r.T...),
		A0:           r.A0,
		Samples:      r.Samples,
		GapThreshold: r.GapThreshold,
		Wilson:       r.Wilson,
		Workers:      r.Workers,
		Formats:      append([]string(nil), r.Formats...),
		Display:      r.Display,
		Palette:      c.Butterfly.Palette,
		OutDir:       r.OutDir,
	}
	if len(r.Nphi) == 2 {
		opts.P, opts.Q = r.Nphi[0], r.Nphi[1]
	}
	return opts
}

// ButterflyOptions returns the pipeline options of a butterfly sweep.
func (c *Config) ButterflyOptions() pipeline.Options {
	r, b := c.Run, c.Butterfly
	return pipeline.Options{
		Lattice:      r.Lattice,
		Q:            b.Q,
		T:            append([]float64(nil), r.T...),
		A0:           r.A0,
		GapThreshold: r.GapThreshold,
		Workers:      r.Workers,
		Formats:      append([]string(nil), r.Formats...),
		Color:        b.Color,
		Palette:      b.Palette,
		OutDir:       r.OutDir,
	}
}

// CatalogConfig returns the catalog backend settings. An empty SQLite
// path resolves to runs.db in [DataDir].
func (c *Config) CatalogConfig() (catalog.Config, error) {
	cfg := catalog.Config{
		Backend:  c.Catalog.Backend,
		Path:     c.Catalog.Path,
		URI:      c.Catalog.URI,
		Database: c.Catalog.Database,
	}
	if cfg.Backend == CatalogSQLite && cfg.Path == "" {
		dir, err := DataDir()
		if err != nil {
			return cfg, fmt.Errorf("data dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cfg, fmt.Errorf("create data dir: %w", err)
		}
		cfg.Path = filepath.Join(dir, catalogFileName)
	}
	return cfg, nil
}

// Duration is a time.Duration written as a string ("72h") in both TOML
// and YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}
