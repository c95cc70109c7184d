// Package config loads polagram.toml project files.
//
// A project file names the lenses of a project and the defaults of the
// command-line tool:
//
//	[cache]
//	backend = "file"               # file | redis | none
//	ttl = "168h"
//
//	[output]
//	formats = ["mermaid", "plantuml"]
//	dir = "views"
//
//	[[lens]]
//	name = "public"
//	  [[lens.layer]]
//	  action = "remove"
//	  selector = { kind = "participant", name = "Logger" }
//	  [[lens.layer]]
//	  action = "resolve"
//	  expr = "fragment[text=Success]"
//
// A layer gives its selector either as a table or as a compact expression
// (see selector.ParseExpr), never both. Unknown keys are rejected so typos
// do not silently change a view.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	perrors "github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/lens"
	"github.com/matzehuels/polagram/pkg/pipeline"
	"github.com/matzehuels/polagram/pkg/selector"
)

// FileName is the name of the project file.
const FileName = "polagram.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults.
const (
	DefaultBackend   = BackendFile
	DefaultOutputDir = "views"
	DefaultTTL       = 7 * 24 * time.Hour
)

// Config is a decoded project file.
type Config struct {
	Cache  CacheConfig  `toml:"cache" json:"cache"`
	Output OutputConfig `toml:"output" json:"output"`
	Lenses []LensConfig `toml:"lens" json:"lens,omitempty"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-" json:"-"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string        `toml:"backend" json:"backend,omitempty" jsonschema:"enum=file,enum=redis,enum=none"`
	Dir      string        `toml:"dir" json:"dir,omitempty"`
	RedisURL string        `toml:"redis_url" json:"redis_url,omitempty"`
	TTL      time.Duration `toml:"ttl" json:"ttl,omitempty"`
}

// OutputConfig sets the default output formats and directory of builds.
type OutputConfig struct {
	Formats []string `toml:"formats" json:"formats,omitempty"`
	Dir     string   `toml:"dir" json:"dir,omitempty"`
}

// LensConfig is a lens as written in the project file.
type LensConfig struct {
	Name        string        `toml:"name" json:"name"`
	Description string        `toml:"description" json:"description,omitempty"`
	Layers      []LayerConfig `toml:"layer" json:"layer,omitempty"`
}

// LayerConfig is one layer as written in the project file.
type LayerConfig struct {
	Action   string             `toml:"action" json:"action"`
	Selector *selector.Selector `toml:"selector" json:"selector,omitempty"`
	Expr     string             `toml:"expr" json:"expr,omitempty"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads and validates the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes and validates a project file.
func Parse(data []byte) (*Config, error) {
	var c Config
	meta, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "failed to parse TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Find looks for polagram.toml in startDir and its parents. It returns the
// path and whether a file was found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func (c *Config) setDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultBackend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultTTL
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			result = multierror.Append(result, fmt.Errorf("cache: redis backend requires redis_url"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("cache: unknown backend %q (must be one of: file, redis, none)", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		result = multierror.Append(result, fmt.Errorf("cache: ttl must not be negative"))
	}
	if err := pipeline.ValidateFormats(c.Output.Formats); err != nil {
		result = multierror.Append(result, fmt.Errorf("output: %w", err))
	}

	var seen []string
	for i, lc := range c.Lenses {
		if slices.Contains(seen, lc.Name) {
			result = multierror.Append(result, fmt.Errorf("lens %d: duplicate lens name %q", i+1, lc.Name))
			continue
		}
		seen = append(seen, lc.Name)
		if _, err := lc.Lens(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	return nil
}

// Lens converts the configured lens and validates it.
func (lc LensConfig) Lens() (lens.Lens, error) {
	l := lens.Lens{Name: lc.Name, Description: lc.Description}
	var result *multierror.Error
	for i, layer := range lc.Layers {
		sel, err := layer.selector()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("layer %d: %w", i+1, err))
			continue
		}
		l.Layers = append(l.Layers, lens.Layer{Action: lens.Action(layer.Action), Selector: sel})
	}
	if err := result.ErrorOrNil(); err != nil {
		return lens.Lens{}, perrors.Wrap(perrors.ErrCodeInvalidLens, err, "invalid lens %q", lc.Name)
	}
	if err := l.Validate(); err != nil {
		return lens.Lens{}, err
	}
	return l, nil
}

func (lc LayerConfig) selector() (selector.Selector, error) {
	switch {
	case lc.Selector != nil && lc.Expr != "":
		return selector.Selector{}, fmt.Errorf("selector and expr are mutually exclusive")
	case lc.Selector != nil:
		return *lc.Selector, nil
	case lc.Expr != "":
		return selector.ParseExpr(lc.Expr)
	}
	return selector.Selector{}, fmt.Errorf("selector or expr is required")
}

// Lens returns the configured lens with the given name.
func (c *Config) Lens(name string) (lens.Lens, error) {
	for _, lc := range c.Lenses {
		if lc.Name == name {
			return lc.Lens()
		}
	}
	return lens.Lens{}, perrors.New(perrors.ErrCodeNotFound, "lens %q is not defined%s", name, c.where())
}

// AllLenses returns every configured lens in file order.
func (c *Config) AllLenses() ([]lens.Lens, error) {
	out := make([]lens.Lens, 0, len(c.Lenses))
	for _, lc := range c.Lenses {
		l, err := lc.Lens()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (c *Config) where() string {
	if c.Path == "" {
		return ""
	}
	return " in " + c.Path
}
