// Package config loads project settings from .docblock.toml or
// .docblock.kdl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/utils"
)

// File names searched by Discover, in order.
var FileNames = []string{".docblock.kdl", ".docblock.toml"}

type Config struct {
	Roots         []string `toml:"roots"`
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	Languages     []string `toml:"languages"`
	ReservedNames []string `toml:"reserved_names"`
	Workers       int      `toml:"workers"`
	Cache         Cache    `toml:"cache"`
	Server        Server   `toml:"server"`
	Output        Output   `toml:"output"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Server struct {
	Addr string `toml:"addr"`
	// Engine is one of echo, gin or fiber.
	Engine string `toml:"engine"`
}

type Output struct {
	// Format is one of text, table or json.
	Format string `toml:"format"`
}

var (
	engines = []string{"echo", "gin", "fiber"}
	formats = []string{"text", "table", "json"}
	langs   = map[string]bool{"go": true, "php": true}
)

func Default() *Config {
	return &Config{
		Roots:     []string{"./..."},
		Include:   []string{"**/*.go", "**/*.php"},
		Exclude:   []string{"**/*_test.go"},
		Languages: []string{"go", "php"},
		Workers:   runtime.GOMAXPROCS(0),
		Cache: Cache{
			Enabled: true,
			Path:    ".docblock.cache",
		},
		Server: Server{Addr: ":8080", Engine: "echo"},
		Output: Output{Format: "text"},
	}
}

// Load reads path over the defaults. The format follows the extension. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, docerrors.WrapConfigurationError(path, "read", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".kdl":
		err = parseKDL(string(data), cfg)
	default:
		err = fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, docerrors.WrapConfigurationError(path, "parse", err)
	}

	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(filepath.Dir(path), cfg.Cache.Path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, docerrors.WrapConfigurationError(path, "validate", err)
	}
	return cfg, nil
}

// Discover returns the first configuration file found in dir, or "".
func Discover(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p utils.Problems
	utils.Check(&p, c.Roots, utils.SliceNotEmpty[string]("roots", "at least one root is required"))
	utils.CheckEach(&p, append(append([]string(nil), c.Include...), c.Exclude...),
		utils.Custom("patterns", doublestar.ValidatePattern, "invalid pattern %q"))
	utils.CheckEach(&p, c.Languages,
		utils.Custom("languages", func(l string) bool { return langs[strings.ToLower(l)] }, "unsupported language %q"))
	utils.Check(&p, c.Workers, utils.Positive("workers", "workers must be positive"))
	utils.Check(&p, c.Cache, utils.Custom("cache.path", func(cc Cache) bool { return !cc.Enabled || cc.Path != "" },
		"cache path is required when the cache is enabled"))
	utils.Check(&p, c.Server.Engine, utils.IsOneOf("server.engine", "unknown server engine %q", engines...))
	utils.Check(&p, c.Output.Format, utils.IsOneOf("output.format", "unknown output format %q", formats...))
	return p.Err()
}
