// Package config loads the TOML configuration shared by the ecad CLI, the
// manager and the HTTP server.
//
// A missing configuration file is not an error: [Load] returns [Default]
// values. Fields absent from the file keep their defaults.
//
//	threads = 8
//	default_format = "bin"
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Draaaaaaven/ecad/pkg/errors"
)

// AppName names the configuration directory.
const AppName = "ecad"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the root configuration.
type Config struct {
	// Threads bounds the workers of a database flatten.
	Threads int `toml:"threads"`
	// DefaultFormat is the archive format used when none is given: bin or xml.
	DefaultFormat string `toml:"default_format"`
	// CircleDiv is the default segment count of circle shapes.
	CircleDiv int `toml:"circle_div"`
	// AutosaveDir receives every open database on shutdown with autosave.
	AutosaveDir string `toml:"autosave_dir"`

	Log           Log           `toml:"log"`
	Store         Store         `toml:"store"`
	MetalFraction MetalFraction `toml:"metal_fraction"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Store selects and configures the archive store backend.
type Store struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// MetalFraction holds defaults for metal fraction mapping.
type MetalFraction struct {
	Grid          [2]int `toml:"grid"`
	MergeGeometry bool   `toml:"merge_geometry"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Threads:       8,
		DefaultFormat: "bin",
		CircleDiv:     12,
		Log:           Log{Level: "info"},
		Store: Store{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "ecad:",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "ecad",
			MongoCollection: "archives",
		},
		MetalFraction: MetalFraction{Grid: [2]int{1, 1}, MergeGeometry: true},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "threads must be at least 1, got %d", c.Threads)
	}
	switch strings.ToLower(c.DefaultFormat) {
	case "bin", "xml":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "default_format must be bin or xml, got %q", c.DefaultFormat)
	}
	if c.CircleDiv < 3 {
		return errors.New(errors.ErrCodeInvalidInput, "circle_div must be at least 3, got %d", c.CircleDiv)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if g := c.MetalFraction.Grid; g[0] < 1 || g[1] < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "metal_fraction.grid must be at least [1, 1], got %v", g)
	}
	return c.Store.Validate()
}

// Validate checks that the selected backend has what it needs.
func (s Store) Validate() error {
	switch s.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if s.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if s.MongoURI == "" || s.MongoDatabase == "" || s.MongoCollection == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri, mongo_database and mongo_collection are required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", s.Backend)
	}
	return nil
}

// Load reads the configuration at path on top of [Default]. An empty path
// searches [SearchPaths]; no file found yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = find()
		if path == "" {
			return cfg, nil
		}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// SearchPaths lists the locations Load tries in order:
// $XDG_CONFIG_HOME/ecad/config.toml, then ~/.config/ecad/config.toml.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName, "config.toml"))
	}
	return paths
}

func find() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
