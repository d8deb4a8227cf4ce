package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/breadthfirst/pkg/cache"
	bferrors "github.com/matzehuels/breadthfirst/pkg/errors"
	"github.com/matzehuels/breadthfirst/pkg/pipeline"
	"github.com/matzehuels/breadthfirst/pkg/store"
)

// Cache and store backends selectable in the config file.
const (
	backendNone   = "none"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

// Config is the TOML configuration file.
//
//	[layout]
//	directed = true
//	adjustment = "auto"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	prefix = "staging:"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
type Config struct {
	Layout pipeline.Options `toml:"layout"`
	Cache  CacheConfig      `toml:"cache"`
	Store  StoreConfig      `toml:"store"`
	Server ServerConfig     `toml:"server"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"` // file (default), redis, none
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// StoreConfig selects where the server keeps saved layouts.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory (default), mongo
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures `breadthfirst serve`.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	Metrics        *bool         `toml:"metrics"` // nil means true
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: backendFile},
		Store:  StoreConfig{Backend: backendMemory, Database: appName},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// defaultConfigPath returns the per-user config file path.
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

func defaultConfigHint() string {
	if p, err := defaultConfigPath(); err == nil {
		return p
	}
	return "$XDG_CONFIG_HOME/" + appName + "/config.toml"
}

// loadConfig reads the config file at path over the defaults. An empty path
// means the default location, which may be missing; an explicit path must
// exist. Unknown keys are reported as warnings.
func (c *CLI) loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, bferrors.Wrap(bferrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	for _, key := range md.Undecoded() {
		c.Logger.Warn("unknown config key", "key", key.String(), "file", path)
	}
	c.Logger.Debug("loaded config", "file", path)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Cache.Backend {
	case backendNone, backendFile:
	case backendRedis:
		if cfg.Cache.RedisURL == "" {
			return bferrors.New(bferrors.ErrCodeInvalidOptions, "cache.redis_url is required for the redis backend")
		}
	default:
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid cache.backend %q (must be one of: file, redis, none)", cfg.Cache.Backend)
	}
	switch cfg.Store.Backend {
	case backendMemory:
	case backendMongo:
		if cfg.Store.MongoURI == "" {
			return bferrors.New(bferrors.ErrCodeInvalidOptions, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid store.backend %q (must be one of: memory, mongo)", cfg.Store.Backend)
	}
	return nil
}

// openCache opens the configured cache. noCache forces the null cache.
func (cfg Config) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, bferrors.Wrap(bferrors.ErrCodeCacheUnavailable, err, "connect to redis")
		}
		return c, nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// keyer returns the cache keyer, scoped when a prefix is configured.
func (cfg Config) keyer() cache.Keyer {
	if cfg.Cache.Prefix != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// openStore opens the configured layout store.
func (cfg Config) openStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Backend != backendMongo {
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	if err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeStoreUnavailable, err, "connect to mongo")
	}
	return s, nil
}

// newConfiguredRunner loads the config and builds a runner from it.
func (c *CLI) newConfiguredRunner(ctx context.Context, noCache bool) (*pipeline.Runner, Config, error) {
	cfg, err := c.loadConfig(c.configPath)
	if err != nil {
		return nil, cfg, err
	}
	ch, err := cfg.openCache(ctx, noCache)
	if err != nil {
		return nil, cfg, fmt.Errorf("open cache: %w", err)
	}
	return pipeline.NewRunner(ch, cfg.keyer(), c.Logger), cfg, nil
}
