// Package config handles loading and managing rentscore configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// RENTSCORE_SERVER_PORT.
const EnvPrefix = "RENTSCORE"

// Roster backends.
const (
	BackendNone     = "none"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendGCS      = "gcs"
)

// Config is the top-level configuration for rentscore.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Roster  RosterConfig  `yaml:"roster" mapstructure:"roster"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
}

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	CORSOrigins      []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// EngineConfig selects the primary calculation engine. An empty RemoteURL
// means calculations run in-process only.
type EngineConfig struct {
	RemoteURL   string `yaml:"remote_url" mapstructure:"remote_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RosterConfig selects where tenant rosters are read from.
type RosterConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	LocalPath   string `yaml:"local_path" mapstructure:"local_path"`
	Bucket      string `yaml:"bucket" mapstructure:"bucket"`
	Region      string `yaml:"region" mapstructure:"region"`
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey   string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey   string `yaml:"secret_key" mapstructure:"secret_key"`
	CacheSize   int    `yaml:"cache_size" mapstructure:"cache_size"`
	// CacheTTLSecs bounds how long a cached roster is served; 0 keeps
	// entries until evicted.
	CacheTTLSecs int `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// ScoringConfig controls calculator defaults.
type ScoringConfig struct {
	DefaultCollectionRate float64 `yaml:"default_collection_rate" mapstructure:"default_collection_rate"`
	BatchConcurrency      int     `yaml:"batch_concurrency" mapstructure:"batch_concurrency"` // 0 = GOMAXPROCS
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			CORSOrigins:      []string{"*"},
			ReadTimeoutSecs:  30,
			WriteTimeoutSecs: 60,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Engine: EngineConfig{
			TimeoutSecs: 10,
		},
		Roster: RosterConfig{
			Backend:   BackendNone,
			LocalPath: ".rentscore/rosters",
			CacheSize:    20,
			CacheTTLSecs: 300,
		},
		Scoring: ScoringConfig{
			DefaultCollectionRate: 95,
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.read_timeout_secs", d.Server.ReadTimeoutSecs)
	v.SetDefault("server.write_timeout_secs", d.Server.WriteTimeoutSecs)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("engine.remote_url", d.Engine.RemoteURL)
	v.SetDefault("engine.timeout_secs", d.Engine.TimeoutSecs)
	v.SetDefault("roster.backend", d.Roster.Backend)
	v.SetDefault("roster.database_url", d.Roster.DatabaseURL)
	v.SetDefault("roster.local_path", d.Roster.LocalPath)
	v.SetDefault("roster.bucket", d.Roster.Bucket)
	v.SetDefault("roster.region", d.Roster.Region)
	v.SetDefault("roster.endpoint", d.Roster.Endpoint)
	v.SetDefault("roster.access_key", d.Roster.AccessKey)
	v.SetDefault("roster.secret_key", d.Roster.SecretKey)
	v.SetDefault("roster.cache_size", d.Roster.CacheSize)
	v.SetDefault("roster.cache_ttl_secs", d.Roster.CacheTTLSecs)
	v.SetDefault("scoring.default_collection_rate", d.Scoring.DefaultCollectionRate)
	v.SetDefault("scoring.batch_concurrency", d.Scoring.BatchConcurrency)
}

// Load reads configuration from defaults, the config file at path and the
// environment, in increasing precedence. An empty path searches for
// .rentscore/config.yaml from the working directory up. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = FindConfigFile(wd)
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, eris.Wrapf(err, "config: read %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "config: stat %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if r := c.Scoring.DefaultCollectionRate; r < 0 || r > 100 {
		return eris.Errorf("config: scoring.default_collection_rate %g must be within 0-100", r)
	}
	if c.Scoring.BatchConcurrency < 0 {
		return eris.Errorf("config: scoring.batch_concurrency must not be negative")
	}
	switch c.Roster.Backend {
	case BackendNone, BackendLocal:
	case BackendPostgres:
		if c.Roster.DatabaseURL == "" {
			return eris.New("config: roster.database_url is required for the postgres backend")
		}
	case BackendS3, BackendGCS:
		if c.Roster.Bucket == "" {
			return eris.Errorf("config: roster.bucket is required for the %s backend", c.Roster.Backend)
		}
	default:
		return eris.Errorf("config: unknown roster.backend %q", c.Roster.Backend)
	}
	return nil
}

// Write serialises cfg as YAML to path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "config: create directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// FindConfigFile looks for .rentscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".rentscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
