package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Cache     CacheConfig     `yaml:"cache"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DataConfig holds the on-disk layout of normalized message files.
type DataConfig struct {
	ProcessedDir string `yaml:"processed_dir"`
}

// CacheConfig holds aggregation cache configuration.
// Type selects the backend: "local" persists one JSON file per entry under
// LocalPath, "redis" stores entries under KeyPrefix on the given server.
type CacheConfig struct {
	Type      string `yaml:"type"`
	LocalPath string `yaml:"local_path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// TokenizerConfig selects the token counting implementation.
// "words" splits on non-word runes, "runes" counts runes, "none" disables
// counting (ingestion of text messages then fails fast).
type TokenizerConfig struct {
	Type string `yaml:"type"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 2233
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Data.ProcessedDir == "" {
		cfg.Data.ProcessedDir = "data/processed"
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "local"
	}
	if cfg.Cache.LocalPath == "" {
		cfg.Cache.LocalPath = "cache"
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "insight:cache:"
	}
	if cfg.Tokenizer.Type == "" {
		cfg.Tokenizer.Type = "words"
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so local
// overrides can live in .env and real env vars win in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dir := os.Getenv("INSIGHT_PROCESSED_DIR"); dir != "" {
		cfg.Data.ProcessedDir = dir
	}
	if cacheType := os.Getenv("INSIGHT_CACHE_TYPE"); cacheType != "" {
		cfg.Cache.Type = cacheType
	}
	if path := os.Getenv("INSIGHT_CACHE_PATH"); path != "" {
		cfg.Cache.LocalPath = path
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}

	return cfg, nil
}

// Default returns a configuration with every field set to its default,
// used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
