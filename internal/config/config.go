package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the vitrine configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Store        StoreConfig        `yaml:"store"`
	Index        IndexConfig        `yaml:"index"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Exhibit      ExhibitConfig      `yaml:"exhibit"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	APIKey          string   `yaml:"api_key"`        // no keys at all disables auth
	ExtraAPIKeys    []string `yaml:"extra_api_keys"` // accepted during key rotation
	PublicReads     bool     `yaml:"public_reads"`   // GET/HEAD without a token
	CORSOrigins     []string `yaml:"cors_origins"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
}

// StoreConfig selects and configures the entity store.
type StoreConfig struct {
	Driver   string         `yaml:"driver"` // redis, postgres (default: redis)
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds Redis/Valkey connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// FieldsConfig maps index fields onto projected document attributes.
type FieldsConfig struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Thumbnail   string `yaml:"thumbnail"`
	URL         string `yaml:"url"`
}

// IndexConfig selects and configures the external document index.
type IndexConfig struct {
	Backend     string           `yaml:"backend"` // redisearch, solr (default: redisearch)
	TimeoutMs   int              `yaml:"timeout_ms"`
	Fields      FieldsConfig     `yaml:"fields"`
	URLTemplate string           `yaml:"url_template"`
	RediSearch  RediSearchConfig `yaml:"redisearch"`
	Solr        SolrConfig       `yaml:"solr"`
}

// RediSearchConfig holds settings of the RediSearch backend.
type RediSearchConfig struct {
	Index       string   `yaml:"index"`
	Prefix      string   `yaml:"prefix"`
	FacetFields []string `yaml:"facet_fields"`
	Create      bool     `yaml:"create"` // create the index at startup if missing
}

// SolrConfig holds settings of the Solr backend.
type SolrConfig struct {
	URL     string `yaml:"url"`
	Core    string `yaml:"core"`
	Retries int    `yaml:"retries"`
}

// AutocompleteConfig holds type-ahead settings.
type AutocompleteConfig struct {
	PageSize    int `yaml:"page_size"`
	CacheTTLSec int `yaml:"cache_ttl_sec"` // 0 disables the response cache
}

// ExhibitConfig names the default exhibit created at startup.
type ExhibitConfig struct {
	DefaultSlug  string `yaml:"default_slug"`
	DefaultTitle string `yaml:"default_title"`
	EnsureOnBoot bool   `yaml:"ensure_on_boot"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment references in data, decodes it, applies
// defaults and validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// IndexTimeout returns the bound applied to each index call.
func (c *Config) IndexTimeout() time.Duration {
	return time.Duration(c.Index.TimeoutMs) * time.Millisecond
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = 10
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = 10
	}
	if c.Server.ShutdownSec <= 0 {
		c.Server.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "redis"
	}
	if c.Store.Redis.ReadinessTimeout <= 0 {
		c.Store.Redis.ReadinessTimeout = 10
	}
	if c.Store.Postgres.MaxOpenConns <= 0 {
		c.Store.Postgres.MaxOpenConns = 10
	}
	if c.Index.Backend == "" {
		c.Index.Backend = "redisearch"
	}
	if c.Index.TimeoutMs <= 0 {
		c.Index.TimeoutMs = 2000
	}
	if c.Index.Fields.ID == "" {
		c.Index.Fields.ID = "id"
	}
	if c.Index.Fields.Title == "" {
		c.Index.Fields.Title = "title"
	}
	if c.Index.Fields.Description == "" {
		c.Index.Fields.Description = "description"
	}
	if c.Index.Fields.Thumbnail == "" {
		c.Index.Fields.Thumbnail = "thumbnail_url"
	}
	if c.Index.URLTemplate == "" && c.Index.Fields.URL == "" {
		c.Index.URLTemplate = "/exhibits/{exhibit}/catalog/{id}"
	}
	if c.Index.RediSearch.Index == "" {
		c.Index.RediSearch.Index = "vitrine:catalog:idx"
	}
	if c.Index.RediSearch.Prefix == "" {
		c.Index.RediSearch.Prefix = "vitrine:catalog:"
	}
	if c.Index.Solr.Core == "" {
		c.Index.Solr.Core = "blacklight-core"
	}
	if c.Autocomplete.PageSize <= 0 {
		c.Autocomplete.PageSize = 10
	}
	if c.Exhibit.DefaultSlug == "" {
		c.Exhibit.DefaultSlug = "default"
	}
	if c.Exhibit.DefaultTitle == "" {
		c.Exhibit.DefaultTitle = "Default exhibit"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case "redis":
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required")
		}
	default:
		return fmt.Errorf("store.driver must be \"redis\" or \"postgres\", got %q", c.Store.Driver)
	}
	switch c.Index.Backend {
	case "redisearch":
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("index.backend redisearch needs store.redis.addrs")
		}
	case "solr":
		if c.Index.Solr.URL == "" {
			return fmt.Errorf("index.solr.url is required")
		}
	default:
		return fmt.Errorf("index.backend must be \"redisearch\" or \"solr\", got %q", c.Index.Backend)
	}
	if c.Autocomplete.PageSize > 100 {
		return fmt.Errorf("autocomplete.page_size must be at most 100, got %d", c.Autocomplete.PageSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
