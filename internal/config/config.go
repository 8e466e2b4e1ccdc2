package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Query     QueryConfig     `mapstructure:"query"`
	Cache     CacheConfig     `mapstructure:"cache"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Watch     WatchConfig     `mapstructure:"watch"`
	NATS      NATSConfig      `mapstructure:"nats"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Debug   bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the visit source
type DataConfig struct {
	FilePath         string `mapstructure:"file_path"`          // .csv, or .db/.sqlite/.sqlite3
	SQLiteTable      string `mapstructure:"sqlite_table"`       // table read when FilePath is SQLite
	BusinessDaysPath string `mapstructure:"business_days_path"` // optional calendar CSV
}

// IngestConfig tunes the bulk loader
type IngestConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size"`
	Workers           int           `mapstructure:"workers"`
	ParallelThreshold int           `mapstructure:"parallel_threshold"` // below this row count one worker is used
	Timeout           time.Duration `mapstructure:"timeout"`            // 0 disables the load deadline
	MaxDiagnostics    int           `mapstructure:"max_diagnostics"`
}

type QueryConfig struct {
	MaxRecordsPerRequest int `mapstructure:"max_records_per_request"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	AllowedCredentials bool     `mapstructure:"allowed_credentials"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// WatchConfig controls reloading when the source file changes
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// NATSConfig enables reload notifications when URL is set
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Legacy environment names kept working next to the VISITS_ prefixed ones
var legacyEnv = map[string]string{
	"app.name":                      "APP_NAME",
	"app.version":                   "APP_VERSION",
	"app.debug":                     "DEBUG",
	"server.host":                   "HOST",
	"server.port":                   "PORT",
	"data.file_path":                "DATA_FILE_PATH",
	"query.max_records_per_request": "MAX_RECORDS_PER_REQUEST",
	"cors.allowed_origins":          "ALLOWED_ORIGINS",
	"cors.allowed_credentials":      "ALLOWED_CREDENTIALS",
	"cache.enabled":                 "CACHE_ENABLED",
	"log.level":                     "LOG_LEVEL",
	"log.file":                      "LOG_FILE",
}

// Load 加载配置
//
// Sources, lowest priority first: defaults, config file (configPath, or
// config.yaml in . or ./configs), .env, environment variables.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// VISITS_DATA_FILE_PATH → data.file_path
	v.SetEnvPrefix("VISITS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "VISITS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Visits Data API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("data.file_path", "data/visits.csv")
	v.SetDefault("data.sqlite_table", "visits")
	v.SetDefault("data.business_days_path", "")
	v.SetDefault("ingest.chunk_size", 5000)
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.parallel_threshold", 10000)
	v.SetDefault("ingest.timeout", "0s")
	v.SetDefault("ingest.max_diagnostics", 100)
	v.SetDefault("query.max_records_per_request", 1000)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8501", "http://frontend:8501"})
	v.SetDefault("cors.allowed_credentials", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", "500ms")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "visits.recordset.reloaded")
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// normalizeOrigins accepts both a comma separated list and a JSON array
// written into a single environment variable.
func normalizeOrigins(origins []string) []string {
	// the slice decode hook has already split a JSON array on its commas
	joined := strings.TrimSpace(strings.Join(origins, ","))
	if strings.HasPrefix(joined, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(joined), &parsed); err == nil {
			return parsed
		}
	}
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Data.FilePath == "" {
		errs = append(errs, "data.file_path is required")
	}
	if c.Ingest.ChunkSize <= 0 {
		errs = append(errs, fmt.Sprintf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize))
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Sprintf("ingest.workers must be positive, got %d", c.Ingest.Workers))
	}
	if c.Ingest.Timeout < 0 {
		errs = append(errs, "ingest.timeout must not be negative")
	}
	if c.Query.MaxRecordsPerRequest <= 0 {
		errs = append(errs, fmt.Sprintf("query.max_records_per_request must be positive, got %d", c.Query.MaxRecordsPerRequest))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, "rate_limit.requests_per_second and rate_limit.burst must be positive when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
