// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bookscrape/internal/extractor"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Input   InputConfig      `mapstructure:"input"`
	Output  OutputConfig     `mapstructure:"output"`
	HTTP    HTTPConfig       `mapstructure:"http"`
	Scrape  ScrapeConfig     `mapstructure:"scrape"`
	Extract extractor.Schema `mapstructure:"extract"`
	Server  ServerConfig     `mapstructure:"server"`
	DB      DBConfig         `mapstructure:"db"`
	Logging LoggingConfig    `mapstructure:"logging"`
}

// InputConfig locates the URL list.
type InputConfig struct {
	Path      string `mapstructure:"path"`
	URLColumn string `mapstructure:"url_column"`
}

// OutputConfig sets the directory product records are written into.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// HTTPConfig configures the fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ScrapeConfig governs the concurrent orchestrator.
type ScrapeConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ServerConfig controls the optional observability listener. Port 0 keeps
// the listener off.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls optional run recording in Postgres. An empty DSN keeps
// recording in memory.
type DBConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "urls.csv")
	v.SetDefault("input.url_column", "url")
	v.SetDefault("output.dir", "data")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "bookscrape/0.1")
	v.SetDefault("scrape.concurrency", 8)
	v.SetDefault("server.port", 0)
	v.SetDefault("db.table", "scrape_pages")
	v.SetDefault("logging.development", true)

	def := extractor.DefaultSchema()
	v.SetDefault("extract.container", def.Container)
	v.SetDefault("extract.title", def.Title)
	v.SetDefault("extract.table", def.Table)
	v.SetDefault("extract.row", def.Row)
	v.SetDefault("extract.label", def.Label)
	v.SetDefault("extract.value", def.Value)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("input.path must be set")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0")
	}
	return nil
}

// RequestTimeout converts the HTTP timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
