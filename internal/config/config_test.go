package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Path != "urls.csv" || cfg.Input.URLColumn != "url" {
		t.Fatalf("unexpected input defaults: %+v", cfg.Input)
	}
	if cfg.Output.Dir != "data" {
		t.Fatalf("expected output dir data, got %q", cfg.Output.Dir)
	}
	if cfg.Scrape.Concurrency != 8 {
		t.Fatalf("expected concurrency 8, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Extract.Container != ".product_main" || cfg.Extract.Table != ".table.table-striped" {
		t.Fatalf("unexpected extract defaults: %+v", cfg.Extract)
	}
	if got := cfg.RequestTimeout(); got != 15*time.Second {
		t.Fatalf("expected request timeout 15s, got %v", got)
	}
	if cfg.Server.Port != 0 {
		t.Fatalf("expected server disabled by default, got port %d", cfg.Server.Port)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
input:
  path: books.csv
  url_column: link
output:
  dir: out
http:
  timeout_seconds: 30
  user_agent: custom-agent
scrape:
  concurrency: 2
extract:
  container: "#main"
  title: h2
server:
  port: 9090
db:
  dsn: postgres://localhost/scrape
  table: pages
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Path != "books.csv" || cfg.Input.URLColumn != "link" {
		t.Fatalf("expected input overrides to apply: %+v", cfg.Input)
	}
	if cfg.Output.Dir != "out" {
		t.Fatalf("expected output override, got %q", cfg.Output.Dir)
	}
	if cfg.HTTP.TimeoutSeconds != 30 || cfg.HTTP.UserAgent != "custom-agent" {
		t.Fatalf("expected http overrides to apply: %+v", cfg.HTTP)
	}
	if cfg.Scrape.Concurrency != 2 {
		t.Fatalf("expected concurrency 2, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Extract.Container != "#main" || cfg.Extract.Title != "h2" {
		t.Fatalf("expected extract overrides to apply: %+v", cfg.Extract)
	}
	if cfg.Extract.Row != "tr" {
		t.Fatalf("expected unset extract fields to keep defaults, got %q", cfg.Extract.Row)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.DB.DSN == "" || cfg.DB.Table != "pages" {
		t.Fatalf("expected db overrides to apply: %+v", cfg.DB)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected development logging disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Input:  InputConfig{Path: "urls.csv"},
		Output: OutputConfig{Dir: "data"},
		HTTP:   HTTPConfig{TimeoutSeconds: 10},
		Scrape: ScrapeConfig{Concurrency: 4},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing input path",
			cfg: func() Config {
				c := base
				c.Input.Path = ""
				return c
			}(),
			want: "input.path",
		},
		{
			name: "missing output dir",
			cfg: func() Config {
				c := base
				c.Output.Dir = ""
				return c
			}(),
			want: "output.dir",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.TimeoutSeconds = 0
				return c
			}(),
			want: "http.timeout_seconds",
		},
		{
			name: "invalid concurrency",
			cfg: func() Config {
				c := base
				c.Scrape.Concurrency = 0
				return c
			}(),
			want: "scrape.concurrency",
		},
		{
			name: "negative port",
			cfg: func() Config {
				c := base
				c.Server.Port = -1
				return c
			}(),
			want: "server.port",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
