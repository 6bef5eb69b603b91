package configuration

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/willibrandon/proclog/core"
)

func defaultConfig() *Config {
	return &Config{
		Level: "error",
		Console: ConsoleConfig{
			Enabled:  true,
			MinLevel: "silly",
			Theme:    "default",
			Color:    "auto",
		},
		File: FileConfig{
			Enabled:  true,
			Path:     "./process.log",
			MinLevel: "verbose",
			MaxSize:  64 * 1024 * 1024,
			MaxFiles: 100,
			Interval: "none",
		},
		Async: AsyncConfig{
			BufferSize: 1000,
			Overflow:   "dropOldest",
		},
		Metrics: MetricsConfig{
			Namespace: "proclog",
		},
	}
}

func TestDefaultMatchesBuiltinPolicy(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("Default config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromReaderJSON(t *testing.T) {
	jsonData := `{
		"level": "trace",
		"console": {"enabled": false},
		"file": {
			"path": "logs/engine.log",
			"minLevel": "debug",
			"maxSize": 1048576,
			"compress": true,
			"interval": "daily"
		},
		"sinks": [
			{"name": "logrus", "minLevel": "error", "args": {"format": "json"}}
		]
	}`

	cfg, err := LoadFromReader(strings.NewReader(jsonData), "json")
	if err != nil {
		t.Fatalf("Failed to load JSON: %v", err)
	}

	want := defaultConfig()
	want.Level = "trace"
	want.Console.Enabled = false
	want.File.Path = "logs/engine.log"
	want.File.MinLevel = "debug"
	want.File.MaxSize = 1048576
	want.File.Compress = true
	want.File.Interval = "daily"
	want.Sinks = []SinkSettings{
		{Name: "logrus", MinLevel: "error", Args: map[string]interface{}{"format": "json"}},
	}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromReaderYAML(t *testing.T) {
	yamlData := `
level: debug
console:
  theme: dev
  color: never
async:
  overflow: block
  bufferSize: 50
`
	cfg, err := LoadFromReader(strings.NewReader(yamlData), "yaml")
	if err != nil {
		t.Fatalf("Failed to load YAML: %v", err)
	}

	if cfg.Level != "debug" || cfg.Console.Theme != "dev" || cfg.Console.Color != "never" {
		t.Errorf("Unexpected values %+v", cfg)
	}
	if cfg.Async.Overflow != "block" || cfg.Async.BufferSize != 50 {
		t.Errorf("Unexpected async section %+v", cfg.Async)
	}
	if !cfg.File.Enabled || cfg.File.Path != "./process.log" {
		t.Errorf("Unset keys should keep defaults, got %+v", cfg.File)
	}
}

func TestLoadFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/etc/proclog.toml", []byte("level = \"warn\"\n[file]\nmaxFiles = 5\n"), 0644)

	cfg, err := LoadFromFs(fs, "/etc/proclog.toml")
	if err != nil {
		t.Fatalf("Failed to load TOML: %v", err)
	}
	if cfg.Level != "warn" || cfg.File.MaxFiles != 5 {
		t.Errorf("Unexpected config %+v", cfg)
	}

	if _, err := LoadFromFs(fs, "/etc/missing.json"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PROCLOG_LEVEL", "info")
	t.Setenv("PROCLOG_FILE_PATH", "/tmp/engine.log")
	t.Setenv("PROCLOG_CONSOLE_ENABLED", "false")

	cfg, err := LoadFromReader(strings.NewReader(`{"level": "debug"}`), "json")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Level != "info" {
		t.Errorf("Environment should override the file, got level %s", cfg.Level)
	}
	if cfg.File.Path != "/tmp/engine.log" {
		t.Errorf("Expected path from environment, got %s", cfg.File.Path)
	}
	if cfg.Console.Enabled {
		t.Error("Expected console disabled from environment")
	}
}

func TestLoadForEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/app/proclog.yaml", []byte("level: debug\nfile:\n  path: /var/log/base.log\n"), 0644)
	afero.WriteFile(fs, "/app/proclog.production.yaml", []byte("level: error\n"), 0644)

	cfg, err := LoadForEnvironment(fs, "/app", "production")
	if err != nil {
		t.Fatalf("LoadForEnvironment failed: %v", err)
	}
	if cfg.Level != "error" {
		t.Errorf("Environment file should override level, got %s", cfg.Level)
	}
	if cfg.File.Path != "/var/log/base.log" {
		t.Errorf("Base values should survive the overlay, got %s", cfg.File.Path)
	}

	cfg, err = LoadForEnvironment(fs, "/nowhere", "staging")
	if err != nil {
		t.Fatalf("Missing files should not fail: %v", err)
	}
	if cfg.Level != "error" {
		t.Errorf("Expected default level, got %s", cfg.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"valid", func(*Config) {}, ""},
		{"level", func(c *Config) { c.Level = "loud" }, "invalid level"},
		{"console level", func(c *Config) { c.Console.MinLevel = "x" }, "invalid console.minLevel"},
		{"file level", func(c *Config) { c.File.MinLevel = "x" }, "invalid file.minLevel"},
		{"color", func(c *Config) { c.Console.Color = "rainbow" }, "invalid console.color"},
		{"interval", func(c *Config) { c.File.Interval = "yearly" }, "invalid file.interval"},
		{"overflow", func(c *Config) { c.Async.Overflow = "explode" }, "invalid async.overflow"},
		{"max files", func(c *Config) { c.File.MaxFiles = -1 }, "must not be negative"},
		{"sink name", func(c *Config) { c.Sinks = []SinkSettings{{}} }, "without name"},
		{"sink level", func(c *Config) { c.Sinks = []SinkSettings{{Name: "x", MinLevel: "x"}} }, "minLevel of sink x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Level
		wantErr  bool
	}{
		{"", core.SillyLevel, false},
		{"silly", core.SillyLevel, false},
		{"Verbose", core.VerboseLevel, false},
		{"warning", core.WarnLevel, false},
		{"TRACE", core.TraceLevel, false},
		{"none", core.NoneLevel, false},
		{"fatal", core.NoneLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"path":     "/tmp/x.log",
		"maxfiles": float64(3),
		"compress": "true",
		"async":    true,
	}

	if got := GetString(args, "path", ""); got != "/tmp/x.log" {
		t.Errorf("GetString = %q", got)
	}
	if got := GetInt(args, "maxFiles", 100); got != 3 {
		t.Errorf("GetInt should match keys case-insensitively, got %d", got)
	}
	if !GetBool(args, "compress", false) || !GetBool(args, "async", false) {
		t.Error("GetBool should accept bools and strings")
	}
	if got := GetString(args, "missing", "fallback"); got != "fallback" {
		t.Errorf("Expected default, got %q", got)
	}
}
