// Package configuration loads logger and sink settings from files and
// environment variables and builds registries and loggers from them.
package configuration

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/sinks"
)

// EnvPrefix prefixes environment overrides, e.g. PROCLOG_FILE_PATH.
const EnvPrefix = "proclog"

// Config is the root configuration object.
type Config struct {
	Level   string         `mapstructure:"level"`
	Console ConsoleConfig  `mapstructure:"console"`
	File    FileConfig     `mapstructure:"file"`
	Async   AsyncConfig    `mapstructure:"async"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Sinks   []SinkSettings `mapstructure:"sinks"`
}

// ConsoleConfig configures the console sink.
type ConsoleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	MinLevel string `mapstructure:"minLevel"`
	Theme    string `mapstructure:"theme"`
	Color    string `mapstructure:"color"`
}

// FileConfig configures the rolling file sink.
type FileConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	MinLevel string `mapstructure:"minLevel"`
	MaxSize  int64  `mapstructure:"maxSize"`
	MaxFiles int    `mapstructure:"maxFiles"`
	Compress bool   `mapstructure:"compress"`
	Interval string `mapstructure:"interval"`
}

// AsyncConfig configures the wrapper around the console and file sinks.
type AsyncConfig struct {
	BufferSize int    `mapstructure:"bufferSize"`
	Overflow   string `mapstructure:"overflow"`
}

// MetricsConfig enables the prometheus metrics hook.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// SinkSettings declares an additional custom sink created by a registered
// factory.
type SinkSettings struct {
	Name     string                 `mapstructure:"name"`
	MinLevel string                 `mapstructure:"minLevel"`
	Args     map[string]interface{} `mapstructure:"args"`
}

// SetDefaults registers the built-in policy as viper defaults: threshold
// error, console from silly, ./process.log from verbose rolled above
// 64 MiB with 100 files kept.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("level", "error")

	v.SetDefault("console.enabled", true)
	v.SetDefault("console.minLevel", "silly")
	v.SetDefault("console.theme", "default")
	v.SetDefault("console.color", "auto")

	v.SetDefault("file.enabled", true)
	v.SetDefault("file.path", sinks.DefaultFilePath)
	v.SetDefault("file.minLevel", "verbose")
	v.SetDefault("file.maxSize", sinks.DefaultMaxFileSize)
	v.SetDefault("file.maxFiles", sinks.DefaultRetainFileCount)
	v.SetDefault("file.compress", false)
	v.SetDefault("file.interval", "none")

	v.SetDefault("async.bufferSize", 1000)
	v.SetDefault("async.overflow", "dropOldest")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "proclog")
}

// NewViper returns a viper instance with the defaults set and
// PROCLOG_* environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the configuration of the built-in sink policy, with
// environment overrides applied.
func Default() (*Config, error) {
	return FromViper(NewViper())
}

// LoadFromFile reads a JSON, YAML or TOML file, chosen by extension, from
// the OS filesystem.
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFs(afero.NewOsFs(), path)
}

// LoadFromFs reads a configuration file from fs.
func LoadFromFs(fs afero.Fs, path string) (*Config, error) {
	v := NewViper()
	v.SetFs(fs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return FromViper(v)
}

// LoadFromReader reads configuration of the given format ("json", "yaml",
// "toml") from r.
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	v := NewViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every level name and enumerated value.
func (c *Config) Validate() error {
	levels := map[string]string{
		"level":            c.Level,
		"console.minLevel": c.Console.MinLevel,
		"file.minLevel":    c.File.MinLevel,
	}
	for key, name := range levels {
		if _, err := ParseLevel(name); err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
	}
	for _, s := range c.Sinks {
		if s.Name == "" {
			return errors.New("invalid sinks: entry without name")
		}
		if _, err := ParseLevel(s.MinLevel); err != nil {
			return errors.Wrapf(err, "invalid minLevel of sink %s", s.Name)
		}
	}
	if _, err := sinks.ParseColorMode(c.Console.Color); err != nil {
		return errors.Wrap(err, "invalid console.color")
	}
	if _, err := sinks.ParseRollingInterval(c.File.Interval); err != nil {
		return errors.Wrap(err, "invalid file.interval")
	}
	if _, err := sinks.ParseOverflowStrategy(c.Async.Overflow); err != nil {
		return errors.Wrap(err, "invalid async.overflow")
	}
	if c.File.MaxSize < 0 || c.File.MaxFiles < 0 {
		return errors.New("invalid file: maxSize and maxFiles must not be negative")
	}
	return nil
}

// ParseLevel parses a level name. An empty name means silly, so an
// unset minimum filters nothing.
func ParseLevel(name string) (core.Level, error) {
	if strings.TrimSpace(name) == "" {
		return core.SillyLevel, nil
	}
	return core.ParseLevel(name)
}

// GetString gets a string value from sink args.
func GetString(args map[string]interface{}, key string, defaultValue string) string {
	if v, ok := lookup(args, key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetBool gets a bool value from sink args.
func GetBool(args map[string]interface{}, key string, defaultValue bool) bool {
	if v, ok := lookup(args, key); ok {
		switch val := v.(type) {
		case bool:
			return val
		case string:
			return strings.ToLower(val) == "true"
		}
	}
	return defaultValue
}

// GetInt gets an int value from sink args.
func GetInt(args map[string]interface{}, key string, defaultValue int) int {
	if v, ok := lookup(args, key); ok {
		switch val := v.(type) {
		case int:
			return val
		case int64:
			return int(val)
		case float64:
			return int(val)
		}
	}
	return defaultValue
}

// lookup finds key case-insensitively, since viper lowercases map keys.
func lookup(args map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := args[key]; ok {
		return v, true
	}
	for k, v := range args {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
