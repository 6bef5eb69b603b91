package proclog

import (
	"time"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/sinks"
)

// DefaultLevel is the threshold of a logger created without WithLevel.
const DefaultLevel = core.ErrorLevel

// config holds the configuration for building a logger.
type config struct {
	level       core.Level
	levelSwitch *LevelSwitch
	registry    *sinks.Registry
	appender    func(string)
	hooks       []core.Hook
	clock       func() time.Time
}

// Option is a functional option for configuring a logger.
type Option func(*config)

// WithLevel sets the initial threshold.
func WithLevel(level core.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithLevelSwitch makes the logger read its threshold from a shared switch.
// When a level switch is provided, it takes precedence over WithLevel.
func WithLevelSwitch(levelSwitch *LevelSwitch) Option {
	return func(c *config) {
		c.levelSwitch = levelSwitch
	}
}

// WithRegistry routes structured records to r instead of the shared
// default registry.
func WithRegistry(r *sinks.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithAppender installs a raw appender at construction.
func WithAppender(appender func(string)) Option {
	return func(c *config) {
		c.appender = appender
	}
}

// WithHook adds a hook fired for every accepted record.
func WithHook(hook core.Hook) Option {
	return func(c *config) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// WithClock sets the time source used to timestamp records.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}
