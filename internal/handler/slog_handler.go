package handler

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/willibrandon/proclog/core"
)

// Logger is the part of the instance logger the handler writes through.
type Logger interface {
	IsEnabled(level core.Level) bool
	Log(level core.Level, description string, data ...any)
}

// SlogHandler implements slog.Handler on top of an instance logger. The
// slog message becomes the description and the attributes become the
// payload, keyed by their group-qualified names.
type SlogHandler struct {
	logger    Logger
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

// NewSlogHandler creates a slog.Handler writing to logger. With addSource
// the caller's file, line and function are added under "source".
func NewSlogHandler(logger Logger, addSource bool) *SlogHandler {
	return &SlogHandler{
		logger:    logger,
		addSource: addSource,
	}
}

// Enabled reports whether the logger threshold admits level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsEnabled(SlogLevel(level))
}

// Handle logs the record.
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	data := make(map[string]any, len(h.attrs)+record.NumAttrs())

	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	prefix := h.prefix()
	record.Attrs(func(attr slog.Attr) bool {
		flatten(prefix, attr, func(key string, v slog.Value) {
			data[key] = v.Any()
		})
		return true
	})

	if h.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		if f.File != "" {
			data["source"] = map[string]any{
				"file":     f.File,
				"line":     f.Line,
				"function": f.Function,
			}
		}
	}

	level := SlogLevel(record.Level)
	if len(data) == 0 {
		h.logger.Log(level, record.Message)
	} else {
		h.logger.Log(level, record.Message, data)
	}
	return nil
}

// flatten resolves attr and calls emit for every leaf, with group members
// keyed "group.key". Empty attrs and empty groups are skipped and a group
// with an empty key is inlined.
func flatten(prefix string, attr slog.Attr, emit func(key string, v slog.Value)) {
	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		members := v.Group()
		if len(members) == 0 {
			return
		}
		if attr.Key != "" {
			prefix = join(prefix, attr.Key)
		}
		for _, m := range members {
			flatten(prefix, m, emit)
		}
		return
	}
	if attr.Key == "" && v.Any() == nil {
		return
	}
	emit(join(prefix, attr.Key), v)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// WithAttrs returns a handler that adds attrs to every record. The attrs
// are stored flattened under the groups open at this point.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	prefix := h.prefix()
	for _, a := range attrs {
		flatten(prefix, a, func(key string, v slog.Value) {
			newAttrs = append(newAttrs, slog.Attr{Key: key, Value: v})
		})
	}
	return &SlogHandler{logger: h.logger, attrs: newAttrs, groups: h.groups[:len(h.groups):len(h.groups)], addSource: h.addSource}
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name
	return &SlogHandler{logger: h.logger, attrs: h.attrs, groups: newGroups, addSource: h.addSource}
}

func (h *SlogHandler) prefix() string {
	return strings.Join(h.groups, ".")
}

// SlogLevel maps a slog level onto the engine levels. slog has no
// equivalent of trace, so nothing maps to it.
func SlogLevel(level slog.Level) core.Level {
	switch {
	case level < slog.LevelDebug:
		return core.SillyLevel
	case level < slog.LevelInfo:
		return core.VerboseLevel
	case level < slog.LevelWarn:
		return core.InfoLevel
	case level < slog.LevelError:
		return core.WarnLevel
	default:
		return core.ErrorLevel
	}
}
