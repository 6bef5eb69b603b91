package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{SillyLevel, "silly"},
		{VerboseLevel, "verbose"},
		{InfoLevel, "info"},
		{WarnLevel, "warn"},
		{DebugLevel, "debug"},
		{TraceLevel, "trace"},
		{ErrorLevel, "error"},
		{NoneLevel, "none"},
		{Level(-1), "unknown"},
		{Level(8), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.expected)
		}
	}
}

func TestLevelOrdinalsAreContiguous(t *testing.T) {
	for i, l := range Levels() {
		if int(l) != i {
			t.Errorf("level %s has ordinal %d, want %d", l, int(l), i)
		}
	}
	if int(NoneLevel) != len(Levels()) {
		t.Errorf("none has ordinal %d, want %d", int(NoneLevel), len(Levels()))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"silly", SillyLevel, false},
		{"Verbose", VerboseLevel, false},
		{"INFO", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"warning", WarnLevel, false},
		{" debug ", DebugLevel, false},
		{"trace", TraceLevel, false},
		{"error", ErrorLevel, false},
		{"none", NoneLevel, false},
		{"fatal", NoneLevel, true},
		{"", NoneLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownLevel) {
				t.Errorf("expected ErrUnknownLevel, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range append(Levels(), NoneLevel) {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", l, err)
		}
		if got != l {
			t.Errorf("round trip of %s gave %s", l, got)
		}
	}
}

func TestLoggable(t *testing.T) {
	for _, l := range Levels() {
		if !l.Loggable() {
			t.Errorf("%s should be loggable", l)
		}
	}
	if NoneLevel.Loggable() {
		t.Error("none must not be loggable")
	}
	if Level(42).Loggable() {
		t.Error("out of range level must not be loggable")
	}
}

func TestLevelText(t *testing.T) {
	var cfg struct {
		Level Level `json:"level"`
	}
	if err := json.Unmarshal([]byte(`{"level":"trace"}`), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Level != TraceLevel {
		t.Errorf("expected trace, got %s", cfg.Level)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"level":"trace"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	if err := json.Unmarshal([]byte(`{"level":"loud"}`), &cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}
