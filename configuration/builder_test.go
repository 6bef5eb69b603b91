package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/sinks"
)

func TestBuildDefaultConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := defaultConfig()
	cfg.File.Path = "/var/log/process.log"

	setup, err := NewBuilder().WithFs(fs).Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer setup.Registry.Close()

	entries := setup.Registry.Sinks()
	if len(entries) != 2 {
		t.Fatalf("Expected console and file sinks, got %d", len(entries))
	}
	if entries[0].Kind != core.KindConsole || entries[0].MinLevel != core.SillyLevel {
		t.Errorf("Unexpected console entry %+v", entries[0].SinkConfig)
	}
	if entries[1].Kind != core.KindFile || entries[1].MinLevel != core.VerboseLevel {
		t.Errorf("Unexpected file entry %+v", entries[1].SinkConfig)
	}
	if exists, _ := afero.Exists(fs, "/var/log/process.log"); !exists {
		t.Error("File sink should have been opened on the configured fs")
	}
	if setup.Metrics != nil {
		t.Error("Metrics should be off by default")
	}

	logger := setup.NewLogger(core.NewContext("Order", "1"))
	if logger.Level() != core.ErrorLevel {
		t.Errorf("Expected threshold error, got %v", logger.Level())
	}
	if logger.Registry() != setup.Registry {
		t.Error("Logger should write to the built registry")
	}
}

func TestBuildCustomSinks(t *testing.T) {
	memory := sinks.NewMemorySink()
	cfg := defaultConfig()
	cfg.Level = "trace"
	cfg.Console.Enabled = false
	cfg.File.Enabled = false
	cfg.Sinks = []SinkSettings{{Name: "Memory", MinLevel: "error"}}

	b := NewBuilder()
	b.RegisterSink("memory", func(map[string]interface{}) (core.Sink, error) {
		return memory, nil
	})

	setup, err := b.Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer setup.Registry.Close()

	logger := setup.NewLogger(core.NewContext("Order", 1))
	logger.TaskDone("Ship", nil)
	logger.HandlerError("onShip", nil)

	if memory.Count() != 1 {
		t.Fatalf("Custom sink min level should apply, got %d records", memory.Count())
	}
	if memory.LastRecord().Level != core.ErrorLevel {
		t.Errorf("Expected the error record, got %v", memory.LastRecord().Level)
	}
}

func TestBuildProcessRestrictedSink(t *testing.T) {
	orders := sinks.NewMemorySink()
	cfg := defaultConfig()
	cfg.Level = "silly"
	cfg.Console.Enabled = false
	cfg.File.Enabled = false
	cfg.Sinks = []SinkSettings{{Name: "memory", Args: map[string]interface{}{"process": "Order, Refund"}}}

	b := NewBuilder()
	b.RegisterSink("memory", func(map[string]interface{}) (core.Sink, error) {
		return orders, nil
	})

	setup, err := b.Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer setup.Registry.Close()

	if name := core.SinkName(setup.Registry.Sinks()[0].Sink); name != "memory[Order,Refund]" {
		t.Errorf("Unexpected sink name %q", name)
	}

	setup.NewLogger(core.NewContext("Order", 1)).TaskDone("Ship", nil)
	setup.NewLogger(core.NewContext("Invoice", 2)).TaskDone("Bill", nil)
	setup.NewLogger(core.NewContext("Refund", 3)).TaskDone("Pay", nil)

	if orders.Count() != 2 {
		t.Fatalf("Expected 2 records for Order and Refund, got %d", orders.Count())
	}
	for _, r := range orders.Records() {
		if r.Process == "Invoice" {
			t.Error("Invoice records should be filtered out")
		}
	}
}

func TestBuildCircuitBreakerSink(t *testing.T) {
	b := NewBuilder()
	b.RegisterSink("memory", func(map[string]interface{}) (core.Sink, error) {
		return sinks.NewMemorySink(), nil
	})

	sink, err := b.createSink(SinkSettings{Name: "memory", Args: map[string]interface{}{
		"circuitBreaker":   true,
		"failureThreshold": 2,
	}})
	if err != nil {
		t.Fatalf("createSink failed: %v", err)
	}
	if _, ok := sink.(*sinks.CircuitBreakerSink); !ok {
		t.Errorf("Expected a circuit breaker, got %T", sink)
	}
}

func TestBuildUnknownSink(t *testing.T) {
	cfg := defaultConfig()
	cfg.Console.Enabled = false
	cfg.File.Enabled = false
	cfg.Sinks = []SinkSettings{{Name: "carrier-pigeon"}}

	_, err := NewBuilder().Build(cfg)
	if err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("Expected unknown sink error, got %v", err)
	}
}

func TestBuildUnopenableFile(t *testing.T) {
	cfg := defaultConfig()
	cfg.Console.Enabled = false

	_, err := NewBuilder().WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())).Build(cfg)
	if err == nil {
		t.Error("Expected an error when the file cannot be opened")
	}
}

func TestBuildMetrics(t *testing.T) {
	cfg := defaultConfig()
	cfg.Console.Enabled = false
	cfg.File.Enabled = false
	cfg.Metrics.Enabled = true

	setup, err := NewBuilder().Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer setup.Registry.Close()

	if setup.Metrics == nil {
		t.Fatal("Expected metrics")
	}
	if len(setup.Metrics.Collectors()) != 2 {
		t.Errorf("Expected 2 collectors, got %d", len(setup.Metrics.Collectors()))
	}
}

func TestBuildFileSinkFactory(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := NewBuilder().WithFs(fs)

	sink, err := b.createSink(SinkSettings{Name: "file", Args: map[string]interface{}{"path": "/audit/engine.log"}})
	if err != nil {
		t.Fatalf("createSink failed: %v", err)
	}
	defer sink.Close()

	if exists, _ := afero.Exists(fs, "/audit/engine.log"); !exists {
		t.Error("Extra file sink should open its file")
	}

	if _, err := b.createSink(SinkSettings{Name: "file"}); err == nil {
		t.Error("Expected an error for a file sink without path")
	}
}

func TestBuildConsoleSinkFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	sink, err := NewBuilder().createSink(SinkSettings{Name: "console", Args: map[string]interface{}{"output": path}})
	if err != nil {
		t.Fatalf("createSink failed: %v", err)
	}
	if err := sink.Emit(&core.Record{Level: core.ErrorLevel, Message: "to file"}); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "error: to file\n" {
		t.Errorf("Unexpected file content %q", data)
	}
	if err := sink.Emit(&core.Record{Level: core.ErrorLevel, Message: "late"}); !errors.Is(err, sinks.ErrSinkClosed) {
		t.Errorf("The output file should be closed with the sink, got %v", err)
	}
}

func TestSinkNames(t *testing.T) {
	got := strings.Join(NewBuilder().SinkNames(), ",")
	if got != "console,file,logrus,zerolog" {
		t.Errorf("Unexpected factory names %s", got)
	}
}
