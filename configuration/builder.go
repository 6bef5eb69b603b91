package configuration

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/willibrandon/proclog"
	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/sinks"
)

// SinkFactory creates a custom sink from its configured args.
type SinkFactory func(args map[string]interface{}) (core.Sink, error)

// Builder turns a Config into a registry and logger options.
type Builder struct {
	sinkFactories map[string]SinkFactory
	fs            afero.Fs
}

// NewBuilder creates a builder with the built-in sink factories:
// "console", "file", "logrus" and "zerolog".
func NewBuilder() *Builder {
	b := &Builder{
		sinkFactories: make(map[string]SinkFactory),
	}

	b.RegisterSink("console", b.createConsoleSink)
	b.RegisterSink("file", b.createFileSink)
	b.RegisterSink("logrus", createLogrusSink)
	b.RegisterSink("zerolog", createZerologSink)

	return b
}

// WithFs makes file sinks write to fs instead of the OS filesystem.
func (b *Builder) WithFs(fs afero.Fs) *Builder {
	b.fs = fs
	return b
}

// RegisterSink registers a sink factory. Names are case-insensitive.
func (b *Builder) RegisterSink(name string, factory SinkFactory) {
	b.sinkFactories[strings.ToLower(name)] = factory
}

// SinkNames returns the registered factory names, sorted.
func (b *Builder) SinkNames() []string {
	names := make([]string, 0, len(b.sinkFactories))
	for name := range b.sinkFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Setup is what a Config builds into.
type Setup struct {
	// Registry holds the configured sinks.
	Registry *sinks.Registry

	// Options configure loggers to use Registry and the configured level.
	Options []proclog.Option

	// Metrics is set when metrics are enabled.
	Metrics *proclog.Metrics
}

// NewLogger creates a logger for ctx with the built options, followed by
// extra.
func (s *Setup) NewLogger(ctx core.Context, extra ...proclog.Option) *proclog.Logger {
	opts := make([]proclog.Option, 0, len(s.Options)+len(extra))
	opts = append(opts, s.Options...)
	opts = append(opts, extra...)
	return proclog.New(ctx, opts...)
}

// Build creates the registry and logger options described by cfg.
// On error, sinks already opened are closed.
func (b *Builder) Build(cfg *Config) (*Setup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := ParseLevel(cfg.Level)
	setup := &Setup{}

	opts, err := b.defaultOptions(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		setup.Metrics = proclog.NewMetrics(cfg.Metrics.Namespace)
		opts.ErrorHandler = setup.Metrics.ErrorHandler(nil)
	}

	registry, err := sinks.BuildDefaultRegistry(opts)
	if err != nil {
		registry.Close()
		return nil, err
	}

	for _, s := range cfg.Sinks {
		sink, err := b.createSink(s)
		if err != nil {
			registry.Close()
			return nil, errors.Wrapf(err, "create sink %s", s.Name)
		}
		minLevel, _ := ParseLevel(s.MinLevel)
		registry.Add(sink, sinks.SinkConfig{Kind: core.KindCustom, MinLevel: minLevel})
	}

	setup.Registry = registry
	setup.Options = []proclog.Option{
		proclog.WithLevel(level),
		proclog.WithRegistry(registry),
	}
	if setup.Metrics != nil {
		setup.Options = append(setup.Options, proclog.WithHook(setup.Metrics))
	}
	return setup, nil
}

// defaultOptions maps the console, file and async sections onto the
// built-in registry options. cfg must be valid.
func (b *Builder) defaultOptions(cfg *Config) (sinks.DefaultOptions, error) {
	opts := sinks.NewDefaultOptions()

	opts.DisableConsole = !cfg.Console.Enabled
	opts.ConsoleMinLevel, _ = ParseLevel(cfg.Console.MinLevel)
	opts.Theme = sinks.ThemeByName(cfg.Console.Theme)
	opts.Color, _ = sinks.ParseColorMode(cfg.Console.Color)

	opts.DisableFile = !cfg.File.Enabled
	opts.FileMinLevel, _ = ParseLevel(cfg.File.MinLevel)
	interval, _ := sinks.ParseRollingInterval(cfg.File.Interval)
	opts.File = sinks.RollingFileOptions{
		FilePath:            cfg.File.Path,
		MaxFileSize:         cfg.File.MaxSize,
		RetainFileCount:     cfg.File.MaxFiles,
		CompressRolledFiles: cfg.File.Compress,
		RollingInterval:     interval,
		Fs:                  b.fs,
	}

	opts.Async.BufferSize = cfg.Async.BufferSize
	overflow, err := sinks.ParseOverflowStrategy(cfg.Async.Overflow)
	if err != nil {
		return opts, err
	}
	opts.Async.OverflowStrategy = overflow

	return opts, nil
}

func (b *Builder) createSink(s SinkSettings) (core.Sink, error) {
	factory, ok := b.sinkFactories[strings.ToLower(s.Name)]
	if !ok {
		return nil, errors.Errorf("unknown sink type %q", s.Name)
	}
	sink, err := factory(s.Args)
	if err != nil {
		return nil, err
	}
	if GetBool(s.Args, "circuitBreaker", false) {
		sink = sinks.NewCircuitBreakerSinkWithOptions(sink, sinks.CircuitBreakerOptions{
			Name:             s.Name,
			FailureThreshold: GetInt(s.Args, "failureThreshold", 0),
		})
	}
	return restrictToProcesses(sink, s.Name, s.Args), nil
}

// restrictToProcesses wraps sink so it only receives records of the
// process definitions listed in the comma separated "process" arg.
func restrictToProcesses(sink core.Sink, name string, args map[string]interface{}) core.Sink {
	list := GetString(args, "process", "")
	if list == "" {
		return sink
	}
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return sink
	}
	return sinks.NewNamedConditionalSink(
		name+"["+strings.Join(names, ",")+"]",
		sinks.ProcessPredicate(names...),
		sink,
	)
}

// output resolves the "output" arg: "stdout", "stderr" (default) or a
// file path. owned is set for files, which the sink must close.
func (b *Builder) output(args map[string]interface{}) (f *os.File, owned bool, err error) {
	switch out := GetString(args, "output", "stderr"); out {
	case "stderr":
		return os.Stderr, false, nil
	case "stdout":
		return os.Stdout, false, nil
	default:
		f, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, false, errors.Wrapf(err, "open %s", out)
		}
		return f, true, nil
	}
}

func (b *Builder) createConsoleSink(args map[string]interface{}) (core.Sink, error) {
	out, owned, err := b.output(args)
	if err != nil {
		return nil, err
	}
	var sink *sinks.ConsoleSink
	if owned {
		sink = sinks.NewConsoleSinkOwning(out)
	} else {
		sink = sinks.NewConsoleSinkWithWriter(out)
	}
	sink.SetTheme(sinks.ThemeByName(GetString(args, "theme", "default")))
	if GetBool(args, "async", false) {
		return sinks.NewAsyncSink(sink, sinks.AsyncOptions{OverflowStrategy: sinks.OverflowDropOldest}), nil
	}
	return sink, nil
}

func (b *Builder) createFileSink(args map[string]interface{}) (core.Sink, error) {
	path := GetString(args, "path", "")
	if path == "" {
		return nil, errors.New("file sink requires a path")
	}
	interval, err := sinks.ParseRollingInterval(GetString(args, "interval", "none"))
	if err != nil {
		return nil, err
	}

	sink, err := sinks.NewRollingFileSink(sinks.RollingFileOptions{
		FilePath:            path,
		MaxFileSize:         int64(GetInt(args, "maxSize", sinks.DefaultMaxFileSize)),
		RetainFileCount:     GetInt(args, "maxFiles", sinks.DefaultRetainFileCount),
		CompressRolledFiles: GetBool(args, "compress", false),
		RollingInterval:     interval,
		Fs:                  b.fs,
	})
	if err != nil {
		return nil, err
	}
	return sinks.NewAsyncSink(sink, sinks.AsyncOptions{OverflowStrategy: sinks.OverflowDropOldest}), nil
}

func createLogrusSink(args map[string]interface{}) (core.Sink, error) {
	l := logrus.New()
	switch GetString(args, "output", "stderr") {
	case "stdout":
		l.SetOutput(os.Stdout)
	default:
		l.SetOutput(os.Stderr)
	}
	level, err := logrus.ParseLevel(GetString(args, "level", "trace"))
	if err != nil {
		return nil, err
	}
	l.SetLevel(level)
	if GetString(args, "format", "text") == "json" {
		l.Formatter = &logrus.JSONFormatter{}
	} else {
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return sinks.NewLogrusSink(l), nil
}

func createZerologSink(args map[string]interface{}) (core.Sink, error) {
	out := os.Stderr
	if GetString(args, "output", "stderr") == "stdout" {
		out = os.Stdout
	}
	level, err := zerolog.ParseLevel(GetString(args, "level", "trace"))
	if err != nil {
		return nil, err
	}
	return sinks.NewZerologSink(zerolog.New(out).Level(level)), nil
}
