package engine

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
)

// EngineOptions collects the engine-level flags §4.8 names (force-strict-
// mode, enable-debugging, enable-IL-analysis, collapse-warning) into a
// struct loadable from YAML via goccy/go-yaml, mirroring the teacher's
// own config-via-yaml pattern for embedders that prefer file-based
// configuration over functional options.
type EngineOptions struct {
	// ForceStrictMode is loaded and stored but not read by Compile or
	// Execute: it does not change how any script is compiled or run.
	ForceStrictMode bool `yaml:"forceStrictMode"`
	// EnableDebugging is loaded and stored but not read by Compile or
	// Execute; every emitted instruction carries its source line whether
	// or not it is set.
	EnableDebugging bool `yaml:"enableDebugging"`
	// EnableILAnalysis makes Compile log one debug record per compiled
	// program with its path and top-level instruction count. It does not
	// capture or dump the instructions themselves; `nitrassic compile
	// --disassemble` prints them independently of this flag.
	EnableILAnalysis bool `yaml:"enableILAnalysis"`
	// CollapseWarning enables the §4.5 "global variable re-typed as any"
	// diagnostic; on by default since it is cheap and surfaces real
	// performance cliffs.
	CollapseWarning bool `yaml:"collapseWarning"`
}

// DefaultOptions returns the engine's default configuration: collapse
// warnings on, everything else off.
func DefaultOptions() EngineOptions {
	return EngineOptions{CollapseWarning: true}
}

// LoadOptionsYAML parses YAML-encoded engine options, starting from
// DefaultOptions so an embedder's file only needs to override what it
// cares about.
func LoadOptionsYAML(data []byte) (EngineOptions, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return EngineOptions{}, err
	}
	return opts, nil
}

// LoadOptionsYAMLFile reads and parses an EngineOptions YAML file.
func LoadOptionsYAMLFile(path string) (EngineOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineOptions{}, err
	}
	return LoadOptionsYAML(data)
}

// Option is a functional option for New, for embedders that prefer code
// over a YAML file.
type Option func(*Engine)

// WithOptions overrides the engine's EngineOptions wholesale.
func WithOptions(opts EngineOptions) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithLogger installs a structured logger used for collapse-warnings
// (§4.5) and IL-analysis dumps (§4.8); an embedder that does not supply
// one gets a discard logger so embedding stays silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
