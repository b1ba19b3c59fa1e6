// Package engine implements the Engine & Lifecycle component (C8): the
// compile->bake->execute pipeline, the global object, the prototype
// registry, and the public embedding API (§6 "Embedding API").
//
// Grounded on the teacher's top-level Interpreter (internal/interp/interpreter.go),
// which owns a VM, the global environment, and a Compile/Eval pipeline;
// Nitrassic generalizes that into distinct Compile/Execute steps plus the
// bake pass §4.2/§4.8 describe ("the engine's compile pass calls
// complete_all() before executing"), since the teacher's interpreter has
// no separate baking step (DWScript classes are already concretely typed
// at parse time).
package engine

import "os"

// ScriptSource is any source of script text with a path attribute used
// for diagnostics (§6 "ScriptSource").
type ScriptSource interface {
	Read() (string, error)
	Path() string
}

// StringScriptSource is an in-memory script, e.g. from `nitrassic run -e`
// or an embedder's literal string.
type StringScriptSource struct {
	Text string
	// SourcePath is reported as Path() for diagnostics; defaults to
	// "<eval>" when empty.
	SourcePath string
}

func (s StringScriptSource) Read() (string, error) { return s.Text, nil }
func (s StringScriptSource) Path() string {
	if s.SourcePath == "" {
		return "<eval>"
	}
	return s.SourcePath
}

// FileScriptSource reads script text from a file on demand, using
// Encoding only to record the expected encoding for diagnostics; decoding
// itself is UTF-8 always (§6 "at least StringScriptSource(text) and
// FileScriptSource(path, encoding) must be provided").
type FileScriptSource struct {
	FilePath string
	Encoding string
}

func (s FileScriptSource) Read() (string, error) {
	b, err := os.ReadFile(s.FilePath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s FileScriptSource) Path() string { return s.FilePath }
