package stdlib

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/nitrassic/nitrassic/engine"
)

// withCapturedStdout temporarily redirects console's stdout sink to a
// buffer for the duration of fn, restoring it afterward.
func withCapturedStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := stdout
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = old }()
	fn()
	return buf.String()
}

// TestConsoleLogDispatchesThroughBinder covers §8 scenario 6 from a real
// script: console.log's string and number single-argument forms resolve
// to distinct overloads of the `Log` MethodGroup installConsole registers
// on consoleHost's reflected Prototype, via runtime/binder, not a
// hand-written type switch.
func TestConsoleLogDispatchesThroughBinder(t *testing.T) {
	e := engine.New()
	Install(e)

	out := withCapturedStdout(t, func() {
		if _, err := e.Run(&engine.StringScriptSource{Text: `console.log("hi"); console.log(3);`}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "hi" || lines[1] != "3" {
		t.Fatalf("console.log output = %q, want [\"hi\" \"3\"]", lines)
	}
}

// TestConsoleHostRegisteredInRegistry covers §C2's reflection path: Install
// must bind consoleHostType into the engine's Registry so completeAll has
// something real to bake, and repeated Install calls on the same engine
// must not re-reflect a second Prototype for the same Go type.
func TestConsoleHostRegisteredInRegistry(t *testing.T) {
	e := engine.New()
	Install(e)

	p1, ok := e.Registry.Lookup(reflect.TypeOf(consoleHost{}))
	if !ok {
		t.Fatalf("expected consoleHostType to be bound in the engine's Registry after Install")
	}

	// installConsole again (simulating a caller that re-installs): the
	// existing binding must be reused, not replaced with a fresh reflection.
	installConsole(e)
	p2, ok := e.Registry.Lookup(reflect.TypeOf(consoleHost{}))
	if !ok || p2 != p1 {
		t.Fatalf("Lookup after re-install = %p, want the same Prototype %p", p2, p1)
	}

	found := false
	for _, p := range e.Registry.All() {
		if p == p1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("Registry.All() did not include the bound consoleHost prototype")
	}
}

// TestConsoleGroupDispatchesThroughBinder covers console.group, backed by
// consoleHost's reflected (not hand-registered) Group method.
func TestConsoleGroupDispatchesThroughBinder(t *testing.T) {
	e := engine.New()
	Install(e)

	out := withCapturedStdout(t, func() {
		if _, err := e.Run(&engine.StringScriptSource{Text: `console.group("setup");`}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})
	if strings.TrimRight(out, "\n") != "[group] setup" {
		t.Fatalf("console.group output = %q, want %q", out, "[group] setup")
	}
}
