// Package diag implements Nitrassic's diagnostics (C9): script-visible
// exceptions with a (name, message, location) shape, stack-trace
// formatting, and compile-time error formatting with source context.
//
// Grounded on the teacher's internal/errors package: CompilerError's
// source-context-plus-caret formatting (internal/errors/errors.go) and
// StackFrame/StackTrace (internal/errors/stack_trace.go), generalized from
// DWScript's single compile-error shape to ECMAScript's seven named
// script-visible error types (§4.9) plus the host-escape wrapper §7
// describes ("a single host exception type wrapping the script error
// object").
package diag

import (
	"fmt"
	"strings"

	"github.com/nitrassic/nitrassic/lexer"
)

// Name is one of the seven script-visible error constructors (§4.9).
type Name string

const (
	Error          Name = "Error"
	RangeError     Name = "RangeError"
	TypeError      Name = "TypeError"
	SyntaxError    Name = "SyntaxError"
	URIError       Name = "URIError"
	EvalError      Name = "EvalError"
	ReferenceError Name = "ReferenceError"
)

// Location pins a diagnostic to a source position and, for runtime
// errors, the function that was executing (§4.9).
type Location struct {
	Path     string
	Function string
	Pos      lexer.Position
}

func (l Location) String() string {
	fn := l.Function
	if fn == "" {
		fn = "<anonymous>"
	}
	return fmt.Sprintf("%s@%s:%d:%d", fn, l.Path, l.Pos.Line, l.Pos.Column)
}

// StackFrame is one frame of a ScriptError's stack, formatted exactly as
// §4.9 specifies: "function@path:line:column".
type StackFrame struct {
	Location
}

func (f StackFrame) String() string { return f.Location.String() }

// StackTrace is an ordered sequence of frames, innermost (the throw
// point) first — the order `Stack()` walks the host stack "from the
// throw point upward to the gateway frame named `__.main`" (§4.9).
type StackTrace []StackFrame

// String renders one frame per line, matching the teacher's
// StackTrace.String newline-joined format.
func (st StackTrace) String() string {
	lines := make([]string, len(st))
	for i, f := range st {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// GatewayFrame is the sentinel frame every stack trace terminates at: the
// emitted call gateway all compiled procedures share (§4.7 "canonical
// signature").
const GatewayFrame = "__.main"

// ScriptError is a script-visible exception (§4.9): carries name,
// message, and location, and renders `stack` as the teacher's
// StackTrace.String() does for its CompilerError equivalent.
type ScriptError struct {
	ScriptName Name
	Message    string
	Location   Location
	Trace      StackTrace
}

// NewScriptError constructs a ScriptError ready to be thrown into
// try/catch on the script side.
func NewScriptError(name Name, message string, loc Location) *ScriptError {
	return &ScriptError{ScriptName: name, Message: message, Location: loc}
}

// Error implements the Go error interface so ScriptError can flow through
// ordinary Go error returns before being wrapped by HostException.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.ScriptName, e.Message)
}

// Stack renders the script-visible `err.stack` property (§6 "Error-object
// shape"): name, message, then one frame per line, the throw point first
// and the gateway frame last.
func (e *ScriptError) Stack() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if len(e.Trace) > 0 {
		sb.WriteString("\n")
		sb.WriteString(e.Trace.String())
	}
	frames := len(e.Trace)
	if frames == 0 || e.Trace[frames-1].Function != GatewayFrame {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("    at " + GatewayFrame)
	}
	return sb.String()
}

// HostException is the single host-level error type an uncaught script
// exception escapes as (§7: "escape to the host as a single host
// exception type wrapping the script error object").
type HostException struct {
	Script *ScriptError
}

func (h *HostException) Error() string { return h.Script.Stack() }
func (h *HostException) Unwrap() error { return h.Script }

// CompileError is a compile-time diagnostic (SyntaxError, type-ambiguity)
// that aborts compilation (§7). Grounded directly on the teacher's
// CompilerError (internal/errors/errors.go): same (path, line, column,
// message, source) fields and the same source-context-plus-caret
// Format(color) rendering, generalized to carry a diag.Name instead of
// always being a bare syntax error.
type CompileError struct {
	ScriptName Name
	Message    string
	Source     string
	File       string
	Pos        lexer.Position
}

// NewCompileError mirrors the teacher's NewCompilerError constructor.
func NewCompileError(name Name, pos lexer.Position, message, source, file string) *CompileError {
	return &CompileError{ScriptName: name, Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompileError) Error() string { return e.Format(false) }

// Format renders the error with a source-context line and a caret
// pointing at the offending column, exactly like the teacher's
// CompilerError.Format; color adds ANSI bold/red the way the teacher's
// `--color` CLI flag does.
func (e *CompileError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", e.ScriptName, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at line %d:%d\n", e.ScriptName, e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *CompileError) sourceLine(lineNum int) string {
	if e.Source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors renders a batch of CompileErrors one after another,
// separated by a blank line, matching the teacher's errors.FormatErrors
// helper used by cmd/dwscript's `run`/`compile` commands.
func FormatErrors(errs []*CompileError, color bool) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(color)
	}
	return strings.Join(parts, "\n\n")
}

// Standard message templates (§7 "Diagnostics are formatted exactly as
// above (textual match matters to observable err.message)").
func NullPropertyReadMessage(name string) string {
	return fmt.Sprintf("Attempted to read property '%s' from a null reference", name)
}

func NoOverloadMessage(method string, n int) string {
	return fmt.Sprintf("No overload for method %s takes %d arguments", method, n)
}

func InstanceofMessage(path, function, typeOf string) string {
	return fmt.Sprintf("Right-hand side of 'instanceof' is not callable (at %s, in %s, value of type %s)", path, function, typeOf)
}
