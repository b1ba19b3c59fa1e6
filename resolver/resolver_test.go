package resolver_test

import (
	"testing"

	"github.com/nitrassic/nitrassic/lexer"
	"github.com/nitrassic/nitrassic/parser"
	"github.com/nitrassic/nitrassic/resolver"
)

func resolve(t *testing.T, src string) *resolver.Resolution {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse(%q): %v", src, errs)
	}
	return resolver.Resolve(prog)
}

// TestHoistingPrecedesReference covers §8 "Hoisting: within a function, a
// var x declared after a reference makes that reference resolve to
// undefined, not throw."
func TestHoistingPrecedesReference(t *testing.T) {
	res := resolve(t, `function f() { return x; var x; }`)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected resolve errors: %v", res.Errors)
	}
}

func TestUndeclaredNameIsAnError(t *testing.T) {
	res := resolve(t, `doesNotExist;`)
	if len(res.Errors) == 0 {
		t.Fatalf("expected a resolve error for an undeclared reference")
	}
}

// TestClosureCaptureRecordsFreeVariable covers §5 "closure capture": a
// function referencing a variable from an enclosing function scope is
// recorded against that enclosing FunctionRef.
func TestClosureCaptureRecordsFreeVariable(t *testing.T) {
	res := resolve(t, `
		function outer() {
			var n = 0;
			function inner() { return n; }
			return inner;
		}
	`)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected resolve errors: %v", res.Errors)
	}
	found := false
	for _, names := range res.Closures {
		for _, n := range names {
			if n == "n" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected some function's closure list to capture %q, got %v", "n", res.Closures)
	}
}

func TestRedeclaredLetIsAnError(t *testing.T) {
	res := resolve(t, `let x = 1; let x = 2;`)
	if len(res.Errors) == 0 {
		t.Fatalf("expected a resolve error for redeclaring a let binding")
	}
}
