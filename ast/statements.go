package ast

import (
	"strings"
)

// Block is `{ statements... }`.
type Block struct {
	BaseStmt
	Statements []Statement
}

func (b *Block) TokenLiteral() string { return "{" }
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Statements {
		sb.WriteString("  " + s.String() + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// DeclKind distinguishes var/let/const (§9 Open Questions: the source
// doesn't implement block-scoped let/const; Nitrassic's REDESIGN FLAGS
// resolve to add them — see resolver package).
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

func (k DeclKind) String() string {
	switch k {
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	default:
		return "var"
	}
}

// VarDeclarator is one `name = init` binding within a VarDecl.
type VarDeclarator struct {
	Name string
	Init Expression // nil if uninitialized
}

// VarDecl is a `var`/`let`/`const` declaration statement (§4.4).
type VarDecl struct {
	BaseStmt
	Kind         DeclKind
	Declarators  []VarDeclarator
}

func (v *VarDecl) TokenLiteral() string { return v.Kind.String() }
func (v *VarDecl) String() string {
	var sb strings.Builder
	sb.WriteString(v.Kind.String() + " ")
	for i, d := range v.Declarators {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.Name)
		if d.Init != nil {
			sb.WriteString(" = " + d.Init.String())
		}
	}
	sb.WriteString(";")
	return sb.String()
}

// FunctionDecl is a named function declaration statement (hoisted, §4.5).
type FunctionDecl struct {
	BaseStmt
	Fn *FunctionRef
}

func (f *FunctionDecl) TokenLiteral() string { return "function" }
func (f *FunctionDecl) String() string       { return f.Fn.String() }

// ExpressionStatement wraps an Expression evaluated for side effects.
type ExpressionStatement struct {
	BaseStmt
	Expr Expression
}

func (e *ExpressionStatement) TokenLiteral() string { return e.Expr.TokenLiteral() }
func (e *ExpressionStatement) String() string        { return e.Expr.String() + ";" }

// If is `if (cond) then else alt`.
type If struct {
	BaseStmt
	Cond Expression
	Then Statement
	Else Statement // nil if no else clause
}

func (s *If) TokenLiteral() string { return "if" }
func (s *If) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// While is `while (cond) body`.
type While struct {
	BaseStmt
	Cond Expression
	Body Statement
}

func (s *While) TokenLiteral() string { return "while" }
func (s *While) String() string       { return "while (" + s.Cond.String() + ") " + s.Body.String() }

// DoWhile is `do body while (cond);`.
type DoWhile struct {
	BaseStmt
	Body Statement
	Cond Expression
}

func (s *DoWhile) TokenLiteral() string { return "do" }
func (s *DoWhile) String() string {
	return "do " + s.Body.String() + " while (" + s.Cond.String() + ");"
}

// For is a C-style `for (init; cond; update) body`; any of Init/Cond/Update
// may be nil.
type For struct {
	BaseStmt
	Init   Statement
	Cond   Expression
	Update Expression
	Body   Statement
}

func (s *For) TokenLiteral() string { return "for" }
func (s *For) String() string       { return "for (...) " + s.Body.String() }

// ForIn is `for (decl in/of obj) body`; Of distinguishes for-of from for-in.
type ForIn struct {
	BaseStmt
	DeclKind DeclKind
	HasDecl  bool
	Name     string
	Object   Expression
	Body     Statement
	Of       bool
}

func (s *ForIn) TokenLiteral() string { return "for" }
func (s *ForIn) String() string {
	kw := "in"
	if s.Of {
		kw = "of"
	}
	return "for (" + s.Name + " " + kw + " " + s.Object.String() + ") " + s.Body.String()
}

// Break/Continue carry an optional label (§4.4 "break/continue with
// labels").
type Break struct {
	BaseStmt
	Label string
}

func (s *Break) TokenLiteral() string { return "break" }
func (s *Break) String() string {
	if s.Label != "" {
		return "break " + s.Label + ";"
	}
	return "break;"
}

type Continue struct {
	BaseStmt
	Label string
}

func (s *Continue) TokenLiteral() string { return "continue" }
func (s *Continue) String() string {
	if s.Label != "" {
		return "continue " + s.Label + ";"
	}
	return "continue;"
}

// Return is `return [expr];`; Value is nil for a bare return (which
// evaluates to undefined per §4.7 "Function-state machine").
type Return struct {
	BaseStmt
	Value Expression
}

func (s *Return) TokenLiteral() string { return "return" }
func (s *Return) String() string {
	if s.Value != nil {
		return "return " + s.Value.String() + ";"
	}
	return "return;"
}

// Throw is `throw expr;`.
type Throw struct {
	BaseStmt
	Value Expression
}

func (s *Throw) TokenLiteral() string { return "throw" }
func (s *Throw) String() string       { return "throw " + s.Value.String() + ";" }

// Try is `try {...} catch (name) {...} finally {...}`; Catch/Finally may
// be nil but not both.
type Try struct {
	BaseStmt
	Block       *Block
	CatchParam  string
	HasCatch    bool
	CatchBlock  *Block
	FinallyBlock *Block
}

func (s *Try) TokenLiteral() string { return "try" }
func (s *Try) String() string {
	out := "try " + s.Block.String()
	if s.HasCatch {
		out += " catch (" + s.CatchParam + ") " + s.CatchBlock.String()
	}
	if s.FinallyBlock != nil {
		out += " finally " + s.FinallyBlock.String()
	}
	return out
}

// With is `with (obj) body` (§4.4); the resolved body's scope chain gains
// an object-backed Scope over obj (§3 "Scope ... object-backed").
type With struct {
	BaseStmt
	Object Expression
	Body   Statement
}

func (s *With) TokenLiteral() string { return "with" }
func (s *With) String() string       { return "with (" + s.Object.String() + ") " + s.Body.String() }

// SwitchCase is one `case expr:`/`default:` arm; Test is nil for default.
type SwitchCase struct {
	Test       Expression
	Statements []Statement
}

// Switch is `switch (disc) { case ...: ... default: ... }`.
type Switch struct {
	BaseStmt
	Discriminant Expression
	Cases        []SwitchCase
}

func (s *Switch) TokenLiteral() string { return "switch" }
func (s *Switch) String() string       { return "switch (" + s.Discriminant.String() + ") { ... }" }

// Labeled is `label: statement` (§4.4).
type Labeled struct {
	BaseStmt
	Label string
	Body  Statement
}

func (s *Labeled) TokenLiteral() string { return s.Label }
func (s *Labeled) String() string       { return s.Label + ": " + s.Body.String() }

// Debugger is the `debugger;` statement.
type Debugger struct{ BaseStmt }

func (s *Debugger) TokenLiteral() string { return "debugger" }
func (s *Debugger) String() string       { return "debugger;" }
