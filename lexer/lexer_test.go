package lexer

import "testing"

func TestNextTokenPunctuation(t *testing.T) {
	input := `var x = 5 + 3; x += 1;`

	tests := []struct {
		wantType TokenType
		wantLit  string
	}{
		{VAR, "var"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{NUMBER, "5"},
		{PLUS, "+"},
		{NUMBER, "3"},
		{SEMICOLON, ";"},
		{IDENT, "x"},
		{PLUS_ASSIGN, "+="},
		{NUMBER, "1"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.wantType {
			t.Fatalf("test %d: type = %s, want %s", i, tok.Type, tt.wantType)
		}
		if tok.Literal != tt.wantLit {
			t.Fatalf("test %d: literal = %q, want %q", i, tok.Literal, tt.wantLit)
		}
	}
}

func TestNextTokenStrings(t *testing.T) {
	l := New(`"hello\nworld" 'it''s'`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "hello\nworld" {
		t.Fatalf("got %v", tok)
	}
}

func TestRegexVsDivision(t *testing.T) {
	l := New(`a / b; /abc/g;`)
	tok := l.NextToken() // a
	tok = l.NextToken()  // /
	if tok.Type != SLASH {
		t.Fatalf("expected division, got %s", tok.Type)
	}
	for tok.Type != SEMICOLON {
		tok = l.NextToken()
	}
	tok = l.NextToken()
	if tok.Type != REGEX || tok.Literal != "/abc/g" {
		t.Fatalf("expected regex literal, got %v", tok)
	}
}

func TestAutomaticSemicolonNewlineTracking(t *testing.T) {
	l := New("a\nb")
	tok := l.NextToken()
	if tok.NewlineBefore {
		t.Fatalf("first token should not report a newline before it")
	}
	tok = l.NextToken()
	if !tok.NewlineBefore {
		t.Fatalf("second token should report the newline between a and b")
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []string{"42", "3.14", "0x1F", "0o17", "1e10", "1.5e-3"}
	for _, src := range cases {
		l := New(src + " ;")
		tok := l.NextToken()
		if tok.Type != NUMBER || tok.Literal != src {
			t.Errorf("for %q: got %v", src, tok)
		}
	}
}

func TestUnicodeColumnsCountRunes(t *testing.T) {
	l := New("var Δ")
	l.NextToken() // var
	tok := l.NextToken()
	if tok.Pos.Column != 5 {
		t.Fatalf("column = %d, want 5", tok.Pos.Column)
	}
}
