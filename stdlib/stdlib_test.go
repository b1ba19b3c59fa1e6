package stdlib_test

import (
	"testing"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/stdlib"
	"github.com/nitrassic/nitrassic/value"
)

func run(t *testing.T, src string) value.Value {
	t.Helper()
	e := engine.New()
	stdlib.Install(e)
	v, err := e.Run(&engine.StringScriptSource{Text: src})
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return v
}

func TestArrayMethods(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"var a = [1,2,3]; a.push(4); a.join('-')", "1-2-3-4"},
		{"[1,2,3].map(function(x){ return x * 2; }).join(',')", "2,4,6"},
		{"[1,2,3,4].filter(function(x){ return x % 2 == 0; }).join(',')", "2,4"},
		{"Array.isArray([1,2])", "true"},
		{"Array.isArray('nope')", "false"},
		{"[1,2,3].indexOf(2)", "1"},
		{"[1,2,3].slice(1).join(',')", "2,3"},
	}
	for _, c := range cases {
		got := value.ToString(run(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestObjectMethods(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"Object.keys({a:1,b:2}).join(',')", "a,b"},
		{"Object.values({a:1,b:2}).join(',')", "1,2"},
	}
	for _, c := range cases {
		got := value.ToString(run(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestMathGlobal(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"Math.max(1,5,3)", "5"},
		{"Math.min(1,5,3)", "1"},
		{"Math.floor(3.7)", "3"},
		{"Math.abs(-4)", "4"},
	}
	for _, c := range cases {
		got := value.ToString(run(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	got := value.ToString(run(t, `JSON.stringify({a:1,b:[1,2,3]})`))
	want := `{"a":1,"b":[1,2,3]}`
	if got != want {
		t.Errorf("JSON.stringify = %q, want %q", got, want)
	}

	got2 := value.ToString(run(t, `JSON.parse('{"x":1,"y":[2,3]}').y.join(',')`))
	if got2 != "2,3" {
		t.Errorf("JSON.parse round trip = %q, want %q", got2, "2,3")
	}
}

func TestStringPrototype(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"'hello'.toUpperCase()", "HELLO"},
		{"'HELLO'.toLowerCase()", "hello"},
		{"'  hi  '.trim()", "hi"},
		{"'abc'.charAt(1)", "b"},
		{"'abcabc'.indexOf('c')", "2"},
		{"'ab'.repeat(3)", "ababab"},
		{"'5'.padStart(3, '0')", "005"},
	}
	for _, c := range cases {
		got := value.ToString(run(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestRegExp(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"/ab+c/.test('abbbc')", "true"},
		{"new RegExp('^\\\\d+$').test('123')", "true"},
		{"new RegExp('^\\\\d+$').test('abc')", "false"},
	}
	for _, c := range cases {
		got := value.ToString(run(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestConsoleLogDoesNotPanic(t *testing.T) {
	run(t, `console.log('hello', 1, true); print('world');`)
}
