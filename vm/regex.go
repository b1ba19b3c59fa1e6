package vm

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/value"
)

// Regex is the script-visible RegExp host object (§4.7 "Regex literal",
// §C minimal stdlib surface's "minimal RegExp"). Backed by
// dlclark/regexp2 rather than the standard library's regexp: §4 requires
// literal ECMAScript regex syntax (backreferences, lookaround) which Go's
// RE2 engine cannot express, exactly the reason the teacher's pack
// carries regexp2 as a dependency in the first place.
type Regex struct {
	Source  string
	re      *regexp2.Regexp
	proto   *proto.Prototype
	lastIdx int
}

func (r *Regex) ClassName() string { return "RegExp" }

func (r *Regex) Invoke(name string) (value.Value, bool, error) {
	switch name {
	case "toString":
		return value.Str("/" + r.Source + "/"), true, nil
	}
	return value.Undefined(), false, nil
}

func (r *Regex) Get(name string) (value.Value, bool) {
	switch name {
	case "source":
		return value.Str(r.Source), true
	case "lastIndex":
		return value.Float64(float64(r.lastIdx)), true
	}
	if r.proto != nil {
		if pv, _, ok := r.proto.LookupProperty(name); ok {
			return pv.Value, true
		}
	}
	return value.Undefined(), false
}

// SetProto attaches the RegExp.prototype stdlib installs (test/exec/
// toString as data properties), consulted by Get for any name that isn't
// one of the two built-in instance slots above.
func (r *Regex) SetProto(p *proto.Prototype) { r.proto = p }

func (r *Regex) Set(name string, v value.Value) error {
	if name == "lastIndex" {
		r.lastIdx = int(value.ToInteger(v))
	}
	return nil
}

func (r *Regex) Has(name string) bool {
	return name == "source" || name == "lastIndex"
}

func (r *Regex) OwnKeys() []string { return []string{"source", "lastIndex"} }

func (r *Regex) Delete(string) bool { return false }

// Test implements RegExp.prototype.test, exposed by stdlib's RegExp
// prototype (installed there as a native-function data property).
func (r *Regex) Test(s string) (bool, error) {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// ExecGroups implements RegExp.prototype.exec's group-extraction: the
// whole match plus each capture group's text (unmatched groups report "",
// same loose behavior the teacher's pack doesn't otherwise model since
// DWScript has no regex literal syntax of its own). Returns nil, nil when
// s has no match at all.
func (r *Regex) ExecGroups(s string) ([]string, error) {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return out, nil
}

// NewRegex compiles a fresh, uncached Regex from an explicit pattern and
// flags (`new RegExp(pattern, flags)`, §6 "minimal RegExp"), as opposed
// to regex() which serves the once-per-source-position regex *literal*
// cache (§4.7 "Regex literal").
func NewRegex(pattern, flags string) (*Regex, error) {
	opts := regexp2.ECMAScript
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	return &Regex{Source: pattern, re: re}, nil
}

// regex resolves OpLoadRegex's operand into a Regex value, compiling and
// caching it on first use (regex literals in ECMAScript are constant per
// source position, so recompiling on every evaluation would be wasted
// work for a regex inside a loop body).
func (m *VM) regex(idx int) *Regex {
	if cached, ok := m.regexCache[idx]; ok {
		return cached
	}
	pattern := ""
	if idx >= 0 && idx < len(m.regexSource) {
		pattern = m.regexSource[idx]
	}
	// The emitter records each literal as written, "/pattern/flags"; only
	// the text between the delimiters is compiled (the flags are not applied).
	if i := strings.LastIndex(pattern, "/"); i > 0 && strings.HasPrefix(pattern, "/") {
		pattern = pattern[1:i]
	}
	re := regexp2.MustCompile(pattern, regexp2.ECMAScript)
	r := &Regex{Source: pattern, re: re, proto: m.RegexProto}
	m.regexCache[idx] = r
	return r
}
