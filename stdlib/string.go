package stdlib

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// installString wires String.prototype (§C "String.prototype.toUpperCase/
// toLowerCase/trim/... (exercises x/text/cases for locale-aware casing
// instead of strings.ToUpper/ToLower)") onto m.StringProto, the prototype
// vm.getProperty's IsStringy branch consults for any stringy receiver.
func installString(e *engine.Engine) {
	sp := e.VM.StringProto
	sp.DefineProperty("toUpperCase", nativeFn("toUpperCase", stringToUpper), false)
	sp.DefineProperty("toLowerCase", nativeFn("toLowerCase", stringToLower), false)
	sp.DefineProperty("trim", nativeFn("trim", stringTrim), false)
	sp.DefineProperty("trimStart", nativeFn("trimStart", stringTrimStart), false)
	sp.DefineProperty("trimEnd", nativeFn("trimEnd", stringTrimEnd), false)
	sp.DefineProperty("charAt", nativeFn("charAt", stringCharAt), false)
	sp.DefineProperty("charCodeAt", nativeFn("charCodeAt", stringCharCodeAt), false)
	sp.DefineProperty("indexOf", nativeFn("indexOf", stringIndexOf), false)
	sp.DefineProperty("includes", nativeFn("includes", stringIncludes), false)
	sp.DefineProperty("startsWith", nativeFn("startsWith", stringStartsWith), false)
	sp.DefineProperty("endsWith", nativeFn("endsWith", stringEndsWith), false)
	sp.DefineProperty("slice", nativeFn("slice", stringSlice), false)
	sp.DefineProperty("split", nativeFn("split", stringSplit), false)
	sp.DefineProperty("replace", nativeFn("replace", stringReplace), false)
	sp.DefineProperty("repeat", nativeFn("repeat", stringRepeat), false)
	sp.DefineProperty("padStart", nativeFn("padStart", stringPadStart), false)
	sp.DefineProperty("padEnd", nativeFn("padEnd", stringPadEnd), false)
	sp.DefineProperty("concat", nativeFn("concat", stringConcat), false)
}

func recvString(this value.Value) string { return value.ToString(this) }

func stringToUpper(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(upperCaser.String(recvString(this))), nil
}

func stringToLower(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(lowerCaser.String(recvString(this))), nil
}

func stringTrim(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(strings.TrimSpace(recvString(this))), nil
}

func stringTrimStart(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(strings.TrimLeft(recvString(this), " \t\n\r\f\v")), nil
}

func stringTrimEnd(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(strings.TrimRight(recvString(this), " \t\n\r\f\v")), nil
}

func stringCharAt(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	rs := []rune(recvString(this))
	i := int(value.ToInteger(arg(args, 0)))
	if i < 0 || i >= len(rs) {
		return value.Str(""), nil
	}
	return value.Str(string(rs[i])), nil
}

func stringCharCodeAt(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	rs := []rune(recvString(this))
	i := int(value.ToInteger(arg(args, 0)))
	if i < 0 || i >= len(rs) {
		return value.Float64(nan()), nil
	}
	return value.Float64(float64(rs[i])), nil
}

func stringIndexOf(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	idx := strings.Index(recvString(this), value.ToString(arg(args, 0)))
	return value.Float64(float64(idx)), nil
}

func stringIncludes(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Bool(strings.Contains(recvString(this), value.ToString(arg(args, 0)))), nil
}

func stringStartsWith(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Bool(strings.HasPrefix(recvString(this), value.ToString(arg(args, 0)))), nil
}

func stringEndsWith(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Bool(strings.HasSuffix(recvString(this), value.ToString(arg(args, 0)))), nil
}

func stringSlice(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	rs := []rune(recvString(this))
	n := len(rs)
	start, end := 0, n
	if len(args) > 0 {
		start = clampIndex(int(value.ToInteger(args[0])), n)
	}
	if len(args) > 1 {
		end = clampIndex(int(value.ToInteger(args[1])), n)
	}
	if start > end {
		start = end
	}
	return value.Str(string(rs[start:end])), nil
}

func stringSplit(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	s := recvString(this)
	if len(args) == 0 || arg(args, 0).IsUndefined() {
		return value.Obj(vm.NewArray([]value.Value{value.Str(s)}, m.ArrayProto)), nil
	}
	sep := value.ToString(args[0])
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.Str(p)
	}
	return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
}

func stringReplace(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	s := recvString(this)
	old := value.ToString(arg(args, 0))
	repl := value.ToString(arg(args, 1))
	return value.Str(strings.Replace(s, old, repl, 1)), nil
}

func stringRepeat(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	n := int(value.ToInteger(arg(args, 0)))
	if n < 0 {
		return value.Undefined(), wrongArgs("repeat")
	}
	return value.Str(strings.Repeat(recvString(this), n)), nil
}

func stringPadStart(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return padString(recvString(this), args, true), nil
}

func stringPadEnd(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return padString(recvString(this), args, false), nil
}

func padString(s string, args []value.Value, start bool) value.Value {
	target := int(value.ToInteger(arg(args, 0)))
	pad := " "
	if len(args) > 1 {
		pad = value.ToString(args[1])
	}
	if pad == "" {
		return value.Str(s)
	}
	rs := []rune(s)
	for len(rs) < target {
		need := target - len(rs)
		padRunes := []rune(pad)
		if len(padRunes) > need {
			padRunes = padRunes[:need]
		}
		if start {
			rs = append(padRunes, rs...)
		} else {
			rs = append(rs, padRunes...)
		}
	}
	return value.Str(string(rs))
}

func stringConcat(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	var b strings.Builder
	b.WriteString(recvString(this))
	for _, a := range args {
		b.WriteString(value.ToString(a))
	}
	return value.Str(b.String()), nil
}
