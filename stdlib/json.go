package stdlib

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// installJSON wires `JSON.parse`/`JSON.stringify` (§B domain-stack table:
// "tidwall/gjson + tidwall/sjson + tidwall/pretty instead of
// encoding/json"). stringify builds its output incrementally with
// sjson.SetRawOptions (one Set per array element / object member) rather
// than marshaling a Go value tree, and pretty.PrettyOptions supplies the
// optional indent argument; parse walks a gjson.Result tree rather than
// unmarshaling into interface{}.
func installJSON(e *engine.Engine) {
	p := proto.New("JSON", nil)
	p.DefineProperty("parse", nativeFn("parse", jsonParse), false)
	p.DefineProperty("stringify", nativeFn("stringify", jsonStringify), false)
	p.Bake()
	e.SetGlobal("JSON", value.Obj(proto.NewInstance("JSON", p)), true)
}

func jsonParse(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	text := value.ToString(arg(args, 0))
	if !gjson.Valid(text) {
		return value.Undefined(), wrongArgs("JSON.parse")
	}
	return fromGJSON(m, gjson.Parse(text)), nil
}

func fromGJSON(m *vm.VM, r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null()
	case gjson.False:
		return value.Bool(false)
	case gjson.True:
		return value.Bool(true)
	case gjson.Number:
		return value.Float64(r.Num)
	case gjson.String:
		return value.Str(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var elems []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, fromGJSON(m, v))
				return true
			})
			return value.Obj(vm.NewArray(elems, m.ArrayProto))
		}
		inst := proto.NewInstance("Object", m.ObjectProto)
		r.ForEach(func(k, v gjson.Result) bool {
			inst.Set(k.Str, fromGJSON(m, v))
			return true
		})
		return value.Obj(inst)
	default:
		return value.Undefined()
	}
}

func jsonStringify(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	raw, ok := toJSONRaw(arg(args, 0))
	if !ok {
		return value.Undefined(), nil
	}
	if indentArg := arg(args, 2); !indentArg.IsUndefined() {
		var indent string
		if types.IsNumeric(indentArg.Kind) {
			n := int(value.ToInteger(indentArg))
			for i := 0; i < n; i++ {
				indent += " "
			}
		} else {
			indent = value.ToString(indentArg)
		}
		if indent != "" {
			raw = string(pretty.PrettyOptions([]byte(raw), &pretty.Options{Indent: indent}))
		}
	}
	return value.Str(raw), nil
}

// toJSONRaw encodes v as a raw JSON text fragment. ok is false for values
// JSON.stringify drops entirely (undefined, functions) so the caller (an
// object member loop) can skip emitting the key.
func toJSONRaw(v value.Value) (string, bool) {
	switch {
	case v.IsUndefined():
		return "", false
	case v.IsNull():
		return "null", true
	case v.Kind == types.KindFunction:
		return "", false
	case v.Kind == types.KindBool:
		if v.AsBool() {
			return "true", true
		}
		return "false", true
	case types.IsNumeric(v.Kind):
		return strconv.FormatFloat(value.ToInteger(v), 'g', -1, 64), true
	case types.IsStringy(v.Kind):
		return strconv.Quote(value.ToString(v)), true
	case v.Kind == types.KindObject:
		if arr, ok := v.AsObject().(*vm.Array); ok {
			buf := "[]"
			for _, e := range arr.Elems {
				raw, ok := toJSONRaw(e)
				if !ok {
					raw = "null"
				}
				var err error
				buf, err = sjson.SetRawOptions(buf, "-1", raw, &sjson.Options{Optimistic: true})
				if err != nil {
					return "null", true
				}
			}
			return buf, true
		}
		if obj, ok := v.AsObject().(proto.Object); ok {
			buf := "{}"
			for _, k := range obj.OwnKeys() {
				fv, _ := obj.Get(k)
				raw, ok := toJSONRaw(fv)
				if !ok {
					continue
				}
				var err error
				buf, err = sjson.SetRawOptions(buf, escapeSjsonPath(k), raw, &sjson.Options{Optimistic: true})
				if err != nil {
					return "null", true
				}
			}
			return buf, true
		}
		return "null", true
	default:
		return "null", true
	}
}

// escapeSjsonPath backslash-escapes the path metacharacters sjson's SetRaw
// path syntax treats specially (., *, ?, \) so an arbitrary JS property
// name round-trips as a single path segment instead of being split.
func escapeSjsonPath(key string) string {
	out := make([]byte, 0, len(key)+4)
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '\\':
			out = append(out, '\\', key[i])
		default:
			out = append(out, key[i])
		}
	}
	return string(out)
}
