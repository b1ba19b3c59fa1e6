package stdlib

import (
	"time"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// installDate wires a minimal `Date`: Date.now() plus getTime()/valueOf()/
// toISOString()/getFullYear() on instances, not a full calendar library —
// the calendar math a complete Date needs is out of scope. Every
// instance stores its epoch milliseconds as a single own property rather
// than a host-reflected Go struct, since the only operations offered are
// the ones below.
func installDate(e *engine.Engine) {
	dp := proto.New("Date.prototype", nil)
	dp.DefineProperty("getTime", nativeFn("getTime", dateGetTime), false)
	dp.DefineProperty("valueOf", nativeFn("valueOf", dateGetTime), false)
	dp.DefineProperty("toISOString", nativeFn("toISOString", dateToISOString), false)
	dp.DefineProperty("getFullYear", nativeFn("getFullYear", dateGetFullYear), false)
	dp.Bake()

	statics := proto.New("Date", nil)
	statics.DefineProperty("now", nativeFn("now", dateNow), false)
	statics.Bake()

	ctor := &vm.NativeFunc{
		Name:  "Date",
		Proto: statics,
		Call: func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
			return value.Str(time.Now().UTC().Format(time.RFC3339)), nil
		},
		Construct: func(m *vm.VM, args []value.Value) (value.Value, error) {
			return newDateInstance(dp, args), nil
		},
	}
	e.SetGlobal("Date", value.Func(ctor), true)
}

func newDateInstance(dp *proto.Prototype, args []value.Value) value.Value {
	inst := proto.NewInstance("Date", dp)
	var ms float64
	switch {
	case len(args) == 0:
		ms = float64(time.Now().UnixMilli())
	case types.IsNumeric(args[0].Kind):
		ms = value.ToInteger(args[0])
	case types.IsStringy(args[0].Kind):
		if t, err := time.Parse(time.RFC3339, value.ToString(args[0])); err == nil {
			ms = float64(t.UnixMilli())
		}
	}
	inst.DefineOwn("@@epochMillis", value.Float64(ms), false)
	return value.Obj(inst)
}

func dateEpoch(this value.Value) float64 {
	inst, ok := this.AsObject().(*proto.Instance)
	if !ok {
		return nan()
	}
	v, ok := inst.Get("@@epochMillis")
	if !ok {
		return nan()
	}
	return value.ToInteger(v)
}

func dateGetTime(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Float64(dateEpoch(this)), nil
}

func dateToTime(this value.Value) time.Time {
	return time.UnixMilli(int64(dateEpoch(this))).UTC()
}

func dateToISOString(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Str(dateToTime(this).Format("2006-01-02T15:04:05.000Z")), nil
}

func dateGetFullYear(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Float64(float64(dateToTime(this).Year())), nil
}

func dateNow(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return value.Float64(float64(time.Now().UnixMilli())), nil
}
