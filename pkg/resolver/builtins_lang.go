package resolver

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func params(ts ...types.Type) []types.Type {
	if ts == nil {
		return []types.Type{}
	}
	return ts
}

func (l *Library) newClass(name string, super *runtime.Class) *runtime.Class {
	return l.define(&runtime.Class{Name: name, Super: super})
}

func instance(c *runtime.Class, name string, ret types.Type, ps []types.Type, impl runtime.NativeFunc) {
	c.AddMethod(&runtime.Method{Name: name, Params: ps, Return: ret, Impl: impl})
}

func static(c *runtime.Class, name string, ret types.Type, ps []types.Type, impl runtime.NativeFunc) {
	c.AddMethod(&runtime.Method{Name: name, Params: ps, Return: ret, Static: true, Impl: impl})
}

func constant(c *runtime.Class, name string, t types.Type, v runtime.Value) {
	c.AddField(&runtime.Field{Name: name, Type: t, Static: true, Final: true, Constant: v, Value: v})
}

func ctor(c *runtime.Class, ps []types.Type, impl runtime.NativeFunc) {
	c.AddConstructor(&runtime.Constructor{Params: ps, Impl: impl})
}

func str(s string) runtime.Value     { return runtime.StringValue{Val: s} }
func boolean(b bool) runtime.Value   { return runtime.BoolValue{Val: b} }
func integer(i int32) runtime.Value  { return runtime.IntValue{Val: i} }
func long(i int64) runtime.Value     { return runtime.LongValue{Val: i} }
func double(f float64) runtime.Value { return runtime.DoubleValue{Val: f} }

func asInt(v runtime.Value) int32 {
	if i, ok := runtime.Convert(v, types.Int).(runtime.IntValue); ok {
		return i.Val
	}
	return 0
}

func asLong(v runtime.Value) int64 {
	if i, ok := runtime.Convert(v, types.Long).(runtime.LongValue); ok {
		return i.Val
	}
	return 0
}

func asDouble(v runtime.Value) float64 {
	f, _ := runtime.AsFloat64(v)
	return f
}

func asFloat(v runtime.Value) float32 {
	if f, ok := runtime.Convert(v, types.Float).(runtime.FloatValue); ok {
		return f.Val
	}
	return 0
}

func asChar(v runtime.Value) uint16 {
	if c, ok := v.(runtime.CharValue); ok {
		return c.Val
	}
	return uint16(asInt(v))
}

// argString reads a String argument; null raises NullPointerException.
func argString(v runtime.Value) (string, error) {
	if s, ok := v.(runtime.StringValue); ok {
		return s.Val, nil
	}
	return "", runtime.NewFault(runtime.NullPointerException, "argument is null")
}

func receiverString(v runtime.Value) string {
	if s, ok := v.(runtime.StringValue); ok {
		return s.Val
	}
	return ""
}

func indexUnits(hay, needle []uint16, from int) int {
	if from < 0 {
		from = 0
	}
	for idx := from; idx+len(needle) <= len(hay); idx++ {
		match := true
		for off := range needle {
			if hay[idx+off] != needle[off] {
				match = false
				break
			}
		}
		if match {
			return idx
		}
	}
	return -1
}

func lastIndexUnits(hay, needle []uint16) int {
	for idx := len(hay) - len(needle); idx >= 0; idx-- {
		if indexUnits(hay[idx:idx+len(needle)], needle, 0) == 0 {
			return idx
		}
	}
	return -1
}

func outOfBounds(className string, index, length int) error {
	return runtime.NewFault(className, "Index %d out of bounds for length %d", index, length)
}

// StringHash is String.hashCode over UTF-16 units.
func StringHash(s string) int32 {
	var h int32
	for _, unit := range runtime.UTF16(s) {
		h = 31*h + int32(unit)
	}
	return h
}

func (l *Library) installLang() {
	object := l.newClass("java.lang.Object", nil)
	ctor(object, params(), nil)
	instance(object, "toString", types.StringType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		name := descriptor(runtime.TypeOf(recv))
		return str(fmt.Sprintf("%s@%x", name, uint32(l.IdentityHash(recv)))), nil
	})
	instance(object, "equals", types.BooleanType, params(types.ObjectType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return boolean(runtime.SameReference(recv, args[0])), nil
	})
	instance(object, "hashCode", types.IntType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return integer(l.IdentityHash(recv)), nil
	})

	l.installString(object)
	l.installStringBuilder(object)
	l.installSystem(object)
	l.installMath(object)
}

func (l *Library) installString(object *runtime.Class) {
	s := l.newClass("java.lang.String", object)
	S := types.StringType
	charArray := types.ArrayType{Element: types.CharType}

	ctor(s, params(), func(*runtime.NativeCallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return str(""), nil
	})
	ctor(s, params(S), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		return str(text), nil
	})
	ctor(s, params(charArray), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return str(charsToString(args[0])), nil
	})

	instance(s, "length", types.IntType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return integer(int32(len(runtime.UTF16(receiverString(recv))))), nil
	})
	instance(s, "isEmpty", types.BooleanType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return boolean(receiverString(recv) == ""), nil
	})
	instance(s, "charAt", types.CharType, params(types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		units := runtime.UTF16(receiverString(recv))
		idx := int(asInt(args[0]))
		if idx < 0 || idx >= len(units) {
			return nil, outOfBounds(runtime.StringIndexOutOfBoundsException, idx, len(units))
		}
		return runtime.CharValue{Val: units[idx]}, nil
	})
	substring := func(units []uint16, begin, end int) (runtime.Value, error) {
		if begin < 0 || end > len(units) || begin > end {
			return nil, runtime.NewFault(runtime.StringIndexOutOfBoundsException, "begin %d, end %d, length %d", begin, end, len(units))
		}
		return str(runtime.FromUTF16(units[begin:end])), nil
	}
	instance(s, "substring", S, params(types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		units := runtime.UTF16(receiverString(recv))
		return substring(units, int(asInt(args[0])), len(units))
	})
	instance(s, "substring", S, params(types.IntType, types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return substring(runtime.UTF16(receiverString(recv)), int(asInt(args[0])), int(asInt(args[1])))
	})
	instance(s, "indexOf", types.IntType, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		needle, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		return integer(int32(indexUnits(runtime.UTF16(receiverString(recv)), runtime.UTF16(needle), 0))), nil
	})
	instance(s, "indexOf", types.IntType, params(types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		needle := []uint16{uint16(asInt(args[0]))}
		return integer(int32(indexUnits(runtime.UTF16(receiverString(recv)), needle, 0))), nil
	})
	instance(s, "lastIndexOf", types.IntType, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		needle, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		return integer(int32(lastIndexUnits(runtime.UTF16(receiverString(recv)), runtime.UTF16(needle)))), nil
	})
	predicate := func(name string, fn func(a, b string) bool) {
		instance(s, name, types.BooleanType, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
			other, err := argString(args[0])
			if err != nil {
				return nil, err
			}
			return boolean(fn(receiverString(recv), other)), nil
		})
	}
	predicate("contains", strings.Contains)
	predicate("startsWith", strings.HasPrefix)
	predicate("endsWith", strings.HasSuffix)
	instance(s, "equalsIgnoreCase", types.BooleanType, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		other, ok := args[0].(runtime.StringValue)
		return boolean(ok && strings.EqualFold(receiverString(recv), other.Val)), nil
	})
	instance(s, "equals", types.BooleanType, params(types.ObjectType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		other, ok := args[0].(runtime.StringValue)
		return boolean(ok && other.Val == receiverString(recv)), nil
	})
	instance(s, "hashCode", types.IntType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return integer(StringHash(receiverString(recv))), nil
	})
	instance(s, "compareTo", types.IntType, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		other, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		return integer(compareUnits(runtime.UTF16(receiverString(recv)), runtime.UTF16(other))), nil
	})
	transform := func(name string, fn func(string) string) {
		instance(s, name, S, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
			return str(fn(receiverString(recv))), nil
		})
	}
	transform("toUpperCase", strings.ToUpper)
	transform("toLowerCase", strings.ToLower)
	transform("trim", func(text string) string {
		return strings.TrimFunc(text, func(r rune) bool { return r <= ' ' })
	})
	transform("toString", func(text string) string { return text })
	instance(s, "concat", S, params(S), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		other, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		return str(receiverString(recv) + other), nil
	})
	instance(s, "replace", S, params(types.CharType, types.CharType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		units := runtime.UTF16(receiverString(recv))
		from, to := asChar(args[0]), asChar(args[1])
		for idx, unit := range units {
			if unit == from {
				units[idx] = to
			}
		}
		return str(runtime.FromUTF16(units)), nil
	})
	instance(s, "toCharArray", charArray, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		units := runtime.UTF16(receiverString(recv))
		arr := runtime.NewArray(types.CharType, len(units))
		for idx, unit := range units {
			arr.Elements[idx] = runtime.CharValue{Val: unit}
		}
		return arr, nil
	})

	valueOf := func(param types.Type) {
		static(s, "valueOf", S, params(param), func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, err := l.Stringify(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return str(text), nil
		})
	}
	for _, param := range []types.Type{types.BooleanType, types.CharType, types.IntType, types.LongType, types.FloatType, types.DoubleType, types.ObjectType} {
		valueOf(param)
	}
	static(s, "valueOf", S, params(charArray), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return str(charsToString(args[0])), nil
	})
}

func charsToString(v runtime.Value) string {
	arr, ok := v.(*runtime.ArrayValue)
	if !ok {
		return "null"
	}
	units := make([]uint16, len(arr.Elements))
	for idx, elem := range arr.Elements {
		units[idx] = asChar(elem)
	}
	return runtime.FromUTF16(units)
}

func compareUnits(a, b []uint16) int32 {
	for idx := 0; idx < len(a) && idx < len(b); idx++ {
		if a[idx] != b[idx] {
			return int32(a[idx]) - int32(b[idx])
		}
	}
	return int32(len(a) - len(b))
}

type builderState struct {
	units []uint16
}

func builderOf(v runtime.Value) *builderState {
	if obj, ok := v.(*runtime.ObjectValue); ok {
		if state, ok := obj.Native.(*builderState); ok {
			return state
		}
	}
	return &builderState{}
}

func (l *Library) installStringBuilder(object *runtime.Class) {
	sb := l.newClass("java.lang.StringBuilder", object)
	SB := sb.Type()

	ctor(sb, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		recv.(*runtime.ObjectValue).Native = &builderState{}
		return nil, nil
	})
	ctor(sb, params(types.StringType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		recv.(*runtime.ObjectValue).Native = &builderState{units: runtime.UTF16(text)}
		return nil, nil
	})
	for _, param := range []types.Type{types.StringType, types.CharType, types.IntType, types.LongType, types.FloatType, types.DoubleType, types.BooleanType, types.ObjectType} {
		instance(sb, "append", SB, params(param), func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, err := l.Stringify(ctx, args[0])
			if err != nil {
				return nil, err
			}
			state := builderOf(recv)
			state.units = append(state.units, runtime.UTF16(text)...)
			return recv, nil
		})
	}
	instance(sb, "insert", SB, params(types.IntType, types.StringType), func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		state := builderOf(recv)
		offset := int(asInt(args[0]))
		if offset < 0 || offset > len(state.units) {
			return nil, outOfBounds(runtime.StringIndexOutOfBoundsException, offset, len(state.units))
		}
		text, err := l.Stringify(ctx, args[1])
		if err != nil {
			return nil, err
		}
		inserted := runtime.UTF16(text)
		units := make([]uint16, 0, len(state.units)+len(inserted))
		units = append(units, state.units[:offset]...)
		units = append(units, inserted...)
		state.units = append(units, state.units[offset:]...)
		return recv, nil
	})
	instance(sb, "deleteCharAt", SB, params(types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		state := builderOf(recv)
		idx := int(asInt(args[0]))
		if idx < 0 || idx >= len(state.units) {
			return nil, outOfBounds(runtime.StringIndexOutOfBoundsException, idx, len(state.units))
		}
		state.units = append(state.units[:idx], state.units[idx+1:]...)
		return recv, nil
	})
	instance(sb, "reverse", SB, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		state := builderOf(recv)
		for i, j := 0, len(state.units)-1; i < j; i, j = i+1, j-1 {
			state.units[i], state.units[j] = state.units[j], state.units[i]
		}
		return recv, nil
	})
	instance(sb, "length", types.IntType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return integer(int32(len(builderOf(recv).units))), nil
	})
	instance(sb, "charAt", types.CharType, params(types.IntType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		state := builderOf(recv)
		idx := int(asInt(args[0]))
		if idx < 0 || idx >= len(state.units) {
			return nil, outOfBounds(runtime.StringIndexOutOfBoundsException, idx, len(state.units))
		}
		return runtime.CharValue{Val: state.units[idx]}, nil
	})
	instance(sb, "toString", types.StringType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return str(runtime.FromUTF16(builderOf(recv).units)), nil
	})
}

// printStream is the Native state of a PrintStream instance.
type printStream struct {
	stderr bool
}

func (p *printStream) writer(ctx *runtime.NativeCallContext) io.Writer {
	if ctx == nil {
		return io.Discard
	}
	if p.stderr {
		if ctx.Stderr != nil {
			return ctx.Stderr
		}
		return io.Discard
	}
	if ctx.Stdout != nil {
		return ctx.Stdout
	}
	return io.Discard
}

func streamOf(v runtime.Value) *printStream {
	if obj, ok := v.(*runtime.ObjectValue); ok {
		if stream, ok := obj.Native.(*printStream); ok {
			return stream
		}
	}
	return &printStream{}
}

func (l *Library) installSystem(object *runtime.Class) {
	ps := l.newClass("java.io.PrintStream", object)
	charArray := types.ArrayType{Element: types.CharType}
	for _, name := range []string{"print", "println"} {
		suffix := ""
		if name == "println" {
			suffix = "\n"
		}
		for _, param := range []types.Type{types.BooleanType, types.CharType, types.IntType, types.LongType, types.FloatType, types.DoubleType, types.StringType, types.ObjectType, charArray} {
			isChars := types.Identical(param, charArray)
			instance(ps, name, types.VoidType, params(param), func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
				var text string
				if isChars {
					if runtime.IsNull(args[0]) {
						return nil, runtime.NewFault(runtime.NullPointerException, "char array is null")
					}
					text = charsToString(args[0])
				} else {
					var err error
					if text, err = l.Stringify(ctx, args[0]); err != nil {
						return nil, err
					}
				}
				_, err := io.WriteString(streamOf(recv).writer(ctx), text+suffix)
				return runtime.VoidValue{}, err
			})
		}
	}
	instance(ps, "println", types.VoidType, params(), func(ctx *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		_, err := io.WriteString(streamOf(recv).writer(ctx), "\n")
		return runtime.VoidValue{}, err
	})

	system := l.newClass("java.lang.System", object)
	out := runtime.NewObject(ps)
	out.Native = &printStream{}
	errStream := runtime.NewObject(ps)
	errStream.Native = &printStream{stderr: true}
	system.AddField(&runtime.Field{Name: "out", Type: ps.Type(), Static: true, Final: true, Value: out})
	system.AddField(&runtime.Field{Name: "err", Type: ps.Type(), Static: true, Final: true, Value: errStream})
	static(system, "currentTimeMillis", types.LongType, params(), func(*runtime.NativeCallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return long(time.Now().UnixMilli()), nil
	})
	static(system, "nanoTime", types.LongType, params(), func(*runtime.NativeCallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return long(time.Now().UnixNano()), nil
	})
	static(system, "identityHashCode", types.IntType, params(types.ObjectType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if runtime.IsNull(args[0]) {
			return integer(0), nil
		}
		return integer(l.IdentityHash(args[0])), nil
	})
}

func (l *Library) installMath(object *runtime.Class) {
	m := l.newClass("java.lang.Math", object)
	constant(m, "PI", types.DoubleType, double(math.Pi))
	constant(m, "E", types.DoubleType, double(math.E))

	numeric := []types.PrimitiveType{types.IntType, types.LongType, types.FloatType, types.DoubleType}
	for _, t := range numeric {
		kind := t.Kind
		static(m, "abs", t, params(t), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			switch kind {
			case types.Int:
				if v := asInt(args[0]); v < 0 {
					return integer(-v), nil
				}
			case types.Long:
				if v := asLong(args[0]); v < 0 {
					return long(-v), nil
				}
			case types.Float:
				return runtime.FloatValue{Val: float32(math.Abs(float64(asFloat(args[0]))))}, nil
			case types.Double:
				return double(math.Abs(asDouble(args[0]))), nil
			}
			return args[0], nil
		})
		for _, name := range []string{"max", "min"} {
			pickMax := name == "max"
			static(m, name, t, params(t, t), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
				a, b := args[0], args[1]
				if kind == types.Float || kind == types.Double {
					x, y := asDouble(a), asDouble(b)
					var r float64
					if pickMax {
						r = math.Max(x, y)
					} else {
						r = math.Min(x, y)
					}
					return runtime.Convert(double(r), kind), nil
				}
				greater, _ := runtime.Compare(">", kind, a, b)
				if greater == pickMax {
					return a, nil
				}
				return b, nil
			})
		}
	}
	unaryDouble := func(name string, fn func(float64) float64) {
		static(m, name, types.DoubleType, params(types.DoubleType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return double(fn(asDouble(args[0]))), nil
		})
	}
	unaryDouble("sqrt", math.Sqrt)
	unaryDouble("cbrt", math.Cbrt)
	unaryDouble("floor", math.Floor)
	unaryDouble("ceil", math.Ceil)
	unaryDouble("exp", math.Exp)
	unaryDouble("log", math.Log)
	unaryDouble("log10", math.Log10)
	unaryDouble("sin", math.Sin)
	unaryDouble("cos", math.Cos)
	unaryDouble("tan", math.Tan)
	unaryDouble("signum", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	})
	static(m, "pow", types.DoubleType, params(types.DoubleType, types.DoubleType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return double(math.Pow(asDouble(args[0]), asDouble(args[1]))), nil
	})
	static(m, "round", types.LongType, params(types.DoubleType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Convert(double(math.Floor(asDouble(args[0])+0.5)), types.Long), nil
	})
	static(m, "round", types.IntType, params(types.FloatType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Convert(double(math.Floor(float64(asFloat(args[0]))+0.5)), types.Int), nil
	})
	static(m, "random", types.DoubleType, params(), func(*runtime.NativeCallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return double(rand.Float64()), nil
	})
}
