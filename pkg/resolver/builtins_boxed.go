package resolver

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

// UnboxMethodName is the scalar-extraction method of the boxed class for kind.
func UnboxMethodName(kind types.PrimitiveKind) string {
	return kind.String() + "Value"
}

// boxedScalar reads the primitive held by a boxed instance.
func boxedScalar(v runtime.Value) (runtime.Value, bool) {
	obj, ok := v.(*runtime.ObjectValue)
	if !ok {
		return nil, false
	}
	scalar, ok := obj.Native.(runtime.Value)
	return scalar, ok
}

func numberFormat(text string) error {
	return runtime.NewFault(runtime.NumberFormatException, "For input string: \"%s\"", text)
}

func parseIntegral(text string, kind types.PrimitiveKind) (runtime.Value, error) {
	bits := map[types.PrimitiveKind]int{types.Byte: 8, types.Short: 16, types.Int: 32, types.Long: 64}[kind]
	n, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return nil, numberFormat(text)
	}
	return runtime.Convert(runtime.LongValue{Val: n}, kind), nil
}

func parseFloating(text string, kind types.PrimitiveKind) (runtime.Value, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimRight(trimmed, "dDfF")
	switch trimmed {
	case "NaN", "Infinity", "+Infinity", "-Infinity":
	default:
		if strings.ContainsAny(trimmed, "iInN") {
			return nil, numberFormat(text)
		}
	}
	bits := 64
	if kind == types.Float {
		bits = 32
	}
	f, err := strconv.ParseFloat(trimmed, bits)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			return nil, numberFormat(text)
		}
	}
	return runtime.Convert(runtime.DoubleValue{Val: f}, kind), nil
}

func floatingBits(v runtime.Value) (uint64, bool) {
	switch val := v.(type) {
	case runtime.FloatValue:
		if math.IsNaN(float64(val.Val)) {
			return 0x7fc00000, true
		}
		return uint64(math.Float32bits(val.Val)), true
	case runtime.DoubleValue:
		if math.IsNaN(val.Val) {
			return 0x7ff8000000000000, true
		}
		return math.Float64bits(val.Val), true
	}
	return 0, false
}

// boxedEquals compares scalars the way the boxed equals methods do:
// floating values compare by bit pattern.
func boxedEquals(a, b runtime.Value) bool {
	if ab, ok := floatingBits(a); ok {
		bb, ok := floatingBits(b)
		return ok && ab == bb
	}
	return a == b
}

func boxedHash(v runtime.Value) int32 {
	switch val := v.(type) {
	case runtime.BoolValue:
		if val.Val {
			return 1231
		}
		return 1237
	case runtime.LongValue:
		return int32(val.Val ^ int64(uint64(val.Val)>>32))
	case runtime.FloatValue:
		bits, _ := floatingBits(val)
		return int32(uint32(bits))
	case runtime.DoubleValue:
		bits, _ := floatingBits(val)
		return int32(bits ^ bits>>32)
	}
	return asInt(v)
}

func boxedCompare(kind types.PrimitiveKind, a, b runtime.Value) int32 {
	if kind == types.Boolean {
		x, y := runtime.AsBool(a), runtime.AsBool(b)
		switch {
		case x == y:
			return 0
		case x:
			return 1
		}
		return -1
	}
	if less, _ := runtime.Compare("<", kind, a, b); less {
		return -1
	}
	if greater, _ := runtime.Compare(">", kind, a, b); greater {
		return 1
	}
	if kind == types.Float || kind == types.Double {
		x, _ := runtime.AsFloat64(a)
		y, _ := runtime.AsFloat64(b)
		switch {
		case math.IsNaN(x) && math.IsNaN(y):
			return 0
		case math.IsNaN(x):
			return 1
		case math.IsNaN(y):
			return -1
		}
	}
	return 0
}

func (l *Library) installBoxed() {
	object := l.mustClass("java.lang.Object")
	number := l.newClass("java.lang.Number", object)
	number.Abstract = true
	ctor(number, params(), nil)
	for _, kind := range []types.PrimitiveKind{types.Byte, types.Short, types.Int, types.Long, types.Float, types.Double} {
		instance(number, UnboxMethodName(kind), types.Primitive(kind), params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
			scalar, ok := boxedScalar(recv)
			if !ok {
				return nil, runtime.NewFault(runtime.NullPointerException, "not a boxed number")
			}
			return runtime.Convert(scalar, kind), nil
		})
	}

	for kind := types.Boolean; kind < types.Void; kind++ {
		l.installBoxedClass(kind, object, number)
	}
}

func (l *Library) installBoxedClass(kind types.PrimitiveKind, object, number *runtime.Class) {
	prim := types.Primitive(kind)
	boxedType, _ := types.Box(prim)
	super := number
	if kind == types.Boolean || kind == types.Char {
		super = object
	}
	c := l.newClass(boxedType.ClassName, super)

	box := func(scalar runtime.Value) runtime.Value {
		obj := runtime.NewObject(c)
		obj.Native = runtime.Convert(scalar, kind)
		return obj
	}
	ctor(c, params(prim), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		recv.(*runtime.ObjectValue).Native = runtime.Convert(args[0], kind)
		return nil, nil
	})
	static(c, "valueOf", boxedType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return box(args[0]), nil
	})
	if kind == types.Boolean || kind == types.Char {
		instance(c, UnboxMethodName(kind), prim, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
			scalar, _ := boxedScalar(recv)
			return scalar, nil
		})
	}
	instance(c, "toString", types.StringType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		scalar, _ := boxedScalar(recv)
		text, _ := runtime.FormatPrimitive(scalar)
		return str(text), nil
	})
	static(c, "toString", types.StringType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, _ := runtime.FormatPrimitive(args[0])
		return str(text), nil
	})
	instance(c, "equals", types.BooleanType, params(types.ObjectType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		other, ok := args[0].(*runtime.ObjectValue)
		if !ok || other.Class != c {
			return boolean(false), nil
		}
		a, _ := boxedScalar(recv)
		b, _ := boxedScalar(other)
		return boolean(boxedEquals(a, b)), nil
	})
	instance(c, "hashCode", types.IntType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		scalar, _ := boxedScalar(recv)
		return integer(boxedHash(scalar)), nil
	})
	instance(c, "compareTo", types.IntType, params(boxedType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		a, _ := boxedScalar(recv)
		b, ok := boxedScalar(args[0])
		if !ok {
			return nil, runtime.NewFault(runtime.NullPointerException, "compareTo argument is null")
		}
		return integer(boxedCompare(kind, a, b)), nil
	})
	static(c, "compare", types.IntType, params(prim, prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return integer(boxedCompare(kind, args[0], args[1])), nil
	})

	switch kind {
	case types.Boolean:
		static(c, "parseBoolean", prim, params(types.StringType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, ok := args[0].(runtime.StringValue)
			return boolean(ok && strings.EqualFold(text.Val, "true")), nil
		})
	case types.Char:
		constant(c, "MIN_VALUE", prim, runtime.CharValue{Val: 0})
		constant(c, "MAX_VALUE", prim, runtime.CharValue{Val: math.MaxUint16})
		predicate := func(name string, fn func(rune) bool) {
			static(c, name, types.BooleanType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
				return boolean(fn(rune(asChar(args[0])))), nil
			})
		}
		predicate("isDigit", unicode.IsDigit)
		predicate("isLetter", unicode.IsLetter)
		predicate("isLetterOrDigit", func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
		predicate("isWhitespace", unicode.IsSpace)
		predicate("isUpperCase", unicode.IsUpper)
		predicate("isLowerCase", unicode.IsLower)
		mapping := func(name string, fn func(rune) rune) {
			static(c, name, prim, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
				return runtime.CharValue{Val: uint16(fn(rune(asChar(args[0]))))}, nil
			})
		}
		mapping("toUpperCase", unicode.ToUpper)
		mapping("toLowerCase", unicode.ToLower)
	case types.Byte, types.Short, types.Int, types.Long:
		bits := map[types.PrimitiveKind]uint{types.Byte: 8, types.Short: 16, types.Int: 32, types.Long: 64}[kind]
		maxVal := int64(1)<<(bits-1) - 1
		minVal := -maxVal - 1
		constant(c, "MIN_VALUE", prim, runtime.Convert(runtime.LongValue{Val: minVal}, kind))
		constant(c, "MAX_VALUE", prim, runtime.Convert(runtime.LongValue{Val: maxVal}, kind))
		parseName := map[types.PrimitiveKind]string{types.Byte: "parseByte", types.Short: "parseShort", types.Int: "parseInt", types.Long: "parseLong"}[kind]
		static(c, parseName, prim, params(types.StringType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, err := argString(args[0])
			if err != nil {
				return nil, numberFormat("null")
			}
			return parseIntegral(text, kind)
		})
		static(c, "valueOf", boxedType, params(types.StringType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, err := argString(args[0])
			if err != nil {
				return nil, numberFormat("null")
			}
			scalar, err := parseIntegral(text, kind)
			if err != nil {
				return nil, err
			}
			return box(scalar), nil
		})
		if kind == types.Int || kind == types.Long {
			radix := func(name string, base int) {
				static(c, name, types.StringType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
					n := asLong(args[0])
					if kind == types.Int {
						return str(strconv.FormatUint(uint64(uint32(n)), base)), nil
					}
					return str(strconv.FormatUint(uint64(n), base)), nil
				})
			}
			radix("toBinaryString", 2)
			radix("toOctalString", 8)
			radix("toHexString", 16)
		}
	case types.Float, types.Double:
		if kind == types.Float {
			constant(c, "MAX_VALUE", prim, runtime.FloatValue{Val: math.MaxFloat32})
			constant(c, "MIN_VALUE", prim, runtime.FloatValue{Val: math.SmallestNonzeroFloat32})
		} else {
			constant(c, "MAX_VALUE", prim, runtime.DoubleValue{Val: math.MaxFloat64})
			constant(c, "MIN_VALUE", prim, runtime.DoubleValue{Val: math.SmallestNonzeroFloat64})
		}
		constant(c, "POSITIVE_INFINITY", prim, runtime.Convert(runtime.DoubleValue{Val: math.Inf(1)}, kind))
		constant(c, "NEGATIVE_INFINITY", prim, runtime.Convert(runtime.DoubleValue{Val: math.Inf(-1)}, kind))
		constant(c, "NaN", prim, runtime.Convert(runtime.DoubleValue{Val: math.NaN()}, kind))
		parseName := "parseDouble"
		if kind == types.Float {
			parseName = "parseFloat"
		}
		static(c, parseName, prim, params(types.StringType), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			text, err := argString(args[0])
			if err != nil {
				return nil, err
			}
			return parseFloating(text, kind)
		})
		static(c, "isNaN", types.BooleanType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return boolean(math.IsNaN(asDouble(args[0]))), nil
		})
		static(c, "isInfinite", types.BooleanType, params(prim), func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return boolean(math.IsInf(asDouble(args[0]), 0)), nil
		})
	}
}
