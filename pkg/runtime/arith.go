package runtime

import (
	"fmt"
	"math"

	"javelin/interpreter-go/pkg/types"
)

const (
	ArithmeticException             = "java.lang.ArithmeticException"
	NullPointerException            = "java.lang.NullPointerException"
	ClassCastException              = "java.lang.ClassCastException"
	ArrayIndexOutOfBoundsException  = "java.lang.ArrayIndexOutOfBoundsException"
	NegativeArraySizeException      = "java.lang.NegativeArraySizeException"
	IllegalArgumentException        = "java.lang.IllegalArgumentException"
	NumberFormatException           = "java.lang.NumberFormatException"
	ArrayStoreException             = "java.lang.ArrayStoreException"
	StringIndexOutOfBoundsException = "java.lang.StringIndexOutOfBoundsException"
)

// Fault is a failure of a primitive operation that the guest program
// observes as an exception of ClassName. The evaluator turns it into a
// Thrown carrying a real exception object.
type Fault struct {
	ClassName string
	Message   string
}

func (f *Fault) Error() string {
	if f.Message == "" {
		return f.ClassName
	}
	return f.ClassName + ": " + f.Message
}

func NewFault(className string, format string, args ...any) *Fault {
	return &Fault{ClassName: className, Message: fmt.Sprintf(format, args...)}
}

// AsInt64 extracts an integral value (char included) as int64.
func AsInt64(v Value) (int64, bool) {
	switch val := v.(type) {
	case ByteValue:
		return int64(val.Val), true
	case ShortValue:
		return int64(val.Val), true
	case CharValue:
		return int64(val.Val), true
	case IntValue:
		return int64(val.Val), true
	case LongValue:
		return val.Val, true
	}
	return 0, false
}

// AsFloat64 extracts any numeric value as float64.
func AsFloat64(v Value) (float64, bool) {
	switch val := v.(type) {
	case FloatValue:
		return float64(val.Val), true
	case DoubleValue:
		return val.Val, true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// AsBool extracts a boolean; non-booleans are false.
func AsBool(v Value) bool {
	b, ok := v.(BoolValue)
	return ok && b.Val
}

// Convert applies a primitive widening or narrowing conversion with Java
// semantics: integers wrap, floating values saturate when narrowed to an
// integral kind and NaN becomes zero.
func Convert(v Value, to types.PrimitiveKind) Value {
	from, ok := PrimitiveKindOf(v)
	if !ok || from == to || from == types.Boolean || to == types.Boolean {
		return v
	}
	if from == types.Float || from == types.Double {
		f, _ := AsFloat64(v)
		return fromFloat(f, to)
	}
	i, _ := AsInt64(v)
	return fromInt(i, to)
}

func fromInt(i int64, to types.PrimitiveKind) Value {
	switch to {
	case types.Byte:
		return ByteValue{Val: int8(i)}
	case types.Short:
		return ShortValue{Val: int16(i)}
	case types.Char:
		return CharValue{Val: uint16(i)}
	case types.Int:
		return IntValue{Val: int32(i)}
	case types.Long:
		return LongValue{Val: i}
	case types.Float:
		return FloatValue{Val: float32(i)}
	case types.Double:
		return DoubleValue{Val: float64(i)}
	}
	return VoidValue{}
}

func fromFloat(f float64, to types.PrimitiveKind) Value {
	switch to {
	case types.Float:
		return FloatValue{Val: float32(f)}
	case types.Double:
		return DoubleValue{Val: f}
	case types.Long:
		return LongValue{Val: saturateInt64(f)}
	case types.Int:
		return IntValue{Val: saturateInt32(f)}
	case types.Byte, types.Short, types.Char:
		return fromInt(int64(saturateInt32(f)), to)
	}
	return VoidValue{}
}

func saturateInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func saturateInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// Binary applies an arithmetic or bitwise operator after converting both
// operands to kind, the promoted operand type chosen by the checker.
func Binary(op string, kind types.PrimitiveKind, left, right Value) (Value, error) {
	left, right = Convert(left, kind), Convert(right, kind)
	switch kind {
	case types.Boolean:
		l, r := AsBool(left), AsBool(right)
		switch op {
		case "&":
			return BoolValue{Val: l && r}, nil
		case "|":
			return BoolValue{Val: l || r}, nil
		case "^":
			return BoolValue{Val: l != r}, nil
		}
	case types.Int:
		l, r := left.(IntValue).Val, right.(IntValue).Val
		switch op {
		case "+":
			return IntValue{Val: l + r}, nil
		case "-":
			return IntValue{Val: l - r}, nil
		case "*":
			return IntValue{Val: l * r}, nil
		case "/":
			if r == 0 {
				return nil, NewFault(ArithmeticException, "/ by zero")
			}
			return IntValue{Val: l / r}, nil
		case "%":
			if r == 0 {
				return nil, NewFault(ArithmeticException, "/ by zero")
			}
			return IntValue{Val: l % r}, nil
		case "&":
			return IntValue{Val: l & r}, nil
		case "|":
			return IntValue{Val: l | r}, nil
		case "^":
			return IntValue{Val: l ^ r}, nil
		}
	case types.Long:
		l, r := left.(LongValue).Val, right.(LongValue).Val
		switch op {
		case "+":
			return LongValue{Val: l + r}, nil
		case "-":
			return LongValue{Val: l - r}, nil
		case "*":
			return LongValue{Val: l * r}, nil
		case "/":
			if r == 0 {
				return nil, NewFault(ArithmeticException, "/ by zero")
			}
			return LongValue{Val: l / r}, nil
		case "%":
			if r == 0 {
				return nil, NewFault(ArithmeticException, "/ by zero")
			}
			return LongValue{Val: l % r}, nil
		case "&":
			return LongValue{Val: l & r}, nil
		case "|":
			return LongValue{Val: l | r}, nil
		case "^":
			return LongValue{Val: l ^ r}, nil
		}
	case types.Float:
		l, r := left.(FloatValue).Val, right.(FloatValue).Val
		switch op {
		case "+":
			return FloatValue{Val: l + r}, nil
		case "-":
			return FloatValue{Val: l - r}, nil
		case "*":
			return FloatValue{Val: l * r}, nil
		case "/":
			return FloatValue{Val: l / r}, nil
		case "%":
			return FloatValue{Val: float32(math.Mod(float64(l), float64(r)))}, nil
		}
	case types.Double:
		l, r := left.(DoubleValue).Val, right.(DoubleValue).Val
		switch op {
		case "+":
			return DoubleValue{Val: l + r}, nil
		case "-":
			return DoubleValue{Val: l - r}, nil
		case "*":
			return DoubleValue{Val: l * r}, nil
		case "/":
			return DoubleValue{Val: l / r}, nil
		case "%":
			return DoubleValue{Val: math.Mod(l, r)}, nil
		}
	}
	return nil, fmt.Errorf("unsupported operator %s for %s", op, kind)
}

// Shift applies <<, >> or >>>. The count is masked to the width of the
// promoted left operand, which is int or long.
func Shift(op string, kind types.PrimitiveKind, left, right Value) (Value, error) {
	count, ok := AsInt64(Convert(right, types.Long))
	if !ok {
		return nil, fmt.Errorf("shift count must be integral")
	}
	switch kind {
	case types.Int:
		l := Convert(left, types.Int).(IntValue).Val
		n := uint(count & 31)
		switch op {
		case "<<":
			return IntValue{Val: l << n}, nil
		case ">>":
			return IntValue{Val: l >> n}, nil
		case ">>>":
			return IntValue{Val: int32(uint32(l) >> n)}, nil
		}
	case types.Long:
		l := Convert(left, types.Long).(LongValue).Val
		n := uint(count & 63)
		switch op {
		case "<<":
			return LongValue{Val: l << n}, nil
		case ">>":
			return LongValue{Val: l >> n}, nil
		case ">>>":
			return LongValue{Val: int64(uint64(l) >> n)}, nil
		}
	}
	return nil, fmt.Errorf("unsupported shift %s for %s", op, kind)
}

// Compare applies a relational or equality operator to two primitives of kind.
func Compare(op string, kind types.PrimitiveKind, left, right Value) (bool, error) {
	left, right = Convert(left, kind), Convert(right, kind)
	if kind == types.Boolean {
		l, r := AsBool(left), AsBool(right)
		switch op {
		case "==":
			return l == r, nil
		case "!=":
			return l != r, nil
		}
		return false, fmt.Errorf("unsupported operator %s for boolean", op)
	}
	if kind == types.Float || kind == types.Double {
		l, _ := AsFloat64(left)
		r, _ := AsFloat64(right)
		return compareOrdered(op, l, r)
	}
	l, _ := AsInt64(left)
	r, _ := AsInt64(right)
	return compareOrdered(op, l, r)
}

func compareOrdered[T int64 | float64](op string, l, r T) (bool, error) {
	switch op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	}
	return false, fmt.Errorf("unsupported comparison %s", op)
}

// Unary applies -, +, ~ or ! to an operand already promoted to kind.
func Unary(op string, kind types.PrimitiveKind, operand Value) (Value, error) {
	operand = Convert(operand, kind)
	switch op {
	case "+":
		return operand, nil
	case "!":
		if kind == types.Boolean {
			return BoolValue{Val: !AsBool(operand)}, nil
		}
	case "-":
		switch val := operand.(type) {
		case IntValue:
			return IntValue{Val: -val.Val}, nil
		case LongValue:
			return LongValue{Val: -val.Val}, nil
		case FloatValue:
			return FloatValue{Val: -val.Val}, nil
		case DoubleValue:
			return DoubleValue{Val: -val.Val}, nil
		}
	case "~":
		switch val := operand.(type) {
		case IntValue:
			return IntValue{Val: ^val.Val}, nil
		case LongValue:
			return LongValue{Val: ^val.Val}, nil
		}
	}
	return nil, fmt.Errorf("unsupported unary operator %s for %s", op, kind)
}
