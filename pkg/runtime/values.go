package runtime

import (
	"fmt"
	"io"

	"javelin/interpreter-go/pkg/types"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindBool Kind = iota
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindNull
	KindVoid
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "String"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is implemented by every runtime value.
type Value interface {
	Kind() Kind
}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type ByteValue struct {
	Val int8
}

func (v ByteValue) Kind() Kind { return KindByte }

type ShortValue struct {
	Val int16
}

func (v ShortValue) Kind() Kind { return KindShort }

// CharValue holds one UTF-16 code unit.
type CharValue struct {
	Val uint16
}

func (v CharValue) Kind() Kind { return KindChar }

type IntValue struct {
	Val int32
}

func (v IntValue) Kind() Kind { return KindInt }

type LongValue struct {
	Val int64
}

func (v LongValue) Kind() Kind { return KindLong }

type FloatValue struct {
	Val float32
}

func (v FloatValue) Kind() Kind { return KindFloat }

type DoubleValue struct {
	Val float64
}

func (v DoubleValue) Kind() Kind { return KindDouble }

// StringValue is an immutable string. Strings compare by content, so two
// equal strings behave as if interned.
type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// VoidValue is the result of statements and void method calls.
type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

// ObjectValue is an instance of a resolver-supplied class. Boxed primitives
// keep their scalar in Native; builtins such as StringBuilder keep host state there.
type ObjectValue struct {
	Class  *Class
	Fields map[string]Value
	Native any
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// NewObject allocates an instance with every declared instance field zeroed.
func NewObject(class *Class) *ObjectValue {
	obj := &ObjectValue{Class: class, Fields: make(map[string]Value)}
	for c := class; c != nil; c = c.Super {
		for _, field := range c.Fields {
			if field.Static {
				continue
			}
			if _, ok := obj.Fields[field.Name]; !ok {
				obj.Fields[field.Name] = ZeroValue(field.Type)
			}
		}
	}
	return obj
}

type ArrayValue struct {
	Element  types.Type
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// NewArray allocates an array of length n filled with the element zero value.
func NewArray(element types.Type, n int) *ArrayValue {
	elems := make([]Value, n)
	zero := ZeroValue(element)
	for idx := range elems {
		elems[idx] = zero
	}
	return &ArrayValue{Element: element, Elements: elems}
}

// ZeroValue is the default a field or array slot of type t starts with.
func ZeroValue(t types.Type) Value {
	p, ok := t.(types.PrimitiveType)
	if !ok {
		return NullValue{}
	}
	switch p.Kind {
	case types.Boolean:
		return BoolValue{}
	case types.Byte:
		return ByteValue{}
	case types.Short:
		return ShortValue{}
	case types.Char:
		return CharValue{}
	case types.Int:
		return IntValue{}
	case types.Long:
		return LongValue{}
	case types.Float:
		return FloatValue{}
	case types.Double:
		return DoubleValue{}
	default:
		return VoidValue{}
	}
}

// IsNull reports whether v is the null reference.
func IsNull(v Value) bool {
	_, ok := v.(NullValue)
	return ok
}

// IsPrimitive reports whether v is one of the eight primitive value kinds.
func IsPrimitive(v Value) bool {
	if v == nil {
		return false
	}
	return v.Kind() <= KindDouble
}

// PrimitiveKindOf maps a primitive value to its static kind.
func PrimitiveKindOf(v Value) (types.PrimitiveKind, bool) {
	switch v.(type) {
	case BoolValue:
		return types.Boolean, true
	case ByteValue:
		return types.Byte, true
	case ShortValue:
		return types.Short, true
	case CharValue:
		return types.Char, true
	case IntValue:
		return types.Int, true
	case LongValue:
		return types.Long, true
	case FloatValue:
		return types.Float, true
	case DoubleValue:
		return types.Double, true
	}
	return 0, false
}

// TypeOf returns the dynamic type of v.
func TypeOf(v Value) types.Type {
	if kind, ok := PrimitiveKindOf(v); ok {
		return types.Primitive(kind)
	}
	switch val := v.(type) {
	case StringValue:
		return types.StringType
	case NullValue:
		return types.Null
	case VoidValue:
		return types.VoidType
	case *ObjectValue:
		return types.ClassType{ClassName: val.Class.Name}
	case *ArrayValue:
		return types.ArrayType{Element: val.Element}
	}
	return types.ObjectType
}

// SameReference implements == between two reference values.
func SameReference(a, b Value) bool {
	switch av := a.(type) {
	case NullValue:
		return IsNull(b)
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case *ObjectValue:
		bv, ok := b.(*ObjectValue)
		return ok && av == bv
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		return ok && av == bv
	}
	return false
}

// NativeCallContext carries host state into builtin method bodies.
type NativeCallContext struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NativeFunc implements a builtin method or constructor. receiver is nil for
// static methods; constructors receive the freshly allocated object.
type NativeFunc func(ctx *NativeCallContext, receiver Value, args []Value) (Value, error)
