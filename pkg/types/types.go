package types

import "strings"

// Type is a static type understood by the checker and carried on decorated nodes.
type Type interface {
	Name() string
	isType()
}

type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
	Void
)

var primitiveNames = [...]string{"boolean", "byte", "short", "char", "int", "long", "float", "double", "void"}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[k]
}

// Rank orders the numeric kinds for binary promotion. byte, short and char
// always promote to at least int; boolean and void have no rank.
func (k PrimitiveKind) Rank() int {
	switch k {
	case Byte:
		return 1
	case Short, Char:
		return 2
	case Int:
		return 3
	case Long:
		return 4
	case Float:
		return 5
	case Double:
		return 6
	default:
		return 0
	}
}

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return p.Kind.String() }
func (PrimitiveType) isType()        {}

// ClassType is an opaque reference type; its members are supplied by the resolver.
type ClassType struct {
	ClassName string
}

func (c ClassType) Name() string { return c.ClassName }
func (ClassType) isType()        {}

type ArrayType struct {
	Element Type
}

func (a ArrayType) Name() string {
	if a.Element == nil {
		return "?[]"
	}
	return a.Element.Name() + "[]"
}
func (ArrayType) isType() {}

// NullType is the type of the null literal.
type NullType struct{}

func (NullType) Name() string { return "null" }
func (NullType) isType()      {}

var (
	BooleanType = PrimitiveType{Kind: Boolean}
	ByteType    = PrimitiveType{Kind: Byte}
	ShortType   = PrimitiveType{Kind: Short}
	CharType    = PrimitiveType{Kind: Char}
	IntType     = PrimitiveType{Kind: Int}
	LongType    = PrimitiveType{Kind: Long}
	FloatType   = PrimitiveType{Kind: Float}
	DoubleType  = PrimitiveType{Kind: Double}
	VoidType    = PrimitiveType{Kind: Void}

	Null = NullType{}

	ObjectType    = ClassType{ClassName: "java.lang.Object"}
	StringType    = ClassType{ClassName: "java.lang.String"}
	NumberType    = ClassType{ClassName: "java.lang.Number"}
	ThrowableType = ClassType{ClassName: "java.lang.Throwable"}
)

var boxedNames = map[PrimitiveKind]string{
	Boolean: "java.lang.Boolean",
	Byte:    "java.lang.Byte",
	Short:   "java.lang.Short",
	Char:    "java.lang.Character",
	Int:     "java.lang.Integer",
	Long:    "java.lang.Long",
	Float:   "java.lang.Float",
	Double:  "java.lang.Double",
}

var unboxedKinds = func() map[string]PrimitiveKind {
	out := make(map[string]PrimitiveKind, len(boxedNames))
	for kind, name := range boxedNames {
		out[name] = kind
	}
	return out
}()

// Primitive returns the primitive type for kind.
func Primitive(kind PrimitiveKind) PrimitiveType {
	return PrimitiveType{Kind: kind}
}

// PrimitiveByName maps a keyword such as "int" to its primitive type.
func PrimitiveByName(name string) (PrimitiveType, bool) {
	for idx, candidate := range primitiveNames {
		if candidate == name {
			return PrimitiveType{Kind: PrimitiveKind(idx)}, true
		}
	}
	return PrimitiveType{}, false
}

// Box returns the reference counterpart of a primitive type. void has none.
func Box(t Type) (ClassType, bool) {
	p, ok := t.(PrimitiveType)
	if !ok {
		return ClassType{}, false
	}
	name, ok := boxedNames[p.Kind]
	if !ok {
		return ClassType{}, false
	}
	return ClassType{ClassName: name}, true
}

// Unbox returns the primitive counterpart of a boxed class type.
func Unbox(t Type) (PrimitiveType, bool) {
	c, ok := t.(ClassType)
	if !ok {
		return PrimitiveType{}, false
	}
	kind, ok := unboxedKinds[c.ClassName]
	if !ok {
		return PrimitiveType{}, false
	}
	return PrimitiveType{Kind: kind}, true
}

// BoxedClassNames lists the boxed class names, ordered by primitive kind.
func BoxedClassNames() []string {
	out := make([]string, 0, len(boxedNames))
	for kind := Boolean; kind < Void; kind++ {
		out = append(out, boxedNames[kind])
	}
	return out
}

func IsPrimitive(t Type) bool {
	_, ok := t.(PrimitiveType)
	return ok
}

func IsVoid(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == Void
}

func IsBoolean(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == Boolean
}

// IsNumeric reports whether t is a primitive numeric type (char included).
func IsNumeric(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind.Rank() > 0
}

// IsIntegral reports whether t is byte, short, char, int or long.
func IsIntegral(t Type) bool {
	p, ok := t.(PrimitiveType)
	if !ok {
		return false
	}
	switch p.Kind {
	case Byte, Short, Char, Int, Long:
		return true
	}
	return false
}

func IsBoxed(t Type) bool {
	_, ok := Unbox(t)
	return ok
}

func IsNull(t Type) bool {
	_, ok := t.(NullType)
	return ok
}

// IsReference reports whether t is a class, array or the null type.
func IsReference(t Type) bool {
	switch t.(type) {
	case ClassType, ArrayType, NullType:
		return true
	}
	return false
}

func IsString(t Type) bool {
	c, ok := t.(ClassType)
	return ok && c.ClassName == StringType.ClassName
}

func IsObject(t Type) bool {
	c, ok := t.(ClassType)
	return ok && c.ClassName == ObjectType.ClassName
}

// Identical compares two types structurally.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && Identical(at.Element, bt.Element)
	default:
		return a == b
	}
}

// IsWidening reports whether from converts to to by identity or widening
// primitive conversion.
func IsWidening(from, to PrimitiveKind) bool {
	if from == to {
		return true
	}
	switch from {
	case Byte:
		return to == Short || to == Int || to == Long || to == Float || to == Double
	case Short, Char:
		return to == Int || to == Long || to == Float || to == Double
	case Int:
		return to == Long || to == Float || to == Double
	case Long:
		return to == Float || to == Double
	case Float:
		return to == Double
	}
	return false
}

// UnaryPromotion widens byte, short and char to int.
func UnaryPromotion(k PrimitiveKind) PrimitiveKind {
	if k.Rank() > 0 && k.Rank() < Int.Rank() {
		return Int
	}
	return k
}

// BinaryPromotion returns the highest-ranked of the two kinds after
// promoting the small integral kinds to int.
func BinaryPromotion(a, b PrimitiveKind) PrimitiveKind {
	a, b = UnaryPromotion(a), UnaryPromotion(b)
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// Fits reports whether an integral constant is representable in kind without truncation.
func Fits(kind PrimitiveKind, v int64) bool {
	switch kind {
	case Byte:
		return v >= -128 && v <= 127
	case Short:
		return v >= -32768 && v <= 32767
	case Char:
		return v >= 0 && v <= 0xFFFF
	case Int:
		return v >= -1<<31 && v <= 1<<31-1
	case Long:
		return true
	}
	return false
}

// Element returns the component type of an array type.
func Element(t Type) (Type, bool) {
	a, ok := t.(ArrayType)
	if !ok {
		return nil, false
	}
	return a.Element, true
}

// Dimensions wraps t in n array levels.
func Dimensions(t Type, n int) Type {
	for ; n > 0; n-- {
		t = ArrayType{Element: t}
	}
	return t
}

// DisplayName renders t for diagnostics, dropping the java.lang prefix.
func DisplayName(t Type) string {
	if t == nil {
		return "<none>"
	}
	switch tt := t.(type) {
	case ClassType:
		return strings.TrimPrefix(tt.ClassName, "java.lang.")
	case ArrayType:
		return DisplayName(tt.Element) + "[]"
	default:
		return t.Name()
	}
}
