package ast

import (
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

// Literals

// IntegerLiteral is an int literal, or a long literal when Kind is types.Long.
type IntegerLiteral struct {
	exprBase

	Value int64               `json:"value"`
	Kind  types.PrimitiveKind `json:"kind"`
}

func NewIntegerLiteral(value int64, kind types.PrimitiveKind) *IntegerLiteral {
	return &IntegerLiteral{exprBase: newExprBase(NodeIntegerLiteral), Value: value, Kind: kind}
}

// FloatingLiteral is a double literal, or a float literal when Kind is types.Float.
type FloatingLiteral struct {
	exprBase

	Value float64             `json:"value"`
	Kind  types.PrimitiveKind `json:"kind"`
}

func NewFloatingLiteral(value float64, kind types.PrimitiveKind) *FloatingLiteral {
	return &FloatingLiteral{exprBase: newExprBase(NodeFloatingLiteral), Value: value, Kind: kind}
}

type CharLiteral struct {
	exprBase

	Value uint16 `json:"value"`
}

func NewCharLiteral(value uint16) *CharLiteral {
	return &CharLiteral{exprBase: newExprBase(NodeCharLiteral), Value: value}
}

type BooleanLiteral struct {
	exprBase

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{exprBase: newExprBase(NodeBooleanLiteral), Value: value}
}

type StringLiteral struct {
	exprBase

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{exprBase: newExprBase(NodeStringLiteral), Value: value}
}

type NullLiteral struct {
	exprBase
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{exprBase: newExprBase(NodeNullLiteral)}
}

// Names and members

// Identifier is a simple name. The checker rewrites names that denote a
// class rather than a variable into static member nodes.
type Identifier struct {
	exprBase

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{exprBase: newExprBase(NodeIdentifier), Name: name}
}

type FieldAccess struct {
	exprBase

	Object Expression `json:"object"`
	Name   string     `json:"name"`

	Field *runtime.Field `json:"-"`
}

func NewFieldAccess(object Expression, name string) *FieldAccess {
	return &FieldAccess{exprBase: newExprBase(NodeFieldAccess), Object: object, Name: name}
}

type StaticFieldAccess struct {
	exprBase

	ClassName string `json:"className"`
	Name      string `json:"name"`

	Field *runtime.Field `json:"-"`
}

func NewStaticFieldAccess(className, name string) *StaticFieldAccess {
	return &StaticFieldAccess{exprBase: newExprBase(NodeStaticFieldAccess), ClassName: className, Name: name}
}

type ArrayLength struct {
	exprBase

	Array Expression `json:"array"`
}

func NewArrayLength(array Expression) *ArrayLength {
	return &ArrayLength{exprBase: newExprBase(NodeArrayLength), Array: array}
}

// MethodCall invokes an instance method on Receiver, or a script method when
// Receiver is nil.
type MethodCall struct {
	exprBase

	Receiver Expression   `json:"receiver,omitempty"`
	Name     string       `json:"name"`
	Args     []Expression `json:"args"`

	Method *runtime.Method    `json:"-"`
	Script *MethodDeclaration `json:"-"`
}

func NewMethodCall(receiver Expression, name string, args []Expression) *MethodCall {
	return &MethodCall{exprBase: newExprBase(NodeMethodCall), Receiver: receiver, Name: name, Args: args}
}

type StaticMethodCall struct {
	exprBase

	ClassName string       `json:"className"`
	Name      string       `json:"name"`
	Args      []Expression `json:"args"`

	Method *runtime.Method `json:"-"`
}

func NewStaticMethodCall(className, name string, args []Expression) *StaticMethodCall {
	return &StaticMethodCall{exprBase: newExprBase(NodeStaticMethodCall), ClassName: className, Name: name, Args: args}
}

// Operators

type UnaryExpression struct {
	exprBase

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{exprBase: newExprBase(NodeUnaryExpression), Operator: operator, Operand: operand}
}

// IncDecExpression is ++ or -- in prefix or postfix position.
type IncDecExpression struct {
	exprBase

	Operator string     `json:"operator"`
	Prefix   bool       `json:"prefix"`
	Operand  Expression `json:"operand"`
}

func NewIncDecExpression(operator string, prefix bool, operand Expression) *IncDecExpression {
	return &IncDecExpression{exprBase: newExprBase(NodeIncDecExpression), Operator: operator, Prefix: prefix, Operand: operand}
}

// BinaryExpression covers arithmetic, string concatenation, shifts,
// comparisons, bitwise and logical operators. OperandType is the type both
// operands are converted to before the operator applies.
type BinaryExpression struct {
	exprBase

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`

	OperandType types.Type `json:"-"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{exprBase: newExprBase(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// AssignmentExpression is = or a compound operator such as +=. For compound
// forms OperandType is the promoted type the binary step computes in.
type AssignmentExpression struct {
	exprBase

	Operator string     `json:"operator"`
	Target   Expression `json:"target"`
	Value    Expression `json:"value"`

	OperandType types.Type `json:"-"`
}

func NewAssignmentExpression(operator string, target, value Expression) *AssignmentExpression {
	return &AssignmentExpression{exprBase: newExprBase(NodeAssignmentExpression), Operator: operator, Target: target, Value: value}
}

// BinaryOperator strips the trailing = of a compound assignment operator.
func (a *AssignmentExpression) BinaryOperator() string {
	if a.Operator == "=" || len(a.Operator) < 2 {
		return ""
	}
	return a.Operator[:len(a.Operator)-1]
}

type ConditionalExpression struct {
	exprBase

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

func NewConditionalExpression(cond, then, otherwise Expression) *ConditionalExpression {
	return &ConditionalExpression{exprBase: newExprBase(NodeConditionalExpression), Condition: cond, Then: then, Else: otherwise}
}

// CastExpression is an explicit cast, or a checker-inserted runtime check
// (Implicit) where a reference is assigned to a narrower reference type.
type CastExpression struct {
	exprBase

	Type     TypeExpression `json:"typeExpr,omitempty"`
	Operand  Expression     `json:"operand"`
	Implicit bool           `json:"implicit,omitempty"`
}

func NewCastExpression(typeExpr TypeExpression, operand Expression) *CastExpression {
	return &CastExpression{exprBase: newExprBase(NodeCastExpression), Type: typeExpr, Operand: operand}
}

type InstanceOfExpression struct {
	exprBase

	Operand Expression     `json:"operand"`
	Type    TypeExpression `json:"typeExpr"`

	Tested types.Type `json:"-"`
}

func NewInstanceOfExpression(operand Expression, typeExpr TypeExpression) *InstanceOfExpression {
	return &InstanceOfExpression{exprBase: newExprBase(NodeInstanceOfExpression), Operand: operand, Type: typeExpr}
}

// Allocation

type NewExpression struct {
	exprBase

	Type TypeExpression `json:"typeExpr"`
	Args []Expression   `json:"args"`

	Constructor *runtime.Constructor `json:"-"`
}

func NewNewExpression(typeExpr TypeExpression, args []Expression) *NewExpression {
	return &NewExpression{exprBase: newExprBase(NodeNewExpression), Type: typeExpr, Args: args}
}

// ArrayAllocation is new T[d1][d2]...[] or new T[]{...}. ExtraDims counts
// trailing empty brackets; Initializer is set only for the second form.
type ArrayAllocation struct {
	exprBase

	ElementType TypeExpression    `json:"elementType"`
	Dimensions  []Expression      `json:"dimensions,omitempty"`
	ExtraDims   int               `json:"extraDims,omitempty"`
	Initializer *ArrayInitializer `json:"initializer,omitempty"`
}

func NewArrayAllocation(elementType TypeExpression, dims []Expression, extraDims int, init *ArrayInitializer) *ArrayAllocation {
	return &ArrayAllocation{exprBase: newExprBase(NodeArrayAllocation), ElementType: elementType, Dimensions: dims, ExtraDims: extraDims, Initializer: init}
}

// ArrayInitializer is {a, b, c}; its type comes from the declaration or
// allocation it initializes.
type ArrayInitializer struct {
	exprBase

	Elements []Expression `json:"elements"`
}

func NewArrayInitializer(elements []Expression) *ArrayInitializer {
	return &ArrayInitializer{exprBase: newExprBase(NodeArrayInitializer), Elements: elements}
}

type ArrayAccess struct {
	exprBase

	Array Expression `json:"array"`
	Index Expression `json:"index"`
}

func NewArrayAccess(array, index Expression) *ArrayAccess {
	return &ArrayAccess{exprBase: newExprBase(NodeArrayAccess), Array: array, Index: index}
}

// Coercions inserted by the checker.

// BoxExpression wraps a primitive operand in its boxed class by calling Constructor.
type BoxExpression struct {
	exprBase

	Operand     Expression           `json:"operand"`
	Constructor *runtime.Constructor `json:"-"`
}

func NewBoxExpression(operand Expression, ctor *runtime.Constructor) *BoxExpression {
	return &BoxExpression{exprBase: newExprBase(NodeBoxExpression), Operand: operand, Constructor: ctor}
}

// UnboxExpression extracts the primitive from a boxed operand by calling Method.
type UnboxExpression struct {
	exprBase

	Operand Expression      `json:"operand"`
	Method  *runtime.Method `json:"-"`
}

func NewUnboxExpression(operand Expression, method *runtime.Method) *UnboxExpression {
	return &UnboxExpression{exprBase: newExprBase(NodeUnboxExpression), Operand: operand, Method: method}
}
