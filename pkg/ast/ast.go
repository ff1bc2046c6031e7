package ast

import (
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

type NodeType string

const (
	NodeScript                NodeType = "Script"
	NodeBlock                 NodeType = "Block"
	NodeVariableDeclaration   NodeType = "VariableDeclaration"
	NodeVariableDeclarator    NodeType = "VariableDeclarator"
	NodeExpressionStatement   NodeType = "ExpressionStatement"
	NodeIfStatement           NodeType = "IfStatement"
	NodeWhileStatement        NodeType = "WhileStatement"
	NodeDoStatement           NodeType = "DoStatement"
	NodeForStatement          NodeType = "ForStatement"
	NodeForEachStatement      NodeType = "ForEachStatement"
	NodeSwitchStatement       NodeType = "SwitchStatement"
	NodeSwitchCase            NodeType = "SwitchCase"
	NodeTryStatement          NodeType = "TryStatement"
	NodeCatchClause           NodeType = "CatchClause"
	NodeLabeledStatement      NodeType = "LabeledStatement"
	NodeBreakStatement        NodeType = "BreakStatement"
	NodeContinueStatement     NodeType = "ContinueStatement"
	NodeReturnStatement       NodeType = "ReturnStatement"
	NodeThrowStatement        NodeType = "ThrowStatement"
	NodeSynchronizedStatement NodeType = "SynchronizedStatement"
	NodeEmptyStatement        NodeType = "EmptyStatement"
	NodeMethodDeclaration     NodeType = "MethodDeclaration"
	NodeParameter             NodeType = "Parameter"

	NodeIntegerLiteral        NodeType = "IntegerLiteral"
	NodeFloatingLiteral       NodeType = "FloatingLiteral"
	NodeCharLiteral           NodeType = "CharLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeNullLiteral           NodeType = "NullLiteral"
	NodeIdentifier            NodeType = "Identifier"
	NodeFieldAccess           NodeType = "FieldAccess"
	NodeStaticFieldAccess     NodeType = "StaticFieldAccess"
	NodeArrayLength           NodeType = "ArrayLength"
	NodeMethodCall            NodeType = "MethodCall"
	NodeStaticMethodCall      NodeType = "StaticMethodCall"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeIncDecExpression      NodeType = "IncDecExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeAssignmentExpression  NodeType = "AssignmentExpression"
	NodeConditionalExpression NodeType = "ConditionalExpression"
	NodeCastExpression        NodeType = "CastExpression"
	NodeInstanceOfExpression  NodeType = "InstanceOfExpression"
	NodeNewExpression         NodeType = "NewExpression"
	NodeArrayAllocation       NodeType = "ArrayAllocation"
	NodeArrayInitializer      NodeType = "ArrayInitializer"
	NodeArrayAccess           NodeType = "ArrayAccess"
	NodeBoxExpression         NodeType = "BoxExpression"
	NodeUnboxExpression       NodeType = "UnboxExpression"

	NodePrimitiveTypeExpression NodeType = "PrimitiveTypeExpression"
	NodeClassTypeExpression     NodeType = "ClassTypeExpression"
	NodeArrayTypeExpression     NodeType = "ArrayTypeExpression"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// Expression nodes carry their decoration inline.
type Expression interface {
	Node
	Info() *ExprInfo
	expressionNode()
}

// TargetKind classifies an expression as an assignment target.
type TargetKind int

const (
	NotAssignable TargetKind = iota
	LocalTarget
	FieldTarget
	StaticFieldTarget
	ArrayElementTarget
)

// ExprInfo is the fixed decoration the checker attaches to every expression.
// Constant is set only for compile-time constants of primitive or String type.
type ExprInfo struct {
	Type     types.Type
	Constant runtime.Value
	Target   TargetKind
}

// Checked reports whether the checker has already typed the expression.
func (i *ExprInfo) Checked() bool { return i.Type != nil }

type exprBase struct {
	nodeImpl
	info ExprInfo
}

func newExprBase(kind NodeType) exprBase {
	return exprBase{nodeImpl: newNodeImpl(kind)}
}

func (e *exprBase) Info() *ExprInfo { return &e.info }
func (*exprBase) expressionNode()   {}

// Script is one parsed unit: a sequence of top-level statements.
type Script struct {
	nodeImpl
	Statements []Statement `json:"statements"`
}

func NewScript(statements []Statement) *Script {
	return &Script{nodeImpl: newNodeImpl(NodeScript), Statements: statements}
}

// Type expressions. Resolved caches the checker's interpretation.

type PrimitiveTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Kind types.PrimitiveKind `json:"kind"`
}

func NewPrimitiveTypeExpression(kind types.PrimitiveKind) *PrimitiveTypeExpression {
	return &PrimitiveTypeExpression{nodeImpl: newNodeImpl(NodePrimitiveTypeExpression), Kind: kind}
}

// ClassTypeExpression names a class as written; Name may be qualified.
type ClassTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Name     string     `json:"name"`
	Resolved types.Type `json:"-"`
}

func NewClassTypeExpression(name string) *ClassTypeExpression {
	return &ClassTypeExpression{nodeImpl: newNodeImpl(NodeClassTypeExpression), Name: name}
}

type ArrayTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Element TypeExpression `json:"element"`
}

func NewArrayTypeExpression(element TypeExpression) *ArrayTypeExpression {
	return &ArrayTypeExpression{nodeImpl: newNodeImpl(NodeArrayTypeExpression), Element: element}
}
