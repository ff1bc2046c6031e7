package ast

import "javelin/interpreter-go/pkg/types"

// Statements that open a scope record the names the checker saw declared
// directly in it (Declared), so the evaluator can recycle those slots.

type Block struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
	Declared   []string    `json:"-"`
}

func NewBlock(statements []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: statements}
}

type VariableDeclarator struct {
	nodeImpl

	Name string `json:"name"`
	// Dims counts C-style brackets after the name: int a[].
	Dims int        `json:"dims,omitempty"`
	Init Expression `json:"init,omitempty"`

	Declared types.Type `json:"-"`
}

func NewVariableDeclarator(name string, dims int, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), Name: name, Dims: dims, Init: init}
}

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Final       bool                  `json:"final,omitempty"`
	Type        TypeExpression        `json:"typeExpr"`
	Declarators []*VariableDeclarator `json:"declarators"`
}

func NewVariableDeclaration(final bool, typeExpr TypeExpression, declarators []*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Final: final, Type: typeExpr, Declarators: declarators}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then, otherwise Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: otherwise}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileStatement(cond Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: cond, Body: body}
}

type DoStatement struct {
	nodeImpl
	statementMarker

	Body      Statement  `json:"body"`
	Condition Expression `json:"condition"`
}

func NewDoStatement(body Statement, cond Expression) *DoStatement {
	return &DoStatement{nodeImpl: newNodeImpl(NodeDoStatement), Body: body, Condition: cond}
}

type ForStatement struct {
	nodeImpl
	statementMarker

	Init      []Statement  `json:"init,omitempty"`
	Condition Expression   `json:"condition,omitempty"`
	Update    []Expression `json:"update,omitempty"`
	Body      Statement    `json:"body"`
	Declared  []string     `json:"-"`
}

func NewForStatement(init []Statement, cond Expression, update []Expression, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: cond, Update: update, Body: body}
}

type ForEachStatement struct {
	nodeImpl
	statementMarker

	Final    bool           `json:"final,omitempty"`
	Type     TypeExpression `json:"typeExpr"`
	Name     string         `json:"name"`
	Iterable Expression     `json:"iterable"`
	Body     Statement      `json:"body"`

	// ElementType is the static type of the iterated array's elements.
	ElementType types.Type `json:"-"`
	VarType     types.Type `json:"-"`
	Declared    []string   `json:"-"`
}

func NewForEachStatement(final bool, typeExpr TypeExpression, name string, iterable Expression, body Statement) *ForEachStatement {
	return &ForEachStatement{nodeImpl: newNodeImpl(NodeForEachStatement), Final: final, Type: typeExpr, Name: name, Iterable: iterable, Body: body}
}

type SwitchCase struct {
	nodeImpl

	Labels  []Expression `json:"labels,omitempty"`
	Default bool         `json:"default,omitempty"`
	Body    []Statement  `json:"body"`
}

func NewSwitchCase(labels []Expression, isDefault bool, body []Statement) *SwitchCase {
	return &SwitchCase{nodeImpl: newNodeImpl(NodeSwitchCase), Labels: labels, Default: isDefault, Body: body}
}

type SwitchStatement struct {
	nodeImpl
	statementMarker

	Selector Expression    `json:"selector"`
	Cases    []*SwitchCase `json:"cases"`
	Declared []string      `json:"-"`
}

func NewSwitchStatement(selector Expression, cases []*SwitchCase) *SwitchStatement {
	return &SwitchStatement{nodeImpl: newNodeImpl(NodeSwitchStatement), Selector: selector, Cases: cases}
}

type CatchClause struct {
	nodeImpl

	Types []TypeExpression `json:"types"`
	Name  string           `json:"name"`
	Body  *Block           `json:"body"`

	// Caught lists the resolved alternatives; ParamType is their least
	// common superclass and types the parameter.
	Caught    []types.Type `json:"-"`
	ParamType types.Type   `json:"-"`
	Declared  []string     `json:"-"`
}

func NewCatchClause(typeExprs []TypeExpression, name string, body *Block) *CatchClause {
	return &CatchClause{nodeImpl: newNodeImpl(NodeCatchClause), Types: typeExprs, Name: name, Body: body}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Body    *Block         `json:"body"`
	Catches []*CatchClause `json:"catches,omitempty"`
	Finally *Block         `json:"finally,omitempty"`
}

func NewTryStatement(body *Block, catches []*CatchClause, finally *Block) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, Catches: catches, Finally: finally}
}

type LabeledStatement struct {
	nodeImpl
	statementMarker

	Label string    `json:"label"`
	Body  Statement `json:"body"`
}

func NewLabeledStatement(label string, body Statement) *LabeledStatement {
	return &LabeledStatement{nodeImpl: newNodeImpl(NodeLabeledStatement), Label: label, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker

	Label string `json:"label,omitempty"`
}

func NewBreakStatement(label string) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Label: label}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker

	Label string `json:"label,omitempty"`
}

func NewContinueStatement(label string) *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement), Label: label}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type ThrowStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewThrowStatement(value Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Value: value}
}

type SynchronizedStatement struct {
	nodeImpl
	statementMarker

	Lock Expression `json:"lock"`
	Body *Block     `json:"body"`
}

func NewSynchronizedStatement(lock Expression, body *Block) *SynchronizedStatement {
	return &SynchronizedStatement{nodeImpl: newNodeImpl(NodeSynchronizedStatement), Lock: lock, Body: body}
}

type EmptyStatement struct {
	nodeImpl
	statementMarker
}

func NewEmptyStatement() *EmptyStatement {
	return &EmptyStatement{nodeImpl: newNodeImpl(NodeEmptyStatement)}
}

type Parameter struct {
	nodeImpl

	Final bool           `json:"final,omitempty"`
	Type  TypeExpression `json:"typeExpr"`
	Name  string         `json:"name"`
}

func NewParameter(final bool, typeExpr TypeExpression, name string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Final: final, Type: typeExpr, Name: name}
}

// MethodDeclaration is a top-level script method. The checker fills in the
// resolved signature before the body is checked so recursive calls resolve.
type MethodDeclaration struct {
	nodeImpl
	statementMarker

	ReturnType TypeExpression `json:"returnType"`
	Name       string         `json:"name"`
	Params     []*Parameter   `json:"params"`
	Body       *Block         `json:"body"`

	Return     types.Type   `json:"-"`
	ParamTypes []types.Type `json:"-"`
}

func NewMethodDeclaration(returnType TypeExpression, name string, params []*Parameter, body *Block) *MethodDeclaration {
	return &MethodDeclaration{nodeImpl: newNodeImpl(NodeMethodDeclaration), ReturnType: returnType, Name: name, Params: params, Body: body}
}
