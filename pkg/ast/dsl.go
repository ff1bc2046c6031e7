package ast

import "javelin/interpreter-go/pkg/types"

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value, types.Int)
}

func Long(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value, types.Long)
}

func Dbl(value float64) *FloatingLiteral {
	return NewFloatingLiteral(value, types.Double)
}

func Flt(value float64) *FloatingLiteral {
	return NewFloatingLiteral(value, types.Float)
}

func Chr(value rune) *CharLiteral {
	return NewCharLiteral(uint16(value))
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

// Type expression helpers.

func Prim(kind types.PrimitiveKind) *PrimitiveTypeExpression {
	return NewPrimitiveTypeExpression(kind)
}

func Ty(name string) *ClassTypeExpression {
	return NewClassTypeExpression(name)
}

func ArrT(element TypeExpression) *ArrayTypeExpression {
	return NewArrayTypeExpression(element)
}

// Expression helpers.

func Un(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Assign(target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression("=", target, value)
}

func AssignOp(operator string, target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(operator, target, value)
}

func PreInc(operand Expression) *IncDecExpression {
	return NewIncDecExpression("++", true, operand)
}

func PostInc(operand Expression) *IncDecExpression {
	return NewIncDecExpression("++", false, operand)
}

func PreDec(operand Expression) *IncDecExpression {
	return NewIncDecExpression("--", true, operand)
}

func PostDec(operand Expression) *IncDecExpression {
	return NewIncDecExpression("--", false, operand)
}

func Cond(cond, then, otherwise Expression) *ConditionalExpression {
	return NewConditionalExpression(cond, then, otherwise)
}

func Cast(typeExpr TypeExpression, operand Expression) *CastExpression {
	return NewCastExpression(typeExpr, operand)
}

func InstOf(operand Expression, typeExpr TypeExpression) *InstanceOfExpression {
	return NewInstanceOfExpression(operand, typeExpr)
}

// Call invokes a script method by simple name.
func Call(name string, args ...Expression) *MethodCall {
	return NewMethodCall(nil, name, args)
}

// Invoke calls name on receiver. A receiver naming a class becomes a static call during checking.
func Invoke(receiver Expression, name string, args ...Expression) *MethodCall {
	return NewMethodCall(receiver, name, args)
}

func Member(object Expression, name string) *FieldAccess {
	return NewFieldAccess(object, name)
}

func Index(array, index Expression) *ArrayAccess {
	return NewArrayAccess(array, index)
}

func New(typeExpr TypeExpression, args ...Expression) *NewExpression {
	return NewNewExpression(typeExpr, args)
}

func NewArr(elementType TypeExpression, dims ...Expression) *ArrayAllocation {
	return NewArrayAllocation(elementType, dims, 0, nil)
}

// NewArrInit builds new T[]...{...}; dims counts the brackets.
func NewArrInit(elementType TypeExpression, dims int, init *ArrayInitializer) *ArrayAllocation {
	return NewArrayAllocation(elementType, nil, dims, init)
}

func ArrInit(elements ...Expression) *ArrayInitializer {
	return NewArrayInitializer(elements)
}

// Statement helpers.

func Var(typeExpr TypeExpression, name string, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(false, typeExpr, []*VariableDeclarator{NewVariableDeclarator(name, 0, init)})
}

func FinalVar(typeExpr TypeExpression, name string, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(true, typeExpr, []*VariableDeclarator{NewVariableDeclarator(name, 0, init)})
}

func Blk(statements ...Statement) *Block {
	return NewBlock(statements)
}

func Stmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func If(cond Expression, then Statement, otherwise Statement) *IfStatement {
	return NewIfStatement(cond, then, otherwise)
}

func While(cond Expression, body Statement) *WhileStatement {
	return NewWhileStatement(cond, body)
}

func Do(body Statement, cond Expression) *DoStatement {
	return NewDoStatement(body, cond)
}

func For(init []Statement, cond Expression, update []Expression, body Statement) *ForStatement {
	return NewForStatement(init, cond, update, body)
}

func ForEach(typeExpr TypeExpression, name string, iterable Expression, body Statement) *ForEachStatement {
	return NewForEachStatement(false, typeExpr, name, iterable, body)
}

func Switch(selector Expression, cases ...*SwitchCase) *SwitchStatement {
	return NewSwitchStatement(selector, cases)
}

func Case(label Expression, body ...Statement) *SwitchCase {
	return NewSwitchCase([]Expression{label}, false, body)
}

func Default(body ...Statement) *SwitchCase {
	return NewSwitchCase(nil, true, body)
}

func Try(body *Block, catches []*CatchClause, finally *Block) *TryStatement {
	return NewTryStatement(body, catches, finally)
}

func Catch(typeExpr TypeExpression, name string, body *Block) *CatchClause {
	return NewCatchClause([]TypeExpression{typeExpr}, name, body)
}

func Labeled(label string, body Statement) *LabeledStatement {
	return NewLabeledStatement(label, body)
}

func Break(label string) *BreakStatement {
	return NewBreakStatement(label)
}

func Continue(label string) *ContinueStatement {
	return NewContinueStatement(label)
}

func Return(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Throw(value Expression) *ThrowStatement {
	return NewThrowStatement(value)
}

func Sync(lock Expression, body *Block) *SynchronizedStatement {
	return NewSynchronizedStatement(lock, body)
}

func Param(typeExpr TypeExpression, name string) *Parameter {
	return NewParameter(false, typeExpr, name)
}

func Method(returnType TypeExpression, name string, params []*Parameter, body *Block) *MethodDeclaration {
	return NewMethodDeclaration(returnType, name, params, body)
}
