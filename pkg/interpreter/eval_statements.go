package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func (i *Interpreter) execStatement(ctx *Context, stmt ast.Statement) (completion, error) {
	switch s := stmt.(type) {
	case *ast.Block:
		return i.execBlock(ctx, s)
	case *ast.VariableDeclaration:
		return completion{}, i.execVariableDeclaration(ctx, s)
	case *ast.ExpressionStatement:
		value, err := i.evaluate(ctx, s.Expression)
		if err != nil {
			return completion{}, err
		}
		return completion{value: value}, nil
	case *ast.IfStatement:
		cond, err := i.evaluateCondition(ctx, s.Condition)
		if err != nil {
			return completion{}, err
		}
		if cond {
			return i.execStatement(ctx, s.Then)
		}
		if s.Else != nil {
			return i.execStatement(ctx, s.Else)
		}
		return completion{}, nil
	case *ast.WhileStatement:
		return i.execWhile(ctx, s, "")
	case *ast.DoStatement:
		return i.execDo(ctx, s, "")
	case *ast.ForStatement:
		return i.execFor(ctx, s, "")
	case *ast.ForEachStatement:
		return i.execForEach(ctx, s, "")
	case *ast.SwitchStatement:
		return i.execSwitch(ctx, s)
	case *ast.TryStatement:
		return i.execTry(ctx, s)
	case *ast.LabeledStatement:
		return i.execLabeled(ctx, s)
	case *ast.BreakStatement:
		return completion{kind: breakCompletion, label: s.Label}, nil
	case *ast.ContinueStatement:
		return completion{kind: continueCompletion, label: s.Label}, nil
	case *ast.ReturnStatement:
		if s.Value == nil {
			return completion{kind: returnCompletion}, nil
		}
		value, err := i.evaluate(ctx, s.Value)
		if err != nil {
			return completion{}, err
		}
		return completion{kind: returnCompletion, value: value}, nil
	case *ast.ThrowStatement:
		return completion{}, i.execThrow(ctx, s)
	case *ast.SynchronizedStatement:
		return i.execSynchronized(ctx, s)
	case *ast.EmptyStatement, *ast.MethodDeclaration:
		return completion{}, nil
	case nil:
		return completion{}, &RuntimeError{Kind: Internal, Message: "missing statement"}
	default:
		return completion{}, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("unsupported statement type: %s", stmt.NodeType())}
	}
}

// execBlock runs statements in a fresh scope, stopping at the first
// abrupt completion.
func (i *Interpreter) execBlock(ctx *Context, block *ast.Block) (completion, error) {
	var result completion
	_, err := ctx.Scoped(func() error {
		for _, stmt := range block.Statements {
			c, err := i.execStatement(ctx, stmt)
			if err != nil {
				return err
			}
			if c.kind != normalCompletion {
				result = c
				return nil
			}
		}
		return nil
	})
	return result, err
}

// execVariableDeclaration binds each declarator. A declarator without an
// initializer is declared unset, so reading it before assignment fails.
func (i *Interpreter) execVariableDeclaration(ctx *Context, decl *ast.VariableDeclaration) error {
	for _, declarator := range decl.Declarators {
		if declarator.Init == nil {
			if err := ctx.Declare(declarator.Name, decl.Final); err != nil {
				return scopeFailure(err)
			}
			continue
		}
		value, err := i.evaluate(ctx, declarator.Init)
		if err != nil {
			return err
		}
		if err := ctx.Define(declarator.Name, value, decl.Final); err != nil {
			return scopeFailure(err)
		}
	}
	return nil
}

func (i *Interpreter) evaluateCondition(ctx *Context, expr ast.Expression) (bool, error) {
	value, err := i.evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	b, ok := value.(runtime.BoolValue)
	if !ok {
		return false, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("condition produced %s", value.Kind())}
	}
	return b.Val, nil
}

func (i *Interpreter) execThrow(ctx *Context, stmt *ast.ThrowStatement) error {
	value, err := i.evaluate(ctx, stmt.Value)
	if err != nil {
		return err
	}
	obj, ok := value.(*runtime.ObjectValue)
	if !ok {
		if runtime.IsNull(value) {
			return i.throwf(runtime.NullPointerException, "Cannot throw exception because value is null")
		}
		return &RuntimeError{Kind: Internal, Message: fmt.Sprintf("throw of non-object %s", value.Kind())}
	}
	return &runtime.Thrown{Value: obj}
}

// execSynchronized holds the lock's monitor while the body runs, releasing
// it on every exit path.
func (i *Interpreter) execSynchronized(ctx *Context, stmt *ast.SynchronizedStatement) (completion, error) {
	lock, err := i.evaluate(ctx, stmt.Lock)
	if err != nil {
		return completion{}, err
	}
	if runtime.IsNull(lock) {
		return completion{}, i.throwf(runtime.NullPointerException, "Cannot enter synchronized block because value is null")
	}
	i.monitors.Enter(lock, i)
	defer i.monitors.Exit(lock, i)
	return i.execBlock(ctx, stmt.Body)
}

// coerce converts a value for storage into a slot of type to, boxing or
// unboxing across the primitive/reference boundary and widening primitives.
func (i *Interpreter) coerce(value runtime.Value, to types.Type) (runtime.Value, error) {
	target, toPrim := to.(types.PrimitiveType)
	if toPrim {
		if !runtime.IsPrimitive(value) {
			unboxed, err := i.unboxValue(value)
			if err != nil {
				return nil, err
			}
			value = unboxed
		}
		return runtime.Convert(value, target.Kind), nil
	}
	if kind, ok := runtime.PrimitiveKindOf(value); ok {
		if boxed, ok := types.Box(types.Primitive(kind)); ok {
			if prim, ok := types.Unbox(to); ok {
				value = runtime.Convert(value, prim.Kind)
				boxed, _ = types.Box(prim)
			}
			return i.boxValue(value, boxed)
		}
	}
	return value, nil
}
