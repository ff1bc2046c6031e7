package typechecker

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func (c *Checker) checkStatement(ctx *Context, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return c.checkBlock(ctx, s)
	case *ast.VariableDeclaration:
		return c.checkVariableDeclaration(ctx, s)
	case *ast.ExpressionStatement:
		checked, _, err := c.checkExpression(ctx, s.Expression)
		if err != nil {
			return err
		}
		s.Expression = checked
		return nil
	case *ast.IfStatement:
		cond, err := c.checkCondition(ctx, s.Condition)
		if err != nil {
			return err
		}
		s.Condition = cond
		return c.checkPaths(
			func() error { return c.checkStatement(ctx, s.Then) },
			func() error {
				if s.Else == nil {
					return nil
				}
				return c.checkStatement(ctx, s.Else)
			},
		)
	case *ast.WhileStatement:
		return c.inLoop(func() error {
			cond, err := c.checkCondition(ctx, s.Condition)
			if err != nil {
				return err
			}
			s.Condition = cond
			return c.withLoop(func() error { return c.checkStatement(ctx, s.Body) })
		})
	case *ast.DoStatement:
		return c.inLoop(func() error {
			if err := c.withLoop(func() error { return c.checkStatement(ctx, s.Body) }); err != nil {
				return err
			}
			cond, err := c.checkCondition(ctx, s.Condition)
			if err != nil {
				return err
			}
			s.Condition = cond
			return nil
		})
	case *ast.ForStatement:
		return c.checkFor(ctx, s)
	case *ast.ForEachStatement:
		return c.checkForEach(ctx, s)
	case *ast.SwitchStatement:
		return c.checkSwitch(ctx, s)
	case *ast.TryStatement:
		return c.checkTry(ctx, s)
	case *ast.LabeledStatement:
		return c.checkLabeled(ctx, s)
	case *ast.BreakStatement:
		return c.checkBreak(s)
	case *ast.ContinueStatement:
		return c.checkContinue(s)
	case *ast.ReturnStatement:
		return c.checkReturn(ctx, s)
	case *ast.ThrowStatement:
		value, t, err := c.checkValue(ctx, s.Value)
		if err != nil {
			return err
		}
		if !types.IsNull(t) && !c.resolver.IsAssignable(t, types.ThrowableType) {
			return mismatch(VariantThrow, s.Value, "incompatible types: %s cannot be converted to Throwable", typeName(t))
		}
		s.Value = value
		return nil
	case *ast.SynchronizedStatement:
		lock, t, err := c.checkValue(ctx, s.Lock)
		if err != nil {
			return err
		}
		if types.IsPrimitive(t) || types.IsNull(t) {
			return mismatch(VariantLock, s.Lock, "unexpected type: required reference, found %s", typeName(t))
		}
		s.Lock = lock
		return c.checkBlock(ctx, s.Body)
	case *ast.EmptyStatement:
		return nil
	case *ast.MethodDeclaration:
		return c.checkMethodDeclaration(s)
	case nil:
		return fmt.Errorf("typechecker: missing statement")
	default:
		return fmt.Errorf("typechecker: unsupported statement %T", stmt)
	}
}

// checkCondition types a boolean condition, unboxing a Boolean.
func (c *Checker) checkCondition(ctx *Context, expr ast.Expression) (ast.Expression, error) {
	checked, _, err := c.checkValue(ctx, expr)
	if err != nil {
		return nil, err
	}
	if checked, err = c.unbox(checked); err != nil {
		return nil, err
	}
	if t := checked.Info().Type; !types.IsBoolean(t) {
		return nil, mismatch(VariantCondition, expr, "incompatible types: %s cannot be converted to boolean", typeName(t))
	}
	return checked, nil
}

func (c *Checker) checkBlock(ctx *Context, block *ast.Block) error {
	declared, err := ctx.Scoped(func() error {
		for _, stmt := range block.Statements {
			if err := c.checkStatement(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	block.Declared = declared
	return err
}

func (c *Checker) checkVariableDeclaration(ctx *Context, decl *ast.VariableDeclaration) error {
	base, err := c.ResolveType(decl.Type)
	if err != nil {
		return err
	}
	if types.IsVoid(base) {
		return mismatch(VariantNone, decl, "illegal start of expression: variable of type void")
	}
	for _, declarator := range decl.Declarators {
		t := types.Dimensions(base, declarator.Dims)
		declarator.Declared = t
		variable := &Variable{Type: t, Final: decl.Final, loops: c.loops}
		if declarator.Init == nil {
			variable.blank = decl.Final
			if err := ctx.DeclareTyped(declarator.Name, variable, decl.Final); err != nil {
				return scopeError(err, declarator)
			}
			continue
		}
		if init, ok := declarator.Init.(*ast.ArrayInitializer); ok {
			if err := c.checkArrayInitializer(ctx, init, t); err != nil {
				return err
			}
		} else {
			value, _, err := c.checkValue(ctx, declarator.Init)
			if err != nil {
				return err
			}
			converted, err := c.checkAssignment(t, value)
			if err != nil {
				return err
			}
			declarator.Init = converted
			if decl.Final {
				variable.Constant = foldConversion(converted.Info().Constant, t)
			}
		}
		if err := ctx.Define(declarator.Name, variable, decl.Final); err != nil {
			return scopeError(err, declarator)
		}
	}
	return nil
}

func (c *Checker) checkFor(ctx *Context, loop *ast.ForStatement) error {
	declared, err := ctx.Scoped(func() error {
		for _, init := range loop.Init {
			if err := c.checkStatement(ctx, init); err != nil {
				return err
			}
		}
		return c.inLoop(func() error {
			if loop.Condition != nil {
				cond, err := c.checkCondition(ctx, loop.Condition)
				if err != nil {
					return err
				}
				loop.Condition = cond
			}
			for idx, update := range loop.Update {
				checked, _, err := c.checkExpression(ctx, update)
				if err != nil {
					return err
				}
				loop.Update[idx] = checked
			}
			return c.withLoop(func() error { return c.checkStatement(ctx, loop.Body) })
		})
	})
	loop.Declared = declared
	return err
}

func (c *Checker) checkForEach(ctx *Context, loop *ast.ForEachStatement) error {
	iterable, iterableType, err := c.checkValue(ctx, loop.Iterable)
	if err != nil {
		return err
	}
	elem, ok := types.Element(iterableType)
	if !ok {
		return mismatch(VariantNone, loop.Iterable, "for-each not applicable to expression type %s", typeName(iterableType))
	}
	varType, err := c.ResolveType(loop.Type)
	if err != nil {
		return err
	}
	if !c.assignmentConvertible(elem, varType) {
		return newError(IncompatibleTypes, loop, "incompatible types: %s cannot be converted to %s", typeName(elem), typeName(varType))
	}
	loop.Iterable = iterable
	loop.ElementType = elem
	loop.VarType = varType
	declared, err := ctx.Scoped(func() error {
		return c.inLoop(func() error {
			if err := ctx.Define(loop.Name, &Variable{Type: varType, Final: loop.Final, loops: c.loops}, loop.Final); err != nil {
				return scopeError(err, loop)
			}
			return c.withLoop(func() error { return c.checkStatement(ctx, loop.Body) })
		})
	})
	loop.Declared = declared
	return err
}

// checkSwitch types the selector and every label. The whole body is one scope.
func (c *Checker) checkSwitch(ctx *Context, sw *ast.SwitchStatement) error {
	selector, _, err := c.checkValue(ctx, sw.Selector)
	if err != nil {
		return err
	}
	if selector, err = c.unbox(selector); err != nil {
		return err
	}
	selectorType := selector.Info().Type
	selectorKind, ok := primitiveKind(selectorType)
	if !ok || !switchable(selectorKind) {
		return mismatch(VariantSelector, sw.Selector, "incompatible types: %s cannot be a switch selector", typeName(selectorType))
	}
	sw.Selector = selector

	seen := make(map[int64]struct{})
	hasDefault := false
	for _, clause := range sw.Cases {
		if clause.Default {
			if hasDefault {
				return mismatch(VariantLabel, clause, "duplicate default label")
			}
			hasDefault = true
		}
		for idx, label := range clause.Labels {
			converted, value, err := c.checkSwitchLabel(ctx, label, selectorKind)
			if err != nil {
				return err
			}
			if _, dup := seen[value]; dup {
				return mismatch(VariantLabel, label, "duplicate case label")
			}
			seen[value] = struct{}{}
			clause.Labels[idx] = converted
		}
	}

	declared, err := ctx.Scoped(func() error {
		return c.withSwitch(func() error { return c.checkSwitchBody(ctx, sw) })
	})
	sw.Declared = declared
	return err
}

// checkSwitchBody checks each case group starting from the state before the
// switch, plus whatever the previous group assigned when it falls through.
func (c *Checker) checkSwitchBody(ctx *Context, sw *ast.SwitchStatement) error {
	mark := len(c.assigned)
	var merged, carried []*Variable
	for _, clause := range sw.Cases {
		for _, v := range carried {
			c.markAssigned(v)
		}
		for _, stmt := range clause.Body {
			if err := c.checkStatement(ctx, stmt); err != nil {
				return err
			}
		}
		group := c.rollbackAssignments(mark)
		merged = append(merged, group...)
		carried = nil
		if completesNormally(ast.NewBlock(clause.Body)) {
			carried = group
		}
	}
	for _, v := range merged {
		c.markAssigned(v)
	}
	return nil
}

func switchable(kind types.PrimitiveKind) bool {
	switch kind {
	case types.Char, types.Byte, types.Short, types.Int:
		return true
	}
	return false
}

// checkSwitchLabel requires a char, byte, short or int constant; a label of
// another type than the selector must fit the selector's type.
func (c *Checker) checkSwitchLabel(ctx *Context, label ast.Expression, selector types.PrimitiveKind) (ast.Expression, int64, error) {
	checked, t, err := c.checkValue(ctx, label)
	if err != nil {
		return nil, 0, err
	}
	kind, ok := primitiveKind(t)
	if !ok || !switchable(kind) {
		return nil, 0, mismatch(VariantLabel, label, "incompatible types: %s cannot be a case label", typeName(t))
	}
	constant := checked.Info().Constant
	if constant == nil {
		return nil, 0, mismatch(VariantLabel, label, "constant expression required")
	}
	value, _ := runtime.AsInt64(constant)
	if kind != selector && !types.Fits(selector, value) {
		return nil, 0, mismatch(VariantLabel, label, "incompatible types: possible lossy conversion from %s to %s", typeName(t), selector)
	}
	return implicitCast(checked, types.Primitive(selector)), value, nil
}

func (c *Checker) checkTry(ctx *Context, try *ast.TryStatement) error {
	if len(try.Catches) == 0 && try.Finally == nil {
		return mismatch(VariantCatch, try, "'try' without 'catch' or 'finally'")
	}
	if err := c.checkBlock(ctx, try.Body); err != nil {
		return err
	}
	// A catch may run after any part of the body, so each starts from the
	// state after the whole body.
	paths := make([]func() error, 0, len(try.Catches)+1)
	paths = append(paths, func() error { return nil })
	for _, clause := range try.Catches {
		paths = append(paths, func() error { return c.checkCatch(ctx, clause) })
	}
	if err := c.checkPaths(paths...); err != nil {
		return err
	}
	if try.Finally != nil {
		return c.checkBlock(ctx, try.Finally)
	}
	return nil
}

func (c *Checker) checkCatch(ctx *Context, clause *ast.CatchClause) error {
	caught := make([]types.Type, 0, len(clause.Types))
	for _, te := range clause.Types {
		t, err := c.ResolveType(te)
		if err != nil {
			return err
		}
		if !c.resolver.IsAssignable(t, types.ThrowableType) {
			return mismatch(VariantCatch, te, "incompatible types: %s cannot be converted to Throwable", typeName(t))
		}
		caught = append(caught, t)
	}
	if len(caught) == 0 {
		return mismatch(VariantCatch, clause, "catch clause without a type")
	}
	clause.Caught = caught
	clause.ParamType = c.leastCommonClass(caught)
	final := len(caught) > 1
	declared, err := ctx.Scoped(func() error {
		if err := ctx.Define(clause.Name, &Variable{Type: clause.ParamType, Final: final}, final); err != nil {
			return scopeError(err, clause)
		}
		return c.checkBlock(ctx, clause.Body)
	})
	clause.Declared = declared
	return err
}

// leastCommonClass walks the first type's superclass chain until every
// alternative is assignable to it.
func (c *Checker) leastCommonClass(alternatives []types.Type) types.Type {
	first, ok := alternatives[0].(types.ClassType)
	if !ok {
		return types.ThrowableType
	}
	class, ok := c.resolver.ResolveClass(first.ClassName)
	for ; ok && class != nil; class = class.Super {
		candidate := class.Type()
		all := true
		for _, alt := range alternatives[1:] {
			if !c.resolver.IsAssignable(alt, candidate) {
				all = false
				break
			}
		}
		if all {
			return candidate
		}
	}
	return types.ThrowableType
}

func (c *Checker) checkReturn(ctx *Context, ret *ast.ReturnStatement) error {
	if len(c.returnStack) == 0 {
		return newError(InvalidJump, ret, "return outside method")
	}
	want := c.returnStack[len(c.returnStack)-1]
	if types.IsVoid(want) {
		if ret.Value != nil {
			return mismatch(VariantReturn, ret.Value, "incompatible types: unexpected return value")
		}
		return nil
	}
	if ret.Value == nil {
		return mismatch(VariantReturn, ret, "missing return value")
	}
	value, _, err := c.checkValue(ctx, ret.Value)
	if err != nil {
		return err
	}
	converted, err := c.checkAssignment(want, value)
	if err != nil {
		return err
	}
	ret.Value = converted
	return nil
}
