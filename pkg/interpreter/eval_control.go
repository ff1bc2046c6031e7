package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
)

func (i *Interpreter) execWhile(ctx *Context, loop *ast.WhileStatement, label string) (completion, error) {
	for {
		cond, err := i.evaluateCondition(ctx, loop.Condition)
		if err != nil {
			return completion{}, err
		}
		if !cond {
			return completion{}, nil
		}
		body, err := i.execStatement(ctx, loop.Body)
		if err != nil {
			return completion{}, err
		}
		if exit, out := loopStep(body, label); exit {
			return out, nil
		}
	}
}

func (i *Interpreter) execDo(ctx *Context, loop *ast.DoStatement, label string) (completion, error) {
	for {
		body, err := i.execStatement(ctx, loop.Body)
		if err != nil {
			return completion{}, err
		}
		if exit, out := loopStep(body, label); exit {
			return out, nil
		}
		cond, err := i.evaluateCondition(ctx, loop.Condition)
		if err != nil {
			return completion{}, err
		}
		if !cond {
			return completion{}, nil
		}
	}
}

// execFor scopes the init clause around the whole loop, as the checker does.
func (i *Interpreter) execFor(ctx *Context, loop *ast.ForStatement, label string) (completion, error) {
	var result completion
	_, err := ctx.Scoped(func() error {
		for _, init := range loop.Init {
			if _, err := i.execStatement(ctx, init); err != nil {
				return err
			}
		}
		for {
			if loop.Condition != nil {
				cond, err := i.evaluateCondition(ctx, loop.Condition)
				if err != nil {
					return err
				}
				if !cond {
					return nil
				}
			}
			body, err := i.execStatement(ctx, loop.Body)
			if err != nil {
				return err
			}
			if exit, out := loopStep(body, label); exit {
				result = out
				return nil
			}
			for _, update := range loop.Update {
				if _, err := i.evaluate(ctx, update); err != nil {
					return err
				}
			}
		}
	})
	return result, err
}

// execForEach binds a fresh loop variable per element in its own scope.
func (i *Interpreter) execForEach(ctx *Context, loop *ast.ForEachStatement, label string) (completion, error) {
	iterable, err := i.evaluate(ctx, loop.Iterable)
	if err != nil {
		return completion{}, err
	}
	array, ok := iterable.(*runtime.ArrayValue)
	if !ok {
		if runtime.IsNull(iterable) {
			return completion{}, i.throwf(runtime.NullPointerException, "Cannot iterate because the array is null")
		}
		return completion{}, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("for-each over %s", iterable.Kind())}
	}
	for idx := 0; idx < len(array.Elements); idx++ {
		element, err := i.coerce(array.Elements[idx], loop.VarType)
		if err != nil {
			return completion{}, err
		}
		var body completion
		_, err = ctx.Scoped(func() error {
			if err := ctx.Define(loop.Name, element, loop.Final); err != nil {
				return scopeFailure(err)
			}
			var err error
			body, err = i.execStatement(ctx, loop.Body)
			return err
		})
		if err != nil {
			return completion{}, err
		}
		if exit, out := loopStep(body, label); exit {
			return out, nil
		}
	}
	return completion{}, nil
}

// execLabeled gives a loop body its label for labeled continue, and turns
// a break naming the label into normal completion.
func (i *Interpreter) execLabeled(ctx *Context, stmt *ast.LabeledStatement) (completion, error) {
	var (
		result completion
		err    error
	)
	switch body := stmt.Body.(type) {
	case *ast.WhileStatement:
		result, err = i.execWhile(ctx, body, stmt.Label)
	case *ast.DoStatement:
		result, err = i.execDo(ctx, body, stmt.Label)
	case *ast.ForStatement:
		result, err = i.execFor(ctx, body, stmt.Label)
	case *ast.ForEachStatement:
		result, err = i.execForEach(ctx, body, stmt.Label)
	default:
		result, err = i.execStatement(ctx, stmt.Body)
	}
	if err != nil {
		return completion{}, err
	}
	if result.kind == breakCompletion && result.label == stmt.Label {
		return completion{}, nil
	}
	return result, nil
}

// execSwitch jumps to the matching label, or default, and falls through the
// following case bodies until a break. The whole body shares one scope.
func (i *Interpreter) execSwitch(ctx *Context, sw *ast.SwitchStatement) (completion, error) {
	selector, err := i.evaluate(ctx, sw.Selector)
	if err != nil {
		return completion{}, err
	}
	want, ok := runtime.AsInt64(selector)
	if !ok {
		return completion{}, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("switch on %s", selector.Kind())}
	}
	start := -1
	fallback := -1
	for idx, clause := range sw.Cases {
		if clause.Default && fallback < 0 {
			fallback = idx
		}
		for _, label := range clause.Labels {
			value, err := i.evaluate(ctx, label)
			if err != nil {
				return completion{}, err
			}
			if got, _ := runtime.AsInt64(value); got == want {
				start = idx
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		start = fallback
	}
	if start < 0 {
		return completion{}, nil
	}

	var result completion
	_, err = ctx.Scoped(func() error {
		if err := i.declareSkipped(ctx, sw.Cases[:start]); err != nil {
			return err
		}
		for _, clause := range sw.Cases[start:] {
			for _, stmt := range clause.Body {
				c, err := i.execStatement(ctx, stmt)
				if err != nil {
					return err
				}
				switch {
				case c.kind == breakCompletion && c.label == "":
					return nil
				case c.kind != normalCompletion:
					result = c
					return nil
				}
			}
		}
		return nil
	})
	return result, err
}

// declareSkipped declares, unset, the locals of case bodies the jump passed
// over; they remain in scope for the cases that run.
func (i *Interpreter) declareSkipped(ctx *Context, skipped []*ast.SwitchCase) error {
	for _, clause := range skipped {
		for _, stmt := range clause.Body {
			decl, ok := stmt.(*ast.VariableDeclaration)
			if !ok {
				continue
			}
			for _, declarator := range decl.Declarators {
				if err := ctx.Declare(declarator.Name, decl.Final); err != nil {
					return scopeFailure(err)
				}
			}
		}
	}
	return nil
}

// execTry runs the first catch clause whose type accepts the thrown object,
// then the finally block exactly once. An abrupt finally replaces whatever
// was pending, except a fatal error.
func (i *Interpreter) execTry(ctx *Context, try *ast.TryStatement) (completion, error) {
	result, err := i.execBlock(ctx, try.Body)
	if thrown, ok := AsThrown(err); ok {
		for _, clause := range try.Catches {
			if !i.catches(clause, thrown) {
				continue
			}
			result, err = i.execCatch(ctx, clause, thrown)
			break
		}
	}
	if try.Finally == nil {
		return result, err
	}
	finally, ferr := i.execBlock(ctx, try.Finally)
	if IsFatal(err) {
		return result, err
	}
	if ferr != nil {
		return completion{}, ferr
	}
	if finally.kind != normalCompletion {
		return finally, nil
	}
	return result, err
}

func (i *Interpreter) catches(clause *ast.CatchClause, thrown *runtime.Thrown) bool {
	if thrown.Value == nil || thrown.Value.Class == nil {
		return false
	}
	dynamic := thrown.Value.Class.Type()
	for _, caught := range clause.Caught {
		if i.resolver.IsAssignable(dynamic, caught) {
			return true
		}
	}
	return false
}

func (i *Interpreter) execCatch(ctx *Context, clause *ast.CatchClause, thrown *runtime.Thrown) (completion, error) {
	var result completion
	_, err := ctx.Scoped(func() error {
		if err := ctx.Define(clause.Name, thrown.Value, len(clause.Caught) > 1); err != nil {
			return scopeFailure(err)
		}
		var err error
		result, err = i.execBlock(ctx, clause.Body)
		return err
	})
	return result, err
}
