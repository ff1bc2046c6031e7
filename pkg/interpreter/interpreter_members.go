package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
)

// lvalue is a prepared assignment target: every subexpression needed to
// reach the slot has been evaluated once, so it can be read and then
// written without evaluating them again.
type lvalue struct {
	kind ast.TargetKind

	name string

	object *runtime.ObjectValue
	field  string

	static *runtime.Field

	array runtime.Value
	index int64
}

func (i *Interpreter) prepare(ctx *Context, target ast.Expression) (*lvalue, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		return &lvalue{kind: ast.LocalTarget, name: t.Name}, nil
	case *ast.FieldAccess:
		object, err := i.evaluate(ctx, t.Object)
		if err != nil {
			return nil, err
		}
		obj, err := i.dereference(object, t.Name)
		if err != nil {
			return nil, err
		}
		return &lvalue{kind: ast.FieldTarget, object: obj, field: t.Name}, nil
	case *ast.StaticFieldAccess:
		return &lvalue{kind: ast.StaticFieldTarget, static: t.Field}, nil
	case *ast.ArrayAccess:
		array, err := i.evaluate(ctx, t.Array)
		if err != nil {
			return nil, err
		}
		index, err := i.evaluate(ctx, t.Index)
		if err != nil {
			return nil, err
		}
		n, _ := runtime.AsInt64(index)
		return &lvalue{kind: ast.ArrayElementTarget, array: array, index: n}, nil
	}
	return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("%s is not assignable", target.NodeType())}
}

// element resolves an array slot, raising the exceptions an access can fault with.
func (i *Interpreter) element(lv *lvalue) (*runtime.ArrayValue, int, error) {
	array, err := i.arrayOf(lv.array, "access an element")
	if err != nil {
		return nil, 0, err
	}
	if lv.index < 0 || lv.index >= int64(len(array.Elements)) {
		return nil, 0, i.throwf(runtime.ArrayIndexOutOfBoundsException, "Index %d out of bounds for length %d", lv.index, len(array.Elements))
	}
	return array, int(lv.index), nil
}

func (i *Interpreter) load(ctx *Context, lv *lvalue) (runtime.Value, error) {
	switch lv.kind {
	case ast.LocalTarget:
		value, err := ctx.Get(lv.name)
		if err != nil {
			return nil, scopeFailure(err)
		}
		return value, nil
	case ast.FieldTarget:
		field := lv.object.Class.Field(lv.field)
		if field == nil {
			return nil, &RuntimeError{Kind: Internal, Message: "no field " + lv.field}
		}
		return fieldValue(lv.object, lv.field, field.Type), nil
	case ast.StaticFieldTarget:
		if lv.static.Value == nil {
			return runtime.ZeroValue(lv.static.Type), nil
		}
		return lv.static.Value, nil
	case ast.ArrayElementTarget:
		array, idx, err := i.element(lv)
		if err != nil {
			return nil, err
		}
		return array.Elements[idx], nil
	}
	return nil, &RuntimeError{Kind: Internal, Message: "load from unprepared target"}
}

func (i *Interpreter) store(ctx *Context, lv *lvalue, value runtime.Value) error {
	switch lv.kind {
	case ast.LocalTarget:
		if err := ctx.Set(lv.name, value); err != nil {
			return scopeFailure(err)
		}
		return nil
	case ast.FieldTarget:
		lv.object.Fields[lv.field] = value
		return nil
	case ast.StaticFieldTarget:
		lv.static.Value = value
		return nil
	case ast.ArrayElementTarget:
		array, idx, err := i.element(lv)
		if err != nil {
			return err
		}
		if !runtime.IsPrimitive(value) && !runtime.IsNull(value) && !i.resolver.IsAssignable(runtime.TypeOf(value), array.Element) {
			return i.throwf(runtime.ArrayStoreException, "%s", runtime.TypeOf(value).Name())
		}
		array.Elements[idx] = value
		return nil
	}
	return &RuntimeError{Kind: Internal, Message: "store to unprepared target"}
}
