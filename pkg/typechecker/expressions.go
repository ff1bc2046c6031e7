package typechecker

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

// checkExpression types expr and returns its replacement. Nodes that already
// carry a type are returned as they are, so a second pass over a decorated
// tree re-derives nothing.
func (c *Checker) checkExpression(ctx *Context, expr ast.Expression) (ast.Expression, types.Type, error) {
	if expr == nil {
		return nil, nil, fmt.Errorf("typechecker: missing expression")
	}
	if info := expr.Info(); info.Checked() {
		return expr, info.Type, nil
	}
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return c.checkIntegerLiteral(e)
	case *ast.FloatingLiteral:
		if e.Kind == types.Float {
			e.Info().Constant = runtime.FloatValue{Val: float32(e.Value)}
			return typed(e, types.FloatType)
		}
		e.Info().Constant = runtime.DoubleValue{Val: e.Value}
		return typed(e, types.DoubleType)
	case *ast.CharLiteral:
		e.Info().Constant = runtime.CharValue{Val: e.Value}
		return typed(e, types.CharType)
	case *ast.BooleanLiteral:
		e.Info().Constant = runtime.BoolValue{Val: e.Value}
		return typed(e, types.BooleanType)
	case *ast.StringLiteral:
		e.Info().Constant = runtime.StringValue{Val: e.Value}
		return typed(e, types.StringType)
	case *ast.NullLiteral:
		return typed(e, types.Null)
	case *ast.Identifier:
		return c.checkIdentifier(ctx, e)
	case *ast.FieldAccess:
		return c.checkFieldAccess(ctx, e)
	case *ast.StaticFieldAccess:
		return c.checkStaticFieldAccess(e)
	case *ast.ArrayLength:
		return c.checkArrayLength(ctx, e)
	case *ast.MethodCall:
		return c.checkMethodCall(ctx, e)
	case *ast.StaticMethodCall:
		return c.checkStaticMethodCall(ctx, e)
	case *ast.UnaryExpression:
		return c.checkUnaryExpression(ctx, e)
	case *ast.IncDecExpression:
		return c.checkIncDecExpression(ctx, e)
	case *ast.BinaryExpression:
		return c.checkBinaryExpression(ctx, e)
	case *ast.AssignmentExpression:
		return c.checkAssignmentExpression(ctx, e)
	case *ast.ConditionalExpression:
		return c.checkConditionalExpression(ctx, e)
	case *ast.CastExpression:
		return c.checkCastExpression(ctx, e)
	case *ast.InstanceOfExpression:
		return c.checkInstanceOf(ctx, e)
	case *ast.NewExpression:
		return c.checkNewExpression(ctx, e)
	case *ast.ArrayAllocation:
		return c.checkArrayAllocation(ctx, e)
	case *ast.ArrayInitializer:
		return nil, nil, mismatch(VariantNone, e, "illegal initializer; an array initializer needs an array type")
	case *ast.ArrayAccess:
		return c.checkArrayAccess(ctx, e)
	case *ast.BoxExpression, *ast.UnboxExpression:
		return nil, nil, fmt.Errorf("typechecker: conversion node %s without a type", expr.NodeType())
	default:
		return nil, nil, fmt.Errorf("typechecker: unsupported expression %T", expr)
	}
}

// checkValue is checkExpression for operands that must produce a value.
func (c *Checker) checkValue(ctx *Context, expr ast.Expression) (ast.Expression, types.Type, error) {
	checked, t, err := c.checkExpression(ctx, expr)
	if err != nil {
		return nil, nil, err
	}
	if types.IsVoid(t) {
		return nil, nil, mismatch(VariantOperand, expr, "'void' type not allowed here")
	}
	return checked, t, nil
}

func (c *Checker) checkIntegerLiteral(lit *ast.IntegerLiteral) (ast.Expression, types.Type, error) {
	if lit.Kind == types.Long {
		lit.Info().Constant = runtime.LongValue{Val: lit.Value}
		return typed(lit, types.LongType)
	}
	if !types.Fits(types.Int, lit.Value) {
		return nil, nil, mismatch(VariantNone, lit, "integer number too large: %d", lit.Value)
	}
	lit.Info().Constant = runtime.IntValue{Val: int32(lit.Value)}
	return typed(lit, types.IntType)
}

func (c *Checker) checkIdentifier(ctx *Context, id *ast.Identifier) (ast.Expression, types.Type, error) {
	binding, ok := ctx.Lookup(id.Name)
	if !ok {
		if _, isClass := c.resolver.ResolveClass(id.Name); isClass {
			return nil, nil, newError(UnboundName, id, "class %s is not a value", id.Name)
		}
		return nil, nil, newError(UnboundName, id, "cannot find symbol %s", id.Name)
	}
	variable := binding.Value
	info := id.Info()
	info.Target = ast.LocalTarget
	info.Constant = variable.Constant
	return typed(id, variable.Type)
}

func (c *Checker) checkFieldAccess(ctx *Context, access *ast.FieldAccess) (ast.Expression, types.Type, error) {
	if class, ok := c.classReference(ctx, access.Object); ok {
		static := ast.NewStaticFieldAccess(class.Name, access.Name)
		ast.SetSpan(static, access.Span())
		return c.checkStaticFieldAccess(static)
	}
	object, objectType, err := c.checkValue(ctx, access.Object)
	if err != nil {
		return nil, nil, err
	}
	access.Object = object
	if _, isArray := objectType.(types.ArrayType); isArray && access.Name == "length" {
		length := ast.NewArrayLength(object)
		ast.SetSpan(length, access.Span())
		return typed(length, types.IntType)
	}
	if types.IsPrimitive(objectType) || types.IsNull(objectType) {
		return nil, nil, mismatch(VariantReceiver, access, "%s cannot be dereferenced", typeName(objectType))
	}
	field, err := c.resolver.LookupField(objectType, access.Name)
	if err != nil {
		return nil, nil, lookupError(err, access)
	}
	if field.Static {
		static := ast.NewStaticFieldAccess(field.Class.Name, access.Name)
		ast.SetSpan(static, access.Span())
		return c.checkStaticFieldAccess(static)
	}
	access.Field = field
	if !field.Final {
		access.Info().Target = ast.FieldTarget
	}
	return typed(access, field.Type)
}

func (c *Checker) checkStaticFieldAccess(access *ast.StaticFieldAccess) (ast.Expression, types.Type, error) {
	class, ok := c.resolver.ResolveClass(access.ClassName)
	if !ok {
		return nil, nil, newError(UnboundName, access, "cannot find symbol class %s", access.ClassName)
	}
	field, err := c.resolver.LookupField(class.Type(), access.Name)
	if err != nil {
		return nil, nil, lookupError(err, access)
	}
	if !field.Static {
		return nil, nil, mismatch(VariantReceiver, access, "non-static variable %s cannot be referenced from a static context", access.Name)
	}
	access.ClassName = class.Name
	access.Field = field
	info := access.Info()
	if field.Final {
		info.Constant = field.Constant
	} else {
		info.Target = ast.StaticFieldTarget
	}
	return typed(access, field.Type)
}

func (c *Checker) checkArrayLength(ctx *Context, length *ast.ArrayLength) (ast.Expression, types.Type, error) {
	array, arrayType, err := c.checkValue(ctx, length.Array)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := arrayType.(types.ArrayType); !ok {
		return nil, nil, mismatch(VariantReceiver, length, "length requires an array, found %s", typeName(arrayType))
	}
	length.Array = array
	return typed(length, types.IntType)
}

func (c *Checker) checkArguments(ctx *Context, args []ast.Expression) ([]types.Type, error) {
	argTypes := make([]types.Type, len(args))
	for idx, arg := range args {
		checked, t, err := c.checkValue(ctx, arg)
		if err != nil {
			return nil, err
		}
		args[idx] = checked
		argTypes[idx] = t
	}
	return argTypes, nil
}

func (c *Checker) checkMethodCall(ctx *Context, call *ast.MethodCall) (ast.Expression, types.Type, error) {
	if call.Receiver == nil {
		return c.checkScriptCall(ctx, call)
	}
	if class, ok := c.classReference(ctx, call.Receiver); ok {
		static := ast.NewStaticMethodCall(class.Name, call.Name, call.Args)
		ast.SetSpan(static, call.Span())
		return c.checkStaticMethodCall(ctx, static)
	}
	receiver, receiverType, err := c.checkValue(ctx, call.Receiver)
	if err != nil {
		return nil, nil, err
	}
	if types.IsPrimitive(receiverType) || types.IsNull(receiverType) {
		return nil, nil, mismatch(VariantReceiver, call, "%s cannot be dereferenced", typeName(receiverType))
	}
	call.Receiver = receiver
	argTypes, err := c.checkArguments(ctx, call.Args)
	if err != nil {
		return nil, nil, err
	}
	method, err := c.resolver.LookupMethod(receiverType, call.Name, argTypes)
	if err != nil {
		return nil, nil, lookupError(err, call)
	}
	if err := c.coerceArguments(call.Args, method.Params); err != nil {
		return nil, nil, err
	}
	call.Method = method
	return typed(call, method.Return)
}

func (c *Checker) checkStaticMethodCall(ctx *Context, call *ast.StaticMethodCall) (ast.Expression, types.Type, error) {
	class, ok := c.resolver.ResolveClass(call.ClassName)
	if !ok {
		return nil, nil, newError(UnboundName, call, "cannot find symbol class %s", call.ClassName)
	}
	argTypes, err := c.checkArguments(ctx, call.Args)
	if err != nil {
		return nil, nil, err
	}
	method, err := c.resolver.LookupMethod(class.Type(), call.Name, argTypes)
	if err != nil {
		return nil, nil, lookupError(err, call)
	}
	if !method.Static {
		return nil, nil, mismatch(VariantReceiver, call, "non-static method %s cannot be referenced from a static context", method.Signature())
	}
	if err := c.coerceArguments(call.Args, method.Params); err != nil {
		return nil, nil, err
	}
	call.ClassName = class.Name
	call.Method = method
	return typed(call, method.Return)
}

func (c *Checker) checkScriptCall(ctx *Context, call *ast.MethodCall) (ast.Expression, types.Type, error) {
	argTypes, err := c.checkArguments(ctx, call.Args)
	if err != nil {
		return nil, nil, err
	}
	candidates := c.methods[call.Name]
	if len(candidates) == 0 {
		return nil, nil, newError(NoSuchMember, call, "cannot find symbol method %s", call.Name)
	}
	signatures := make([][]types.Type, len(candidates))
	for idx, decl := range candidates {
		signatures[idx] = decl.ParamTypes
	}
	chosen, err := resolver.SelectOverload(signatures, argTypes, c.resolver.IsAssignable)
	if err != nil {
		return nil, nil, lookupError(&resolver.LookupError{Reason: err, Owner: "script", Member: call.Name, Args: argTypes}, call)
	}
	decl := candidates[chosen]
	if err := c.coerceArguments(call.Args, decl.ParamTypes); err != nil {
		return nil, nil, err
	}
	call.Script = decl
	return typed(call, decl.Return)
}

func (c *Checker) checkNewExpression(ctx *Context, alloc *ast.NewExpression) (ast.Expression, types.Type, error) {
	t, err := c.ResolveType(alloc.Type)
	if err != nil {
		return nil, nil, err
	}
	classType, ok := t.(types.ClassType)
	if !ok {
		return nil, nil, mismatch(VariantNone, alloc, "cannot instantiate %s", typeName(t))
	}
	argTypes, err := c.checkArguments(ctx, alloc.Args)
	if err != nil {
		return nil, nil, err
	}
	ctor, err := c.resolver.LookupConstructor(classType, argTypes)
	if err != nil {
		return nil, nil, lookupError(err, alloc)
	}
	if err := c.coerceArguments(alloc.Args, ctor.Params); err != nil {
		return nil, nil, err
	}
	alloc.Constructor = ctor
	return typed(alloc, classType)
}

// checkDimension types an array dimension or index: unboxed, promoted, int.
func (c *Checker) checkDimension(ctx *Context, expr ast.Expression) (ast.Expression, error) {
	checked, _, err := c.checkValue(ctx, expr)
	if err != nil {
		return nil, err
	}
	if checked, err = c.unbox(checked); err != nil {
		return nil, err
	}
	p, ok := checked.Info().Type.(types.PrimitiveType)
	if !ok || !types.IsIntegral(p) || types.UnaryPromotion(p.Kind) != types.Int {
		return nil, newError(IncompatibleTypes, expr, "incompatible types: %s cannot be converted to int", typeName(checked.Info().Type))
	}
	return implicitCast(checked, types.IntType), nil
}

func (c *Checker) checkArrayAllocation(ctx *Context, alloc *ast.ArrayAllocation) (ast.Expression, types.Type, error) {
	elem, err := c.ResolveType(alloc.ElementType)
	if err != nil {
		return nil, nil, err
	}
	if types.IsVoid(elem) {
		return nil, nil, mismatch(VariantNone, alloc, "array of void is not a type")
	}
	for idx, dim := range alloc.Dimensions {
		checked, err := c.checkDimension(ctx, dim)
		if err != nil {
			return nil, nil, err
		}
		alloc.Dimensions[idx] = checked
	}
	depth := len(alloc.Dimensions) + alloc.ExtraDims
	if depth == 0 {
		return nil, nil, mismatch(VariantNone, alloc, "array dimension missing")
	}
	t := types.Dimensions(elem, depth)
	if alloc.Initializer != nil {
		if len(alloc.Dimensions) > 0 {
			return nil, nil, mismatch(VariantNone, alloc, "array creation with both dimension expression and initialization is illegal")
		}
		if err := c.checkArrayInitializer(ctx, alloc.Initializer, t); err != nil {
			return nil, nil, err
		}
	}
	return typed(alloc, t)
}

// checkArrayInitializer types {..} against the array type it initializes.
func (c *Checker) checkArrayInitializer(ctx *Context, init *ast.ArrayInitializer, t types.Type) error {
	elem, ok := types.Element(t)
	if !ok {
		return mismatch(VariantNone, init, "illegal initializer for %s", typeName(t))
	}
	for idx, element := range init.Elements {
		if nested, ok := element.(*ast.ArrayInitializer); ok {
			if err := c.checkArrayInitializer(ctx, nested, elem); err != nil {
				return err
			}
			continue
		}
		checked, _, err := c.checkValue(ctx, element)
		if err != nil {
			return err
		}
		converted, err := c.checkAssignment(elem, checked)
		if err != nil {
			return err
		}
		init.Elements[idx] = converted
	}
	init.Info().Type = t
	return nil
}

func (c *Checker) checkArrayAccess(ctx *Context, access *ast.ArrayAccess) (ast.Expression, types.Type, error) {
	array, arrayType, err := c.checkValue(ctx, access.Array)
	if err != nil {
		return nil, nil, err
	}
	elem, ok := types.Element(arrayType)
	if !ok {
		return nil, nil, mismatch(VariantReceiver, access, "array required, but %s found", typeName(arrayType))
	}
	index, err := c.checkDimension(ctx, access.Index)
	if err != nil {
		return nil, nil, err
	}
	access.Array = array
	access.Index = index
	access.Info().Target = ast.ArrayElementTarget
	return typed(access, elem)
}

func (c *Checker) checkCastExpression(ctx *Context, cast *ast.CastExpression) (ast.Expression, types.Type, error) {
	to, err := c.ResolveType(cast.Type)
	if err != nil {
		return nil, nil, err
	}
	operand, from, err := c.checkValue(ctx, cast.Operand)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case types.IsPrimitive(to) && types.IsBoxed(from):
		if operand, err = c.unbox(operand); err != nil {
			return nil, nil, err
		}
		from = operand.Info().Type
	case types.IsBoxed(to) && types.IsPrimitive(from):
		if boxed, _ := types.Box(from); types.Identical(boxed, to) {
			if operand, err = c.box(operand); err != nil {
				return nil, nil, err
			}
			from = to
		}
	case !types.IsPrimitive(to) && types.IsPrimitive(from) && !types.IsVoid(from):
		if boxed, _ := types.Box(from); c.resolver.IsAssignable(boxed, to) {
			if operand, err = c.box(operand); err != nil {
				return nil, nil, err
			}
			from = boxed
		}
	}
	if !c.castable(from, to) {
		return nil, nil, mismatch(VariantCast, cast, "incompatible types: %s cannot be converted to %s", typeName(from), typeName(to))
	}
	cast.Operand = operand
	cast.Info().Constant = foldConversion(operand.Info().Constant, to)
	return typed(cast, to)
}

func (c *Checker) checkInstanceOf(ctx *Context, test *ast.InstanceOfExpression) (ast.Expression, types.Type, error) {
	operand, from, err := c.checkValue(ctx, test.Operand)
	if err != nil {
		return nil, nil, err
	}
	to, err := c.ResolveType(test.Type)
	if err != nil {
		return nil, nil, err
	}
	if types.IsPrimitive(from) {
		return nil, nil, mismatch(VariantOperand, test, "unexpected type: %s is not a reference", typeName(from))
	}
	if types.IsPrimitive(to) {
		return nil, nil, mismatch(VariantOperand, test, "unexpected type: %s is not a reference", typeName(to))
	}
	if !c.castable(from, to) {
		return nil, nil, newError(IncompatibleTypes, test, "incompatible types: %s cannot be converted to %s", typeName(from), typeName(to))
	}
	test.Operand = operand
	test.Tested = to
	return typed(test, types.BooleanType)
}
