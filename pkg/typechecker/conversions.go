package typechecker

import (
	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

// box wraps a primitive operand in its boxed class. An operand that is
// already a reference is returned unchanged.
func (c *Checker) box(expr ast.Expression) (ast.Expression, error) {
	from := expr.Info().Type
	boxed, ok := types.Box(from)
	if !ok {
		return expr, nil
	}
	ctor, err := c.resolver.LookupConstructor(boxed, []types.Type{from})
	if err != nil {
		return nil, lookupError(err, expr)
	}
	wrapper := ast.NewBoxExpression(expr, ctor)
	ast.SetSpan(wrapper, expr.Span())
	wrapper.Info().Type = boxed
	return wrapper, nil
}

// unbox extracts the primitive from a boxed operand. Operands that are not
// boxed, primitives included, are returned unchanged.
func (c *Checker) unbox(expr ast.Expression) (ast.Expression, error) {
	from := expr.Info().Type
	prim, ok := types.Unbox(from)
	if !ok {
		return expr, nil
	}
	method, err := c.resolver.LookupMethod(from, resolver.UnboxMethodName(prim.Kind), []types.Type{})
	if err != nil {
		return nil, lookupError(err, expr)
	}
	wrapper := ast.NewUnboxExpression(expr, method)
	ast.SetSpan(wrapper, expr.Span())
	wrapper.Info().Type = prim
	return wrapper, nil
}

// implicitCast converts expr to to without an explicit cast in the source:
// primitive widening, constant narrowing, or a checked reference downcast.
func implicitCast(expr ast.Expression, to types.Type) ast.Expression {
	if types.Identical(expr.Info().Type, to) {
		return expr
	}
	cast := ast.NewCastExpression(nil, expr)
	cast.Implicit = true
	ast.SetSpan(cast, expr.Span())
	cast.Info().Type = to
	cast.Info().Constant = foldConversion(expr.Info().Constant, to)
	return cast
}

// foldConversion converts a constant to a primitive or String target.
func foldConversion(v runtime.Value, to types.Type) runtime.Value {
	if v == nil {
		return nil
	}
	if p, ok := to.(types.PrimitiveType); ok {
		if _, isPrim := runtime.PrimitiveKindOf(v); !isPrim {
			return nil
		}
		return runtime.Convert(v, p.Kind)
	}
	if s, ok := v.(runtime.StringValue); ok && types.IsString(to) {
		return s
	}
	return nil
}

// narrowableConstant reports whether expr is a byte, short, char or int
// constant whose value fits kind.
func narrowableConstant(expr ast.Expression, kind types.PrimitiveKind) bool {
	info := expr.Info()
	p, ok := info.Type.(types.PrimitiveType)
	if !ok || info.Constant == nil {
		return false
	}
	switch p.Kind {
	case types.Byte, types.Short, types.Char, types.Int:
	default:
		return false
	}
	switch kind {
	case types.Byte, types.Short, types.Char:
	default:
		return false
	}
	v, ok := runtime.AsInt64(info.Constant)
	return ok && types.Fits(kind, v)
}

// checkAssignment converts a checked value for storage into a slot of type
// to, returning the node that replaces value.
func (c *Checker) checkAssignment(to types.Type, value ast.Expression) (ast.Expression, error) {
	from := value.Info().Type
	if types.IsVoid(from) {
		return nil, mismatch(VariantAssignment, value, "'void' type not allowed here")
	}
	if types.IsVoid(to) {
		return nil, mismatch(VariantAssignment, value, "cannot assign to void")
	}
	if lp, ok := to.(types.PrimitiveType); ok {
		return c.assignPrimitive(lp, value)
	}

	if fp, ok := from.(types.PrimitiveType); ok {
		if boxed, _ := types.Box(fp); c.resolver.IsAssignable(boxed, to) {
			return c.box(value)
		}
		if target, ok := types.Unbox(to); ok && narrowableConstant(value, target.Kind) {
			return c.box(implicitCast(value, target))
		}
		return nil, newError(IncompatibleTypes, value, "incompatible types: %s cannot be converted to %s", typeName(from), typeName(to))
	}
	if c.resolver.IsAssignable(from, to) {
		return value, nil
	}
	if c.resolver.IsAssignable(to, from) {
		return implicitCast(value, to), nil
	}
	return nil, newError(IncompatibleTypes, value, "incompatible types: %s cannot be converted to %s", typeName(from), typeName(to))
}

func (c *Checker) assignPrimitive(to types.PrimitiveType, value ast.Expression) (ast.Expression, error) {
	from := value.Info().Type
	if types.IsBoxed(from) {
		unboxed, err := c.unbox(value)
		if err != nil {
			return nil, err
		}
		value, from = unboxed, unboxed.Info().Type
	}
	fp, ok := from.(types.PrimitiveType)
	if !ok {
		return nil, newError(IncompatibleTypes, value, "incompatible types: %s cannot be converted to %s", typeName(from), typeName(to))
	}
	if fp.Kind == to.Kind {
		return value, nil
	}
	if fp.Kind != types.Boolean && to.Kind != types.Boolean && types.IsWidening(fp.Kind, to.Kind) {
		return implicitCast(value, to), nil
	}
	if narrowableConstant(value, to.Kind) {
		return implicitCast(value, to), nil
	}
	return nil, mismatch(VariantAssignment, value, "incompatible types: possible lossy conversion from %s to %s", typeName(from), typeName(to))
}

// assignmentConvertible reports whether a non-constant value of type from
// could be stored into a slot of type to.
func (c *Checker) assignmentConvertible(from, to types.Type) bool {
	if types.IsVoid(from) || types.IsVoid(to) {
		return false
	}
	if prim, ok := types.Unbox(from); ok && types.IsPrimitive(to) {
		from = prim
	}
	if fp, ok := from.(types.PrimitiveType); ok {
		if tp, ok := to.(types.PrimitiveType); ok {
			if fp.Kind == types.Boolean || tp.Kind == types.Boolean {
				return fp.Kind == tp.Kind
			}
			return types.IsWidening(fp.Kind, tp.Kind)
		}
		boxed, _ := types.Box(fp)
		return c.resolver.IsAssignable(boxed, to)
	}
	if types.IsPrimitive(to) {
		return false
	}
	return c.resolver.IsAssignable(from, to) || c.resolver.IsAssignable(to, from)
}

// coerceArgument adapts an argument selected for parameter param: boxed
// arguments to primitive parameters are unboxed and primitive arguments to
// reference parameters are boxed. Widening is left to the evaluator.
func (c *Checker) coerceArgument(arg ast.Expression, param types.Type) (ast.Expression, error) {
	argType := arg.Info().Type
	switch {
	case types.IsPrimitive(param) && types.IsBoxed(argType):
		return c.unbox(arg)
	case !types.IsPrimitive(param) && types.IsPrimitive(argType):
		return c.box(arg)
	}
	return arg, nil
}

func (c *Checker) coerceArguments(args []ast.Expression, params []types.Type) error {
	for idx := range args {
		coerced, err := c.coerceArgument(args[idx], params[idx])
		if err != nil {
			return err
		}
		args[idx] = coerced
	}
	return nil
}

// castable is the structural cast legality relation between two types.
func (c *Checker) castable(from, to types.Type) bool {
	if types.Identical(from, to) {
		return true
	}
	if types.IsVoid(from) || types.IsVoid(to) {
		return false
	}
	fp, fromPrim := from.(types.PrimitiveType)
	tp, toPrim := to.(types.PrimitiveType)
	switch {
	case fromPrim && toPrim:
		return fp.Kind != types.Boolean && tp.Kind != types.Boolean
	case fromPrim || toPrim:
		return false
	}
	if types.IsNull(from) {
		return true
	}
	fa, fromArray := from.(types.ArrayType)
	ta, toArray := to.(types.ArrayType)
	switch {
	case fromArray && toArray:
		if types.IsPrimitive(fa.Element) || types.IsPrimitive(ta.Element) {
			return types.Identical(fa.Element, ta.Element)
		}
		return c.castable(fa.Element, ta.Element)
	case fromArray:
		return types.IsObject(to)
	case toArray:
		return types.IsObject(from)
	}
	return c.resolver.IsAssignable(from, to) || c.resolver.IsAssignable(to, from)
}
