package typechecker

import (
	"fmt"
	"strings"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/scope"
	"javelin/interpreter-go/pkg/types"
)

// Variable is what the checker knows about a local binding.
type Variable struct {
	Type  types.Type
	Final bool
	// Constant is set for final locals initialised with a constant expression.
	Constant runtime.Value

	// blank marks a final declared without an initializer; assigned is set
	// once some path may have given it a value.
	blank    bool
	assigned bool
	// loops is the loop nesting depth of the declaration.
	loops int
}

// Context is the checker's scope chain.
type Context = scope.Context[*Variable]

// NewContext returns an empty checker scope chain.
func NewContext() *Context {
	return scope.New[*Variable]()
}

// Checker types statements and expressions, rewriting operands with box and
// unbox wrappers where conversions are required.
type Checker struct {
	resolver resolver.Resolver
	methods  map[string][]*ast.MethodDeclaration

	returnStack []types.Type
	jumpStack   []jumpTarget

	// loops counts the loop conditions, updates and bodies being checked.
	loops int
	// assigned is the undo trail of blank finals marked assigned by the
	// statement being checked.
	assigned []*Variable
}

// New returns a checker resolving members through res.
func New(res resolver.Resolver) *Checker {
	return &Checker{
		resolver: res,
		methods:  make(map[string][]*ast.MethodDeclaration),
	}
}

// Resolver exposes the collaborator the checker resolves members through.
func (c *Checker) Resolver() resolver.Resolver { return c.resolver }

// CheckStatement types stmt in ctx. Scopes opened while checking are always
// released, so ctx is left as it was apart from names stmt declares at the
// current level. A failed statement also leaves every blank final of ctx
// as unassigned as it found it.
func (c *Checker) CheckStatement(ctx *Context, stmt ast.Statement) error {
	depth := ctx.Depth()
	defer ctx.Unwind(depth)
	mark := len(c.assigned)
	if err := c.checkStatement(ctx, stmt); err != nil {
		c.rollbackAssignments(mark)
		return err
	}
	c.assigned = c.assigned[:mark]
	return nil
}

// CheckExpression types expr and returns the node that replaces it, which
// differs from expr when a conversion wrapper or static member form was
// substituted.
func (c *Checker) CheckExpression(ctx *Context, expr ast.Expression) (ast.Expression, types.Type, error) {
	depth := ctx.Depth()
	defer ctx.Unwind(depth)
	mark := len(c.assigned)
	checked, t, err := c.checkExpression(ctx, expr)
	if err != nil {
		c.rollbackAssignments(mark)
		return nil, nil, err
	}
	c.assigned = c.assigned[:mark]
	return checked, t, nil
}

// CheckScript declares every method of script, then checks its statements
// in order against one top-level context.
func (c *Checker) CheckScript(ctx *Context, script *ast.Script) error {
	for _, stmt := range script.Statements {
		if decl, ok := stmt.(*ast.MethodDeclaration); ok {
			if err := c.DeclareMethod(decl); err != nil {
				return err
			}
		}
	}
	for _, stmt := range script.Statements {
		if err := c.CheckStatement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ResolveType interprets a written type.
func (c *Checker) ResolveType(te ast.TypeExpression) (types.Type, error) {
	switch t := te.(type) {
	case *ast.PrimitiveTypeExpression:
		return types.Primitive(t.Kind), nil
	case *ast.ClassTypeExpression:
		if t.Resolved != nil {
			return t.Resolved, nil
		}
		class, ok := c.resolver.ResolveClass(t.Name)
		if !ok {
			return nil, newError(UnboundName, t, "cannot find symbol class %s", t.Name)
		}
		t.Resolved = class.Type()
		return t.Resolved, nil
	case *ast.ArrayTypeExpression:
		elem, err := c.ResolveType(t.Element)
		if err != nil {
			return nil, err
		}
		if types.IsVoid(elem) {
			return nil, mismatch(VariantNone, t, "array of void is not a type")
		}
		return types.ArrayType{Element: elem}, nil
	case nil:
		return nil, fmt.Errorf("typechecker: missing type expression")
	default:
		return nil, fmt.Errorf("typechecker: unsupported type expression %T", te)
	}
}

// classReference reports whether expr names a class rather than a value:
// a simple or dotted name whose head is not a visible variable.
func (c *Checker) classReference(ctx *Context, expr ast.Expression) (*runtime.Class, bool) {
	parts, ok := dottedName(expr)
	if !ok || ctx.Has(parts[0]) {
		return nil, false
	}
	return c.resolver.ResolveClass(strings.Join(parts, "."))
}

func dottedName(expr ast.Expression) ([]string, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return []string{e.Name}, true
	case *ast.FieldAccess:
		head, ok := dottedName(e.Object)
		if !ok {
			return nil, false
		}
		return append(head, e.Name), true
	}
	return nil, false
}

// typed records t as expr's static type and returns both.
func typed(expr ast.Expression, t types.Type) (ast.Expression, types.Type, error) {
	expr.Info().Type = t
	return expr, t, nil
}
