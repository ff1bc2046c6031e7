package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/types"
)

var primitiveKinds = map[string]types.PrimitiveKind{
	"boolean": types.Boolean,
	"byte":    types.Byte,
	"short":   types.Short,
	"char":    types.Char,
	"int":     types.Int,
	"long":    types.Long,
	"float":   types.Float,
	"double":  types.Double,
	"void":    types.Void,
}

func (ctx *parseContext) parseType(node *sitter.Node) (ast.TypeExpression, error) {
	if node == nil {
		return nil, errorAt(node, "missing type")
	}
	switch node.Kind() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		kind, ok := primitiveKinds[strings.TrimSpace(ctx.text(node))]
		if !ok {
			return nil, errorAt(node, "unknown primitive type %q", ctx.text(node))
		}
		return annotateTypeExpression(ast.NewPrimitiveTypeExpression(kind), node), nil
	case "type_identifier":
		name := ctx.text(node)
		if name == "var" {
			return nil, unsupported(node, "local variable type inference")
		}
		return annotateTypeExpression(ast.NewClassTypeExpression(name), node), nil
	case "scoped_type_identifier":
		name := strings.Join(strings.Fields(ctx.text(node)), "")
		return annotateTypeExpression(ast.NewClassTypeExpression(name), node), nil
	case "array_type":
		element, err := ctx.parseType(node.ChildByFieldName("element"))
		if err != nil {
			return nil, err
		}
		return withDims(element, node.ChildByFieldName("dimensions"), node), nil
	case "generic_type":
		return nil, unsupported(node, "generic type")
	case "annotated_type":
		return nil, unsupported(node, "type annotation")
	}
	return nil, errorAt(node, "unsupported type node %q", node.Kind())
}

// withDims wraps element in one array type per bracket pair of dims.
func withDims(element ast.TypeExpression, dims *sitter.Node, span *sitter.Node) ast.TypeExpression {
	result := element
	for n := countDims(dims); n > 0; n-- {
		result = annotateTypeExpression(ast.NewArrayTypeExpression(result), span)
	}
	return result
}
