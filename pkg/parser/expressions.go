package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
)

func (ctx *parseContext) parseExpression(node *sitter.Node) (ast.Expression, error) {
	if node == nil {
		return nil, errorAt(node, "missing expression")
	}
	switch node.Kind() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal",
		"decimal_floating_point_literal", "hex_floating_point_literal",
		"true", "false", "null_literal", "character_literal", "string_literal":
		return ctx.parseLiteral(node)
	case "identifier":
		return annotateExpression(ast.NewIdentifier(ctx.text(node)), node), nil
	case "parenthesized_expression":
		inner := firstNamed(node)
		if inner == nil {
			return nil, errorAt(node, "empty parentheses")
		}
		return ctx.parseExpression(inner)
	case "field_access":
		return ctx.parseFieldAccess(node)
	case "method_invocation":
		return ctx.parseMethodInvocation(node)
	case "array_access":
		array, err := ctx.parseExpression(node.ChildByFieldName("array"))
		if err != nil {
			return nil, err
		}
		index, err := ctx.parseExpression(node.ChildByFieldName("index"))
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewArrayAccess(array, index), node), nil
	case "object_creation_expression":
		return ctx.parseObjectCreation(node)
	case "array_creation_expression":
		return ctx.parseArrayCreation(node)
	case "array_initializer":
		return ctx.parseArrayInitializer(node)
	case "unary_expression":
		return ctx.parseUnary(node)
	case "update_expression":
		return ctx.parseUpdate(node)
	case "binary_expression":
		left, err := ctx.parseExpression(node.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		right, err := ctx.parseExpression(node.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		op := node.ChildByFieldName("operator").Kind()
		return annotateExpression(ast.NewBinaryExpression(op, left, right), node), nil
	case "assignment_expression":
		left, err := ctx.parseExpression(node.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		right, err := ctx.parseExpression(node.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		op := node.ChildByFieldName("operator").Kind()
		return annotateExpression(ast.NewAssignmentExpression(op, left, right), node), nil
	case "ternary_expression":
		cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		then, err := ctx.parseExpression(node.ChildByFieldName("consequence"))
		if err != nil {
			return nil, err
		}
		otherwise, err := ctx.parseExpression(node.ChildByFieldName("alternative"))
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewConditionalExpression(cond, then, otherwise), node), nil
	case "cast_expression":
		typeNodes := fieldChildren(node, "type")
		if len(typeNodes) != 1 {
			return nil, unsupported(node, "intersection cast")
		}
		typeExpr, err := ctx.parseType(typeNodes[0])
		if err != nil {
			return nil, err
		}
		operand, err := ctx.parseExpression(node.ChildByFieldName("value"))
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewCastExpression(typeExpr, operand), node), nil
	case "instanceof_expression":
		if node.ChildByFieldName("name") != nil || node.ChildByFieldName("pattern") != nil {
			return nil, unsupported(node, "instanceof pattern")
		}
		operand, err := ctx.parseExpression(node.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		typeExpr, err := ctx.parseType(node.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewInstanceOfExpression(operand, typeExpr), node), nil
	case "this":
		return nil, unsupported(node, "this")
	case "lambda_expression":
		return nil, unsupported(node, "lambda expression")
	case "method_reference":
		return nil, unsupported(node, "method reference")
	case "class_literal":
		return nil, unsupported(node, "class literal")
	case "switch_expression":
		return nil, unsupported(node, "switch expression")
	case "template_expression":
		return nil, unsupported(node, "string template")
	}
	return nil, errorAt(node, "unsupported expression %q", node.Kind())
}

func firstNamed(node *sitter.Node) *sitter.Node {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func (ctx *parseContext) parseFieldAccess(node *sitter.Node) (ast.Expression, error) {
	objectNode := node.ChildByFieldName("object")
	fieldNode := node.ChildByFieldName("field")
	if objectNode == nil || objectNode.Kind() == "super" || fieldNode == nil || fieldNode.Kind() == "this" {
		return nil, unsupported(node, "super and this member access")
	}
	object, err := ctx.parseExpression(objectNode)
	if err != nil {
		return nil, err
	}
	return annotateExpression(ast.NewFieldAccess(object, ctx.text(fieldNode)), node), nil
}

func (ctx *parseContext) parseArguments(node *sitter.Node) ([]ast.Expression, error) {
	var args []ast.Expression
	for _, child := range namedChildren(node) {
		arg, err := ctx.parseExpression(child)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (ctx *parseContext) parseMethodInvocation(node *sitter.Node) (ast.Expression, error) {
	if node.ChildByFieldName("type_arguments") != nil {
		return nil, unsupported(node, "explicit type arguments")
	}
	var receiver ast.Expression
	if objectNode := node.ChildByFieldName("object"); objectNode != nil {
		if objectNode.Kind() == "super" {
			return nil, unsupported(objectNode, "super")
		}
		var err error
		if receiver, err = ctx.parseExpression(objectNode); err != nil {
			return nil, err
		}
	}
	args, err := ctx.parseArguments(node.ChildByFieldName("arguments"))
	if err != nil {
		return nil, err
	}
	name := ctx.text(node.ChildByFieldName("name"))
	return annotateExpression(ast.NewMethodCall(receiver, name, args), node), nil
}

func (ctx *parseContext) parseObjectCreation(node *sitter.Node) (ast.Expression, error) {
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "class_body":
			return nil, unsupported(child, "anonymous class")
		case "type_arguments":
			return nil, unsupported(child, "generic type")
		}
	}
	if first := node.Child(0); first != nil && first.Kind() != "new" {
		return nil, unsupported(node, "qualified instance creation")
	}
	typeExpr, err := ctx.parseType(node.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	args, err := ctx.parseArguments(node.ChildByFieldName("arguments"))
	if err != nil {
		return nil, err
	}
	return annotateExpression(ast.NewNewExpression(typeExpr, args), node), nil
}

func (ctx *parseContext) parseArrayCreation(node *sitter.Node) (ast.Expression, error) {
	elementType, err := ctx.parseType(node.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	var (
		dims  []ast.Expression
		extra int
	)
	for _, dim := range fieldChildren(node, "dimensions") {
		switch dim.Kind() {
		case "dimensions_expr":
			if extra > 0 {
				return nil, errorAt(dim, "']' expected")
			}
			var sizeNode *sitter.Node
			for _, child := range namedChildren(dim) {
				if child.Kind() != "annotation" && child.Kind() != "marker_annotation" {
					sizeNode = child
				}
			}
			size, err := ctx.parseExpression(sizeNode)
			if err != nil {
				return nil, err
			}
			dims = append(dims, size)
		case "dimensions":
			extra += countDims(dim)
		}
	}
	var init *ast.ArrayInitializer
	if valueNode := node.ChildByFieldName("value"); valueNode != nil {
		if len(dims) > 0 {
			return nil, errorAt(node, "array creation with both dimension expressions and initialization is illegal")
		}
		initExpr, err := ctx.parseArrayInitializer(valueNode)
		if err != nil {
			return nil, err
		}
		init = initExpr.(*ast.ArrayInitializer)
	} else if len(dims) == 0 {
		return nil, errorAt(node, "array dimension missing")
	}
	return annotateExpression(ast.NewArrayAllocation(elementType, dims, extra, init), node), nil
}

func (ctx *parseContext) parseArrayInitializer(node *sitter.Node) (ast.Expression, error) {
	var elements []ast.Expression
	for _, child := range namedChildren(node) {
		element, err := ctx.parseExpression(child)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
	return annotateExpression(ast.NewArrayInitializer(elements), node), nil
}

func (ctx *parseContext) parseUnary(node *sitter.Node) (ast.Expression, error) {
	op := node.ChildByFieldName("operator").Kind()
	operandNode := node.ChildByFieldName("operand")
	if op == "-" && operandNode != nil && operandNode.Kind() == "decimal_integer_literal" {
		return ctx.parseNegatedInteger(node, operandNode)
	}
	operand, err := ctx.parseExpression(operandNode)
	if err != nil {
		return nil, err
	}
	return annotateExpression(ast.NewUnaryExpression(op, operand), node), nil
}

func (ctx *parseContext) parseUpdate(node *sitter.Node) (ast.Expression, error) {
	var (
		op      string
		prefix  bool
		operand *sitter.Node
	)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch {
		case child.Kind() == "++" || child.Kind() == "--":
			op = child.Kind()
			prefix = operand == nil
		case child.IsNamed() && !isIgnorableNode(child):
			operand = child
		}
	}
	if op == "" || operand == nil {
		return nil, errorAt(node, "malformed update expression")
	}
	target, err := ctx.parseExpression(operand)
	if err != nil {
		return nil, err
	}
	return annotateExpression(ast.NewIncDecExpression(op, prefix, target), node), nil
}
