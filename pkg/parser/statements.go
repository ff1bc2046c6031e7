package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
)

func (ctx *parseContext) parseStatement(node *sitter.Node) (ast.Statement, error) {
	if node == nil {
		return nil, errorAt(node, "missing statement")
	}
	switch node.Kind() {
	case ";":
		return annotateStatement(ast.NewEmptyStatement(), node), nil
	case "block":
		return ctx.parseBlock(node)
	case "local_variable_declaration":
		return ctx.parseLocalVariableDeclaration(node)
	case "expression_statement":
		expr, err := ctx.parseExpression(firstNamed(node))
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.NewExpressionStatement(expr), node), nil
	case "if_statement":
		cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		then, err := ctx.parseStatement(node.ChildByFieldName("consequence"))
		if err != nil {
			return nil, err
		}
		var otherwise ast.Statement
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			if otherwise, err = ctx.parseStatement(alt); err != nil {
				return nil, err
			}
		}
		return annotateStatement(ast.NewIfStatement(cond, then, otherwise), node), nil
	case "while_statement":
		cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		body, err := ctx.parseStatement(node.ChildByFieldName("body"))
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.NewWhileStatement(cond, body), node), nil
	case "do_statement":
		body, err := ctx.parseStatement(node.ChildByFieldName("body"))
		if err != nil {
			return nil, err
		}
		cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.NewDoStatement(body, cond), node), nil
	case "for_statement":
		return ctx.parseFor(node)
	case "enhanced_for_statement":
		return ctx.parseForEach(node)
	case "switch_expression":
		return ctx.parseSwitch(node)
	case "try_statement":
		return ctx.parseTry(node)
	case "labeled_statement":
		var (
			label string
			body  ast.Statement
			err   error
		)
		for _, child := range namedChildren(node) {
			if child.Kind() == "identifier" && label == "" {
				label = ctx.text(child)
				continue
			}
			if body, err = ctx.parseStatement(child); err != nil {
				return nil, err
			}
		}
		if body == nil {
			// A bare ';' body is anonymous.
			body = annotateStatement(ast.NewEmptyStatement(), node)
		}
		return annotateStatement(ast.NewLabeledStatement(label, body), node), nil
	case "break_statement":
		return annotateStatement(ast.NewBreakStatement(ctx.text(firstNamed(node))), node), nil
	case "continue_statement":
		return annotateStatement(ast.NewContinueStatement(ctx.text(firstNamed(node))), node), nil
	case "return_statement":
		var value ast.Expression
		if valueNode := firstNamed(node); valueNode != nil {
			var err error
			if value, err = ctx.parseExpression(valueNode); err != nil {
				return nil, err
			}
		}
		return annotateStatement(ast.NewReturnStatement(value), node), nil
	case "throw_statement":
		value, err := ctx.parseExpression(firstNamed(node))
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.NewThrowStatement(value), node), nil
	case "synchronized_statement":
		var lockNode *sitter.Node
		for _, child := range namedChildren(node) {
			if child.Kind() == "parenthesized_expression" {
				lockNode = child
			}
		}
		lock, err := ctx.parseExpression(lockNode)
		if err != nil {
			return nil, err
		}
		body, err := ctx.parseBlock(node.ChildByFieldName("body"))
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.NewSynchronizedStatement(lock, body), node), nil
	case "try_with_resources_statement":
		return nil, unsupported(node, "try-with-resources")
	case "assert_statement":
		return nil, unsupported(node, "assert")
	case "yield_statement":
		return nil, unsupported(node, "yield")
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
		return nil, unsupported(node, "type declaration")
	case "import_declaration", "package_declaration", "module_declaration":
		return nil, unsupported(node, strings.ReplaceAll(node.Kind(), "_", " "))
	case "method_declaration":
		return nil, errorAt(node, "method declarations are only allowed at top level")
	}
	return nil, errorAt(node, "unsupported statement %q", node.Kind())
}

func (ctx *parseContext) parseBlock(node *sitter.Node) (*ast.Block, error) {
	if node == nil || node.Kind() != "block" {
		return nil, errorAt(node, "expected block")
	}
	var statements []ast.Statement
	for _, child := range namedChildren(node) {
		stmt, err := ctx.parseStatement(child)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	block := ast.NewBlock(statements)
	annotateSpan(block, node)
	return block, nil
}

func (ctx *parseContext) parseLocalVariableDeclaration(node *sitter.Node) (ast.Statement, error) {
	typeExpr, err := ctx.parseType(node.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	declNodes := fieldChildren(node, "declarator")
	declarators := make([]*ast.VariableDeclarator, 0, len(declNodes))
	for _, declNode := range declNodes {
		nameNode := declNode.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			return nil, unsupported(declNode, "unnamed variable")
		}
		var init ast.Expression
		if valueNode := declNode.ChildByFieldName("value"); valueNode != nil {
			if init, err = ctx.parseExpression(valueNode); err != nil {
				return nil, err
			}
		}
		declarator := ast.NewVariableDeclarator(ctx.text(nameNode), countDims(declNode.ChildByFieldName("dimensions")), init)
		annotateSpan(declarator, declNode)
		declarators = append(declarators, declarator)
	}
	return annotateStatement(ast.NewVariableDeclaration(isFinal(node), typeExpr, declarators), node), nil
}

func (ctx *parseContext) parseFor(node *sitter.Node) (ast.Statement, error) {
	var init []ast.Statement
	for _, initNode := range fieldChildren(node, "init") {
		if initNode.Kind() == "local_variable_declaration" {
			decl, err := ctx.parseLocalVariableDeclaration(initNode)
			if err != nil {
				return nil, err
			}
			init = append(init, decl)
			continue
		}
		expr, err := ctx.parseExpression(initNode)
		if err != nil {
			return nil, err
		}
		init = append(init, annotateStatement(ast.NewExpressionStatement(expr), initNode))
	}
	var cond ast.Expression
	if condNode := node.ChildByFieldName("condition"); condNode != nil {
		var err error
		if cond, err = ctx.parseExpression(condNode); err != nil {
			return nil, err
		}
	}
	var update []ast.Expression
	for _, updateNode := range fieldChildren(node, "update") {
		expr, err := ctx.parseExpression(updateNode)
		if err != nil {
			return nil, err
		}
		update = append(update, expr)
	}
	body, err := ctx.parseStatement(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return annotateStatement(ast.NewForStatement(init, cond, update, body), node), nil
}

func (ctx *parseContext) parseForEach(node *sitter.Node) (ast.Statement, error) {
	typeExpr, err := ctx.parseType(node.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	typeExpr = withDims(typeExpr, node.ChildByFieldName("dimensions"), node)
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return nil, unsupported(node, "unnamed variable")
	}
	iterable, err := ctx.parseExpression(node.ChildByFieldName("value"))
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseStatement(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	loop := ast.NewForEachStatement(isFinal(node), typeExpr, ctx.text(nameNode), iterable, body)
	return annotateStatement(loop, node), nil
}

func (ctx *parseContext) parseSwitch(node *sitter.Node) (ast.Statement, error) {
	selector, err := ctx.parseExpression(node.ChildByFieldName("condition"))
	if err != nil {
		return nil, err
	}
	var cases []*ast.SwitchCase
	for _, group := range namedChildren(node.ChildByFieldName("body")) {
		if group.Kind() == "switch_rule" {
			return nil, unsupported(group, "arrow switch rule")
		}
		var (
			labels    []ast.Expression
			isDefault bool
			body      []ast.Statement
		)
		for _, child := range namedChildren(group) {
			if child.Kind() != "switch_label" {
				stmt, err := ctx.parseStatement(child)
				if err != nil {
					return nil, err
				}
				body = append(body, stmt)
				continue
			}
			values := namedChildren(child)
			if len(values) == 0 {
				isDefault = true
				continue
			}
			for _, value := range values {
				if value.Kind() == "pattern" || value.Kind() == "guard" {
					return nil, unsupported(value, "switch pattern")
				}
				label, err := ctx.parseExpression(value)
				if err != nil {
					return nil, err
				}
				labels = append(labels, label)
			}
		}
		clause := ast.NewSwitchCase(labels, isDefault, body)
		annotateSpan(clause, group)
		cases = append(cases, clause)
	}
	return annotateStatement(ast.NewSwitchStatement(selector, cases), node), nil
}

func (ctx *parseContext) parseTry(node *sitter.Node) (ast.Statement, error) {
	body, err := ctx.parseBlock(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	var (
		catches []*ast.CatchClause
		finally *ast.Block
	)
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "catch_clause":
			clause, err := ctx.parseCatch(child)
			if err != nil {
				return nil, err
			}
			catches = append(catches, clause)
		case "finally_clause":
			if finally, err = ctx.parseBlock(firstNamed(child)); err != nil {
				return nil, err
			}
		}
	}
	return annotateStatement(ast.NewTryStatement(body, catches, finally), node), nil
}

func (ctx *parseContext) parseCatch(node *sitter.Node) (*ast.CatchClause, error) {
	var param *sitter.Node
	for _, child := range namedChildren(node) {
		if child.Kind() == "catch_formal_parameter" {
			param = child
		}
	}
	if param == nil {
		return nil, errorAt(node, "catch clause without a parameter")
	}
	var caught []ast.TypeExpression
	for _, child := range namedChildren(param) {
		if child.Kind() != "catch_type" {
			continue
		}
		for _, alt := range namedChildren(child) {
			typeExpr, err := ctx.parseType(alt)
			if err != nil {
				return nil, err
			}
			caught = append(caught, typeExpr)
		}
	}
	nameNode := param.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return nil, unsupported(param, "unnamed catch parameter")
	}
	body, err := ctx.parseBlock(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	clause := ast.NewCatchClause(caught, ctx.text(nameNode), body)
	annotateSpan(clause, node)
	return clause, nil
}

func (ctx *parseContext) parseMethodDeclaration(node *sitter.Node) (ast.Statement, error) {
	if node.ChildByFieldName("type_parameters") != nil {
		return nil, unsupported(node, "generic method")
	}
	returnType, err := ctx.parseType(node.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	returnType = withDims(returnType, node.ChildByFieldName("dimensions"), node)

	var params []*ast.Parameter
	for _, paramNode := range namedChildren(node.ChildByFieldName("parameters")) {
		if paramNode.Kind() != "formal_parameter" {
			return nil, unsupported(paramNode, "variable-arity or receiver parameter")
		}
		typeExpr, err := ctx.parseType(paramNode.ChildByFieldName("type"))
		if err != nil {
			return nil, err
		}
		typeExpr = withDims(typeExpr, paramNode.ChildByFieldName("dimensions"), paramNode)
		nameNode := paramNode.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			return nil, unsupported(paramNode, "unnamed parameter")
		}
		param := ast.NewParameter(isFinal(paramNode), typeExpr, ctx.text(nameNode))
		annotateSpan(param, paramNode)
		params = append(params, param)
	}

	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, errorAt(node, "missing method body")
	}
	body, err := ctx.parseBlock(bodyNode)
	if err != nil {
		return nil, err
	}
	name := ctx.text(node.ChildByFieldName("name"))
	return annotateStatement(ast.NewMethodDeclaration(returnType, name, params, body), node), nil
}
