package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/parser/language"
)

// Parser wraps a tree-sitter parser configured for the Java grammar and
// lowers its syntax tree to the interpreter's AST.
type Parser struct {
	parser *sitter.Parser
}

// New constructs a parser with the Java language loaded.
func New() (*Parser, error) {
	lang := language.Java()
	if lang == nil {
		return nil, fmt.Errorf("parser: java language not available")
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p == nil || p.parser == nil {
		return
	}
	p.parser.Close()
}

// ParseScript parses a sequence of top-level statements and method declarations.
func (p *Parser) ParseScript(source []byte) (*ast.Script, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}
	tree := p.parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, fmt.Errorf("parser: unexpected root node")
	}
	if root.HasError() {
		return nil, syntaxError(root, source)
	}

	ctx := newParseContext(source)
	var statements []ast.Statement
	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if isIgnorableNode(node) {
			continue
		}
		var (
			stmt ast.Statement
			err  error
		)
		if node.Kind() == "method_declaration" {
			stmt, err = ctx.parseMethodDeclaration(node)
		} else {
			stmt, err = ctx.parseStatement(node)
		}
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	script := ast.NewScript(statements)
	annotateSpan(script, root)
	return script, nil
}

// ParseExpression parses source as a single expression.
func (p *Parser) ParseExpression(source []byte) (ast.Expression, error) {
	script, err := p.ParseScript(append(append([]byte{}, source...), ';'))
	if err != nil {
		return nil, err
	}
	if len(script.Statements) != 1 {
		return nil, fmt.Errorf("parser: expected a single expression")
	}
	stmt, ok := script.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, fmt.Errorf("parser: expected an expression, found %s", script.Statements[0].NodeType())
	}
	return stmt.Expression, nil
}

// parseContext carries the source bytes every lowering helper slices from.
type parseContext struct {
	source []byte
}

func newParseContext(source []byte) *parseContext {
	return &parseContext{source: source}
}

func (ctx *parseContext) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if start < 0 || end < start || end > len(ctx.source) {
		return ""
	}
	return string(ctx.source[start:end])
}

func isIgnorableNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "line_comment", "block_comment":
		return true
	default:
		return false
	}
}

// namedChildren returns the named children of node that are not comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || isIgnorableNode(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

// fieldChildren returns every child stored under a repeated field.
func fieldChildren(node *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) == field {
			out = append(out, node.Child(i))
		}
	}
	return out
}

func hasKeyword(node *sitter.Node, keyword string) bool {
	if node == nil {
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && !child.IsNamed() && child.Kind() == keyword {
			return true
		}
	}
	return false
}

// isFinal reports whether a declaration's modifiers include final.
func isFinal(node *sitter.Node) bool {
	for _, child := range namedChildren(node) {
		if child.Kind() == "modifiers" {
			return hasKeyword(child, "final")
		}
	}
	return false
}

// countDims counts the bracket pairs of a dimensions node.
func countDims(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	n := 0
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "[" {
			n++
		}
	}
	return n
}
