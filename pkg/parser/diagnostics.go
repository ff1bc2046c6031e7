package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
)

// ParseError includes a message plus a best-effort source location.
// Incomplete is set when the error sits at the end of the input, as it does
// for an unclosed block or a statement missing its semicolon.
type ParseError struct {
	Message    string
	Span       ast.Span
	Incomplete bool
}

// IsIncomplete reports whether err is a syntax error that more input could fix.
func IsIncomplete(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr) && perr.Incomplete
}

func (e *ParseError) Error() string {
	if e.Span.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Span.Start.Line, e.Span.Start.Column)
}

func errorAt(node *sitter.Node, format string, args ...any) *ParseError {
	return &ParseError{Message: "parser: " + fmt.Sprintf(format, args...), Span: spanFromNode(node)}
}

func unsupported(node *sitter.Node, what string) *ParseError {
	return errorAt(node, "%s is not supported", what)
}

func syntaxError(root *sitter.Node, source []byte) *ParseError {
	missing := findFirstMissingNode(root)
	errorNode := missing
	if errorNode == nil {
		errorNode = findFirstErrorNode(root)
	}
	if errorNode == nil {
		errorNode = root
	}
	var err *ParseError
	if missing != nil {
		err = errorAt(errorNode, "syntax error: expected %s", formatExpectedKind(missing.Kind()))
	} else {
		err = errorAt(errorNode, "syntax error")
	}
	end := len(bytes.TrimRightFunc(source, unicode.IsSpace))
	err.Incomplete = int(errorNode.EndByte()) >= end
	return err
}

func findFirstMissingNode(root *sitter.Node) *sitter.Node {
	var best *sitter.Node
	walkNodes(root, func(node *sitter.Node) {
		if !node.IsMissing() {
			return
		}
		if best == nil || node.StartByte() < best.StartByte() {
			best = node
		}
	})
	return best
}

func findFirstErrorNode(root *sitter.Node) *sitter.Node {
	var best *sitter.Node
	walkNodes(root, func(node *sitter.Node) {
		if !node.IsError() {
			return
		}
		if best == nil || node.StartByte() < best.StartByte() {
			best = node
		}
	})
	return best
}

func walkNodes(root *sitter.Node, visit func(node *sitter.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		walkNodes(child, visit)
	}
}

func formatExpectedKind(kind string) string {
	trimmed := strings.TrimSpace(kind)
	if trimmed == "" {
		return "token"
	}
	isSymbol := true
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			isSymbol = false
			break
		}
	}
	if len(trimmed) == 1 || isSymbol {
		return fmt.Sprintf("'%s'", trimmed)
	}
	return strings.ReplaceAll(trimmed, "_", " ")
}
