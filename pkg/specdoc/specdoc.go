// Package specdoc extracts conformance cases from markdown documents.
//
// A case starts at a heading of the form "Test: name" and collects the
// fenced code blocks that follow it: exactly one "java" source fence and
// one or more expectation fences.
package specdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SourceFence is the fence language carrying the script under test.
const SourceFence = "java"

// ExpectKind names an expectation fence.
type ExpectKind string

const (
	// ExpectOutput compares everything the script printed.
	ExpectOutput ExpectKind = "output"
	// ExpectValue compares the rendered value of the last expression statement.
	ExpectValue ExpectKind = "value"
	// ExpectType compares the static type of the last expression statement.
	ExpectType ExpectKind = "type"
	// ExpectStaticError names the checker error kind the script must fail with.
	ExpectStaticError ExpectKind = "static-error"
	// ExpectException names the class of the exception the script must leave uncaught.
	ExpectException ExpectKind = "exception"
)

var expectKinds = map[string]ExpectKind{
	string(ExpectOutput):      ExpectOutput,
	string(ExpectValue):       ExpectValue,
	string(ExpectType):        ExpectType,
	string(ExpectStaticError): ExpectStaticError,
	string(ExpectException):   ExpectException,
}

// Expectation is one expectation fence of a case.
type Expectation struct {
	Kind    ExpectKind
	Content string
}

// Case is a single conformance case.
type Case struct {
	Name         string
	Line         int
	Source       string
	Expectations []Expectation
}

// Expect returns the content of the first expectation of kind.
func (c Case) Expect(kind ExpectKind) (string, bool) {
	for _, e := range c.Expectations {
		if e.Kind == kind {
			return e.Content, true
		}
	}
	return "", false
}

// Extract parses a markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var (
		cases   []Case
		current *Case
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := strings.TrimSpace(headingText(n, markdown))
			if !strings.HasPrefix(heading, "Test:") {
				return ast.WalkSkipChildren, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, "Test:")),
				Line: lineOf(n, markdown),
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			content := blockContent(n, markdown)
			if current == nil {
				if lang == SourceFence || expectKinds[lang] != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
				}
				return ast.WalkContinue, nil
			}
			switch {
			case lang == SourceFence:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple source fences in test %q", line, current.Name)
				}
				current.Source = content
			case expectKinds[lang] != "":
				current.Expectations = append(current.Expectations, Expectation{
					Kind:    expectKinds[lang],
					Content: strings.TrimRight(content, "\n"),
				})
			case lang == "":
				// Unlabelled fences are commentary.
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("specdoc: %w", err)
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("specdoc: %w", err)
	}
	return cases, nil
}

func validate(c *Case) error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("test %q has no %s fence", c.Name, SourceFence)
	}
	if len(c.Expectations) == 0 {
		return fmt.Errorf("test %q has no expectation fences", c.Name)
	}
	_, static := c.Expect(ExpectStaticError)
	_, thrown := c.Expect(ExpectException)
	if static && thrown {
		return fmt.Errorf("test %q expects both a static error and an exception", c.Name)
	}
	return nil
}

func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of the node's first content line.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte{'\n'}) + 1
}
