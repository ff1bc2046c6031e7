package parser

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"javelin/interpreter-go/pkg/ast"
)

func newTestParser(t testing.TB) *Parser {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func mustParse(t testing.TB, source string) *ast.Script {
	t.Helper()
	script, err := newTestParser(t).ParseScript([]byte(source))
	if err != nil {
		t.Fatalf("ParseScript(%q): %v", source, err)
	}
	if script == nil {
		t.Fatalf("ParseScript(%q) returned nil script", source)
	}
	return script
}

func expectParseError(t testing.TB, source string, fragment string) *ParseError {
	t.Helper()
	_, err := newTestParser(t).ParseScript([]byte(source))
	if err == nil {
		t.Fatalf("ParseScript(%q) succeeded, want error containing %q", source, fragment)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.Contains(parseErr.Message, fragment) {
		t.Fatalf("error %q does not mention %q", parseErr.Message, fragment)
	}
	return parseErr
}

func checkSpan(t testing.TB, label string, span ast.Span, startLine, startCol, endLine, endCol int) {
	t.Helper()
	if span.Start.Line != startLine || span.Start.Column != startCol {
		t.Fatalf("%s start span mismatch: got (%d,%d), want (%d,%d)", label, span.Start.Line, span.Start.Column, startLine, startCol)
	}
	if span.End.Line != endLine || span.End.Column != endCol {
		t.Fatalf("%s end span mismatch: got (%d,%d), want (%d,%d)", label, span.End.Line, span.End.Column, endLine, endCol)
	}
}

// assertNodesEqual compares trees through their JSON form, which leaves
// spans and checker decorations out.
func assertNodesEqual(t testing.TB, expected interface{}, actual interface{}) {
	t.Helper()
	wantJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("marshal expected: %v", err)
	}
	gotJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("marshal actual: %v", err)
	}
	var wantAny interface{}
	var gotAny interface{}
	_ = json.Unmarshal(wantJSON, &wantAny)
	_ = json.Unmarshal(gotJSON, &gotAny)
	if reflect.DeepEqual(wantAny, gotAny) {
		return
	}
	wantPretty, _ := json.MarshalIndent(wantAny, "", "  ")
	gotPretty, _ := json.MarshalIndent(gotAny, "", "  ")
	t.Fatalf("tree mismatch\nexpected: %s\n   actual: %s", wantPretty, gotPretty)
}
