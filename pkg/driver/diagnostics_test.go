package driver

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		source string
		prefix string
	}{
		{"parse error", "int x = 1;\nint y = ;", "parser: main.java:2:"},
		{"static error", "int x = 1;\nint z = missing;", "typechecker: main.java:2:"},
		{"uncaught exception", "int zero = 0;\nint q = 10 / zero;", `Exception in thread "main" java.lang.ArithmeticException: / by zero`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, Options{})
			_, err := s.Eval([]byte(tc.source))
			be.True(t, err != nil)
			got := DescribeError("main.java", err)
			if !strings.HasPrefix(got, tc.prefix) {
				t.Fatalf("expected %q to start with %q", got, tc.prefix)
			}
		})
	}
}

func TestDescribeRuntimeError(t *testing.T) {
	s := newTestSession(t, Options{})
	mustEval(t, s, "final int x;")
	_, err := s.Eval([]byte("x + 1;"))
	be.Equal(t, DescribeError("main.java", err), "runtime: main.java variable x has not been initialized")
}

func TestFormatDiagnosticLocation(t *testing.T) {
	tests := []struct {
		loc  DiagnosticLocation
		want string
	}{
		{DiagnosticLocation{Path: "a.java", Line: 3, Column: 4}, "a.java:3:4"},
		{DiagnosticLocation{Path: "a.java", Line: 3}, "a.java:3"},
		{DiagnosticLocation{Path: "a.java"}, "a.java"},
		{DiagnosticLocation{Line: 3, Column: 4}, "line 3, column 4"},
		{DiagnosticLocation{}, ""},
	}
	for _, tc := range tests {
		be.Equal(t, formatDiagnosticLocation(tc.loc), tc.want)
	}
}

func TestDiagnosticWithoutLocation(t *testing.T) {
	diag := Diagnostic{Stage: "runtime", Message: "stack overflow"}
	be.Equal(t, diag.String(), "runtime: stack overflow")
}
