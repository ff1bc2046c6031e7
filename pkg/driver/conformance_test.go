package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"javelin/interpreter-go/pkg/interpreter"
	"javelin/interpreter-go/pkg/specdoc"
	"javelin/interpreter-go/pkg/typechecker"
	"javelin/interpreter-go/pkg/types"
)

func TestConformance(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "conformance", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		be.Err(t, err, nil)
		cases, err := specdoc.Extract(data)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		for _, tc := range cases {
			t.Run(filepath.Base(path)+"/"+tc.Name, func(t *testing.T) {
				runConformanceCase(t, tc)
			})
		}
	}
}

func runConformanceCase(t *testing.T, tc specdoc.Case) {
	t.Helper()
	var stdout bytes.Buffer
	session, err := NewSession(Options{Stdout: &stdout})
	be.Err(t, err, nil)
	defer session.Close()

	results, runErr := session.Eval([]byte(tc.Source))

	if want, ok := tc.Expect(specdoc.ExpectStaticError); ok {
		kind, static := typechecker.KindOf(runErr)
		if !static {
			t.Fatalf("line %d: expected static error %s, got %v", tc.Line, want, runErr)
		}
		be.Equal(t, kind.String(), want)
	} else if want, ok := tc.Expect(specdoc.ExpectException); ok {
		thrown, isThrown := interpreter.AsThrown(runErr)
		if !isThrown {
			t.Fatalf("line %d: expected %s to be thrown, got %v", tc.Line, want, runErr)
		}
		be.Equal(t, thrown.ClassName(), want)
	} else if runErr != nil {
		t.Fatalf("line %d: unexpected error: %v", tc.Line, runErr)
	}

	if want, ok := tc.Expect(specdoc.ExpectOutput); ok {
		be.Equal(t, strings.TrimRight(stdout.String(), "\n"), want)
	}

	wantType, checkType := tc.Expect(specdoc.ExpectType)
	wantValue, checkValue := tc.Expect(specdoc.ExpectValue)
	if !checkType && !checkValue {
		return
	}
	last, ok := lastExpression(results)
	if !ok {
		t.Fatalf("line %d: script has no expression statement", tc.Line)
	}
	if checkType {
		be.Equal(t, types.DisplayName(last.Type), wantType)
	}
	if checkValue {
		rendered, err := session.Render(last.Value)
		be.Err(t, err, nil)
		be.Equal(t, rendered, wantValue)
	}
}

func lastExpression(results []Result) (Result, bool) {
	for idx := len(results) - 1; idx >= 0; idx-- {
		if results[idx].Type != nil {
			return results[idx], true
		}
	}
	return Result{}, false
}
