package driver

import (
	"errors"
	"fmt"
	"strings"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/interpreter"
	"javelin/interpreter-go/pkg/parser"
	"javelin/interpreter-go/pkg/typechecker"
)

// DiagnosticLocation references a source position for diagnostics.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

// Diagnostic is an error rendered for CLI output.
type Diagnostic struct {
	// Stage is parser, typechecker or runtime; empty for uncaught exceptions.
	Stage    string
	Message  string
	Location DiagnosticLocation
}

func (d Diagnostic) String() string {
	if d.Stage == "" {
		return d.Message
	}
	location := formatDiagnosticLocation(d.Location)
	if location != "" {
		return fmt.Sprintf("%s: %s %s", d.Stage, location, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Stage, d.Message)
}

// Diagnose classifies err from a session run over the source at path.
func Diagnose(path string, err error) Diagnostic {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return Diagnostic{
			Stage:    "parser",
			Message:  trimStage(perr.Message, "parser:"),
			Location: spanLocation(path, perr.Span),
		}
	}
	var terr *typechecker.Error
	if errors.As(err, &terr) {
		diag := Diagnostic{
			Stage:    "typechecker",
			Message:  trimStage(terr.Message, "typechecker:"),
			Location: DiagnosticLocation{Path: path},
		}
		if terr.Node != nil {
			diag.Location = spanLocation(path, terr.Node.Span())
		}
		return diag
	}
	if thrown, ok := interpreter.AsThrown(err); ok {
		return Diagnostic{Message: fmt.Sprintf("Exception in thread \"main\" %s", thrown.Error())}
	}
	var rerr *interpreter.RuntimeError
	if errors.As(err, &rerr) {
		return Diagnostic{
			Stage:    "runtime",
			Message:  trimStage(rerr.Error(), "runtime:"),
			Location: DiagnosticLocation{Path: path},
		}
	}
	return Diagnostic{Stage: "error", Message: err.Error(), Location: DiagnosticLocation{Path: path}}
}

// DescribeError formats err for CLI output.
func DescribeError(path string, err error) string {
	return Diagnose(path, err).String()
}

func spanLocation(path string, span ast.Span) DiagnosticLocation {
	return DiagnosticLocation{Path: path, Line: span.Start.Line, Column: span.Start.Column}
}

func trimStage(message, prefix string) string {
	message = strings.TrimSpace(message)
	return strings.TrimSpace(strings.TrimPrefix(message, prefix))
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	switch {
	case path != "" && loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("%s:%d:%d", path, loc.Line, loc.Column)
	case path != "" && loc.Line > 0:
		return fmt.Sprintf("%s:%d", path, loc.Line)
	case path != "":
		return path
	case loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("line %d, column %d", loc.Line, loc.Column)
	default:
		return ""
	}
}
