package driver

import (
	"fmt"
	"io"
	"log/slog"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/interpreter"
	"javelin/interpreter-go/pkg/logger"
	"javelin/interpreter-go/pkg/parser"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/typechecker"
	"javelin/interpreter-go/pkg/types"
)

// Options configures a Session.
type Options struct {
	// Library supplies the class model; a fresh java.lang library is used when nil.
	Library      *resolver.Library
	MaxCallDepth int
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
}

// Session runs top-level statements one at a time against a checker scope
// chain and an evaluator scope chain that persist between submissions.
type Session struct {
	lib      *resolver.Library
	parser   *parser.Parser
	checker  *typechecker.Checker
	interp   *interpreter.Interpreter
	checkCtx *typechecker.Context
	evalCtx  *interpreter.Context
	logger   *slog.Logger
	count    int
}

// Result describes one executed top-level statement. Type and Value are set
// only for expression statements.
type Result struct {
	Statement ast.Statement
	Type      types.Type
	Value     runtime.Value
}

// NewSession wires a parser, checker and interpreter around one library.
func NewSession(opts Options) (*Session, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	lib := opts.Library
	if lib == nil {
		lib = resolver.NewLibrary()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	interp := interpreter.New(lib, interpreter.Config{
		MaxCallDepth: opts.MaxCallDepth,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		Logger:       log,
		Monitors:     lib.Monitors,
	})
	return &Session{
		lib:      lib,
		parser:   p,
		checker:  typechecker.New(lib),
		interp:   interp,
		checkCtx: typechecker.NewContext(),
		evalCtx:  interpreter.NewContext(),
		logger:   log,
	}, nil
}

// Close releases the parser.
func (s *Session) Close() {
	s.parser.Close()
}

// Library returns the class model the session resolves against.
func (s *Session) Library() *resolver.Library { return s.lib }

// Parse parses source as a script.
func (s *Session) Parse(source []byte) (*ast.Script, error) {
	return s.parser.ParseScript(source)
}

// Check statically checks script without running it.
func (s *Session) Check(script *ast.Script) error {
	return s.checker.CheckScript(s.checkCtx, script)
}

// Eval parses source and runs it.
func (s *Session) Eval(source []byte) ([]Result, error) {
	script, err := s.Parse(source)
	if err != nil {
		return nil, err
	}
	return s.Run(script)
}

// Run declares the methods of script, so statements may call methods
// declared after them, then submits each statement in order. It stops at
// the first static or dynamic error; methods of script that were not yet
// checked at that point are withdrawn.
func (s *Session) Run(script *ast.Script) ([]Result, error) {
	var pending []*ast.MethodDeclaration
	for _, stmt := range script.Statements {
		if decl, ok := stmt.(*ast.MethodDeclaration); ok {
			if err := s.checker.DeclareMethod(decl); err != nil {
				s.forget(pending)
				return nil, err
			}
			pending = append(pending, decl)
		}
	}

	results := make([]Result, 0, len(script.Statements))
	for _, stmt := range script.Statements {
		result, err := s.Submit(stmt)
		if decl, ok := stmt.(*ast.MethodDeclaration); ok && len(pending) > 0 && pending[0] == decl {
			pending = pending[1:]
		}
		if err != nil {
			s.forget(pending)
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Submit checks and then executes one top-level statement. A statement that
// fails checking is discarded whole: names it bound in the checker's scope
// chain are released and nothing is executed.
func (s *Session) Submit(stmt ast.Statement) (Result, error) {
	s.count++
	seq := s.count
	result := Result{Statement: stmt}

	before := s.checkCtx.Names()
	if err := s.checker.CheckStatement(s.checkCtx, stmt); err != nil {
		s.discard(stmt, before)
		s.logger.Debug("statement discarded", "statement", seq, "node", stmt.NodeType(), "error", err)
		return result, err
	}
	s.logger.Debug("statement checked", "statement", seq, "node", stmt.NodeType())

	exprStmt, isExpr := stmt.(*ast.ExpressionStatement)
	if isExpr {
		result.Type = exprStmt.Expression.Info().Type
	}

	value, err := s.interp.ExecuteStatement(s.evalCtx, stmt)
	if err != nil {
		s.mirrorDeclarations()
		if thrown, ok := interpreter.AsThrown(err); ok {
			s.logger.Warn("uncaught exception", "statement", seq, "exception", thrown.ClassName(), "error", thrown.Error())
		} else {
			s.logger.Warn("statement failed", "statement", seq, "error", err)
		}
		return result, err
	}
	if isExpr {
		result.Value = value
	}
	s.logger.Debug("statement evaluated", "statement", seq, "node", stmt.NodeType())
	return result, nil
}

// Render formats a value the way string concatenation does.
func (s *Session) Render(v runtime.Value) (string, error) {
	return s.interp.Stringify(v)
}

// Lookup reads a top-level variable.
func (s *Session) Lookup(name string) (runtime.Value, error) {
	v, err := s.evalCtx.Get(name)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	return v, nil
}

// StaticType reports the checked type of a top-level variable.
func (s *Session) StaticType(name string) (types.Type, bool) {
	binding, ok := s.checkCtx.Lookup(name)
	if !ok || binding.Value == nil {
		return nil, false
	}
	return binding.Value.Type, true
}

func (s *Session) discard(stmt ast.Statement, before []string) {
	kept := make(map[string]struct{}, len(before))
	for _, name := range before {
		kept[name] = struct{}{}
	}
	for _, name := range s.checkCtx.Names() {
		if _, ok := kept[name]; !ok {
			s.checkCtx.Undefine(name)
		}
	}
	if decl, ok := stmt.(*ast.MethodDeclaration); ok {
		s.checker.ForgetMethod(decl)
	}
}

// mirrorDeclarations declares, unset, every checked top-level name a failed
// execution never bound, so both scope chains keep the same names.
func (s *Session) mirrorDeclarations() {
	for _, name := range s.checkCtx.Names() {
		if s.evalCtx.HasInCurrentScope(name) {
			continue
		}
		final := false
		if binding, ok := s.checkCtx.Lookup(name); ok && binding.Value != nil {
			final = binding.Value.Final
		}
		_ = s.evalCtx.Declare(name, final)
	}
}

func (s *Session) forget(decls []*ast.MethodDeclaration) {
	for _, decl := range decls {
		s.checker.ForgetMethod(decl)
	}
}
