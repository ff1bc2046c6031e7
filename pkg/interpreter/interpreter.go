package interpreter

import (
	"io"
	"log/slog"
	"os"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/scope"
)

// DefaultMaxCallDepth bounds nested method activations when Config leaves it unset.
const DefaultMaxCallDepth = 4096

// Context is the evaluator's scope chain. It mirrors the checker's chain
// frame for frame.
type Context = scope.Context[runtime.Value]

// NewContext returns an empty evaluator scope chain.
func NewContext() *Context {
	return scope.New[runtime.Value]()
}

// Config carries the host collaborators of an interpreter.
type Config struct {
	MaxCallDepth int
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	// Monitors backs synchronized blocks; a private registry is used when nil.
	Monitors *runtime.Monitors
}

// Interpreter evaluates checked trees.
type Interpreter struct {
	resolver resolver.Resolver
	native   *runtime.NativeCallContext
	monitors *runtime.Monitors
	logger   *slog.Logger

	maxDepth int
	depth    int
}

// New returns an interpreter that invokes members through res.
func New(res resolver.Resolver, cfg Config) *Interpreter {
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Monitors == nil {
		cfg.Monitors = runtime.NewMonitors()
	}
	return &Interpreter{
		resolver: res,
		native:   &runtime.NativeCallContext{Stdout: cfg.Stdout, Stderr: cfg.Stderr},
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
		maxDepth: cfg.MaxCallDepth,
	}
}

// ExecuteStatement runs one checked statement. An expression statement
// yields the expression's value; other statements yield void. Scopes opened
// by stmt are released on every exit path.
func (i *Interpreter) ExecuteStatement(ctx *Context, stmt ast.Statement) (runtime.Value, error) {
	depth := ctx.Depth()
	defer ctx.Unwind(depth)
	result, err := i.execStatement(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if result.kind != normalCompletion {
		return nil, &RuntimeError{Kind: UnhandledSignal, Message: result.String()}
	}
	if result.value == nil {
		return runtime.VoidValue{}, nil
	}
	return result.value, nil
}

// Evaluate computes the value of a checked expression.
func (i *Interpreter) Evaluate(ctx *Context, expr ast.Expression) (runtime.Value, error) {
	depth := ctx.Depth()
	defer ctx.Unwind(depth)
	return i.evaluate(ctx, expr)
}

// ExecuteScript runs every statement of a checked script in ctx.
func (i *Interpreter) ExecuteScript(ctx *Context, script *ast.Script) error {
	for _, stmt := range script.Statements {
		if _, err := i.ExecuteStatement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Stringify renders v as string concatenation does.
func (i *Interpreter) Stringify(v runtime.Value) (string, error) {
	s, err := i.resolver.Stringify(i.native, v)
	if err != nil {
		return "", i.raise(err)
	}
	return s, nil
}
