package scope

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestContextDefineAndLookupWalksOutward(t *testing.T) {
	ctx := New[int]()
	be.Err(t, ctx.Define("x", 1, false), nil)
	ctx.EnterScope()
	be.Err(t, ctx.Define("y", 2, false), nil)

	x, err := ctx.Get("x")
	be.Err(t, err, nil)
	be.Equal(t, x, 1)
	be.True(t, !ctx.HasInCurrentScope("x"))
	be.True(t, ctx.HasInCurrentScope("y"))

	declared := ctx.LeaveScope()
	be.Equal(t, declared, []string{"y"})
	be.True(t, !ctx.Has("y"))
}

func TestContextRedefinitionInSameFrame(t *testing.T) {
	ctx := New[int]()
	be.Err(t, ctx.Define("x", 1, false), nil)
	err := ctx.Define("x", 2, false)
	be.True(t, IsKind(err, Redefinition))

	ctx.EnterScope()
	be.Err(t, ctx.Define("x", 3, false), nil)
	got, _ := ctx.Get("x")
	be.Equal(t, got, 3)
}

func TestContextUnboundName(t *testing.T) {
	ctx := New[string]()
	_, err := ctx.Get("missing")
	be.True(t, IsKind(err, UnboundName))
	be.True(t, IsKind(ctx.Set("missing", "v"), UnboundName))
}

func TestContextConstantBindings(t *testing.T) {
	ctx := New[int]()
	be.Err(t, ctx.Define("k", 7, true), nil)
	be.True(t, IsKind(ctx.Set("k", 8), ImmutableBinding))

	be.Err(t, ctx.Declare("blank", true), nil)
	_, err := ctx.Get("blank")
	be.True(t, IsKind(err, Uninitialized))
	be.Err(t, ctx.Set("blank", 1), nil)
	be.True(t, IsKind(ctx.Set("blank", 2), ImmutableBinding))
	v, err := ctx.Get("blank")
	be.Err(t, err, nil)
	be.Equal(t, v, 1)
}

func TestContextScopedReleasesOnError(t *testing.T) {
	ctx := New[int]()
	boom := errors.New("boom")
	declared, err := ctx.Scoped(func() error {
		be.Err(t, ctx.Define("a", 1, false), nil)
		ctx.EnterScope()
		be.Err(t, ctx.Define("b", 2, false), nil)
		return boom
	})
	be.Err(t, err, boom)
	be.Equal(t, declared, []string{"a"})
	be.Equal(t, ctx.Depth(), 1)
	be.True(t, !ctx.Has("a"))
}

func TestContextOutermostFrameIsNeverPopped(t *testing.T) {
	ctx := New[int]()
	be.Err(t, ctx.Define("g", 1, false), nil)
	be.Equal(t, len(ctx.LeaveScope()), 0)
	be.True(t, ctx.Has("g"))
}

func TestContextUndefine(t *testing.T) {
	ctx := New[int]()
	be.Err(t, ctx.Define("a", 1, false), nil)
	be.Err(t, ctx.Define("b", 2, false), nil)
	ctx.Undefine("a")
	be.True(t, !ctx.Has("a"))
	be.Equal(t, ctx.Names(), []string{"b"})
}
