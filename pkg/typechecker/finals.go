package typechecker

import "javelin/interpreter-go/pkg/ast"

// A blank final may be assigned only while no path reaching the assignment
// can already have assigned it. Alternative paths start from the same state
// and their assignments are merged afterwards.

func (c *Checker) markAssigned(v *Variable) {
	if v.assigned {
		return
	}
	v.assigned = true
	c.assigned = append(c.assigned, v)
}

// rollbackAssignments unmarks every variable marked since mark and returns
// them in marking order.
func (c *Checker) rollbackAssignments(mark int) []*Variable {
	undone := append([]*Variable(nil), c.assigned[mark:]...)
	for _, v := range undone {
		v.assigned = false
	}
	c.assigned = c.assigned[:mark]
	return undone
}

// checkPaths checks alternatives that each start from the current state.
// A blank final assigned on any of them counts as assigned afterwards.
func (c *Checker) checkPaths(paths ...func() error) error {
	mark := len(c.assigned)
	var merged []*Variable
	for _, path := range paths {
		err := path()
		merged = append(merged, c.rollbackAssignments(mark)...)
		if err != nil {
			return err
		}
	}
	for _, v := range merged {
		c.markAssigned(v)
	}
	return nil
}

func (c *Checker) inLoop(fn func() error) error {
	c.loops++
	defer func() { c.loops-- }()
	return fn()
}

// checkFinalTarget rejects writing a final local unless the write is a
// simple assignment to a blank final that no earlier path may have assigned,
// declared inside the innermost enclosing loop. An accepted write marks the
// variable assigned.
func (c *Checker) checkFinalTarget(ctx *Context, target ast.Expression, compound bool) error {
	id, ok := target.(*ast.Identifier)
	if !ok {
		return nil
	}
	binding, found := ctx.Lookup(id.Name)
	if !found || binding.Value == nil || !binding.Value.Final {
		return nil
	}
	v := binding.Value
	switch {
	case compound || !v.blank || v.assigned:
		return newError(InvalidAssignmentTarget, target, "cannot assign a value to final variable %s", id.Name)
	case v.loops < c.loops:
		return newError(InvalidAssignmentTarget, target, "variable %s might be assigned in loop", id.Name)
	}
	c.markAssigned(v)
	return nil
}
