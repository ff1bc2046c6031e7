package typechecker

import (
	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
)

// jumpTarget is one construct a break or continue may leave.
type jumpTarget struct {
	label string
	loop  bool
	// breakable is false for a labeled statement, which only a labeled break leaves.
	breakable bool
}

func (c *Checker) pushJump(target jumpTarget) {
	c.jumpStack = append(c.jumpStack, target)
}

func (c *Checker) popJump() {
	c.jumpStack = c.jumpStack[:len(c.jumpStack)-1]
}

func (c *Checker) withLoop(fn func() error) error {
	c.pushJump(jumpTarget{loop: true, breakable: true})
	defer c.popJump()
	return fn()
}

func (c *Checker) withSwitch(fn func() error) error {
	c.pushJump(jumpTarget{breakable: true})
	defer c.popJump()
	return fn()
}

func (c *Checker) checkLabeled(ctx *Context, stmt *ast.LabeledStatement) error {
	for _, target := range c.jumpStack {
		if target.label == stmt.Label {
			return newError(Redefinition, stmt, "label %s already in use", stmt.Label)
		}
	}
	c.pushJump(jumpTarget{label: stmt.Label, loop: isLoop(stmt.Body)})
	defer c.popJump()
	return c.checkStatement(ctx, stmt.Body)
}

func isLoop(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.WhileStatement, *ast.DoStatement, *ast.ForStatement, *ast.ForEachStatement:
		return true
	}
	return false
}

func (c *Checker) checkBreak(stmt *ast.BreakStatement) error {
	for idx := len(c.jumpStack) - 1; idx >= 0; idx-- {
		target := c.jumpStack[idx]
		if stmt.Label == "" && target.breakable || stmt.Label != "" && target.label == stmt.Label {
			return nil
		}
	}
	if stmt.Label != "" {
		return newError(InvalidJump, stmt, "undefined label: %s", stmt.Label)
	}
	return newError(InvalidJump, stmt, "break outside switch or loop")
}

func (c *Checker) checkContinue(stmt *ast.ContinueStatement) error {
	for idx := len(c.jumpStack) - 1; idx >= 0; idx-- {
		target := c.jumpStack[idx]
		if stmt.Label == "" && target.loop && target.breakable {
			return nil
		}
		if stmt.Label != "" && target.label == stmt.Label {
			if !target.loop {
				return newError(InvalidJump, stmt, "not a loop label: %s", stmt.Label)
			}
			return nil
		}
	}
	if stmt.Label != "" {
		return newError(InvalidJump, stmt, "undefined label: %s", stmt.Label)
	}
	return newError(InvalidJump, stmt, "continue outside of loop")
}

// completesNormally is a conservative reachability analysis used to reject
// non-void methods whose body can fall off the end.
func completesNormally(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement, *ast.ThrowStatement, *ast.BreakStatement, *ast.ContinueStatement:
		return false
	case *ast.Block:
		for _, inner := range s.Statements {
			if !completesNormally(inner) {
				return false
			}
		}
		return true
	case *ast.IfStatement:
		if s.Else == nil {
			return true
		}
		return completesNormally(s.Then) || completesNormally(s.Else)
	case *ast.WhileStatement:
		return !constantTrue(s.Condition) || breaksOut(s.Body, "", false)
	case *ast.DoStatement:
		return (completesNormally(s.Body) && !constantTrue(s.Condition)) || breaksOut(s.Body, "", false)
	case *ast.ForStatement:
		return (s.Condition != nil && !constantTrue(s.Condition)) || breaksOut(s.Body, "", false)
	case *ast.LabeledStatement:
		return completesNormally(s.Body) || breaksOut(s.Body, s.Label, true)
	case *ast.SwitchStatement:
		hasDefault := false
		for _, clause := range s.Cases {
			hasDefault = hasDefault || clause.Default
			for _, inner := range clause.Body {
				if breaksOut(inner, "", false) {
					return true
				}
			}
		}
		if !hasDefault || len(s.Cases) == 0 {
			return true
		}
		last := s.Cases[len(s.Cases)-1]
		return completesNormally(ast.NewBlock(last.Body))
	case *ast.TryStatement:
		if s.Finally != nil && !completesNormally(s.Finally) {
			return false
		}
		if completesNormally(s.Body) {
			return true
		}
		for _, clause := range s.Catches {
			if completesNormally(clause.Body) {
				return true
			}
		}
		return false
	case *ast.SynchronizedStatement:
		return completesNormally(s.Body)
	}
	return true
}

func constantTrue(expr ast.Expression) bool {
	if expr == nil {
		return true
	}
	v, ok := expr.Info().Constant.(runtime.BoolValue)
	return ok && v.Val
}

// breaksOut reports whether stmt contains a break that leaves the enclosing
// construct: an unlabeled break not nested in an inner loop or switch, or a
// break naming label. Within a labeled statement only labeled breaks count.
func breaksOut(stmt ast.Statement, label string, labeledOnly bool) bool {
	switch s := stmt.(type) {
	case *ast.BreakStatement:
		if s.Label == "" {
			return !labeledOnly
		}
		return s.Label == label
	case *ast.Block:
		for _, inner := range s.Statements {
			if breaksOut(inner, label, labeledOnly) {
				return true
			}
		}
	case *ast.IfStatement:
		return breaksOut(s.Then, label, labeledOnly) || (s.Else != nil && breaksOut(s.Else, label, labeledOnly))
	case *ast.WhileStatement:
		return breaksOut(s.Body, label, true)
	case *ast.DoStatement:
		return breaksOut(s.Body, label, true)
	case *ast.ForStatement:
		return breaksOut(s.Body, label, true)
	case *ast.ForEachStatement:
		return breaksOut(s.Body, label, true)
	case *ast.SwitchStatement:
		for _, clause := range s.Cases {
			for _, inner := range clause.Body {
				if breaksOut(inner, label, true) {
					return true
				}
			}
		}
	case *ast.LabeledStatement:
		return breaksOut(s.Body, label, labeledOnly)
	case *ast.TryStatement:
		if breaksOut(s.Body, label, labeledOnly) {
			return true
		}
		for _, clause := range s.Catches {
			if breaksOut(clause.Body, label, labeledOnly) {
				return true
			}
		}
		return s.Finally != nil && breaksOut(s.Finally, label, labeledOnly)
	case *ast.SynchronizedStatement:
		return breaksOut(s.Body, label, labeledOnly)
	}
	return false
}
