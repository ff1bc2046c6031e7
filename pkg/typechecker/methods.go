package typechecker

import (
	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/types"
)

// DeclareMethod resolves a script method's signature and makes it callable.
// Bodies are checked later, so methods may call each other in any order.
func (c *Checker) DeclareMethod(decl *ast.MethodDeclaration) error {
	if decl.Return != nil {
		for _, existing := range c.methods[decl.Name] {
			if existing == decl {
				return nil
			}
		}
	}
	ret, err := c.ResolveType(decl.ReturnType)
	if err != nil {
		return err
	}
	params := make([]types.Type, len(decl.Params))
	seen := make(map[string]struct{}, len(decl.Params))
	for idx, param := range decl.Params {
		t, err := c.ResolveType(param.Type)
		if err != nil {
			return err
		}
		if types.IsVoid(t) {
			return mismatch(VariantNone, param, "illegal parameter type void")
		}
		if _, dup := seen[param.Name]; dup {
			return newError(Redefinition, param, "variable %s is already defined in method %s", param.Name, decl.Name)
		}
		seen[param.Name] = struct{}{}
		params[idx] = t
	}
	for _, existing := range c.methods[decl.Name] {
		if sameTypes(existing.ParamTypes, params) {
			return newError(Redefinition, decl, "method %s is already defined", decl.Name)
		}
	}
	decl.Return = ret
	decl.ParamTypes = params
	c.methods[decl.Name] = append(c.methods[decl.Name], decl)
	return nil
}

// ForgetMethod removes a declared method, used when its body failed to check.
func (c *Checker) ForgetMethod(decl *ast.MethodDeclaration) {
	list := c.methods[decl.Name]
	for idx, existing := range list {
		if existing == decl {
			c.methods[decl.Name] = append(list[:idx:idx], list[idx+1:]...)
			return
		}
	}
}

func sameTypes(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !types.Identical(a[idx], b[idx]) {
			return false
		}
	}
	return true
}

// checkMethodDeclaration checks a body against a fresh scope chain holding
// only the parameters.
func (c *Checker) checkMethodDeclaration(decl *ast.MethodDeclaration) error {
	if err := c.DeclareMethod(decl); err != nil {
		return err
	}
	body := NewContext()
	for idx, param := range decl.Params {
		if err := body.Define(param.Name, &Variable{Type: decl.ParamTypes[idx], Final: param.Final}, param.Final); err != nil {
			return scopeError(err, param)
		}
	}

	savedJumps, savedLoops := c.jumpStack, c.loops
	c.jumpStack, c.loops = nil, 0
	c.returnStack = append(c.returnStack, decl.Return)
	defer func() {
		c.returnStack = c.returnStack[:len(c.returnStack)-1]
		c.jumpStack, c.loops = savedJumps, savedLoops
	}()

	if err := c.checkBlock(body, decl.Body); err != nil {
		return err
	}
	if !types.IsVoid(decl.Return) && completesNormally(decl.Body) {
		return mismatch(VariantReturn, decl, "missing return statement in method %s", decl.Name)
	}
	return nil
}
