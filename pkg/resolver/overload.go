package resolver

import "javelin/interpreter-go/pkg/types"

// SelectOverload picks the index of the signature an invocation with args
// resolves to. Applicability is tried in two phases: first by subtyping and
// primitive widening alone, then allowing boxing and unboxing. Among the
// applicable signatures of the first successful phase the most specific one
// wins; if none is more specific than all others the call is ambiguous.
func SelectOverload(signatures [][]types.Type, args []types.Type, assignable func(from, to types.Type) bool) (int, error) {
	phases := []func(arg, param types.Type) bool{
		func(arg, param types.Type) bool { return assignable(arg, param) },
		func(arg, param types.Type) bool { return looselyAssignable(arg, param, assignable) },
	}
	for _, applicable := range phases {
		var matches []int
		for idx, params := range signatures {
			if len(params) != len(args) {
				continue
			}
			ok := true
			for pos := range params {
				if !applicable(args[pos], params[pos]) {
					ok = false
					break
				}
			}
			if ok {
				matches = append(matches, idx)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if best, ok := mostSpecific(signatures, matches, assignable); ok {
			return best, nil
		}
		return -1, ErrAmbiguous
	}
	return -1, ErrNotFound
}

func looselyAssignable(arg, param types.Type, assignable func(from, to types.Type) bool) bool {
	if assignable(arg, param) {
		return true
	}
	if boxed, ok := types.Box(arg); ok {
		return assignable(boxed, param)
	}
	if prim, ok := types.Unbox(arg); ok {
		return assignable(prim, param)
	}
	return false
}

func mostSpecific(signatures [][]types.Type, matches []int, assignable func(from, to types.Type) bool) (int, bool) {
	for _, candidate := range matches {
		best := true
		for _, other := range matches {
			if other == candidate {
				continue
			}
			if !moreSpecific(signatures[candidate], signatures[other], assignable) {
				best = false
				break
			}
		}
		if best {
			return candidate, true
		}
	}
	return -1, false
}

func moreSpecific(a, b []types.Type, assignable func(from, to types.Type) bool) bool {
	for idx := range a {
		if !assignable(a[idx], b[idx]) {
			return false
		}
	}
	return true
}
