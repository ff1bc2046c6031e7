package typechecker

import (
	"errors"
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/scope"
	"javelin/interpreter-go/pkg/types"
)

// ErrorKind classifies a static error.
type ErrorKind int

const (
	Redefinition ErrorKind = iota
	UnboundName
	TypeMismatch
	IncompatibleTypes
	NoSuchMember
	AmbiguousMember
	InvalidAssignmentTarget
	InvalidJump
)

func (k ErrorKind) String() string {
	switch k {
	case Redefinition:
		return "Redefinition"
	case UnboundName:
		return "UnboundName"
	case TypeMismatch:
		return "TypeMismatch"
	case IncompatibleTypes:
		return "IncompatibleTypes"
	case NoSuchMember:
		return "NoSuchMember"
	case AmbiguousMember:
		return "AmbiguousMember"
	case InvalidAssignmentTarget:
		return "InvalidAssignmentTarget"
	case InvalidJump:
		return "InvalidJump"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Variant refines a TypeMismatch with the construct that rejected the operand.
type Variant string

const (
	VariantNone       Variant = ""
	VariantCondition  Variant = "condition"
	VariantSelector   Variant = "selector"
	VariantLock       Variant = "lock"
	VariantCast       Variant = "cast"
	VariantAssignment Variant = "assignment"
	VariantRelational Variant = "relational"
	VariantBitwise    Variant = "bitwise"
	VariantShift      Variant = "shift"
	VariantOperand    Variant = "operand"
	VariantReturn     Variant = "return"
	VariantThrow      Variant = "throw"
	VariantCatch      Variant = "catch"
	VariantLabel      Variant = "label"
	VariantReceiver   Variant = "receiver"
)

// Error is a static error attributed to the node that caused it. The first
// error aborts checking of the enclosing top-level statement.
type Error struct {
	Kind    ErrorKind
	Variant Variant
	Node    ast.Node
	Message string
}

func (e *Error) Error() string {
	if e.Node != nil {
		if start := e.Node.Span().Start; start.Line > 0 {
			return fmt.Sprintf("%s (line %d, column %d)", e.Message, start.Line, start.Column)
		}
	}
	return e.Message
}

// KindOf returns the kind of a static error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, node ast.Node, format string, args ...any) *Error {
	return &Error{Kind: kind, Node: node, Message: "typechecker: " + fmt.Sprintf(format, args...)}
}

func mismatch(variant Variant, node ast.Node, format string, args ...any) *Error {
	err := newError(TypeMismatch, node, format, args...)
	err.Variant = variant
	return err
}

// scopeError translates a failed scope operation.
func scopeError(err error, node ast.Node) error {
	var serr *scope.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Kind {
	case scope.Redefinition:
		return newError(Redefinition, node, "variable %s is already defined in this scope", serr.Name)
	case scope.UnboundName:
		return newError(UnboundName, node, "cannot find symbol %s", serr.Name)
	default:
		return newError(InvalidAssignmentTarget, node, "%s", serr.Error())
	}
}

// lookupError translates a failed resolver lookup.
func lookupError(err error, node ast.Node) error {
	if errors.Is(err, resolver.ErrAmbiguous) {
		return newError(AmbiguousMember, node, "reference is ambiguous: %v", err)
	}
	if errors.Is(err, resolver.ErrNotFound) {
		return newError(NoSuchMember, node, "cannot find symbol: %v", err)
	}
	return err
}

func typeName(t types.Type) string {
	return types.DisplayName(t)
}
