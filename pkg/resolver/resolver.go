package resolver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

var (
	ErrNotFound  = errors.New("no such member")
	ErrAmbiguous = errors.New("ambiguous member")
)

// LookupError reports a failed member lookup. It unwraps to ErrNotFound or ErrAmbiguous.
type LookupError struct {
	Reason error
	Owner  string
	Member string
	Args   []types.Type
	Detail string
}

func (e *LookupError) Error() string {
	member := e.Member
	if e.Args != nil {
		names := make([]string, len(e.Args))
		for idx, arg := range e.Args {
			names[idx] = types.DisplayName(arg)
		}
		member += "(" + strings.Join(names, ", ") + ")"
	}
	msg := fmt.Sprintf("%s %s in %s", e.Reason, member, e.Owner)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *LookupError) Unwrap() error { return e.Reason }

// Resolver answers member lookups for the checker and performs invocations
// for the evaluator.
type Resolver interface {
	ResolveClass(name string) (*runtime.Class, bool)
	LookupField(owner types.Type, name string) (*runtime.Field, error)
	LookupMethod(owner types.Type, name string, args []types.Type) (*runtime.Method, error)
	LookupConstructor(owner types.Type, args []types.Type) (*runtime.Constructor, error)
	IsAssignable(from, to types.Type) bool
	Invoke(ctx *runtime.NativeCallContext, method *runtime.Method, receiver runtime.Value, args []runtime.Value) (runtime.Value, error)
	Construct(ctx *runtime.NativeCallContext, ctor *runtime.Constructor, args []runtime.Value) (runtime.Value, error)
	NewThrowable(className, message string) (*runtime.ObjectValue, error)
	Stringify(ctx *runtime.NativeCallContext, v runtime.Value) (string, error)
}

// Library is the in-process class library backing Resolver.
type Library struct {
	classes map[string]*runtime.Class
	simple  map[string]*runtime.Class
	order   []*runtime.Class

	mu       sync.Mutex
	identity map[runtime.Value]int32
	nextHash int32

	Monitors *runtime.Monitors
}

// NewLibrary returns a library preloaded with the java.lang builtins.
func NewLibrary() *Library {
	lib := &Library{
		classes:  make(map[string]*runtime.Class),
		simple:   make(map[string]*runtime.Class),
		identity: make(map[runtime.Value]int32),
		Monitors: runtime.NewMonitors(),
	}
	lib.installLang()
	lib.installBoxed()
	lib.installThrowables()
	return lib
}

func (l *Library) define(class *runtime.Class) *runtime.Class {
	l.classes[class.Name] = class
	if _, taken := l.simple[class.SimpleName()]; !taken {
		l.simple[class.SimpleName()] = class
	}
	l.order = append(l.order, class)
	return class
}

// Classes lists every class in definition order.
func (l *Library) Classes() []*runtime.Class {
	out := make([]*runtime.Class, len(l.order))
	copy(out, l.order)
	return out
}

// ResolveClass accepts a fully qualified name, a java.lang simple name, or
// the simple name of a declared library class.
func (l *Library) ResolveClass(name string) (*runtime.Class, bool) {
	if class, ok := l.classes[name]; ok {
		return class, true
	}
	if class, ok := l.classes["java.lang."+name]; ok {
		return class, true
	}
	if !strings.Contains(name, ".") {
		class, ok := l.simple[name]
		return class, ok
	}
	return nil, false
}

func (l *Library) mustClass(name string) *runtime.Class {
	class, ok := l.ResolveClass(name)
	if !ok {
		panic(fmt.Sprintf("resolver: builtin class %s not installed", name))
	}
	return class
}

// classOf maps a static type to the class whose members it exposes. Arrays
// and interfaces of no declared class expose Object's members.
func (l *Library) classOf(t types.Type) (*runtime.Class, bool) {
	switch tt := t.(type) {
	case types.ClassType:
		return l.ResolveClass(tt.ClassName)
	case types.ArrayType:
		return l.ResolveClass(types.ObjectType.ClassName)
	}
	return nil, false
}

func (l *Library) LookupField(owner types.Type, name string) (*runtime.Field, error) {
	class, ok := l.classOf(owner)
	if ok {
		if field := class.Field(name); field != nil {
			return field, nil
		}
	}
	return nil, &LookupError{Reason: ErrNotFound, Owner: types.DisplayName(owner), Member: name}
}

// methodsNamed collects visible methods called name, hiding overridden ones.
func methodsNamed(class *runtime.Class, name string) []*runtime.Method {
	var out []*runtime.Method
	for cur := class; cur != nil; cur = cur.Super {
		for _, method := range cur.Methods {
			if method.Name != name || overriddenBy(out, method) {
				continue
			}
			out = append(out, method)
		}
	}
	return out
}

func overriddenBy(seen []*runtime.Method, method *runtime.Method) bool {
	for _, existing := range seen {
		if sameParams(existing.Params, method.Params) {
			return true
		}
	}
	return false
}

func sameParams(a, b []types.Type) bool {
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

func (l *Library) LookupMethod(owner types.Type, name string, args []types.Type) (*runtime.Method, error) {
	class, ok := l.classOf(owner)
	if !ok {
		return nil, &LookupError{Reason: ErrNotFound, Owner: types.DisplayName(owner), Member: name, Args: args}
	}
	candidates := methodsNamed(class, name)
	signatures := make([][]types.Type, len(candidates))
	for idx, method := range candidates {
		signatures[idx] = method.Params
	}
	chosen, err := SelectOverload(signatures, args, l.IsAssignable)
	if err != nil {
		return nil, &LookupError{Reason: err, Owner: types.DisplayName(owner), Member: name, Args: args}
	}
	return candidates[chosen], nil
}

func (l *Library) LookupConstructor(owner types.Type, args []types.Type) (*runtime.Constructor, error) {
	class, ok := l.classOf(owner)
	if !ok {
		return nil, &LookupError{Reason: ErrNotFound, Owner: types.DisplayName(owner), Member: "<init>", Args: args}
	}
	if class.Abstract {
		return nil, &LookupError{Reason: ErrNotFound, Owner: class.SimpleName(), Member: "<init>", Args: args, Detail: "class is abstract"}
	}
	signatures := make([][]types.Type, len(class.Constructors))
	for idx, ctor := range class.Constructors {
		signatures[idx] = ctor.Params
	}
	chosen, err := SelectOverload(signatures, args, l.IsAssignable)
	if err != nil {
		return nil, &LookupError{Reason: err, Owner: class.SimpleName(), Member: "<init>", Args: args}
	}
	return class.Constructors[chosen], nil
}

// IsAssignable is the subtype relation for references and the widening
// relation for primitives. It never boxes.
func (l *Library) IsAssignable(from, to types.Type) bool {
	if from == nil || to == nil {
		return false
	}
	if types.Identical(from, to) {
		return true
	}
	if fp, ok := from.(types.PrimitiveType); ok {
		tp, ok := to.(types.PrimitiveType)
		return ok && fp.Kind != types.Void && tp.Kind != types.Void && types.IsWidening(fp.Kind, tp.Kind)
	}
	if types.IsPrimitive(to) {
		return false
	}
	if types.IsNull(from) {
		return true
	}
	if types.IsObject(to) {
		return true
	}
	switch ft := from.(type) {
	case types.ArrayType:
		tt, ok := to.(types.ArrayType)
		if !ok {
			return false
		}
		if types.IsPrimitive(ft.Element) || types.IsPrimitive(tt.Element) {
			return types.Identical(ft.Element, tt.Element)
		}
		return l.IsAssignable(ft.Element, tt.Element)
	case types.ClassType:
		tt, ok := to.(types.ClassType)
		if !ok {
			return false
		}
		fc, ok := l.ResolveClass(ft.ClassName)
		if !ok {
			return false
		}
		tc, ok := l.ResolveClass(tt.ClassName)
		return ok && fc.IsSubclassOf(tc)
	}
	return false
}

// dynamicClass is the class used for virtual dispatch on v.
func (l *Library) dynamicClass(v runtime.Value) *runtime.Class {
	switch val := v.(type) {
	case *runtime.ObjectValue:
		return val.Class
	case runtime.StringValue:
		return l.mustClass("java.lang.String")
	}
	return l.mustClass("java.lang.Object")
}

// Invoke calls method. Instance calls dispatch on the receiver's dynamic
// class; a null receiver raises NullPointerException.
func (l *Library) Invoke(ctx *runtime.NativeCallContext, method *runtime.Method, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if method == nil {
		return nil, fmt.Errorf("resolver: invoke of nil method")
	}
	if method.Static {
		return method.Impl(ctx, nil, args)
	}
	if receiver == nil || runtime.IsNull(receiver) {
		return nil, runtime.NewFault(runtime.NullPointerException, "Cannot invoke \"%s\" because value is null", method.Signature())
	}
	target := method
	for cur := l.dynamicClass(receiver); cur != nil && cur != method.Class; cur = cur.Super {
		if override := findDeclared(cur, method); override != nil {
			target = override
			break
		}
	}
	if target.Impl == nil {
		return nil, fmt.Errorf("resolver: %s has no implementation", target.Signature())
	}
	return target.Impl(ctx, receiver, args)
}

func findDeclared(class *runtime.Class, method *runtime.Method) *runtime.Method {
	for _, candidate := range class.Methods {
		if !candidate.Static && candidate.Name == method.Name && sameParams(candidate.Params, method.Params) {
			return candidate
		}
	}
	return nil
}

// Construct allocates an instance of ctor's class and runs the constructor.
// A constructor may return a replacement value (new String(...) yields a string).
func (l *Library) Construct(ctx *runtime.NativeCallContext, ctor *runtime.Constructor, args []runtime.Value) (runtime.Value, error) {
	if ctor == nil {
		return nil, fmt.Errorf("resolver: construct with nil constructor")
	}
	obj := runtime.NewObject(ctor.Class)
	if ctor.Impl == nil {
		return obj, nil
	}
	result, err := ctor.Impl(ctx, obj, args)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return obj, nil
}

// NewThrowable instantiates an exception class with the given message.
func (l *Library) NewThrowable(className, message string) (*runtime.ObjectValue, error) {
	class, ok := l.ResolveClass(className)
	if !ok {
		return nil, fmt.Errorf("resolver: unknown exception class %s", className)
	}
	if !class.IsSubclassOf(l.mustClass("java.lang.Throwable")) {
		return nil, fmt.Errorf("resolver: %s is not a Throwable", className)
	}
	obj := runtime.NewObject(class)
	if message != "" {
		obj.Fields["message"] = runtime.StringValue{Val: message}
	}
	return obj, nil
}

// Stringify implements String.valueOf, dispatching toString on objects.
func (l *Library) Stringify(ctx *runtime.NativeCallContext, v runtime.Value) (string, error) {
	if s, ok := runtime.FormatPrimitive(v); ok {
		return s, nil
	}
	method, err := l.LookupMethod(runtime.TypeOf(v), "toString", []types.Type{})
	if err != nil {
		return "", err
	}
	result, err := l.Invoke(ctx, method, v, nil)
	if err != nil {
		return "", err
	}
	if s, ok := result.(runtime.StringValue); ok {
		return s.Val, nil
	}
	return "null", nil
}

// IdentityHash returns a stable per-reference hash.
func (l *Library) IdentityHash(v runtime.Value) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hash, ok := l.identity[v]; ok {
		return hash
	}
	l.nextHash++
	hash := int32(uint32(l.nextHash) * 0x9E3779B1 >> 1)
	l.identity[v] = hash
	return hash
}

// descriptor renders a runtime type the way Class.getName does for arrays.
func descriptor(t types.Type) string {
	switch tt := t.(type) {
	case types.ArrayType:
		return "[" + elementDescriptor(tt.Element)
	default:
		return t.Name()
	}
}

func elementDescriptor(t types.Type) string {
	switch tt := t.(type) {
	case types.PrimitiveType:
		switch tt.Kind {
		case types.Boolean:
			return "Z"
		case types.Byte:
			return "B"
		case types.Short:
			return "S"
		case types.Char:
			return "C"
		case types.Int:
			return "I"
		case types.Long:
			return "J"
		case types.Float:
			return "F"
		case types.Double:
			return "D"
		}
	case types.ArrayType:
		return "[" + elementDescriptor(tt.Element)
	}
	return "L" + t.Name() + ";"
}
