package resolver

import (
	"fmt"
	"strings"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

type FieldSpec struct {
	Name  string
	Type  types.Type
	Final bool
}

// ClassSpec declares a library class outside java.lang. A class extending
// Throwable becomes an exception class with the standard constructors; any
// other class is a data class whose single constructor takes every field,
// inherited ones first.
type ClassSpec struct {
	Name    string
	Extends string
	Fields  []FieldSpec
}

// ParseTypeName resolves a written type such as "int", "String" or "Point[][]".
func (l *Library) ParseTypeName(name string) (types.Type, error) {
	base := strings.TrimSpace(name)
	dims := 0
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSpace(strings.TrimSuffix(base, "[]"))
		dims++
	}
	if base == "" {
		return nil, fmt.Errorf("resolver: empty type name %q", name)
	}
	if prim, ok := types.PrimitiveByName(base); ok {
		if prim.Kind == types.Void && dims > 0 {
			return nil, fmt.Errorf("resolver: invalid type %q", name)
		}
		return types.Dimensions(prim, dims), nil
	}
	class, ok := l.ResolveClass(base)
	if !ok {
		return nil, fmt.Errorf("resolver: unknown class %q", base)
	}
	return types.Dimensions(class.Type(), dims), nil
}

// DeclareClass adds a class described by spec.
func (l *Library) DeclareClass(spec ClassSpec) (*runtime.Class, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("resolver: class name is required")
	}
	if _, exists := l.classes[spec.Name]; exists {
		return nil, fmt.Errorf("resolver: class %s is already defined", spec.Name)
	}
	superName := spec.Extends
	if superName == "" {
		superName = types.ObjectType.ClassName
	}
	super, ok := l.ResolveClass(superName)
	if !ok {
		return nil, fmt.Errorf("resolver: %s extends unknown class %s", spec.Name, superName)
	}
	seen := make(map[string]struct{}, len(spec.Fields))
	for _, field := range spec.Fields {
		if field.Name == "" || field.Type == nil {
			return nil, fmt.Errorf("resolver: %s has a field without name or type", spec.Name)
		}
		if types.IsVoid(field.Type) {
			return nil, fmt.Errorf("resolver: field %s.%s cannot be void", spec.Name, field.Name)
		}
		if _, dup := seen[field.Name]; dup || super.Field(field.Name) != nil {
			return nil, fmt.Errorf("resolver: field %s.%s is already defined", spec.Name, field.Name)
		}
		seen[field.Name] = struct{}{}
	}

	class := l.newClass(spec.Name, super)
	for _, field := range spec.Fields {
		class.AddField(&runtime.Field{Name: field.Name, Type: field.Type, Final: field.Final})
	}
	if class.IsSubclassOf(l.mustClass("java.lang.Throwable")) {
		installThrowableConstructors(class)
		return class, nil
	}
	l.installDataMembers(class)
	return class, nil
}

func instanceFields(class *runtime.Class) []*runtime.Field {
	var chain []*runtime.Class
	for cur := class; cur != nil; cur = cur.Super {
		chain = append([]*runtime.Class{cur}, chain...)
	}
	var out []*runtime.Field
	for _, c := range chain {
		for _, field := range c.Fields {
			if !field.Static {
				out = append(out, field)
			}
		}
	}
	return out
}

func (l *Library) installDataMembers(class *runtime.Class) {
	fields := instanceFields(class)
	ctorParams := make([]types.Type, len(fields))
	for idx, field := range fields {
		ctorParams[idx] = field.Type
	}
	ctor(class, ctorParams, func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj := recv.(*runtime.ObjectValue)
		for idx, field := range fields {
			obj.Fields[field.Name] = args[idx]
		}
		return nil, nil
	})
	instance(class, "toString", types.StringType, params(), func(ctx *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		obj := recv.(*runtime.ObjectValue)
		parts := make([]string, len(fields))
		for idx, field := range fields {
			text, err := l.Stringify(ctx, obj.Fields[field.Name])
			if err != nil {
				return nil, err
			}
			parts[idx] = field.Name + "=" + text
		}
		return str(class.SimpleName() + "[" + strings.Join(parts, ", ") + "]"), nil
	})
	instance(class, "equals", types.BooleanType, params(types.ObjectType), func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		self := recv.(*runtime.ObjectValue)
		other, ok := args[0].(*runtime.ObjectValue)
		if !ok || other.Class != self.Class {
			return boolean(false), nil
		}
		for _, field := range fields {
			same, err := l.Equals(ctx, self.Fields[field.Name], other.Fields[field.Name])
			if err != nil || !same {
				return boolean(false), err
			}
		}
		return boolean(true), nil
	})
	instance(class, "hashCode", types.IntType, params(), func(ctx *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		obj := recv.(*runtime.ObjectValue)
		var h int32
		for _, field := range fields {
			fh, err := l.HashCode(ctx, obj.Fields[field.Name])
			if err != nil {
				return nil, err
			}
			h = 31*h + fh
		}
		return integer(h), nil
	})
}

// Equals compares two values the way Objects.equals does.
func (l *Library) Equals(ctx *runtime.NativeCallContext, a, b runtime.Value) (bool, error) {
	if runtime.IsPrimitive(a) || runtime.IsPrimitive(b) {
		return boxedEquals(a, b), nil
	}
	if runtime.IsNull(a) {
		return runtime.IsNull(b), nil
	}
	method, err := l.LookupMethod(runtime.TypeOf(a), "equals", []types.Type{types.ObjectType})
	if err != nil {
		return false, err
	}
	result, err := l.Invoke(ctx, method, a, []runtime.Value{b})
	if err != nil {
		return false, err
	}
	return runtime.AsBool(result), nil
}

// HashCode computes Objects.hashCode, boxing primitives first.
func (l *Library) HashCode(ctx *runtime.NativeCallContext, v runtime.Value) (int32, error) {
	if runtime.IsPrimitive(v) {
		return boxedHash(v), nil
	}
	if runtime.IsNull(v) {
		return 0, nil
	}
	method, err := l.LookupMethod(runtime.TypeOf(v), "hashCode", []types.Type{})
	if err != nil {
		return 0, err
	}
	result, err := l.Invoke(ctx, method, v, nil)
	if err != nil {
		return 0, err
	}
	return asInt(result), nil
}
