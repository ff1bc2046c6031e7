package runtime

import "javelin/interpreter-go/pkg/types"

// Class describes a reference type known to the resolver.
type Class struct {
	Name         string
	Super        *Class
	Abstract     bool
	Fields       []*Field
	Methods      []*Method
	Constructors []*Constructor
}

// Type returns the static type naming this class.
func (c *Class) Type() types.ClassType {
	return types.ClassType{ClassName: c.Name}
}

// SimpleName drops the package prefix.
func (c *Class) SimpleName() string {
	for idx := len(c.Name) - 1; idx >= 0; idx-- {
		if c.Name[idx] == '.' {
			return c.Name[idx+1:]
		}
	}
	return c.Name
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// Field finds a field declared on c or a superclass.
func (c *Class) Field(name string) *Field {
	for cur := c; cur != nil; cur = cur.Super {
		for _, field := range cur.Fields {
			if field.Name == name {
				return field
			}
		}
	}
	return nil
}

func (c *Class) AddField(field *Field) *Field {
	field.Class = c
	c.Fields = append(c.Fields, field)
	return field
}

func (c *Class) AddMethod(method *Method) *Method {
	method.Class = c
	c.Methods = append(c.Methods, method)
	return method
}

func (c *Class) AddConstructor(ctor *Constructor) *Constructor {
	ctor.Class = c
	c.Constructors = append(c.Constructors, ctor)
	return ctor
}

// Field is a static or instance field. Static fields keep their storage in
// Value; Constant is set for static finals that fold at check time.
type Field struct {
	Class    *Class
	Name     string
	Type     types.Type
	Static   bool
	Final    bool
	Constant Value
	Value    Value
}

// Method is a resolved method handle.
type Method struct {
	Class  *Class
	Name   string
	Params []types.Type
	Return types.Type
	Static bool
	Impl   NativeFunc
}

// Signature renders the handle for diagnostics, e.g. "String.charAt(int)".
func (m *Method) Signature() string {
	owner := ""
	if m.Class != nil {
		owner = m.Class.SimpleName() + "."
	}
	return owner + m.Name + "(" + paramList(m.Params) + ")"
}

// Constructor is a resolved constructor handle.
type Constructor struct {
	Class  *Class
	Params []types.Type
	Impl   NativeFunc
}

func (c *Constructor) Signature() string {
	return c.Class.SimpleName() + "(" + paramList(c.Params) + ")"
}

func paramList(params []types.Type) string {
	out := ""
	for idx, param := range params {
		if idx > 0 {
			out += ", "
		}
		out += types.DisplayName(param)
	}
	return out
}
