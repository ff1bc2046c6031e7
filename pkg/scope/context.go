package scope

import "fmt"

type ErrorKind int

const (
	Redefinition ErrorKind = iota
	UnboundName
	ImmutableBinding
	Uninitialized
)

func (k ErrorKind) String() string {
	switch k {
	case Redefinition:
		return "Redefinition"
	case UnboundName:
		return "UnboundName"
	case ImmutableBinding:
		return "ImmutableBinding"
	case Uninitialized:
		return "Uninitialized"
	default:
		return "Unknown"
	}
}

// Error reports a failed scope operation on Name.
type Error struct {
	Kind ErrorKind
	Name string
}

func (e *Error) Error() string {
	switch e.Kind {
	case Redefinition:
		return fmt.Sprintf("'%s' is already defined in this scope", e.Name)
	case UnboundName:
		return fmt.Sprintf("Undefined variable '%s'", e.Name)
	case ImmutableBinding:
		return fmt.Sprintf("cannot assign to constant '%s'", e.Name)
	case Uninitialized:
		return fmt.Sprintf("variable '%s' might not have been initialized", e.Name)
	default:
		return fmt.Sprintf("scope error on '%s'", e.Name)
	}
}

// IsKind reports whether err is a scope error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	serr, ok := err.(*Error)
	return ok && serr.Kind == kind
}

// Binding is one named slot. Callers may hold the pointer to read and write
// the slot later without repeating the lookup.
type Binding[T any] struct {
	Name     string
	Value    T
	Constant bool
	set      bool
}

// Initialized reports whether the binding has received a value.
func (b *Binding[T]) Initialized() bool { return b.set }

// Store writes v, enforcing that a constant binding is written at most once.
func (b *Binding[T]) Store(v T) error {
	if b.Constant && b.set {
		return &Error{Kind: ImmutableBinding, Name: b.Name}
	}
	b.Value = v
	b.set = true
	return nil
}

// Load reads the binding, failing if it was declared without a value.
func (b *Binding[T]) Load() (T, error) {
	if !b.set {
		var zero T
		return zero, &Error{Kind: Uninitialized, Name: b.Name}
	}
	return b.Value, nil
}

type frame[T any] struct {
	names    []string
	bindings map[string]*Binding[T]
}

func newFrame[T any]() *frame[T] {
	return &frame[T]{bindings: make(map[string]*Binding[T])}
}

// Context is a stack of lexical frames. The checker instantiates it with
// variable types and the evaluator with runtime values.
type Context[T any] struct {
	frames []*frame[T]
}

// New returns a context holding a single outermost frame.
func New[T any]() *Context[T] {
	return &Context[T]{frames: []*frame[T]{newFrame[T]()}}
}

func (c *Context[T]) current() *frame[T] {
	return c.frames[len(c.frames)-1]
}

// Depth returns the number of frames, the outermost included.
func (c *Context[T]) Depth() int {
	return len(c.frames)
}

// EnterScope pushes a new innermost frame.
func (c *Context[T]) EnterScope() {
	c.frames = append(c.frames, newFrame[T]())
}

// LeaveScope pops the innermost frame and returns the names it declared, in
// declaration order. The outermost frame is never popped.
func (c *Context[T]) LeaveScope() []string {
	if len(c.frames) <= 1 {
		return nil
	}
	top := c.current()
	c.frames[len(c.frames)-1] = nil
	c.frames = c.frames[:len(c.frames)-1]
	return top.names
}

// Unwind pops frames until Depth() == depth.
func (c *Context[T]) Unwind(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(c.frames) > depth {
		c.LeaveScope()
	}
}

// Scoped runs fn inside a fresh frame that is released on every exit path.
func (c *Context[T]) Scoped(fn func() error) (declared []string, err error) {
	c.EnterScope()
	depth := len(c.frames)
	defer func() {
		c.Unwind(depth)
		declared = c.LeaveScope()
	}()
	err = fn()
	return
}

func (c *Context[T]) bind(name string, binding *Binding[T]) error {
	top := c.current()
	if _, exists := top.bindings[name]; exists {
		return &Error{Kind: Redefinition, Name: name}
	}
	top.bindings[name] = binding
	top.names = append(top.names, name)
	return nil
}

// Define binds an initialized name in the innermost frame.
func (c *Context[T]) Define(name string, value T, constant bool) error {
	return c.bind(name, &Binding[T]{Name: name, Value: value, Constant: constant, set: true})
}

// Declare binds name in the innermost frame without a value; reading it
// fails with Uninitialized until the first Set.
func (c *Context[T]) Declare(name string, constant bool) error {
	return c.bind(name, &Binding[T]{Name: name, Constant: constant})
}

// DeclareTyped is Declare for callers that carry information in the slot
// before it is initialized (the checker keeps the declared type there).
func (c *Context[T]) DeclareTyped(name string, value T, constant bool) error {
	return c.bind(name, &Binding[T]{Name: name, Value: value, Constant: constant})
}

// Undefine removes name from the innermost frame, if present.
func (c *Context[T]) Undefine(name string) {
	top := c.current()
	if _, ok := top.bindings[name]; !ok {
		return
	}
	delete(top.bindings, name)
	for idx, existing := range top.names {
		if existing == name {
			top.names = append(top.names[:idx], top.names[idx+1:]...)
			break
		}
	}
}

// Lookup walks frames innermost to outermost.
func (c *Context[T]) Lookup(name string) (*Binding[T], bool) {
	for idx := len(c.frames) - 1; idx >= 0; idx-- {
		if binding, ok := c.frames[idx].bindings[name]; ok {
			return binding, true
		}
	}
	return nil, false
}

// Has reports whether name is visible from the innermost frame.
func (c *Context[T]) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// HasInCurrentScope reports whether name was declared in the innermost frame.
func (c *Context[T]) HasInCurrentScope(name string) bool {
	_, ok := c.current().bindings[name]
	return ok
}

// Get reads the value bound to name.
func (c *Context[T]) Get(name string) (T, error) {
	binding, ok := c.Lookup(name)
	if !ok {
		var zero T
		return zero, &Error{Kind: UnboundName, Name: name}
	}
	return binding.Load()
}

// Set writes value to the nearest binding of name.
func (c *Context[T]) Set(name string, value T) error {
	binding, ok := c.Lookup(name)
	if !ok {
		return &Error{Kind: UnboundName, Name: name}
	}
	return binding.Store(value)
}

// Names returns the names of the innermost frame in declaration order.
func (c *Context[T]) Names() []string {
	top := c.current()
	out := make([]string, len(top.names))
	copy(out, top.names)
	return out
}
