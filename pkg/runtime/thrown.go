package runtime

import "sync"

// Thrown carries a guest exception object up through Go error returns.
type Thrown struct {
	Value *ObjectValue
}

func (t *Thrown) Error() string {
	if t.Value == nil || t.Value.Class == nil {
		return "exception"
	}
	if msg, ok := ExceptionMessage(t.Value); ok {
		return t.Value.Class.Name + ": " + msg
	}
	return t.Value.Class.Name
}

// ClassName returns the dynamic class of the thrown object.
func (t *Thrown) ClassName() string {
	if t.Value == nil || t.Value.Class == nil {
		return ""
	}
	return t.Value.Class.Name
}

// ExceptionMessage reads the message field of a Throwable instance.
func ExceptionMessage(obj *ObjectValue) (string, bool) {
	if obj == nil {
		return "", false
	}
	if s, ok := obj.Fields["message"].(StringValue); ok {
		return s.Val, true
	}
	return "", false
}

type monitor struct {
	lock  sync.Mutex
	owner any
	depth int
	// users counts the holder and every caller blocked in Enter; the entry
	// is dropped when it reaches zero.
	users int
}

// Monitors maps lock identities to host mutexes. A monitor is reentrant for
// the owner that holds it, and exists only while it is held or awaited.
type Monitors struct {
	mu      sync.Mutex
	entries map[Value]*monitor
}

func NewMonitors() *Monitors {
	return &Monitors{entries: make(map[Value]*monitor)}
}

// Enter acquires the monitor for key on behalf of owner.
func (m *Monitors) Enter(key Value, owner any) {
	m.mu.Lock()
	mon, ok := m.entries[key]
	if !ok {
		mon = &monitor{}
		m.entries[key] = mon
	}
	if mon.depth > 0 && mon.owner == owner {
		mon.depth++
		m.mu.Unlock()
		return
	}
	mon.users++
	m.mu.Unlock()

	mon.lock.Lock()
	m.mu.Lock()
	mon.owner = owner
	mon.depth = 1
	m.mu.Unlock()
}

// Exit releases one acquisition of key by owner.
func (m *Monitors) Exit(key Value, owner any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mon, ok := m.entries[key]
	if !ok || mon.owner != owner || mon.depth == 0 {
		return
	}
	mon.depth--
	if mon.depth > 0 {
		return
	}
	mon.owner = nil
	mon.users--
	if mon.users == 0 {
		delete(m.entries, key)
	}
	mon.lock.Unlock()
}

// Held reports whether key is currently locked.
func (m *Monitors) Held(key Value) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	mon, ok := m.entries[key]
	return ok && mon.depth > 0
}
