package runtime

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestFormatFloating(t *testing.T) {
	cases := []struct {
		in   float64
		bits int
		want string
	}{
		{1, 64, "1.0"},
		{0.5, 64, "0.5"},
		{100, 64, "100.0"},
		{1234567, 64, "1234567.0"},
		{1e7, 64, "1.0E7"},
		{1.5e10, 64, "1.5E10"},
		{0.001, 64, "0.001"},
		{0.0001, 64, "1.0E-4"},
		{-2.25, 64, "-2.25"},
		{0.1 + 0.2, 64, "0.30000000000000004"},
		{float64(float32(0.1)), 32, "0.1"},
		{math.Inf(-1), 64, "-Infinity"},
		{math.Copysign(0, -1), 64, "-0.0"},
	}
	for _, tc := range cases {
		if got := FormatFloating(tc.in, tc.bits); got != tc.want {
			t.Fatalf("FormatFloating(%v, %d): expected %q, got %q", tc.in, tc.bits, tc.want, got)
		}
	}
}

func TestFormatPrimitive(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{BoolValue{Val: true}, "true"},
		{CharValue{Val: 'x'}, "x"},
		{LongValue{Val: -42}, "-42"},
		{FloatValue{Val: 2.5}, "2.5"},
		{NullValue{}, "null"},
		{StringValue{Val: "hi"}, "hi"},
	}
	for _, tc := range cases {
		got, ok := FormatPrimitive(tc.in)
		if !ok || got != tc.want {
			t.Fatalf("FormatPrimitive(%#v): expected %q, got %q (%v)", tc.in, tc.want, got, ok)
		}
	}
	if _, ok := FormatPrimitive(&ArrayValue{}); ok {
		t.Fatalf("expected arrays to need class dispatch")
	}
}

func TestMonitorsAreReentrantForOwner(t *testing.T) {
	monitors := NewMonitors()
	key := &ObjectValue{}
	owner := struct{ id int }{1}
	monitors.Enter(key, owner)
	monitors.Enter(key, owner)
	monitors.Exit(key, owner)
	if !monitors.Held(key) {
		t.Fatalf("expected monitor to stay held after inner exit")
	}
	monitors.Exit(key, owner)
	if monitors.Held(key) {
		t.Fatalf("expected monitor to be released")
	}
}

func TestMonitorsDropReleasedEntries(t *testing.T) {
	monitors := NewMonitors()
	key := &ObjectValue{}
	first, second := struct{ id int }{1}, struct{ id int }{2}

	monitors.Enter(key, first)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitors.Enter(key, second)
		monitors.Exit(key, second)
	}()
	for waiting := false; !waiting; {
		monitors.mu.Lock()
		waiting = monitors.entries[key].users == 2
		monitors.mu.Unlock()
		time.Sleep(time.Millisecond)
	}

	monitors.Exit(key, first)
	wg.Wait()
	if monitors.Held(key) {
		t.Fatalf("expected monitor to be released")
	}
	if n := len(monitors.entries); n != 0 {
		t.Fatalf("expected released monitors to be dropped, %d left", n)
	}

	for i := 0; i < 100; i++ {
		obj := &ObjectValue{}
		monitors.Enter(obj, first)
		monitors.Exit(obj, first)
	}
	if n := len(monitors.entries); n != 0 {
		t.Fatalf("expected no monitors retained, %d left", n)
	}
}
