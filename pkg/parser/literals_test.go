package parser

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"javelin/interpreter-go/pkg/types"
)

func TestParseIntegerText(t *testing.T) {
	cases := []struct {
		text    string
		negated bool
		value   int64
		kind    types.PrimitiveKind
	}{
		{"0", false, 0, types.Int},
		{"1_000", false, 1000, types.Int},
		{"2147483647", false, math.MaxInt32, types.Int},
		{"2147483648", true, math.MinInt32, types.Int},
		{"0xFFFFFFFF", false, -1, types.Int},
		{"0x7fff_ffff", false, math.MaxInt32, types.Int},
		{"0x10", true, -16, types.Int},
		{"017", false, 15, types.Int},
		{"0b101", false, 5, types.Int},
		{"10l", false, 10, types.Long},
		{"9223372036854775807L", false, math.MaxInt64, types.Long},
		{"9223372036854775808L", true, math.MinInt64, types.Long},
		{"0xFFFFFFFFFFFFFFFFL", false, -1, types.Long},
	}
	for _, tc := range cases {
		value, kind, err := parseIntegerText(tc.text, tc.negated)
		if err != nil {
			t.Fatalf("parseIntegerText(%q, %v): %v", tc.text, tc.negated, err)
		}
		if value != tc.value || kind != tc.kind {
			t.Fatalf("parseIntegerText(%q, %v) = %d (%v), want %d (%v)", tc.text, tc.negated, value, kind, tc.value, tc.kind)
		}
	}
}

func TestParseIntegerTextRejectsOutOfRange(t *testing.T) {
	for _, text := range []string{"2147483648", "0x1_0000_0000", "9223372036854775808L", "99999999999999999999L"} {
		if _, _, err := parseIntegerText(text, false); !errors.Is(err, errIntegerTooLarge) {
			t.Fatalf("parseIntegerText(%q): expected too-large error, got %v", text, err)
		}
	}
	if _, _, err := parseIntegerText("08", false); err == nil || errors.Is(err, errIntegerTooLarge) {
		t.Fatalf("expected malformed octal error, got %v", err)
	}
}

func TestParseFloatingText(t *testing.T) {
	cases := []struct {
		text  string
		value float64
		kind  types.PrimitiveKind
	}{
		{"1.5", 1.5, types.Double},
		{"1.5f", 1.5, types.Float},
		{"2d", 2, types.Double},
		{"1e3", 1000, types.Double},
		{"1_0.5", 10.5, types.Double},
		{"0x1p4", 16, types.Double},
		{"0x1.8p1f", 3, types.Float},
		{"0.1f", float64(float32(0.1)), types.Float},
	}
	for _, tc := range cases {
		value, kind, err := parseFloatingText(tc.text)
		if err != nil {
			t.Fatalf("parseFloatingText(%q): %v", tc.text, err)
		}
		if value != tc.value || kind != tc.kind {
			t.Fatalf("parseFloatingText(%q) = %v (%v), want %v (%v)", tc.text, value, kind, tc.value, tc.kind)
		}
	}
	if _, _, err := parseFloatingText("1e39f"); err == nil {
		t.Fatalf("expected float overflow to be rejected")
	}
}

func TestUnescape(t *testing.T) {
	cases := []struct {
		body string
		want []uint16
	}{
		{`a\tb`, []uint16{'a', '\t', 'b'}},
		{`A`, []uint16{'A'}},
		{`\uu0041`, []uint16{'A'}},
		{`\101`, []uint16{'A'}},
		{`\0`, []uint16{0}},
		{`\377`, []uint16{255}},
		{`\477`, []uint16{'\'', '7'}},
		{`\s\"\'\\`, []uint16{' ', '"', '\'', '\\'}},
		{"é", []uint16{0xE9}},
		{"😀", []uint16{0xD83D, 0xDE00}},
	}
	for _, tc := range cases {
		got, err := unescape(tc.body)
		if err != nil {
			t.Fatalf("unescape(%q): %v", tc.body, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("unescape(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
	for _, body := range []string{`\q`, `\u00G1`, `\u12`, `\`} {
		if _, err := unescape(body); err == nil {
			t.Fatalf("unescape(%q): expected error", body)
		}
	}
}
