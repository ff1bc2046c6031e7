package runtime

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// FormatPrimitive renders a primitive, string or null the way String.valueOf does.
// Objects and arrays need class dispatch and report false.
func FormatPrimitive(v Value) (string, bool) {
	switch val := v.(type) {
	case BoolValue:
		return strconv.FormatBool(val.Val), true
	case ByteValue:
		return strconv.FormatInt(int64(val.Val), 10), true
	case ShortValue:
		return strconv.FormatInt(int64(val.Val), 10), true
	case CharValue:
		return CharString(val.Val), true
	case IntValue:
		return strconv.FormatInt(int64(val.Val), 10), true
	case LongValue:
		return strconv.FormatInt(val.Val, 10), true
	case FloatValue:
		return FormatFloating(float64(val.Val), 32), true
	case DoubleValue:
		return FormatFloating(val.Val, 64), true
	case StringValue:
		return val.Val, true
	case NullValue:
		return "null", true
	}
	return "", false
}

// CharString decodes a single UTF-16 unit; lone surrogates become U+FFFD.
func CharString(c uint16) string {
	return string(utf16.Decode([]uint16{c}))
}

// UTF16 returns the code units of s.
func UTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// FromUTF16 is the inverse of UTF16.
func FromUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// FormatFloating renders f with the shortest digits that round-trip at the
// given bit size: plain decimal for magnitudes in [1e-3, 1e7), otherwise
// scientific notation with an E exponent.
func FormatFloating(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	sci := strconv.FormatFloat(f, 'e', -1, bits)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mantissa, ".", "", 1)

	if f >= 1e-3 && f < 1e7 {
		if exp < 0 {
			return sign + "0." + strings.Repeat("0", -exp-1) + digits
		}
		if len(digits) <= exp+1 {
			return sign + digits + strings.Repeat("0", exp+1-len(digits)) + ".0"
		}
		return sign + digits[:exp+1] + "." + digits[exp+1:]
	}
	frac := digits[1:]
	if frac == "" {
		frac = "0"
	}
	return sign + digits[:1] + "." + frac + "E" + strconv.Itoa(exp)
}
