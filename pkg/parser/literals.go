package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

var errIntegerTooLarge = errors.New("integer number too large")

// parseIntegerText decodes an integer literal in any radix. negated is set
// when the literal is the operand of unary minus, the only position where
// 2147483648 and 9223372036854775808 are legal.
func parseIntegerText(text string, negated bool) (int64, types.PrimitiveKind, error) {
	digits := strings.ReplaceAll(text, "_", "")
	kind := types.Int
	if strings.HasSuffix(digits, "l") || strings.HasSuffix(digits, "L") {
		kind = types.Long
		digits = digits[:len(digits)-1]
	}
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	raw, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, kind, errIntegerTooLarge
		}
		return 0, kind, fmt.Errorf("malformed integer literal %q", text)
	}

	if base == 10 {
		limit := uint64(math.MaxInt32)
		if kind == types.Long {
			limit = math.MaxInt64
		}
		if raw > limit+1 || raw == limit+1 && !negated {
			return 0, kind, errIntegerTooLarge
		}
		value := int64(raw)
		if raw == math.MaxInt64+1 {
			value = math.MinInt64
		} else if negated {
			value = -value
		}
		return value, kind, nil
	}

	// Other radixes spell the two's-complement bit pattern directly.
	var value int64
	if kind == types.Int {
		if raw > math.MaxUint32 {
			return 0, kind, errIntegerTooLarge
		}
		value = int64(int32(uint32(raw)))
	} else {
		value = int64(raw)
	}
	if negated {
		value = -value
		if kind == types.Int {
			value = int64(int32(value))
		}
	}
	return value, kind, nil
}

func parseFloatingText(text string) (float64, types.PrimitiveKind, error) {
	digits := strings.ReplaceAll(text, "_", "")
	kind := types.Double
	switch digits[len(digits)-1] {
	case 'f', 'F':
		kind = types.Float
		digits = digits[:len(digits)-1]
	case 'd', 'D':
		if !strings.HasPrefix(digits, "0x") && !strings.HasPrefix(digits, "0X") || strings.ContainsAny(digits, "pP") {
			digits = digits[:len(digits)-1]
		}
	}
	bits := 64
	if kind == types.Float {
		bits = 32
	}
	value, err := strconv.ParseFloat(digits, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(value, 0) {
			return 0, kind, fmt.Errorf("floating-point number too large")
		}
		if !errors.Is(err, strconv.ErrRange) {
			return 0, kind, fmt.Errorf("malformed floating-point literal %q", text)
		}
	}
	return value, kind, nil
}

// unescape decodes the body of a char or string literal into UTF-16 units.
func unescape(body string) ([]uint16, error) {
	units := make([]uint16, 0, len(body))
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			r, size := utf8.DecodeRuneInString(body[i:])
			units = utf16.AppendRune(units, r)
			i += size
			continue
		}
		if i+1 >= len(body) {
			return nil, fmt.Errorf("illegal escape character")
		}
		i++
		switch c := body[i]; c {
		case 'b':
			units = append(units, '\b')
		case 't':
			units = append(units, '\t')
		case 'n':
			units = append(units, '\n')
		case 'f':
			units = append(units, '\f')
		case 'r':
			units = append(units, '\r')
		case 's':
			units = append(units, ' ')
		case '"', '\'', '\\':
			units = append(units, uint16(c))
		case 'u':
			for i < len(body) && body[i] == 'u' {
				i++
			}
			if i+4 > len(body) {
				return nil, fmt.Errorf("illegal unicode escape")
			}
			code, err := strconv.ParseUint(body[i:i+4], 16, 16)
			if err != nil {
				return nil, fmt.Errorf("illegal unicode escape")
			}
			units = append(units, uint16(code))
			i += 4
			continue
		default:
			if c < '0' || c > '7' {
				return nil, fmt.Errorf("illegal escape character '%c'", c)
			}
			limit := 2
			if c <= '3' {
				limit = 3
			}
			end := i
			for end < len(body) && end-i < limit && body[end] >= '0' && body[end] <= '7' {
				end++
			}
			code, _ := strconv.ParseUint(body[i:end], 8, 16)
			units = append(units, uint16(code))
			i = end
			continue
		}
		i++
	}
	return units, nil
}

func (ctx *parseContext) parseLiteral(node *sitter.Node) (ast.Expression, error) {
	text := ctx.text(node)
	switch node.Kind() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		value, kind, err := parseIntegerText(text, false)
		if err != nil {
			return nil, errorAt(node, "%v", err)
		}
		return annotateExpression(ast.NewIntegerLiteral(value, kind), node), nil
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		value, kind, err := parseFloatingText(text)
		if err != nil {
			return nil, errorAt(node, "%v", err)
		}
		return annotateExpression(ast.NewFloatingLiteral(value, kind), node), nil
	case "true", "false":
		return annotateExpression(ast.NewBooleanLiteral(node.Kind() == "true"), node), nil
	case "null_literal":
		return annotateExpression(ast.NewNullLiteral(), node), nil
	case "character_literal":
		if len(text) < 2 {
			return nil, errorAt(node, "malformed character literal")
		}
		units, err := unescape(text[1 : len(text)-1])
		if err != nil {
			return nil, errorAt(node, "%v", err)
		}
		if len(units) != 1 {
			return nil, errorAt(node, "unclosed character literal")
		}
		return annotateExpression(ast.NewCharLiteral(units[0]), node), nil
	case "string_literal":
		if strings.HasPrefix(text, `"""`) {
			return nil, unsupported(node, "text block")
		}
		if len(text) < 2 {
			return nil, errorAt(node, "malformed string literal")
		}
		units, err := unescape(text[1 : len(text)-1])
		if err != nil {
			return nil, errorAt(node, "%v", err)
		}
		return annotateExpression(ast.NewStringLiteral(runtime.FromUTF16(units)), node), nil
	}
	return nil, errorAt(node, "unsupported literal %q", node.Kind())
}

// parseNegatedInteger folds -N for a decimal literal N so the minimum int
// and long values can be written.
func (ctx *parseContext) parseNegatedInteger(unary, literal *sitter.Node) (ast.Expression, error) {
	value, kind, err := parseIntegerText(ctx.text(literal), true)
	if err != nil {
		return nil, errorAt(literal, "%v", err)
	}
	return annotateExpression(ast.NewIntegerLiteral(value, kind), unary), nil
}
