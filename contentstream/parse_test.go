package contentstream

import (
	"fmt"
	"strconv"
)

// parse reads back a stream produced by Stream.Bytes. It understands the
// operand kinds this package writes: numbers, names and literal strings.
func parse(data []byte) ([]Operation, error) {
	var ops []Operation
	var operands []Operand
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			s, n, err := readLiteral(data[i:])
			if err != nil {
				return nil, err
			}
			operands = append(operands, String(s))
			i += n
		case c == '/':
			j := i + 1
			for j < len(data) && !isSpace(data[j]) && !isDelim(data[j]) {
				j++
			}
			operands = append(operands, Name(data[i+1:j]))
			i = j
		default:
			j := i
			for j < len(data) && !isSpace(data[j]) && !isDelim(data[j]) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("unexpected byte %q at %d", c, i)
			}
			tok := string(data[i:j])
			if f, err := strconv.ParseFloat(tok, 64); err == nil {
				operands = append(operands, Number(f))
			} else {
				ops = append(ops, Operation{Operator: tok, Operands: operands})
				operands = nil
			}
			i = j
		}
	}
	if len(operands) > 0 {
		return nil, fmt.Errorf("dangling operands: %d", len(operands))
	}
	return ops, nil
}

func readLiteral(data []byte) ([]byte, int, error) {
	var out []byte
	depth := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch c {
		case '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1, nil
			}
			out = append(out, c)
		case '\\':
			i++
			if i >= len(data) {
				return nil, 0, fmt.Errorf("truncated escape")
			}
			switch e := data[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			default:
				if e >= '0' && e <= '7' {
					v := 0
					k := 0
					for ; k < 3 && i+k < len(data) && data[i+k] >= '0' && data[i+k] <= '7'; k++ {
						v = v*8 + int(data[i+k]-'0')
					}
					out = append(out, byte(v))
					i += k - 1
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return nil, 0, fmt.Errorf("unterminated string")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
