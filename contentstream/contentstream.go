// Package contentstream models page content streams as a list of operations
// and serialises them to PDF syntax.
package contentstream

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/wudi/tourreport/coords"
)

// Operand is a value preceding an operator.
type Operand interface {
	Type() string
	appendTo(dst []byte) []byte
}

// Number is a numeric operand. It is written in fixed-point notation since
// PDF has no exponent syntax.
type Number float64

// Name is a name operand written as /Name.
type Name string

// String is a literal string operand holding already-encoded bytes.
type String []byte

func (Number) Type() string { return "number" }
func (Name) Type() string   { return "name" }
func (String) Type() string { return "string" }

func (n Number) appendTo(dst []byte) []byte { return append(dst, FormatNumber(float64(n))...) }
func (n Name) appendTo(dst []byte) []byte   { return append(append(dst, '/'), n...) }
func (s String) appendTo(dst []byte) []byte { return append(dst, EscapeString(s)...) }

// Operation is one operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// ErrUnbalanced is returned when q and Q operators do not pair up.
var ErrUnbalanced = errors.New("unbalanced graphics state")

// Stream accumulates operations for one page.
type Stream struct {
	ops   []Operation
	depth int
}

// Op appends a raw operation.
func (s *Stream) Op(operator string, operands ...Operand) *Stream {
	s.ops = append(s.ops, Operation{Operator: operator, Operands: operands})
	return s
}

// Operations returns the recorded operations in order.
func (s *Stream) Operations() []Operation { return s.ops }

// Len reports the number of operations.
func (s *Stream) Len() int { return len(s.ops) }

// Save pushes the graphics state.
func (s *Stream) Save() *Stream {
	s.depth++
	return s.Op("q")
}

// Restore pops the graphics state.
func (s *Stream) Restore() *Stream {
	s.depth--
	return s.Op("Q")
}

// Text draws one line of encoded text with its baseline at (x, y).
func (s *Stream) Text(font string, size, x, y float64, encoded []byte) *Stream {
	s.Op("BT")
	s.Op("Tf", Name(font), Number(size))
	s.Op("Td", Number(x), Number(y))
	s.Op("Tj", String(encoded))
	return s.Op("ET")
}

// FillGray sets the non-stroking gray level.
func (s *Stream) FillGray(g float64) *Stream { return s.Op("g", Number(g)) }

// StrokeGray sets the stroking gray level.
func (s *Stream) StrokeGray(g float64) *Stream { return s.Op("G", Number(g)) }

// LineWidth sets the stroke width.
func (s *Stream) LineWidth(w float64) *Stream { return s.Op("w", Number(w)) }

// FillRect fills the rectangle with the current fill color.
func (s *Stream) FillRect(x, y, w, h float64) *Stream {
	s.Op("re", Number(x), Number(y), Number(w), Number(h))
	return s.Op("f")
}

// Line strokes a straight segment.
func (s *Stream) Line(x1, y1, x2, y2 float64) *Stream {
	s.Op("m", Number(x1), Number(y1))
	s.Op("l", Number(x2), Number(y2))
	return s.Op("S")
}

// Image paints the XObject name scaled to w×h with its lower-left corner at (x, y).
func (s *Stream) Image(name string, x, y, w, h float64) *Stream {
	s.Save()
	s.Transform(coords.Place(x, y, w, h))
	s.Op("Do", Name(name))
	return s.Restore()
}

// Transform concatenates m to the current transformation matrix.
func (s *Stream) Transform(m coords.Matrix) *Stream {
	return s.Op("cm", Number(m[0]), Number(m[1]), Number(m[2]), Number(m[3]), Number(m[4]), Number(m[5]))
}

// Validate checks that every q has a matching Q.
func (s *Stream) Validate() error {
	depth := 0
	for _, op := range s.ops {
		switch op.Operator {
		case "q":
			depth++
		case "Q":
			depth--
		}
		if depth < 0 {
			return ErrUnbalanced
		}
	}
	if depth != 0 || s.depth != 0 {
		return ErrUnbalanced
	}
	return nil
}

// Bytes serialises the stream, one operation per line.
func (s *Stream) Bytes() []byte {
	var buf []byte
	for _, op := range s.ops {
		for _, o := range op.Operands {
			buf = o.appendTo(buf)
			buf = append(buf, ' ')
		}
		buf = append(buf, op.Operator...)
		buf = append(buf, '\n')
	}
	return buf
}

// FormatNumber writes v with at most four decimals and no trailing zeros.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = trimZeros(s)
	if s == "-0" {
		return "0"
	}
	return s
}

func trimZeros(s string) string {
	dot := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1 && s[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		end = dot
	}
	return s[:end]
}

// EscapeString renders raw bytes as a PDF literal string, escaping the
// delimiters and writing non-printable bytes as octal escapes.
func EscapeString(raw []byte) []byte {
	var b bytes.Buffer
	b.Grow(len(raw) + 2)
	b.WriteByte('(')
	for _, ch := range raw {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if ch < 0x20 || ch >= 0x80 {
				b.WriteByte('\\')
				b.WriteByte('0' + ch>>6)
				b.WriteByte('0' + (ch>>3)&7)
				b.WriteByte('0' + ch&7)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}
