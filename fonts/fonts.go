package fonts

import (
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Placeholder replaces runes the WinAnsi encoding cannot represent.
const Placeholder = '?'

// Encoding is the /Encoding name declared on every font the writer emits.
const Encoding = "WinAnsiEncoding"

// Font is a standard-14 Type1 font: no embedded program, metrics in 1/1000 em.
type Font struct {
	// Resource is the name used in content streams, e.g. F1.
	Resource string
	BaseFont string
	widths   [256]uint16
}

// Regular and Bold are the two faces used by reports.
var (
	Regular = newFont("F1", "Helvetica", helveticaWidths)
	Bold    = newFont("F2", "Helvetica-Bold", helveticaBoldWidths)
)

// All lists the faces in resource order.
func All() []*Font { return []*Font{Regular, Bold} }

func newFont(resource, base string, table fontTable) *Font {
	f := &Font{Resource: resource, BaseFont: base}
	for i := range f.widths {
		switch {
		case i < 32:
			f.widths[i] = table.control
		case i < 127:
			f.widths[i] = table.ascii[i-32]
		case i < 128:
			f.widths[i] = table.undefined
		default:
			f.widths[i] = table.high[i-128]
		}
	}
	return f
}

// Width returns the advance width of s at size points.
func (f *Font) Width(s string, size float64) float64 {
	return f.EncodedWidth(Encode(s), size)
}

// EncodedWidth is Width for text already passed through Encode.
func (f *Font) EncodedWidth(b []byte, size float64) float64 {
	sum := 0
	for _, c := range b {
		sum += int(f.widths[c])
	}
	return float64(sum) * size / 1000
}

// Encode converts UTF-8 text to WinAnsi (Windows-1252) bytes. Text is NFC
// normalised first so decomposed accents map onto precomposed glyphs.
// Control characters become spaces and unsupported runes become Placeholder.
func Encode(s string) []byte {
	if s == "" {
		return nil
	}
	s = norm.NFC.String(s)
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			out = append(out, ' ')
			continue
		}
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, Placeholder)
	}
	return out
}
