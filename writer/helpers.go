package writer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/wudi/tourreport/contentstream"
	"github.com/wudi/tourreport/fonts"
	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/raw"
	"github.com/wudi/tourreport/layout"
)

const (
	ruleWidth = 0.5
	ruleGray  = 0.6
)

func pdfVersion(cfg Config) string {
	if cfg.Version == "" {
		return string(PDF14)
	}
	return string(cfg.Version)
}

// pageContent draws every placed block of p followed by its footer.
func pageContent(p layout.Page, imageNames map[*images.DecodedImage]string) ([]byte, error) {
	var s contentstream.Stream
	for _, b := range p.Blocks {
		if len(b.Fills) > 0 {
			s.Save()
			for _, f := range b.Fills {
				s.FillGray(f.Gray).FillRect(f.X, f.Y, f.W, f.H)
			}
			s.Restore()
		}
		if b.Image != nil {
			s.Image(imageNames[b.Image], b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H)
		}
		if len(b.Rules) > 0 {
			s.Save()
			s.LineWidth(ruleWidth).StrokeGray(ruleGray)
			for _, r := range b.Rules {
				s.Line(r.X1, r.Y1, r.X2, r.Y2)
			}
			s.Restore()
		}
		for _, t := range b.Texts {
			drawText(&s, t)
		}
	}
	if p.Footer.Text != "" {
		drawText(&s, p.Footer)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

func drawText(s *contentstream.Stream, t layout.TextRun) {
	if t.Text == "" {
		return
	}
	font := fonts.Regular
	if t.Bold {
		font = fonts.Bold
	}
	s.Text(font.Resource, t.Size, t.X, t.Y, fonts.Encode(t.Text))
}

// textString encodes an Info dictionary string. ASCII stays literal; other
// text is written as UTF-16BE with a byte order mark.
func textString(s string) raw.StringObj {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return raw.Str([]byte(s))
	}
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2, 2+2*len(units))
	out[0], out[1] = 0xFE, 0xFF
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return raw.HexStr(out)
}

// pdfDate formats t as a PDF date string, e.g. D:20240101120000+02'00'.
func pdfDate(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "D:" + t.Format("20060102150405") + "Z"
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, offset%3600/60)
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + pdfNameLiteral(v.Value()))
	case raw.NumberObj:
		if v.IsInt {
			return []byte(fmt.Sprintf("%d", v.I))
		}
		return []byte(contentstream.FormatNumber(v.F))
	case raw.BoolObj:
		if v.V {
			return []byte("true")
		}
		return []byte("false")
	case raw.StringObj:
		if v.Hex {
			dst := make([]byte, hex.EncodedLen(len(v.Bytes)))
			hex.Encode(dst, v.Bytes)
			return []byte("<" + strings.ToUpper(string(dst)) + ">")
		}
		return contentstream.EscapeString(v.Bytes)
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		keys := make([]string, 0, len(v.KV))
		for k := range v.KV {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("/" + pdfNameLiteral(k) + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *raw.StreamObj:
		var b bytes.Buffer
		b.Write(serializePrimitive(v.Dict))
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(v.R.String())
	default:
		return []byte("null")
	}
}

func pdfNameLiteral(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' || ch == '.' {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "#%02X", ch)
	}
	return b.String()
}
