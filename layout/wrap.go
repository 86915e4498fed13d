package layout

import (
	"strings"
	"unicode"

	"github.com/go-text/typesetting/segmenter"

	"github.com/wudi/tourreport/fonts"
)

// maxWrapIterations bounds the work spent on a single block of text. Input
// beyond it is cut and marked with an ellipsis.
const maxWrapIterations = 200_000

// wrap breaks text greedily at Unicode line break opportunities so that no
// line is wider than width. Words wider than width are split between runes,
// keeping at least one rune per line. The result has at least one line.
func wrap(text string, font *fonts.Font, size, width float64) []string {
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}
	w := &wrapper{font: font, size: size, width: width}

	var seg segmenter.Segmenter
	seg.Init([]rune(text))
	it := seg.LineIterator()
	for it.Next() {
		line := it.Line()
		if !w.push(line.Text) {
			break
		}
	}
	w.flush(false)
	if len(w.lines) == 0 {
		return []string{""}
	}
	return w.lines
}

type wrapper struct {
	font  *fonts.Font
	size  float64
	width float64

	lines      []string
	cur        []rune
	curW       float64
	iterations int
}

// push adds one break segment. It returns false once the iteration cap is hit.
func (w *wrapper) push(segment []rune) bool {
	hard := endsWithNewline(segment)
	segment = trimNewlines(segment)

	visible := strings.TrimRightFunc(string(segment), unicode.IsSpace)
	sw := w.measure(visible)
	switch {
	case w.curW+sw <= w.width+epsilon:
		w.append(segment)
	case sw <= w.width+epsilon:
		w.flush(false)
		w.append(segment)
	default:
		w.flush(false)
		for _, r := range segment {
			if !w.step() {
				return false
			}
			rw := w.measure(string(r))
			if len(w.cur) > 0 && w.curW+rw > w.width+epsilon {
				w.flush(false)
				if unicode.IsSpace(r) {
					continue
				}
			}
			w.cur = append(w.cur, r)
			w.curW += rw
		}
	}
	if hard {
		w.flush(true)
	}
	return w.step()
}

func (w *wrapper) step() bool {
	w.iterations++
	if w.iterations <= maxWrapIterations {
		return true
	}
	w.cur = append(w.cur, '…')
	return false
}

func (w *wrapper) append(segment []rune) {
	if len(w.cur) == 0 {
		segment = []rune(strings.TrimLeftFunc(string(segment), unicode.IsSpace))
	}
	w.cur = append(w.cur, segment...)
	w.curW += w.measure(string(segment))
}

// flush ends the current line. Empty lines are kept only for hard breaks.
func (w *wrapper) flush(keepEmpty bool) {
	line := strings.TrimRightFunc(string(w.cur), unicode.IsSpace)
	if line != "" || keepEmpty {
		w.lines = append(w.lines, line)
	}
	w.cur = w.cur[:0]
	w.curW = 0
}

func (w *wrapper) measure(s string) float64 {
	return w.font.Width(s, w.size)
}

func endsWithNewline(rs []rune) bool {
	if len(rs) == 0 {
		return false
	}
	switch rs[len(rs)-1] {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func trimNewlines(rs []rune) []rune {
	for len(rs) > 0 && endsWithNewline(rs) {
		rs = rs[:len(rs)-1]
	}
	return rs
}
