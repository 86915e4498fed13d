package layout

import (
	"strings"

	"github.com/samber/lo"

	"github.com/wudi/tourreport/fonts"
	"github.com/wudi/tourreport/ir/semantic"
	"github.com/wudi/tourreport/observability"
)

const headerGray = 0.9

// tableFlow places one table, emitting a PlacedBlock per page it touches.
type tableFlow struct {
	f      *flow
	t      *semantic.Table
	widths []float64
	header [][]string
	size   float64
	lh     float64

	chunk *PlacedBlock
	y0    float64
}

func (f *flow) newTableFlow(t *semantic.Table) *tableFlow {
	tf := &tableFlow{
		f:      f,
		t:      t,
		widths: columnWidths(t, f.e.contentWidth(), f.e.FontSize),
		size:   f.e.FontSize,
		lh:     f.e.lineHeight(f.e.FontSize),
	}
	tf.header = tf.wrapCells(t.Header, fonts.Bold)
	// The header may use at most half a page so rows always make progress.
	maxHeaderLines := int((f.e.contentHeight()/2 - 2*cellPadY) / tf.lh)
	for i := range tf.header {
		if len(tf.header[i]) > maxHeaderLines {
			tf.header[i] = tf.header[i][:max(maxHeaderLines, 1)]
		}
	}
	return tf
}

func (f *flow) placeTable(t *semantic.Table) {
	if err := t.Validate(); err != nil {
		f.e.logger.Warn("malformed table", observability.Error("error", err))
	}
	if len(t.Header) == 0 {
		return
	}
	tf := f.newTableFlow(t)
	f.checkPageBreak(tf.leadHeight())
	tf.open(0, false)
	for i, row := range t.Rows {
		cells := tf.wrapCells(row, fonts.Regular)
		n := rowLines(cells)
		for off := 0; off < n; {
			fit := int((f.remaining() - 2*cellPadY + epsilon) / tf.lh)
			rest := n - off
			switch {
			case rest <= fit:
				tf.drawRow(i, cells, off, rest)
				off = n
			case off == 0 && tf.rowHeight(n) <= tf.pageCapacity() && !tf.empty(),
				fit < 1 && !tf.empty():
				tf.close()
				f.breakPage()
				tf.open(lo.Ternary(off == 0, i, i+1), off > 0)
			default:
				k := max(min(fit, rest), 1)
				tf.drawRow(i, cells, off, k)
				off += k
				if off < n {
					tf.close()
					f.breakPage()
					tf.open(i+1, true)
				}
			}
		}
	}
	tf.close()
	f.y -= f.gap()
	if f.y < f.bottom() {
		f.y = f.bottom()
	}
}

// leadHeight is the header plus the first row, so the header never sits
// alone at the bottom of a page. A first row too tall for any page only
// asks for one line.
func (tf *tableFlow) leadHeight() float64 {
	h := tf.rowHeight(rowLines(tf.header))
	if len(tf.t.Rows) == 0 {
		return h
	}
	first := tf.rowHeight(rowLines(tf.wrapCells(tf.t.Rows[0], fonts.Regular)))
	if first > tf.pageCapacity()+epsilon {
		first = tf.rowHeight(1)
	}
	return h + first
}

// pageCapacity is the room for body rows on a fresh page.
func (tf *tableFlow) pageCapacity() float64 {
	return tf.f.e.contentHeight() - tf.rowHeight(rowLines(tf.header))
}

func (tf *tableFlow) rowHeight(lines int) float64 {
	return float64(lines)*tf.lh + 2*cellPadY
}

func (tf *tableFlow) empty() bool {
	return tf.chunk.RowCount == 0 && !tf.chunk.ContinuesRow
}

// open starts a slice on the current page and draws the header.
func (tf *tableFlow) open(firstRow int, continues bool) {
	tf.chunk = &PlacedBlock{Block: tf.t, FirstRow: firstRow}
	tf.y0 = tf.f.y
	h := tf.rowHeight(rowLines(tf.header))
	tf.chunk.Fills = append(tf.chunk.Fills, Fill{
		Rect: Rect{X: tf.f.left(), Y: tf.f.y - h, W: tf.f.e.contentWidth(), H: h},
		Gray: headerGray,
	})
	tf.draw(tf.header, 0, rowLines(tf.header), true)
	tf.chunk.ContinuesRow = continues
}

// drawRow draws k lines of row i starting at line off.
func (tf *tableFlow) drawRow(i int, cells [][]string, off, k int) {
	if off == 0 {
		tf.chunk.RowCount++
	}
	tf.draw(cells, off, k, false)
}

func (tf *tableFlow) draw(cells [][]string, off, k int, bold bool) {
	f := tf.f
	x := f.left()
	for j, lines := range cells {
		for li := 0; li < k && off+li < len(lines); li++ {
			tf.chunk.Texts = append(tf.chunk.Texts, TextRun{
				X:    x + cellPadX,
				Y:    f.y - cellPadY - tf.size - float64(li)*tf.lh,
				Text: lines[off+li],
				Bold: bold,
				Size: tf.size,
			})
		}
		x += tf.widths[j]
	}
	f.y -= tf.rowHeight(k)
	right := f.left() + f.e.contentWidth()
	tf.chunk.Rules = append(tf.chunk.Rules, Rule{X1: f.left(), Y1: f.y, X2: right, Y2: f.y})
}

// close adds the current slice to the page with its outer and column rules.
func (tf *tableFlow) close() {
	f := tf.f
	pb := tf.chunk
	left, right := f.left(), f.left()+f.e.contentWidth()
	pb.Rules = append(pb.Rules, Rule{X1: left, Y1: tf.y0, X2: right, Y2: tf.y0})
	x := left
	pb.Rules = append(pb.Rules, Rule{X1: x, Y1: tf.y0, X2: x, Y2: f.y})
	for _, w := range tf.widths {
		x += w
		pb.Rules = append(pb.Rules, Rule{X1: x, Y1: tf.y0, X2: x, Y2: f.y})
	}
	pb.Rect = Rect{X: left, Y: f.y, W: right - left, H: tf.y0 - f.y}
	f.add(*pb)
	f.stats.TableRows += pb.RowCount
}

func (tf *tableFlow) wrapCells(row []string, font *fonts.Font) [][]string {
	out := make([][]string, len(tf.widths))
	for j := range tf.widths {
		var text string
		if j < len(row) {
			text = row[j]
		}
		out[j] = wrap(text, font, tf.size, tf.widths[j]-2*cellPadX)
	}
	return out
}

func rowLines(cells [][]string) int {
	n := 1
	for _, c := range cells {
		n = max(n, len(c))
	}
	return n
}

// columnWidths splits width by the table weights, or evenly when the
// weights are missing or invalid. A column narrower than its longest word
// takes that width from the others while they can spare it, so numbers
// and dates are not broken across lines.
func columnWidths(t *semantic.Table, width, size float64) []float64 {
	cols := len(t.Header)
	weights := t.Weights
	valid := len(weights) == cols && lo.EveryBy(weights, func(w float64) bool { return w > 0 })
	if !valid {
		weights = lo.RepeatBy(cols, func(int) float64 { return 1 })
	}

	need := make([]float64, cols)
	measure := func(row []string, font *fonts.Font) {
		for j := 0; j < cols && j < len(row); j++ {
			for _, word := range strings.Fields(row[j]) {
				need[j] = max(need[j], font.Width(word, size)+2*cellPadX)
			}
		}
	}
	measure(t.Header, fonts.Bold)
	for _, row := range t.Rows {
		measure(row, fonts.Regular)
	}

	// Pin the column furthest below its longest word, reshare what is left
	// among the others, and repeat. The last free column takes the rest.
	floor := 2*size + 2*cellPadX
	out := make([]float64, cols)
	pinned := make([]bool, cols)
	for {
		left, weight, free := width, 0.0, 0
		for j := range out {
			if pinned[j] {
				left -= out[j]
			} else {
				weight += weights[j]
				free++
			}
		}
		worst, deficit := -1, 0.0
		for j := range out {
			if pinned[j] {
				continue
			}
			out[j] = left * weights[j] / weight
			if d := need[j] - out[j]; d > deficit && free > 1 && need[j] <= left-float64(free-1)*floor {
				worst, deficit = j, d
			}
		}
		if worst < 0 {
			return out
		}
		out[worst], pinned[worst] = need[worst], true
	}
}
