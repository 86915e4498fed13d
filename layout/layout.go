// Package layout allocates a semantic document onto fixed-size pages.
//
// The engine walks the blocks once with a forward cursor. Before a block is
// placed its height is measured; when it does not fit the remaining space the
// flow moves to a fresh page. Tables and over-tall text blocks are split
// across pages instead of being moved whole.
package layout

import (
	"fmt"
	"strings"

	"github.com/wudi/tourreport/fonts"
	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/semantic"
	"github.com/wudi/tourreport/observability"
)

// PaperSize is a named page size in points.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	A4     = PaperSize{Name: "A4", Width: 595.28, Height: 841.89}
	Letter = PaperSize{Name: "Letter", Width: 612, Height: 792}
	Legal  = PaperSize{Name: "Legal", Width: 612, Height: 1008}
)

// LookupPaperSize finds a paper size by case-insensitive name.
func LookupPaperSize(name string) (PaperSize, bool) {
	for _, p := range []PaperSize{A4, Letter, Legal} {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return PaperSize{}, false
}

// Margins defines page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Box is a width and height in points.
type Box struct {
	Width, Height float64
}

// ImageUnavailable is the placeholder text drawn for absent or failed images.
const ImageUnavailable = "Image unavailable"

// Engine lays out documents. It is immutable after NewEngine and safe for
// concurrent use; each Layout call keeps its cursor in its own flow.
type Engine struct {
	FontSize    float64
	LineHeight  float64 // Multiplier, e.g., 1.4
	Margins     Margins
	MaxImageBox Box

	pageWidth  float64
	pageHeight float64
	logger     observability.Logger
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithFontSize sets the body font size.
func WithFontSize(size float64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.FontSize = size
		}
	}
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(height float64) Option {
	return func(e *Engine) {
		if height > 0 {
			e.LineHeight = height
		}
	}
}

// WithMargins sets the page margins.
func WithMargins(margins Margins) Option {
	return func(e *Engine) {
		e.Margins = margins
	}
}

// WithPageSize sets the page dimensions.
func WithPageSize(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.pageWidth = width
			e.pageHeight = height
		}
	}
}

// WithPaperSize sets the page dimensions using a standard paper size.
func WithPaperSize(size PaperSize) Option {
	return WithPageSize(size.Width, size.Height)
}

// WithMaxImageBox bounds the drawn size of images.
func WithMaxImageBox(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.MaxImageBox = Box{Width: width, Height: height}
		}
	}
}

// WithLogger sets the logger used for page break and degradation events.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		e.logger = observability.OrNop(l)
	}
}

// NewEngine creates a new layout engine with optional configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		FontSize:    10,
		LineHeight:  1.4,
		Margins:     Margins{Top: 50, Bottom: 50, Left: 50, Right: 50},
		MaxImageBox: Box{Width: 400, Height: 300},
		pageWidth:   A4.Width,
		pageHeight:  A4.Height,
		logger:      observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	// Margins that leave no room for a single line fall back to the defaults.
	if e.contentWidth() <= e.FontSize || e.contentHeight() < 4*e.lineHeight(e.FontSize) {
		e.Margins = Margins{Top: 50, Bottom: 50, Left: 50, Right: 50}
		if e.contentWidth() <= e.FontSize || e.contentHeight() < 4*e.lineHeight(e.FontSize) {
			e.pageWidth, e.pageHeight = A4.Width, A4.Height
		}
	}
	return e
}

// PageSize returns the configured page dimensions.
func (e *Engine) PageSize() (width, height float64) { return e.pageWidth, e.pageHeight }

func (e *Engine) contentWidth() float64  { return e.pageWidth - e.Margins.Left - e.Margins.Right }
func (e *Engine) contentHeight() float64 { return e.pageHeight - e.Margins.Top - e.Margins.Bottom }
func (e *Engine) lineHeight(size float64) float64 {
	return size * e.LineHeight
}

// Rect is a rectangle in PDF user space: (X, Y) is the lower-left corner.
type Rect struct {
	X, Y, W, H float64
}

// TextRun is one line of text with its baseline origin.
type TextRun struct {
	X, Y float64
	Text string
	Bold bool
	Size float64
}

// Rule is a stroked line segment.
type Rule struct {
	X1, Y1, X2, Y2 float64
}

// Fill is a gray filled rectangle.
type Fill struct {
	Rect
	Gray float64
}

// PlacedBlock is a block, or a slice of one, allocated on a page.
type PlacedBlock struct {
	Block semantic.Block
	Page  int
	Rect  Rect
	Texts []TextRun
	Rules []Rule
	Fills []Fill
	Image *images.DecodedImage

	// Table slices only. Rows FirstRow..FirstRow+RowCount-1 begin in this
	// slice; ContinuesRow is set when the slice opens with the tail of
	// the row before FirstRow.
	FirstRow     int
	RowCount     int
	ContinuesRow bool
}

// Page is one output page. Numbers start at 1.
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []PlacedBlock
	Footer TextRun
}

// Stats summarises a Layout call.
type Stats struct {
	Pages          int
	Blocks         int
	TableRows      int
	ImagesPlaced   int
	ImagesDegraded int
	PageBreaks     int
}

type state int

const (
	statePlacing state = iota
	statePageFull
	stateDone
)

func (s state) String() string {
	switch s {
	case statePlacing:
		return "placing"
	case statePageFull:
		return "page-full"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// flow holds the cursor of a single Layout call.
type flow struct {
	e     *Engine
	state state
	pages []Page
	y     float64
	stats Stats
}

// Layout places every block of doc and returns at least one page.
func (e *Engine) Layout(doc *semantic.Document) ([]Page, Stats) {
	f := &flow{e: e}
	f.newPage()
	if doc != nil {
		for i, b := range doc.Blocks {
			var next semantic.Block
			if i+1 < len(doc.Blocks) {
				next = doc.Blocks[i+1]
			}
			f.place(b, next)
		}
	}
	f.finish()
	return f.pages, f.stats
}

func (f *flow) top() float64    { return f.e.pageHeight - f.e.Margins.Top }
func (f *flow) bottom() float64 { return f.e.Margins.Bottom }
func (f *flow) left() float64   { return f.e.Margins.Left }

// remaining is the vertical space left below the cursor.
func (f *flow) remaining() float64 { return f.y - f.bottom() }

// atTop reports whether nothing has been placed on the current page yet.
func (f *flow) atTop() bool { return f.y >= f.top() }

func (f *flow) page() *Page { return &f.pages[len(f.pages)-1] }

// newPage starts a new page and resets the cursor.
func (f *flow) newPage() {
	f.pages = append(f.pages, Page{
		Number: len(f.pages) + 1,
		Width:  f.e.pageWidth,
		Height: f.e.pageHeight,
	})
	f.y = f.top()
	f.state = statePlacing
}

// checkPageBreak moves to a new page unless height fits below the cursor.
// An empty page accepts anything; callers split blocks taller than a page.
func (f *flow) checkPageBreak(height float64) {
	if f.atTop() || height <= f.remaining()+epsilon {
		return
	}
	f.breakPage()
}

func (f *flow) breakPage() {
	f.state = statePageFull
	f.stats.PageBreaks++
	f.e.logger.Debug("page break", observability.Int("page", len(f.pages)), observability.Float64("remaining", f.remaining()))
	f.newPage()
}

func (f *flow) add(pb PlacedBlock) {
	pb.Page = f.page().Number
	f.page().Blocks = append(f.page().Blocks, pb)
	f.stats.Blocks++
}

func (f *flow) place(b, next semantic.Block) {
	switch v := b.(type) {
	case *semantic.Heading:
		f.placeHeading(v, next)
	case *semantic.KeyValue:
		f.placeKeyValue(v)
	case *semantic.Paragraph:
		f.placeText(v, v.Text, false, f.e.FontSize)
	case *semantic.ImageBlock:
		f.placeImage(v)
	case *semantic.Table:
		f.placeTable(v)
	case nil:
	default:
		f.e.logger.Warn("unknown block skipped", observability.String("type", fmt.Sprintf("%T", b)))
	}
}

func (f *flow) finish() {
	total := len(f.pages)
	size := f.e.FontSize * 0.8
	for i := range f.pages {
		p := &f.pages[i]
		text := fmt.Sprintf("Page %d of %d", p.Number, total)
		w := fonts.Regular.Width(text, size)
		p.Footer = TextRun{
			X:    (p.Width - w) / 2,
			Y:    f.bottom() / 2,
			Text: text,
			Size: size,
		}
	}
	f.state = stateDone
	f.stats.Pages = total
}

const (
	epsilon    = 1e-6
	blockGap   = 0.4 // of the body font size, below each block
	labelShare = 0.32
	cellPadX   = 3
	cellPadY   = 2
)

func (f *flow) gap() float64 { return f.e.FontSize * blockGap }

// advance moves the cursor down by h plus the block gap, clamped at the
// bottom margin.
func (f *flow) advance(h float64) {
	f.y -= h + f.gap()
	if f.y < f.bottom() {
		f.y = f.bottom()
	}
}

func headingSize(base float64, level int) float64 {
	switch level {
	case 1:
		return base * 1.8
	case 2:
		return base * 1.4
	default:
		return base * 1.2
	}
}

// placeHeading keeps a heading on the same page as the start of the block
// that follows it.
func (f *flow) placeHeading(h *semantic.Heading, next semantic.Block) {
	size := headingSize(f.e.FontSize, h.Level)
	if !f.atTop() {
		f.y -= f.e.FontSize * 0.6
	}
	lines := wrap(h.Text, fonts.Bold, size, f.e.contentWidth())
	need := float64(len(lines))*f.e.lineHeight(size) + f.gap() + f.leadHeight(next)
	if need <= f.e.contentHeight() {
		f.checkPageBreak(need)
	}
	f.placeLines(h, lines, true, size)
}

// leadHeight is the room b asks for before it is placed: its whole height
// when it is kept together, or its first unsplittable piece otherwise.
func (f *flow) leadHeight(b semantic.Block) float64 {
	lh := f.e.lineHeight(f.e.FontSize)
	switch v := b.(type) {
	case nil:
		return 0
	case *semantic.Heading:
		return f.e.lineHeight(headingSize(f.e.FontSize, v.Level))
	case *semantic.Paragraph:
		return f.keep(float64(len(wrap(v.Text, fonts.Regular, f.e.FontSize, f.e.contentWidth())))*lh, lh)
	case *semantic.KeyValue:
		labels, values := f.wrapKeyValue(v)
		return f.keep(float64(max(len(labels), len(values)))*lh, lh)
	case *semantic.ImageBlock:
		if v.Image.OK() {
			return f.frameImage(v).lead(f)
		}
	case *semantic.Table:
		if len(v.Header) != 0 {
			return f.newTableFlow(v).leadHeight()
		}
		return 0
	}
	return lh
}

// keep returns whole when it fits on an empty page, else first.
func (f *flow) keep(whole, first float64) float64 {
	if whole <= f.e.contentHeight()+epsilon {
		return whole
	}
	return first
}

// placeText places wrapped text, keeping the lines together when they fit
// on one page.
func (f *flow) placeText(b semantic.Block, text string, bold bool, size float64) {
	f.placeLines(b, wrap(text, fontFor(bold), size, f.e.contentWidth()), bold, size)
}

// placeLines places lines below the cursor and splits them by line across
// pages when they are taller than a page.
func (f *flow) placeLines(b semantic.Block, lines []string, bold bool, size float64) {
	lh := f.e.lineHeight(size)
	f.checkPageBreak(float64(len(lines)) * lh)
	for len(lines) > 0 {
		n := f.linesThatFit(lh, len(lines))
		pb := PlacedBlock{Block: b}
		y := f.y
		for _, line := range lines[:n] {
			pb.Texts = append(pb.Texts, TextRun{X: f.left(), Y: y - size, Text: line, Bold: bold, Size: size})
			y -= lh
		}
		h := float64(n) * lh
		pb.Rect = Rect{X: f.left(), Y: f.y - h, W: f.e.contentWidth(), H: h}
		f.add(pb)
		lines = lines[n:]
		if len(lines) > 0 {
			f.y -= h
			f.breakPage()
			continue
		}
		f.advance(h)
	}
}

// linesThatFit returns how many of want lines fit below the cursor; at least
// one so that a page always makes progress.
func (f *flow) linesThatFit(lh float64, want int) int {
	n := int((f.remaining() + epsilon) / lh)
	if n < 1 {
		n = 1
	}
	if n > want {
		n = want
	}
	return n
}

func (f *flow) wrapKeyValue(kv *semantic.KeyValue) (labels, values []string) {
	labelW := f.e.contentWidth() * labelShare
	labels = wrap(kv.Label, fonts.Bold, f.e.FontSize, labelW-cellPadX)
	values = wrap(kv.Value, fonts.Regular, f.e.FontSize, f.e.contentWidth()-labelW)
	return labels, values
}

func (f *flow) placeKeyValue(kv *semantic.KeyValue) {
	size := f.e.FontSize
	lh := f.e.lineHeight(size)
	valueX := f.left() + f.e.contentWidth()*labelShare
	labels, values := f.wrapKeyValue(kv)
	rows := max(len(labels), len(values))
	f.checkPageBreak(float64(rows) * lh)

	for start := 0; start < rows; {
		n := f.linesThatFit(lh, rows-start)
		pb := PlacedBlock{Block: kv}
		y := f.y
		for i := start; i < start+n; i++ {
			if i < len(labels) {
				pb.Texts = append(pb.Texts, TextRun{X: f.left(), Y: y - size, Text: labels[i], Bold: true, Size: size})
			}
			if i < len(values) {
				pb.Texts = append(pb.Texts, TextRun{X: valueX, Y: y - size, Text: values[i], Size: size})
			}
			y -= lh
		}
		h := float64(n) * lh
		pb.Rect = Rect{X: f.left(), Y: f.y - h, W: f.e.contentWidth(), H: h}
		f.add(pb)
		start += n
		if start < rows {
			f.y -= h
			f.breakPage()
			continue
		}
		f.advance(h)
	}
}

func fontFor(bold bool) *fonts.Font {
	if bold {
		return fonts.Bold
	}
	return fonts.Regular
}
