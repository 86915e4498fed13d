package semantic

import (
	"errors"
	"fmt"

	"github.com/wudi/tourreport/images"
)

// ErrRowWidth is returned when a table row's cell count differs from its header.
var ErrRowWidth = errors.New("table row width does not match header")

// Document is the layout-agnostic representation of a report: an ordered
// list of blocks. It is built once per report and not mutated after layout
// starts.
type Document struct {
	Title  string
	Blocks []Block
}

// Add appends blocks in order.
func (d *Document) Add(blocks ...Block) *Document {
	d.Blocks = append(d.Blocks, blocks...)
	return d
}

// Tables returns the table blocks of the document in order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// BlockKind tags the Block variants.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindKeyValue
	KindParagraph
	KindImage
	KindTable
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindKeyValue:
		return "key-value"
	case KindParagraph:
		return "paragraph"
	case KindImage:
		return "image"
	case KindTable:
		return "table"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is one of *Heading, *KeyValue, *Paragraph, *ImageBlock or *Table.
type Block interface {
	Kind() BlockKind
}

// Heading is a section title. Level 1 is the document title, 2 a section.
type Heading struct {
	Text  string
	Level int
}

// KeyValue is a labelled value row.
type KeyValue struct {
	Label string
	Value string
}

// Paragraph is free running text.
type Paragraph struct {
	Text string
}

// ImageBlock carries the outcome of loading the image at Source. Layout
// decides what to draw for absent or failed images.
type ImageBlock struct {
	Source  string
	Image   images.LoadResult
	Caption string
}

// Table is a header row and body rows. Every row has len(Header) cells.
// Weights, when set, has one relative width per column.
type Table struct {
	Header  []string
	Rows    [][]string
	Weights []float64
}

func (*Heading) Kind() BlockKind    { return KindHeading }
func (*KeyValue) Kind() BlockKind   { return KindKeyValue }
func (*Paragraph) Kind() BlockKind  { return KindParagraph }
func (*ImageBlock) Kind() BlockKind { return KindImage }
func (*Table) Kind() BlockKind      { return KindTable }

// NewTable returns an empty table with the given header.
func NewTable(header ...string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// AddRow appends a row, rejecting rows whose width differs from the header.
func (t *Table) AddRow(cells ...string) error {
	if len(cells) != len(t.Header) {
		return fmt.Errorf("%w: got %d cells, header has %d", ErrRowWidth, len(cells), len(t.Header))
	}
	t.Rows = append(t.Rows, append([]string(nil), cells...))
	return nil
}

// Validate checks the row width invariant.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d: %w", i, ErrRowWidth)
		}
	}
	if len(t.Weights) != 0 && len(t.Weights) != len(t.Header) {
		return fmt.Errorf("weights: %w", ErrRowWidth)
	}
	return nil
}
