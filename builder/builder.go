// Package builder maps tours onto the layout-agnostic report document.
// Building never fails: missing values render as NotAvailable.
package builder

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/semantic"
	"github.com/wudi/tourreport/tour"
)

// Placeholder and fixed texts used in generated documents.
const (
	NotAvailable     = "N/A"
	UnnamedTour      = "Unnamed tour"
	NoToursHeading   = "No tours available"
	SummaryTitle     = "Tour summary report"
	LogsHeading      = "Tour logs"
	DateLayout       = "2006-01-02 15:04"
	detailedTitleFmt = "Tour report: "
)

// LogColumns is the header of the tour log table.
var LogColumns = []string{"Date", "Comment", "Difficulty", "Distance (km)", "Time (min)", "Rating"}

var logWeights = []float64{1.4, 3, 1, 1.1, 1, 0.8}

// Builder turns tours into semantic documents. It resolves image paths
// through its Loader; a Builder holds no per-report state.
type Builder struct {
	images images.Loader
}

// Option configures a Builder.
type Option func(*Builder)

// WithImageLoader replaces the file system image loader.
func WithImageLoader(l images.Loader) Option {
	return func(b *Builder) {
		if l != nil {
			b.images = l
		}
	}
}

// New constructs a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{images: images.FileLoader{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Detailed builds the single-tour report: heading, tour facts, image, and
// the log table with one row per log in input order. A nil tour is treated
// as an empty one.
func (b *Builder) Detailed(t *tour.Tour) *semantic.Document {
	if t == nil {
		t = &tour.Tour{}
	}
	doc := &semantic.Document{Title: detailedTitleFmt + tourName(t)}
	b.appendTour(doc, t, 1)
	doc.Add(&semantic.Heading{Text: LogsHeading, Level: 2}, LogTable(t.Logs))
	return doc
}

// Summary builds the multi-tour report. Each tour contributes its detailed
// subtree without the log table, plus log aggregates. An empty input yields
// a single placeholder heading.
func (b *Builder) Summary(tours []*tour.Tour) *semantic.Document {
	tours = lo.Compact(tours)
	if len(tours) == 0 {
		return (&semantic.Document{Title: SummaryTitle}).Add(&semantic.Heading{Text: NoToursHeading, Level: 1})
	}
	doc := &semantic.Document{Title: SummaryTitle}
	doc.Add(
		&semantic.Heading{Text: SummaryTitle, Level: 1},
		&semantic.KeyValue{Label: "Tours", Value: strconv.Itoa(len(tours))},
	)
	for _, t := range tours {
		b.appendTour(doc, t, 2)
		avgDistance, okDistance := t.AverageLogDistance()
		avgTime, okTime := t.AverageLogTime()
		doc.Add(
			&semantic.KeyValue{Label: "Logs", Value: strconv.Itoa(len(t.Logs))},
			&semantic.KeyValue{Label: "Average log distance (km)", Value: optional(avgDistance, okDistance)},
			&semantic.KeyValue{Label: "Average log time (min)", Value: optional(avgTime, okTime)},
		)
	}
	return doc
}

func (b *Builder) appendTour(doc *semantic.Document, t *tour.Tour, level int) {
	doc.Add(
		&semantic.Heading{Text: tourName(t), Level: level},
		kv("Description", t.Description),
		kv("From", t.From),
		kv("To", t.To),
		&semantic.KeyValue{Label: "Distance (km)", Value: FormatFloat(t.Distance)},
		&semantic.KeyValue{Label: "Estimated time (min)", Value: FormatFloat(t.EstimatedTime)},
		kv("Transport", t.TransportType),
		kv("Route information", t.RouteInformation),
		&semantic.KeyValue{Label: "Popularity", Value: t.Popularity()},
		&semantic.KeyValue{Label: "Average rating", Value: ratingValue(t)},
		&semantic.KeyValue{Label: "Child-friendly", Value: lo.Ternary(t.IsChildFriendly(), "Yes", "No")},
		&semantic.ImageBlock{Source: t.ImagePath, Image: b.images.Load(t.ImagePath), Caption: tourName(t)},
	)
}

// LogTable builds the log table. Rows always match LogColumns in width.
func LogTable(logs []tour.Log) *semantic.Table {
	tbl := semantic.NewTable(LogColumns...)
	tbl.Weights = append([]float64(nil), logWeights...)
	for _, l := range logs {
		// Rows are built from LogColumns, so the width always matches.
		_ = tbl.AddRow(
			formatTime(l.DateTime),
			text(lo.FromPtr(l.Comment)),
			FormatFloat(l.Difficulty),
			FormatFloat(l.TotalDistance),
			FormatFloat(l.TotalTime),
			FormatFloat(l.Rating),
		)
	}
	return tbl
}

// FormatFloat renders v with the shortest representation that parses back
// to the same float64, or NotAvailable for nil.
func FormatFloat(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optional(v float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return FormatFloat(&v)
}

func ratingValue(t *tour.Tour) string {
	if !lo.SomeBy(t.Logs, func(l tour.Log) bool { return l.Rating != nil }) {
		return NotAvailable
	}
	return strconv.FormatFloat(t.AverageRating(), 'f', 2, 64)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return NotAvailable
	}
	return ts.Format(DateLayout)
}

func tourName(t *tour.Tour) string {
	if strings.TrimSpace(t.Name) == "" {
		return UnnamedTour
	}
	return t.Name
}

func kv(label, value string) *semantic.KeyValue {
	return &semantic.KeyValue{Label: label, Value: text(value)}
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
