// Package report is the entry point for generating tour PDFs. Both
// operations always return a document for any input; the only error a caller
// can see is ErrSerialization.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/wudi/tourreport/builder"
	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/semantic"
	"github.com/wudi/tourreport/layout"
	"github.com/wudi/tourreport/observability"
	"github.com/wudi/tourreport/tour"
	"github.com/wudi/tourreport/writer"
)

// ContentType is the MIME type of generated reports.
const ContentType = "application/pdf"

// ErrSerialization means not even the fallback document could be written.
var ErrSerialization = errors.New("report serialization failed")

// FallbackMessage is the body of the document emitted when generation fails.
const FallbackMessage = "The report could not be generated from the supplied data."

// Kind distinguishes the two report shapes.
type Kind int

const (
	Detailed Kind = iota
	Summary
)

func (k Kind) String() string {
	switch k {
	case Detailed:
		return "DetailedReport"
	case Summary:
		return "SummaryReport"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FileName is the download name of a report created at t,
// e.g. DetailedReport_20240101_120000.pdf.
func FileName(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", kind, t.Format("20060102_150405"))
}

// Service generates reports. It holds no per-call state and is safe for
// concurrent use.
type Service struct {
	logger  observability.Logger
	builder *builder.Builder
	engine  *layout.Engine
	writer  writer.Writer
	cfg     writer.Config
	now     func() time.Time
}

type settings struct {
	logger       observability.Logger
	loader       images.Loader
	layoutOpts   []layout.Option
	writerCfg    writer.Config
	interceptors []writer.Interceptor
	now          func() time.Time
}

// Option configures a Service.
type Option func(*settings)

// WithLogger sets the logger passed down the pipeline.
func WithLogger(l observability.Logger) Option {
	return func(s *settings) { s.logger = observability.OrNop(l) }
}

// WithImageLoader replaces the file system image loader.
func WithImageLoader(l images.Loader) Option {
	return func(s *settings) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithLayoutOptions appends layout engine options.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(s *settings) { s.layoutOpts = append(s.layoutOpts, opts...) }
}

// WithWriterConfig replaces the PDF writer configuration.
func WithWriterConfig(cfg writer.Config) Option {
	return func(s *settings) { s.writerCfg = cfg }
}

// WithInterceptor observes every object written. Interceptors are shared by
// concurrent calls.
func WithInterceptor(i writer.Interceptor) Option {
	return func(s *settings) { s.interceptors = append(s.interceptors, i) }
}

// WithClock sets the time source for the document creation date.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	st := &settings{
		logger:    observability.NopLogger{},
		loader:    images.FileLoader{},
		writerCfg: writer.DefaultConfig(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	wb := &writer.WriterBuilder{}
	for _, i := range st.interceptors {
		wb.WithInterceptor(i)
	}
	return &Service{
		logger:  st.logger,
		builder: builder.New(builder.WithImageLoader(st.loader)),
		engine:  layout.NewEngine(append([]layout.Option{layout.WithLogger(st.logger)}, st.layoutOpts...)...),
		writer:  wb.Build(),
		cfg:     st.writerCfg,
		now:     st.now,
	}
}

// GenerateTourReport renders the detailed report of one tour. A nil tour
// is rendered as an empty one.
func (s *Service) GenerateTourReport(t *tour.Tour) ([]byte, error) {
	log := s.logger
	if t != nil {
		log = log.With(observability.String("tour_id", t.ID.String()))
	}
	return s.generate(log, Detailed, func() *semantic.Document { return s.builder.Detailed(t) })
}

// GenerateSummaryReport renders the summary of all tours. An empty list
// yields a document with a single "no tours" heading.
func (s *Service) GenerateSummaryReport(tours []*tour.Tour) ([]byte, error) {
	log := s.logger.With(observability.Int("tours", len(tours)))
	return s.generate(log, Summary, func() *semantic.Document { return s.builder.Summary(tours) })
}

func (s *Service) generate(log observability.Logger, kind Kind, build func() *semantic.Document) ([]byte, error) {
	log = log.With(observability.String("report", kind.String()))
	var out []byte
	err := observability.Trace(log, "generate", func() error {
		var err error
		out, err = s.render(log, build())
		return err
	})
	if err == nil {
		return out, nil
	}

	log.Warn("falling back to minimal document", observability.Error("error", err))
	err = observability.Trace(log, "fallback", func() error {
		var err error
		out, err = s.render(log, fallbackDocument(kind))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return out, nil
}

func (s *Service) render(log observability.Logger, doc *semantic.Document) ([]byte, error) {
	pages, stats := s.engine.Layout(doc)
	if want := lo.SumBy(doc.Tables(), func(t *semantic.Table) int { return len(t.Rows) }); stats.TableRows != want {
		log.Warn("table rows missing from layout",
			observability.Int("want", want),
			observability.Int(observability.MetricTableRows, stats.TableRows))
	}

	cfg := s.cfg
	cfg.Title = doc.Title
	if cfg.CreationDate.IsZero() && !cfg.Deterministic {
		cfg.CreationDate = s.now()
	}
	var buf bytes.Buffer
	start := time.Now()
	if err := s.writer.Write(pages, &buf, cfg); err != nil {
		return nil, err
	}
	log.Info("report generated",
		observability.Int(observability.MetricPageCount, stats.Pages),
		observability.Int(observability.MetricTableRows, stats.TableRows),
		observability.Int(observability.MetricImagesPlaced, stats.ImagesPlaced),
		observability.Int(observability.MetricImagesDegraded, stats.ImagesDegraded),
		observability.Duration(observability.MetricWriteTime, time.Since(start)),
		observability.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func fallbackDocument(kind Kind) *semantic.Document {
	title := builder.SummaryTitle
	if kind == Detailed {
		title = builder.UnnamedTour
	}
	return (&semantic.Document{Title: title}).Add(
		&semantic.Heading{Text: title, Level: 1},
		&semantic.Paragraph{Text: FallbackMessage},
	)
}
