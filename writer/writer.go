// Package writer serialises laid-out pages into a PDF file.
package writer

import (
	"compress/zlib"
	"io"
	"time"

	"github.com/wudi/tourreport/ir/raw"
	"github.com/wudi/tourreport/layout"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// DefaultProducer is written to the Info dictionary when Config.Producer is empty.
const DefaultProducer = "tourreport"

// fixedCreationDate is used for deterministic output.
var fixedCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	Version PDFVersion
	// Compress Flate-encodes page content streams. Image data is always
	// compressed.
	Compress bool
	// CompressionLevel is a compress/zlib level; 0 selects the default.
	CompressionLevel int
	// Deterministic pins CreationDate so identical pages give identical bytes.
	Deterministic bool
	Title         string
	Author        string
	Producer      string
	CreationDate  time.Time
}

// DefaultConfig is the configuration used by reports.
func DefaultConfig() Config {
	return Config{Version: PDF14, Compress: true, CompressionLevel: zlib.BestSpeed}
}

type Writer interface {
	Write(pages []layout.Page, w io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes objects as they are written. An error aborts the write.
type Interceptor interface {
	BeforeWrite(ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ref raw.ObjectRef, obj raw.Object, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	if i != nil {
		b.interceptors = append(b.interceptors, i)
	}
	return b
}
func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }

// Write serialises pages with a writer that has no interceptors.
func Write(pages []layout.Page, w io.Writer, cfg Config) error {
	return (&WriterBuilder{}).Build().Write(pages, w, cfg)
}
