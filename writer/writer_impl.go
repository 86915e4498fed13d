package writer

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wudi/tourreport/filters"
	"github.com/wudi/tourreport/fonts"
	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/raw"
	"github.com/wudi/tourreport/layout"
)

type impl struct{ interceptors []Interceptor }

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	if obj == nil {
		return nil, fmt.Errorf("object %d: nil", ref.Num)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	if s, ok := obj.(*raw.StreamObj); ok {
		if s.Dict == nil {
			s.Dict = raw.Dict()
		}
		s.Dict.Set("Length", raw.NumberInt(int64(len(s.Data))))
	}
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w *impl) Write(pages []layout.Page, out io.Writer, cfg Config) error {
	if len(pages) == 0 {
		pages = []layout.Page{{Number: 1, Width: layout.A4.Width, Height: layout.A4.Height}}
	}
	doc, err := buildDocument(pages, cfg)
	if err != nil {
		return err
	}

	cw := &countingWriter{w: out}
	fmt.Fprintf(cw, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", doc.Version)
	offsets := make(map[int]int64, len(doc.Objects))
	body := sha256.New()
	for _, ref := range doc.Refs() {
		obj := doc.Objects[ref]
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ref, obj); err != nil {
				return fmt.Errorf("object %d: %w", ref.Num, err)
			}
		}
		serialized, err := w.SerializeObject(ref, obj)
		if err != nil {
			return err
		}
		offsets[ref.Num] = cw.n
		cw.Write(serialized)
		body.Write(serialized)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ref, obj, int64(len(serialized))); err != nil {
				return fmt.Errorf("object %d: %w", ref.Num, err)
			}
		}
		if cw.err != nil {
			return cw.err
		}
	}

	// XRef
	xrefOffset := cw.n
	size := doc.Size()
	fmt.Fprintf(cw, "xref\n0 %d\n", size)
	cw.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(cw, "%010d 00000 n \n", off)
		} else {
			cw.WriteString("0000000000 65535 f \n")
		}
	}

	// Trailer
	id := body.Sum(nil)[:16]
	trailer := raw.Dict().
		Set("Size", raw.NumberInt(int64(size))).
		Set("Root", raw.Ref(doc.Root)).
		Set("ID", raw.NewArray(raw.HexStr(id), raw.HexStr(id)))
	if doc.Info != nil {
		trailer.Set("Info", raw.Ref(*doc.Info))
	}
	cw.WriteString("trailer\n")
	cw.Write(serializePrimitive(trailer))
	fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return cw.err
}

// buildDocument creates the object graph: catalog, page tree, info, fonts,
// image XObjects, then a content stream and page dictionary per page.
func buildDocument(pages []layout.Page, cfg Config) (*raw.Document, error) {
	doc := raw.NewDocument(pdfVersion(cfg))
	doc.Root = doc.Alloc()
	pagesRef := doc.Alloc()
	infoRef := doc.Add(infoDict(cfg))
	doc.Info = &infoRef

	fontRes := raw.Dict()
	for _, f := range fonts.All() {
		ref := doc.Add(raw.Dict().
			Set("Type", raw.NameLiteral("Font")).
			Set("Subtype", raw.NameLiteral("Type1")).
			Set("BaseFont", raw.NameLiteral(f.BaseFont)).
			Set("Encoding", raw.NameLiteral(fonts.Encoding)))
		fontRes.Set(f.Resource, raw.Ref(ref))
	}

	kids := raw.NewArray()
	imageCount := 0
	for _, p := range pages {
		xobjects := raw.Dict()
		names := make(map[*images.DecodedImage]string)
		for _, b := range p.Blocks {
			if b.Image == nil || names[b.Image] != "" {
				continue
			}
			ref, err := addImage(doc, b.Image, cfg)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", p.Number, err)
			}
			imageCount++
			name := fmt.Sprintf("Im%d", imageCount)
			names[b.Image] = name
			xobjects.Set(name, raw.Ref(ref))
		}

		content, err := pageContent(p, names)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number, err)
		}
		streamDict := raw.Dict()
		if cfg.Compress {
			flate := filters.Flate{Level: cfg.CompressionLevel}
			if content, err = flate.Encode(content); err != nil {
				return nil, err
			}
			streamDict.Set("Filter", raw.NameLiteral(flate.Name()))
		}
		contentRef := doc.Add(raw.NewStream(streamDict, content))

		resources := raw.Dict().
			Set("Font", fontRes).
			Set("ProcSet", raw.NewArray(raw.NameLiteral("PDF"), raw.NameLiteral("Text"), raw.NameLiteral("ImageB"), raw.NameLiteral("ImageC")))
		if xobjects.Len() > 0 {
			resources.Set("XObject", xobjects)
		}
		pageRef := doc.Add(raw.Dict().
			Set("Type", raw.NameLiteral("Page")).
			Set("Parent", raw.Ref(pagesRef)).
			Set("MediaBox", raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberFloat(p.Width), raw.NumberFloat(p.Height))).
			Set("Resources", resources).
			Set("Contents", raw.Ref(contentRef)))
		kids.Append(raw.Ref(pageRef))
	}

	doc.Set(pagesRef, raw.Dict().
		Set("Type", raw.NameLiteral("Pages")).
		Set("Count", raw.NumberInt(int64(kids.Len()))).
		Set("Kids", kids))
	doc.Set(doc.Root, raw.Dict().
		Set("Type", raw.NameLiteral("Catalog")).
		Set("Pages", raw.Ref(pagesRef)))
	return doc, nil
}

var errBadImage = errors.New("image samples do not match dimensions")

func addImage(doc *raw.Document, img *images.DecodedImage, cfg Config) (raw.ObjectRef, error) {
	n := img.Width * img.Height
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != n*img.Components() || (img.Alpha != nil && len(img.Alpha) != n) {
		return raw.ObjectRef{}, errBadImage
	}
	flate := filters.Flate{Level: cfg.CompressionLevel}
	data, err := flate.Encode(img.Pixels)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	dict := imageDict(img.Width, img.Height, img.Encoding)
	if img.Alpha != nil {
		mask, err := flate.Encode(img.Alpha)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		maskRef := doc.Add(raw.NewStream(imageDict(img.Width, img.Height, images.DeviceGray), mask))
		dict.Set("SMask", raw.Ref(maskRef))
	}
	return doc.Add(raw.NewStream(dict, data)), nil
}

func imageDict(w, h int, colorSpace string) *raw.DictObj {
	return raw.Dict().
		Set("Type", raw.NameLiteral("XObject")).
		Set("Subtype", raw.NameLiteral("Image")).
		Set("Width", raw.NumberInt(int64(w))).
		Set("Height", raw.NumberInt(int64(h))).
		Set("ColorSpace", raw.NameLiteral(colorSpace)).
		Set("BitsPerComponent", raw.NumberInt(8)).
		Set("Filter", raw.NameLiteral("FlateDecode"))
}

func infoDict(cfg Config) *raw.DictObj {
	producer := cfg.Producer
	if producer == "" {
		producer = DefaultProducer
	}
	created := cfg.CreationDate
	if created.IsZero() {
		created = time.Now()
		if cfg.Deterministic {
			created = fixedCreationDate
		}
	}
	info := raw.Dict().
		Set("Producer", textString(producer)).
		Set("CreationDate", raw.Str([]byte(pdfDate(created))))
	if cfg.Title != "" {
		info.Set("Title", textString(cfg.Title))
	}
	if cfg.Author != "" {
		info.Set("Author", textString(cfg.Author))
	}
	return info
}

// countingWriter tracks the output offset and keeps the first error.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		c.err = err
	}
	return n, err
}

func (c *countingWriter) WriteString(s string) {
	c.Write([]byte(s))
}
