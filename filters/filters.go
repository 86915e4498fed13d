// Package filters implements the PDF stream filters the writer emits.
package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Encoder compresses stream data. Name is the value written to /Filter.
type Encoder interface {
	Name() string
	Encode(data []byte) ([]byte, error)
}

// Decoder reverses an Encoder.
type Decoder interface {
	Name() string
	Decode(data []byte) ([]byte, error)
}

// ErrLimit is returned when decoded data exceeds the configured limit.
var ErrLimit = errors.New("decoded size exceeds limit")

// Flate is the /FlateDecode filter (zlib framing). Level follows
// compress/zlib; 0 selects the default level. MaxDecoded caps Decode output
// when positive.
type Flate struct {
	Level      int
	MaxDecoded int64
}

func (Flate) Name() string { return "FlateDecode" }

func (f Flate) Encode(data []byte) ([]byte, error) {
	level := f.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return buf.Bytes(), nil
}

func (f Flate) Decode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer r.Close()

	var src io.Reader = r
	if f.MaxDecoded > 0 {
		src = io.LimitReader(r, f.MaxDecoded+1)
	}
	var out bytes.Buffer
	if _, err := io.Copy(&out, src); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	if f.MaxDecoded > 0 && int64(out.Len()) > f.MaxDecoded {
		return nil, ErrLimit
	}
	return out.Bytes(), nil
}
