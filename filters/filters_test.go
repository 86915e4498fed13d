package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"
)

func TestFlateRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("BT /F1 10 Tf (row) Tj ET\n"), 200)
	for _, level := range []int{0, zlib.BestSpeed, zlib.BestCompression} {
		f := Flate{Level: level}
		enc, err := f.Encode(data)
		if err != nil {
			t.Fatalf("level %d: encode: %v", level, err)
		}
		if len(enc) >= len(data) {
			t.Fatalf("level %d: no compression", level)
		}
		dec, err := f.Decode(enc)
		if err != nil {
			t.Fatalf("level %d: decode: %v", level, err)
		}
		if !bytes.Equal(dec, data) {
			t.Fatalf("level %d: round trip mismatch", level)
		}
	}
}

func TestFlateErrors(t *testing.T) {
	if _, err := (Flate{Level: 42}).Encode([]byte("x")); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := (Flate{}).Decode([]byte("not zlib")); err == nil {
		t.Fatalf("expected decode error")
	}
	enc, _ := Flate{}.Encode(make([]byte, 1000))
	if _, err := (Flate{MaxDecoded: 999}).Decode(enc); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected ErrLimit, got %v", err)
	}
	if _, err := (Flate{MaxDecoded: 1000}).Decode(enc); err != nil {
		t.Fatalf("exact limit: %v", err)
	}
}
