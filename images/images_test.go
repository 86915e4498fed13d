package images

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoad_Absent(t *testing.T) {
	for _, p := range []string{"", "   "} {
		res := Load(p)
		if res.Status != Absent || res.Err != nil || res.Image != nil {
			t.Fatalf("Load(%q) = %+v, want Absent", p, res)
		}
	}
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("This is not a valid image file content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cases := []struct {
		name string
		path string
		want error
	}{
		{"missing", "invalid/path/to/image.png", ErrNotFound},
		{"corrupt", corrupt, ErrUnsupported},
		{"directory", dir, ErrUnreadable},
	}
	for _, tc := range cases {
		res := Load(tc.path)
		if res.Status != Failed {
			t.Fatalf("%s: status = %v, want failed", tc.name, res.Status)
		}
		if !errors.Is(res.Err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, res.Err, tc.want)
		}
		if res.OK() {
			t.Fatalf("%s: failed result reports OK", tc.name)
		}
	}
}

func TestLoad_PixelLimit(t *testing.T) {
	path := writePNG(t, image.NewRGBA(image.Rect(0, 0, 20, 20)))
	res := FileLoader{MaxPixels: 100}.Load(path)
	if res.Status != Failed || !errors.Is(res.Err, ErrUnsupported) {
		t.Fatalf("expected size rejection, got %+v", res)
	}
}

func TestLoad_RGB(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 80), G: uint8(y * 100), B: 7, A: 255})
		}
	}
	res := Load(writePNG(t, src))
	if !res.OK() {
		t.Fatalf("expected loaded image, got %+v", res)
	}
	img := res.Image
	if img.Width != 3 || img.Height != 2 || img.Encoding != DeviceRGB || img.Format != "png" {
		t.Fatalf("unexpected image header: %+v", img)
	}
	if len(img.Pixels) != 3*2*3 {
		t.Fatalf("pixel buffer length = %d", len(img.Pixels))
	}
	if img.Alpha != nil {
		t.Fatalf("opaque image should not carry alpha")
	}
	// pixel (2,1)
	off := (1*3 + 2) * 3
	if img.Pixels[off] != 160 || img.Pixels[off+1] != 100 || img.Pixels[off+2] != 7 {
		t.Fatalf("pixel mismatch: %v", img.Pixels[off:off+3])
	}
}

func TestFromImage_GrayAndAlpha(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 1, color.Gray{Y: 200})
	g := FromImage(gray)
	if g.Encoding != DeviceGray || len(g.Pixels) != 16 || g.Pixels[5] != 200 || g.Components() != 1 {
		t.Fatalf("gray conversion wrong: %+v", g)
	}

	trans := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	trans.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})
	trans.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	a := FromImage(trans)
	if a.Alpha == nil || a.Alpha[0] != 128 || a.Alpha[1] != 255 {
		t.Fatalf("alpha plane wrong: %v", a.Alpha)
	}
	if a.Pixels[0] != 255 || a.Pixels[4] != 255 {
		t.Fatalf("colour samples wrong: %v", a.Pixels)
	}
}

func TestDecodedImage_ImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	d := FromImage(src)
	back := FromImage(d.Image())
	if back.Width != 2 || back.Height != 2 {
		t.Fatalf("size lost: %+v", back)
	}
	if back.Pixels[9] != 10 || back.Pixels[10] != 20 || back.Pixels[11] != 30 || back.Alpha[3] != 40 {
		t.Fatalf("samples lost: %v %v", back.Pixels, back.Alpha)
	}

	g := FromImage(image.NewGray(image.Rect(0, 0, 3, 1)))
	if _, ok := g.Image().(*image.Gray); !ok {
		t.Fatalf("gray image should rebuild as *image.Gray")
	}
}

func TestStatus_String(t *testing.T) {
	if Loaded.String() != "loaded" || Absent.String() != "absent" || Failed.String() != "failed" {
		t.Fatalf("unexpected status names")
	}
}
