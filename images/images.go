// Package images resolves image paths to decoded pixel data. Every failure
// is reported through LoadResult; Load never panics.
package images

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotFound    = errors.New("image not found")
	ErrUnreadable  = errors.New("image unreadable")
	ErrUnsupported = errors.New("unsupported image")
)

// DefaultMaxPixels bounds the decoded size of a single image.
const DefaultMaxPixels = 40_000_000

// Colour space names, matching the PDF device colour spaces.
const (
	DeviceRGB  = "DeviceRGB"
	DeviceGray = "DeviceGray"
)

// Status tells which variant a LoadResult holds.
type Status int

const (
	Absent Status = iota
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// DecodedImage holds 8-bit samples, row-major, without padding.
// Pixels has 3 samples per pixel for DeviceRGB and 1 for DeviceGray.
// Alpha is nil for opaque images.
type DecodedImage struct {
	Width    int
	Height   int
	Pixels   []byte
	Encoding string
	Alpha    []byte
	Format   string
}

// Components returns the number of samples per pixel.
func (d *DecodedImage) Components() int {
	if d.Encoding == DeviceGray {
		return 1
	}
	return 3
}

// Image rebuilds a standard library image from the samples.
func (d *DecodedImage) Image() image.Image {
	rect := image.Rect(0, 0, d.Width, d.Height)
	if d.Encoding == DeviceGray && d.Alpha == nil {
		g := image.NewGray(rect)
		copy(g.Pix, d.Pixels)
		return g
	}
	out := image.NewNRGBA(rect)
	comps := d.Components()
	for i := 0; i < d.Width*d.Height; i++ {
		var r, g, b byte
		if comps == 1 {
			r, g, b = d.Pixels[i], d.Pixels[i], d.Pixels[i]
		} else {
			r, g, b = d.Pixels[i*3], d.Pixels[i*3+1], d.Pixels[i*3+2]
		}
		a := byte(255)
		if d.Alpha != nil {
			a = d.Alpha[i]
		}
		copy(out.Pix[i*4:], []byte{r, g, b, a})
	}
	return out
}

// LoadResult is one of Loaded (Image set), Absent, or Failed (Err set).
type LoadResult struct {
	Status Status
	Image  *DecodedImage
	Err    error
}

func (r LoadResult) OK() bool { return r.Status == Loaded && r.Image != nil }

// Loader resolves a path to a LoadResult.
type Loader interface {
	Load(path string) LoadResult
}

// FileLoader reads images from the local file system. The zero value is
// ready to use.
type FileLoader struct {
	MaxPixels int
}

// Load is FileLoader{}.Load.
func Load(path string) LoadResult { return FileLoader{}.Load(path) }

func (l FileLoader) Load(path string) (res LoadResult) {
	if strings.TrimSpace(path) == "" {
		return LoadResult{Status: Absent}
	}
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Errorf("%w: decoder panic: %v", ErrUnsupported, r))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failed(fmt.Errorf("%w: %s", ErrNotFound, path))
		}
		return failed(fmt.Errorf("%w: %v", ErrUnreadable, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrUnreadable, err))
	}
	if info.IsDir() {
		return failed(fmt.Errorf("%w: %s is a directory", ErrUnreadable, path))
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrUnsupported, err))
	}
	limit := l.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > limit {
		return failed(fmt.Errorf("%w: dimensions %dx%d", ErrUnsupported, cfg.Width, cfg.Height))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return failed(fmt.Errorf("%w: %v", ErrUnreadable, err))
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrUnsupported, err))
	}
	decoded := FromImage(img)
	decoded.Format = format
	return LoadResult{Status: Loaded, Image: decoded}
}

func failed(err error) LoadResult { return LoadResult{Status: Failed, Err: err} }

// FromImage converts a standard Go image. Gray images stay single-channel;
// everything else becomes RGB with a separate alpha plane when any pixel
// is translucent.
func FromImage(src image.Image) *DecodedImage {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if g, ok := src.(*image.Gray); ok {
		pixels := make([]byte, 0, w*h)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			off := g.PixOffset(bounds.Min.X, y)
			pixels = append(pixels, g.Pix[off:off+w]...)
		}
		return &DecodedImage{Width: w, Height: h, Pixels: pixels, Encoding: DeviceGray}
	}

	// Convert to NRGBA (non-premultiplied alpha) to get raw color values
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &DecodedImage{Width: w, Height: h, Pixels: pixels, Encoding: DeviceRGB}
	if hasAlpha {
		img.Alpha = alpha
	}
	return img
}
