package layout

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/wudi/tourreport/fonts"
	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/ir/semantic"
	"github.com/wudi/tourreport/observability"
)

// maxUpscale limits how far small images are enlarged.
const maxUpscale = 2

// samplesPerPoint is the pixel density kept after downsampling.
const samplesPerPoint = 2

func (f *flow) placeImage(b *semantic.ImageBlock) {
	if !b.Image.OK() {
		f.stats.ImagesDegraded++
		fields := []observability.Field{
			observability.String("path", b.Source),
			observability.String("status", b.Image.Status.String()),
		}
		if b.Image.Err != nil {
			fields = append(fields, observability.Error("error", b.Image.Err))
		}
		f.e.logger.Info("image unavailable", fields...)
		f.placeText(&semantic.Paragraph{Text: ImageUnavailable}, ImageUnavailable, false, f.e.FontSize)
		return
	}

	fr := f.frameImage(b)
	f.checkPageBreak(fr.lead(f))

	pb := PlacedBlock{
		Block: b,
		Image: downsample(b.Image.Image, fr.w, fr.h),
		Rect:  Rect{X: f.left(), Y: f.y - fr.h, W: fr.w, H: fr.h},
	}
	f.y -= fr.h
	// The caption follows the image and continues on the next page when
	// it runs past the bottom margin.
	n := f.linesThatFit(fr.capLH, len(fr.caption))
	y := f.y
	for _, line := range fr.caption[:n] {
		pb.Texts = append(pb.Texts, TextRun{X: f.left(), Y: y - fr.capSize, Text: line, Size: fr.capSize})
		y -= fr.capLH
	}
	f.add(pb)
	f.stats.ImagesPlaced++
	if rest := fr.caption[n:]; len(rest) > 0 {
		f.y = y
		f.breakPage()
		f.placeLines(b, rest, false, fr.capSize)
		return
	}
	f.advance(float64(n) * fr.capLH)
}

// imageFrame is the drawn size of an image and its wrapped caption.
type imageFrame struct {
	w, h    float64
	caption []string
	capSize float64
	capLH   float64
}

func (fr imageFrame) captionHeight() float64 { return float64(len(fr.caption)) * fr.capLH }

// lead is the image with its whole caption, or with the first caption line
// when the caption cannot share a page with the image.
func (fr imageFrame) lead(f *flow) float64 {
	return f.keep(fr.h+fr.captionHeight(), fr.h+math.Min(fr.captionHeight(), fr.capLH))
}

// frameImage fits a loaded image into MaxImageBox, leaving room on the page
// for at least one caption line.
func (f *flow) frameImage(b *semantic.ImageBlock) imageFrame {
	fr := imageFrame{capSize: f.e.FontSize * 0.9}
	fr.capLH = f.e.lineHeight(fr.capSize)
	if b.Caption != "" {
		fr.caption = wrap(b.Caption, fonts.Regular, fr.capSize, f.e.contentWidth())
	}
	box := Box{
		Width:  math.Min(f.e.MaxImageBox.Width, f.e.contentWidth()),
		Height: math.Min(f.e.MaxImageBox.Height, f.e.contentHeight()-math.Min(fr.captionHeight(), fr.capLH)),
	}
	if box.Height < f.e.FontSize {
		box.Height = f.e.FontSize
	}
	src := b.Image.Image
	fr.w, fr.h = FitBox(float64(src.Width), float64(src.Height), box)
	return fr
}

// FitBox scales a w×h image into box preserving its aspect ratio. Images are
// never enlarged more than maxUpscale times.
func FitBox(w, h float64, box Box) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(box.Width/w, box.Height/h)
	scale = math.Min(scale, maxUpscale)
	return w * scale, h * scale
}

// downsample reduces images much larger than their drawn size. The result
// keeps samplesPerPoint pixels per point in each direction.
func downsample(img *images.DecodedImage, w, h float64) *images.DecodedImage {
	tw := int(math.Ceil(w * samplesPerPoint))
	th := int(math.Ceil(h * samplesPerPoint))
	if tw < 1 || th < 1 || (img.Width <= tw && img.Height <= th) {
		return img
	}
	src := img.Image()
	rect := image.Rect(0, 0, tw, th)
	var dst draw.Image
	if img.Encoding == images.DeviceGray && img.Alpha == nil {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewNRGBA(rect)
	}
	draw.ApproxBiLinear.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
	out := images.FromImage(dst)
	out.Format = img.Format
	return out
}
