package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/snapcanvas/internal/geometry"
)

// CardOptions describes how the editor frames the canvas view: rounded
// corners and a soft drop shadow.
type CardOptions struct {
	CornerRadius float64
	ShadowRadius int
	ShadowOffset image.Point
	Opacity      float64
}

// Card is a framed view.
type Card struct {
	// Image holds the framed view including its shadow.
	Image *image.RGBA
	// Offset is where the view's top-left corner landed inside Image.
	Offset image.Point
}

// DefaultCardOptions matches the editor's soft card look.
func DefaultCardOptions() CardOptions {
	return CardOptions{
		CornerRadius: 16,
		ShadowRadius: 18,
		ShadowOffset: image.Pt(0, 10),
		Opacity:      0.35,
	}
}

// Frame rounds the corners of view and casts a blurred shadow beneath it. The
// result has a zero origin.
func Frame(view *image.RGBA, opts CardOptions) Card {
	if view == nil || view.Bounds().Empty() {
		return Card{Image: view}
	}
	vb := view.Bounds()
	body := roundCorners(view, opts.CornerRadius)

	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	if opacity <= 0 {
		return Card{Image: body}
	}
	pad := opts.ShadowRadius
	if pad < 0 {
		pad = 0
	}
	shadowRect := vb.Inset(-pad).Add(opts.ShadowOffset)
	all := vb.Union(shadowRect)
	dst := image.NewRGBA(all.Sub(all.Min))

	silhouette := image.NewAlpha(vb.Inset(-pad).Sub(vb.Inset(-pad).Min))
	for y := 0; y < vb.Dy(); y++ {
		for x := 0; x < vb.Dx(); x++ {
			if a := body.RGBAAt(x, y).A; a > 0 {
				silhouette.SetAlpha(x+pad, y+pad, color.Alpha{A: a})
			}
		}
	}
	blurred := boxBlur(silhouette, pad)
	shade := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	at := shadowRect.Min.Sub(all.Min)
	draw.DrawMask(dst, blurred.Bounds().Add(at), shade, image.Point{}, blurred, image.Point{}, draw.Over)

	offset := vb.Min.Sub(all.Min)
	draw.Draw(dst, body.Bounds().Add(offset), body, image.Point{}, draw.Over)
	return Card{Image: dst, Offset: offset}
}

func roundCorners(view *image.RGBA, radius float64) *image.RGBA {
	vb := view.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, vb.Dx(), vb.Dy()))
	if radius <= 0 {
		draw.Draw(out, out.Bounds(), view, vb.Min, draw.Src)
		return out
	}
	rr := geometry.RoundedRect{Width: float64(vb.Dx()), Height: float64(vb.Dy()), Radius: radius}
	pts := geometry.Translate(float64(vb.Dx())/2, float64(vb.Dy())/2).ApplyAll(rr.Points())
	mask := fillMask(out.Bounds(), pts)
	draw.DrawMask(out, out.Bounds(), view, vb.Min, mask, image.Point{}, draw.Src)
	return out
}

// boxBlur runs a separable box filter of the given radius over src using
// running prefix sums.
func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint8, w*h)
	sums := make([]int, max(w, h)+1)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x, v := range row {
			sums[x+1] = sums[x] + int(v)
		}
		for x := 0; x < w; x++ {
			lo, hi := max(0, x-radius), min(w-1, x+radius)
			tmp[y*w+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			sums[y+1] = sums[y] + int(tmp[y*w+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := max(0, y-radius), min(h-1, y+radius)
			out.Pix[y*out.Stride+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	return out
}
