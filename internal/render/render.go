// Package render flattens a scene surface into pixels. It is used both for
// PNG export and for the editor's on-screen view.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
)

const (
	// DefaultMultiplier is the device-pixel multiplier used for exports.
	DefaultMultiplier = 2
	// ExportFilename is the conventional name for exported files.
	ExportFilename = "edited-image.png"
	maxPixels      = 1 << 28
)

// ErrInvalidMultiplier rejects non-positive or oversized output scales.
var ErrInvalidMultiplier = errors.New("invalid export multiplier")

// Options controls a single rasterisation.
type Options struct {
	// Scale maps canvas units to output pixels.
	Scale float64
	// Selection, when non-nil, outlines the active object in that colour.
	Selection color.Color
	// Interpolator resamples images. Defaults to ApproxBiLinear.
	Interpolator xdraw.Interpolator
}

func aff3(m geometry.Matrix) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// Rasterize paints s at multiplier times its native size.
func Rasterize(s *scene.Surface, multiplier float64) (*image.RGBA, error) {
	return Draw(s, Options{Scale: multiplier})
}

// Preview paints s at display zoom with the active object outlined in
// selection. Exports never carry the outline.
func Preview(s *scene.Surface, zoom float64, selection color.Color) (*image.RGBA, error) {
	return Draw(s, Options{Scale: zoom, Selection: selection, Interpolator: xdraw.ApproxBiLinear})
}

// Draw paints the background then every object in paint order. It only reads
// from s.
func Draw(s *scene.Surface, opts Options) (*image.RGBA, error) {
	k := opts.Scale
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%g: %w", k, ErrInvalidMultiplier)
	}
	w := int(math.Round(float64(s.Width()) * k))
	h := int(math.Round(float64(s.Height()) * k))
	if w <= 0 || h <= 0 || w*h > maxPixels {
		return nil, fmt.Errorf("%g gives %dx%d: %w", k, w, h, ErrInvalidMultiplier)
	}
	if opts.Interpolator == nil {
		opts.Interpolator = xdraw.ApproxBiLinear
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	base := geometry.Scale(k, k)

	drawBackground(dst, s.Background(), base, opts.Interpolator)
	for _, o := range s.Objects() {
		var err error
		switch o := o.(type) {
		case *scene.Image:
			drawImage(dst, o, base, opts.Interpolator)
		case *scene.Shape:
			drawShape(dst, o, base, k)
		case *scene.Text:
			err = drawText(dst, o, base, k, opts.Interpolator)
		}
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", o.ID(), err)
		}
	}
	if opts.Selection != nil {
		if a := s.Active(); a != nil {
			drawSelection(dst, a, base, opts.Selection)
		}
	}
	return dst, nil
}

func drawBackground(dst *image.RGBA, bg scene.Background, base geometry.Matrix, interp xdraw.Interpolator) {
	switch bg.Mode {
	case scene.BackgroundColor:
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg.Color), image.Point{}, draw.Src)
	case scene.BackgroundImage:
		src := bg.Picture.Image
		if src == nil {
			return
		}
		origin := src.Bounds().Min
		m := base.Mul(bg.Transform()).Mul(geometry.Translate(-float64(origin.X), -float64(origin.Y)))
		interp.Transform(dst, aff3(m), src, src.Bounds(), draw.Src, nil)
	}
}

// pixelTransform maps source pixels of a w x h raster onto the canvas through
// the object's transform, with the raster centred on the local origin.
func pixelTransform(b *scene.Base, base geometry.Matrix, bounds image.Rectangle) geometry.Matrix {
	return base.Mul(b.Transform()).Mul(geometry.Translate(
		-float64(bounds.Min.X)-float64(bounds.Dx())/2,
		-float64(bounds.Min.Y)-float64(bounds.Dy())/2,
	))
}

func drawImage(dst *image.RGBA, im *scene.Image, base geometry.Matrix, interp xdraw.Interpolator) {
	src := im.Picture.Image
	if src == nil {
		return
	}
	m := pixelTransform(&im.Base, base, src.Bounds())
	var opts *xdraw.Options
	if clip, ok := im.Clip(); ok {
		// The clip lives in rendered units, so it shares the object's
		// position and rotation but not its scale.
		cm := base.Mul(geometry.Translate(im.Position.X, im.Position.Y)).Mul(geometry.Rotate(im.Rotation))
		mask := fillMask(dst.Bounds(), cm.ApplyAll(clip.Rect().Points()))
		opts = &xdraw.Options{DstMask: mask}
	}
	interp.Transform(dst, aff3(m), src, src.Bounds(), draw.Over, opts)
}

func objectScale(b *scene.Base) float64 {
	return math.Sqrt(math.Abs(b.ScaleX * b.ScaleY))
}

func drawShape(dst *image.RGBA, sh *scene.Shape, base geometry.Matrix, k float64) {
	m := base.Mul(sh.Transform())
	pts := m.ApplyAll(sh.Outline.Polygon())
	if sh.Fill.A > 0 {
		r := newRasterizer(dst)
		addPolygon(r, pts, false)
		paint(dst, r, sh.Fill)
	}
	if sh.Stroke.A == 0 || sh.StrokeWidth <= 0 {
		return
	}
	r := newRasterizer(dst)
	strokePolygon(r, pts, sh.StrokeWidth*k*objectScale(&sh.Base))
	paint(dst, r, sh.Stroke)
}

func drawText(dst *image.RGBA, t *scene.Text, base geometry.Matrix, k float64, interp xdraw.Interpolator) error {
	// Render at the final pixel size so glyphs stay crisp, then map the block
	// back to canvas units before applying the object transform.
	res := k * math.Max(math.Abs(t.ScaleX), math.Abs(t.ScaleY))
	if res <= 0 {
		return nil
	}
	block, err := drawTextBlock(t, res)
	if err != nil {
		return err
	}
	bw, bh := float64(block.Bounds().Dx()), float64(block.Bounds().Dy())
	m := base.Mul(t.Transform()).Mul(geometry.Scale(1/res, 1/res)).Mul(geometry.Translate(-bw/2, -bh/2))
	interp.Transform(dst, aff3(m), block, block.Bounds(), draw.Over, nil)
	return nil
}

func drawSelection(dst *image.RGBA, o scene.Object, base geometry.Matrix, c color.Color) {
	corners := o.LocalBounds().Corners()
	pts := base.Mul(o.Common().Transform()).ApplyAll(corners[:])
	r := newRasterizer(dst)
	strokePolygon(r, pts, 1.5)
	paint(dst, r, c)
	for _, p := range pts {
		handle := geometry.RectCentered(p, 8, 8).Corners()
		r := newRasterizer(dst)
		addPolygon(r, handle[:], false)
		paint(dst, r, c)
	}
}

// ExportPNG writes s to w as a lossless PNG at multiplier times native size.
func ExportPNG(w io.Writer, s *scene.Surface, multiplier float64) error {
	img, err := Rasterize(s, multiplier)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
