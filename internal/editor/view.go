package editor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/render"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/theme"
)

const (
	statusHeight = 24
	margin       = 32
)

// Layout places the canvas view inside the window.
type Layout struct {
	Window image.Point
	Canvas image.Point
	Zoom   float64
}

// ViewRect is the on-screen rectangle of the canvas, centred in the area
// above the status bar.
func (l Layout) ViewRect() image.Rectangle {
	w := int(math.Round(float64(l.Canvas.X) * l.Zoom))
	h := int(math.Round(float64(l.Canvas.Y) * l.Zoom))
	availH := l.Window.Y - statusHeight
	x := (l.Window.X - w) / 2
	y := (availH - h) / 2
	if x < margin/2 {
		x = margin / 2
	}
	if y < margin/2 {
		y = margin / 2
	}
	return image.Rect(x, y, x+w, y+h)
}

// ToCanvas maps a window pixel to canvas units.
func (l Layout) ToCanvas(p image.Point) geometry.Point {
	o := l.ViewRect().Min
	return geometry.Point{X: float64(p.X-o.X) / l.Zoom, Y: float64(p.Y-o.Y) / l.Zoom}
}

// FitWindow returns a window size that shows the canvas at zoom with margins.
func FitWindow(canvas image.Point, zoom float64) image.Point {
	return image.Pt(
		int(math.Round(float64(canvas.X)*zoom))+2*margin,
		int(math.Round(float64(canvas.Y)*zoom))+2*margin+statusHeight,
	)
}

// Status is the line shown at the bottom of the window.
type Status struct {
	Text  string
	Error bool
}

// Compose paints one frame: workspace, carded canvas view with the active
// object outlined, and the status bar.
func Compose(dst *image.RGBA, sf *scene.Surface, l Layout, th *theme.Theme, st Status) error {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)

	view, err := render.Preview(sf, l.Zoom, th.Selection)
	if err != nil {
		return err
	}
	opts := render.DefaultCardOptions()
	opts.Opacity = float64(th.CardShadow.A) / 255
	card := render.Frame(view, opts)
	at := l.ViewRect().Min.Sub(card.Offset)
	draw.Draw(dst, card.Image.Bounds().Add(at), card.Image, image.Point{}, draw.Over)

	drawStatus(dst, th, st)
	return nil
}

func drawStatus(dst *image.RGBA, th *theme.Theme, st Status) {
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(th.StatusBackground), image.Point{}, draw.Src)
	if st.Text == "" {
		return
	}
	var fg color.Color = th.StatusText
	if st.Error {
		fg = th.StatusError
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	asc := face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(bar.Min.X+8, bar.Min.Y+(statusHeight+asc)/2-1)
	d.DrawString(st.Text)
}
