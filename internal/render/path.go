package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/example/snapcanvas/internal/geometry"
)

const joinSegments = 16

// area returns the signed shoelace area of a closed polygon.
func area(pts []geometry.Point) float64 {
	var a float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// addPolygon appends a closed polygon to r. When positive is set the
// vertices are reordered so every polygon winds the same way; overlapping
// pieces then accumulate instead of cancelling.
func addPolygon(r *vector.Rasterizer, pts []geometry.Point, positive bool) {
	if len(pts) < 3 {
		return
	}
	if positive && area(pts) < 0 {
		rev := make([]geometry.Point, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
}

func disc(c geometry.Point, radius float64) []geometry.Point {
	pts := make([]geometry.Point, joinSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / joinSegments
		pts[i] = geometry.Point{X: c.X + math.Cos(a)*radius, Y: c.Y + math.Sin(a)*radius}
	}
	return pts
}

// strokePolygon outlines a closed polygon given in pixel space. Each edge is
// a quad and each vertex a round join.
func strokePolygon(r *vector.Rasterizer, pts []geometry.Point, width float64) {
	hw := width / 2
	if hw <= 0 || len(pts) < 2 {
		return
	}
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		d := q.Sub(p)
		l := d.Len()
		if l == 0 {
			continue
		}
		n := geometry.Point{X: -d.Y / l * hw, Y: d.X / l * hw}
		addPolygon(r, []geometry.Point{p.Add(n), q.Add(n), q.Sub(n), p.Sub(n)}, true)
		addPolygon(r, disc(p, hw), true)
	}
}

// fillMask rasterises a closed pixel-space polygon into an alpha mask the size
// of bounds.
func fillMask(bounds image.Rectangle, pts []geometry.Point) *image.Alpha {
	mask := image.NewAlpha(bounds)
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.DrawOp = draw.Src
	shifted := make([]geometry.Point, len(pts))
	for i, p := range pts {
		shifted[i] = geometry.Point{X: p.X - float64(bounds.Min.X), Y: p.Y - float64(bounds.Min.Y)}
	}
	addPolygon(r, shifted, false)
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func newRasterizer(dst *image.RGBA) *vector.Rasterizer {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	return r
}

func paint(dst *image.RGBA, r *vector.Rasterizer, c color.Color) {
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}
