package geometry

import (
	"fmt"
	"math"
)

// StarPoints returns the 2*spikes vertices of a star, alternating outer and
// inner radius. The first vertex points straight up.
func StarPoints(spikes int, outer, inner float64) ([]Point, error) {
	if spikes < 3 || !(outer > 0) || !(inner > 0) {
		return nil, fmt.Errorf("star spikes=%d outer=%g inner=%g: %w", spikes, outer, inner, ErrInvalidParameters)
	}
	step := math.Pi / float64(spikes)
	pts := make([]Point, 0, 2*spikes)
	for i := 0; i < 2*spikes; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i)*step - math.Pi/2
		pts = append(pts, Point{math.Cos(a) * r, math.Sin(a) * r})
	}
	return pts, nil
}

// ArrowPoints returns a right-pointing arrow outline of seven vertices:
// tail-top, shaft-top, head-top, tip, head-bottom, shaft-bottom, tail-bottom.
// The shaft is a third of the head width.
func ArrowPoints(body, headLength, headWidth float64) ([]Point, error) {
	if !(body > 0) || !(headLength > 0) || !(headWidth > 0) {
		return nil, fmt.Errorf("arrow body=%g head=%gx%g: %w", body, headLength, headWidth, ErrInvalidParameters)
	}
	half := (body + headLength) / 2
	shaft := headWidth / 6
	neck := -half + body
	return []Point{
		{-half, -shaft},
		{neck, -shaft},
		{neck, -headWidth / 2},
		{half, 0},
		{neck, headWidth / 2},
		{neck, shaft},
		{-half, shaft},
	}, nil
}

// RegularPolygon returns the vertices of a regular polygon inscribed in a
// circle of the given radius, first vertex straight up.
func RegularPolygon(sides int, radius float64) ([]Point, error) {
	if sides < 3 || !(radius > 0) {
		return nil, fmt.Errorf("polygon sides=%d radius=%g: %w", sides, radius, ErrInvalidParameters)
	}
	pts := make([]Point, sides)
	for i := range pts {
		a := 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		pts[i] = Point{math.Cos(a) * radius, math.Sin(a) * radius}
	}
	return pts, nil
}

// TrianglePoints returns an isosceles triangle with its apex up.
func TrianglePoints(w, h float64) ([]Point, error) {
	if !(w > 0) || !(h > 0) {
		return nil, fmt.Errorf("triangle %gx%g: %w", w, h, ErrInvalidParameters)
	}
	return []Point{{0, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}}, nil
}

// DiamondPoints returns a rhombus with vertices on the axes.
func DiamondPoints(w, h float64) ([]Point, error) {
	if !(w > 0) || !(h > 0) {
		return nil, fmt.Errorf("diamond %gx%g: %w", w, h, ErrInvalidParameters)
	}
	return []Point{{0, -h / 2}, {w / 2, 0}, {0, h / 2}, {-w / 2, 0}}, nil
}

const heartSteps = 48

// HeartPoints samples the classic parametric heart so its width equals size,
// then recentres it on the origin.
func HeartPoints(size float64) ([]Point, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("heart size=%g: %w", size, ErrInvalidParameters)
	}
	k := size / 32
	pts := make([]Point, heartSteps)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / heartSteps
		s := math.Sin(t)
		x := 16 * s * s * s
		y := -(13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t))
		pts[i] = Point{x * k, y * k}
	}
	c := Bounds(pts).Center()
	for i := range pts {
		pts[i] = pts[i].Sub(c)
	}
	return pts, nil
}

// PlusPoints returns a twelve-vertex cross whose arms span size and are
// thickness wide.
func PlusPoints(size, thickness float64) ([]Point, error) {
	if !(size > 0) || !(thickness > 0) || thickness >= size {
		return nil, fmt.Errorf("plus size=%g thickness=%g: %w", size, thickness, ErrInvalidParameters)
	}
	a, b := size/2, thickness/2
	return []Point{
		{-b, -a}, {b, -a}, {b, -b}, {a, -b},
		{a, b}, {b, b}, {b, a}, {-b, a},
		{-b, b}, {-a, b}, {-a, -b}, {-b, -b},
	}, nil
}

var lightningUnit = []Point{
	{0.05, -0.5},
	{-0.3, 0.05},
	{-0.05, 0.05},
	{-0.2, 0.5},
	{0.3, -0.08},
	{0.05, -0.08},
	{0.2, -0.5},
}

// LightningPoints returns a seven-vertex bolt that is size tall.
func LightningPoints(size float64) ([]Point, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("lightning size=%g: %w", size, ErrInvalidParameters)
	}
	pts := make([]Point, len(lightningUnit))
	for i, p := range lightningUnit {
		pts[i] = p.Mul(size)
	}
	return pts, nil
}

// RoundedRect is a rectangle primitive with uniform corner radius.
type RoundedRect struct {
	Width, Height, Radius float64
}

// Clamped returns r with its radius limited to half the shorter side so the
// corner arcs never overlap.
func (r RoundedRect) Clamped() RoundedRect {
	r.Radius = math.Max(0, math.Min(r.Radius, math.Min(r.Width/2, r.Height/2)))
	return r
}

// Bounds returns the rectangle's local bounds.
func (r RoundedRect) Bounds() Rect { return RectCentered(Point{}, r.Width, r.Height) }

const arcSegments = 12

// Points flattens the outline clockwise from the top edge. Corner arcs are
// split into short chords; a zero radius yields the four corners.
func (r RoundedRect) Points() []Point {
	r = r.Clamped()
	hw, hh := r.Width/2, r.Height/2
	if r.Radius == 0 {
		return []Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	}
	centres := [4]Point{
		{hw - r.Radius, -hh + r.Radius},
		{hw - r.Radius, hh - r.Radius},
		{-hw + r.Radius, hh - r.Radius},
		{-hw + r.Radius, -hh + r.Radius},
	}
	pts := make([]Point, 0, 4*(arcSegments+1))
	for i, c := range centres {
		start := -math.Pi/2 + float64(i)*math.Pi/2
		for j := 0; j <= arcSegments; j++ {
			a := start + float64(j)*(math.Pi/2)/arcSegments
			pts = append(pts, Point{c.X + math.Cos(a)*r.Radius, c.Y + math.Sin(a)*r.Radius})
		}
	}
	return pts
}

// Ellipse is an axis-aligned ellipse primitive.
type Ellipse struct {
	RX, RY float64
}

// Bounds returns the ellipse's local bounds.
func (e Ellipse) Bounds() Rect { return RectCentered(Point{}, 2*e.RX, 2*e.RY) }

const ellipseSegments = 72

// Points flattens the ellipse clockwise starting at the top.
func (e Ellipse) Points() []Point {
	pts := make([]Point, ellipseSegments)
	for i := range pts {
		a := 2*math.Pi*float64(i)/ellipseSegments - math.Pi/2
		pts[i] = Point{math.Cos(a) * e.RX, math.Sin(a) * e.RY}
	}
	return pts
}
