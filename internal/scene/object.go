package scene

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/example/snapcanvas/internal/geometry"
)

// ID identifies an object within one surface. IDs are assigned from a
// monotonic counter and never reused.
type ID uint64

// NoID means "no object".
const NoID ID = 0

// Picture is a decoded image together with the reference it came from.
type Picture struct {
	Ref   string
	Image image.Image
}

// Size returns the pixel dimensions of the picture, or zero when undecoded.
func (p Picture) Size() (w, h int) {
	if p.Image == nil {
		return 0, 0
	}
	b := p.Image.Bounds()
	return b.Dx(), b.Dy()
}

// ClipRegion is a rounded rectangle centred on an object's local origin,
// expressed in rendered (scaled) canvas units.
type ClipRegion struct {
	Width, Height, Radius float64
}

// Rect returns the region as a geometry primitive.
func (c ClipRegion) Rect() geometry.RoundedRect {
	return geometry.RoundedRect{Width: c.Width, Height: c.Height, Radius: c.Radius}
}

// Object is one placed element. The concrete type is *Image, *Shape or *Text.
type Object interface {
	ID() ID
	Common() *Base
	// LocalBounds is the unscaled extent centred on the origin.
	LocalBounds() geometry.Rect
	isObject()
}

// Base holds the attributes every object shares.
type Base struct {
	id         ID
	Position   geometry.Point
	ScaleX     float64
	ScaleY     float64
	Rotation   float64
	Selectable bool
	Evented    bool
}

func newBase(id ID, pos geometry.Point) Base {
	return Base{id: id, Position: pos, ScaleX: 1, ScaleY: 1, Selectable: true, Evented: true}
}

func (b *Base) ID() ID        { return b.id }
func (b *Base) Common() *Base { return b }

// Clip reports no clip region; only images can be clipped.
func (b *Base) Clip() (ClipRegion, bool) { return ClipRegion{}, false }

// Transform maps local coordinates to canvas coordinates.
func (b *Base) Transform() geometry.Matrix {
	return geometry.Object(b.Position, b.ScaleX, b.ScaleY, b.Rotation)
}

// Image is a placed raster.
type Image struct {
	Base
	Picture       Picture
	NaturalWidth  int
	NaturalHeight int
	// BorderRadius is the last radius requested for this image.
	BorderRadius int
}

func (*Image) isObject() {}

func (im *Image) LocalBounds() geometry.Rect {
	return geometry.RectCentered(geometry.Point{}, float64(im.NaturalWidth), float64(im.NaturalHeight))
}

// RenderedSize returns the natural size multiplied by the current scale.
func (im *Image) RenderedSize() (w, h float64) {
	return float64(im.NaturalWidth) * math.Abs(im.ScaleX), float64(im.NaturalHeight) * math.Abs(im.ScaleY)
}

// Shape is an outline-only vector shape.
type Shape struct {
	Base
	Kind        geometry.ShapeKind
	Outline     geometry.Outline
	Stroke      color.NRGBA
	StrokeWidth float64
	Fill        color.NRGBA
}

func (*Shape) isObject() {}

func (s *Shape) LocalBounds() geometry.Rect {
	return s.Outline.Bounds().Inset(-s.StrokeWidth / 2)
}

// Alignment is horizontal text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// ParseAlignment accepts left, center/centre or right.
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, true
	case "center", "centre", "":
		return AlignCenter, true
	case "right":
		return AlignRight, true
	}
	return AlignCenter, false
}

// Text is a block of one or more lines.
type Text struct {
	Base
	Content  string
	FontSize float64
	Fill     color.NRGBA
	Align    Alignment
	width    float64
	height   float64
}

func (*Text) isObject() {}

func (t *Text) LocalBounds() geometry.Rect {
	return geometry.RectCentered(geometry.Point{}, t.width, t.height)
}

// Lines splits the content on newlines.
func (t *Text) Lines() []string { return strings.Split(t.Content, "\n") }

// CanvasBounds returns the axis-aligned canvas bounds of o after transform.
func CanvasBounds(o Object) geometry.Rect {
	lb := o.LocalBounds()
	m := o.Common().Transform()
	c := lb.Corners()
	return geometry.Bounds(m.ApplyAll(c[:]))
}

// Contains reports whether canvas point p falls inside o's transformed box.
func Contains(o Object, p geometry.Point) bool {
	inv, ok := o.Common().Transform().Invert()
	if !ok {
		return false
	}
	lb := o.LocalBounds()
	q := inv.Apply(p)
	return q.X >= lb.Min.X && q.X <= lb.Max.X && q.Y >= lb.Min.Y && q.Y <= lb.Max.Y
}
