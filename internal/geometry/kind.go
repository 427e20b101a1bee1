package geometry

import (
	"fmt"
	"strings"
)

// ShapeKind identifies one of the outline shapes the editor can insert.
type ShapeKind int

const (
	Rectangle ShapeKind = iota
	Circle
	Triangle
	Star
	Arrow
	Diamond
	Hexagon
	Pentagon
	Heart
	Plus
	EllipseKind
	Lightning
)

var kindNames = [...]string{
	Rectangle:   "rectangle",
	Circle:      "circle",
	Triangle:    "triangle",
	Star:        "star",
	Arrow:       "arrow",
	Diamond:     "diamond",
	Hexagon:     "hexagon",
	Pentagon:    "pentagon",
	Heart:       "heart",
	Plus:        "plus",
	EllipseKind: "ellipse",
	Lightning:   "lightning",
}

// Kinds lists every shape kind in menu order.
func Kinds() []ShapeKind {
	out := make([]ShapeKind, len(kindNames))
	for i := range out {
		out[i] = ShapeKind(i)
	}
	return out
}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseShapeKind maps a name such as "star" to its kind.
func ParseShapeKind(s string) (ShapeKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return ShapeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

// Outline is the canonical local-space description of a shape. Exactly one of
// Points, Rect or Ellipse is set.
type Outline struct {
	Kind    ShapeKind
	Points  []Point
	Rect    *RoundedRect
	Ellipse *Ellipse
}

// Bounds returns the local bounding box.
func (o Outline) Bounds() Rect {
	switch {
	case o.Rect != nil:
		return o.Rect.Bounds()
	case o.Ellipse != nil:
		return o.Ellipse.Bounds()
	default:
		return Bounds(o.Points)
	}
}

// Polygon returns the outline as a closed vertex list, flattening primitives.
func (o Outline) Polygon() []Point {
	switch {
	case o.Rect != nil:
		return o.Rect.Points()
	case o.Ellipse != nil:
		return o.Ellipse.Points()
	default:
		return o.Points
	}
}

// OutlineFor builds the default-size outline for kind.
func OutlineFor(kind ShapeKind) (Outline, error) {
	o := Outline{Kind: kind}
	var err error
	switch kind {
	case Rectangle:
		o.Rect = &RoundedRect{Width: 200, Height: 120}
	case Circle:
		o.Ellipse = &Ellipse{RX: 60, RY: 60}
	case EllipseKind:
		o.Ellipse = &Ellipse{RX: 90, RY: 55}
	case Triangle:
		o.Points, err = TrianglePoints(120, 120)
	case Star:
		o.Points, err = StarPoints(5, 80, 40)
	case Arrow:
		o.Points, err = ArrowPoints(140, 60, 90)
	case Diamond:
		o.Points, err = DiamondPoints(120, 160)
	case Hexagon:
		o.Points, err = RegularPolygon(6, 70)
	case Pentagon:
		o.Points, err = RegularPolygon(5, 70)
	case Heart:
		o.Points, err = HeartPoints(140)
	case Plus:
		o.Points, err = PlusPoints(120, 40)
	case Lightning:
		o.Points, err = LightningPoints(160)
	default:
		return Outline{}, fmt.Errorf("shape %v: %w", kind, ErrInvalidParameters)
	}
	if err != nil {
		return Outline{}, err
	}
	return o, nil
}
