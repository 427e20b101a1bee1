package scene

import (
	"image/color"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scaling"
)

// BackgroundMode says which kind of fill occupies the background slot.
type BackgroundMode int

const (
	BackgroundNone BackgroundMode = iota
	BackgroundColor
	BackgroundImage
)

func (m BackgroundMode) String() string {
	switch m {
	case BackgroundColor:
		return "color"
	case BackgroundImage:
		return "image"
	default:
		return "none"
	}
}

// Background is the surface's fill. Only the fields for Mode are meaningful.
type Background struct {
	Mode BackgroundMode
	// Color applies in BackgroundColor mode.
	Color color.NRGBA
	// ID is the catalog id of the image in BackgroundImage mode.
	ID       string
	Picture  Picture
	Scale    float64
	Position geometry.Point
}

// Transform maps background image pixels to canvas coordinates. The image is
// centred on Position.
func (b Background) Transform() geometry.Matrix {
	w, h := b.Picture.Size()
	return geometry.Translate(b.Position.X, b.Position.Y).
		Mul(geometry.Scale(b.Scale, b.Scale)).
		Mul(geometry.Translate(-float64(w)/2, -float64(h)/2))
}

// Background returns the current fill.
func (s *Surface) Background() Background { return s.bg }

// SetBackground replaces the fill with pic, cover-scaled and centred. The old
// fill stays in place if pic has no usable size.
func (s *Surface) SetBackground(id string, pic Picture) error {
	if s.disposed {
		return ErrDisposed
	}
	w, h := pic.Size()
	k, err := scaling.Cover(float64(s.width), float64(s.height), float64(w), float64(h))
	if err != nil {
		return err
	}
	s.bg = Background{
		Mode:     BackgroundImage,
		ID:       id,
		Picture:  pic,
		Scale:    k,
		Position: s.Center(),
	}
	return nil
}

// SetBackgroundColor replaces the fill with a flat colour, dropping any
// background image.
func (s *Surface) SetBackgroundColor(c color.Color) error {
	if s.disposed {
		return ErrDisposed
	}
	if c == nil {
		c = color.White
	}
	s.bg = Background{
		Mode:  BackgroundColor,
		Color: color.NRGBAModel.Convert(c).(color.NRGBA),
	}
	return nil
}
