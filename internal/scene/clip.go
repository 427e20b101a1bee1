package scene

import (
	"errors"
	"fmt"
	"math"
)

// Border radius bounds accepted by ApplyBorderRadius.
const (
	MinBorderRadius = 0
	MaxBorderRadius = 100
)

// ErrRadiusOutOfRange rejects radii outside [MinBorderRadius, MaxBorderRadius].
var ErrRadiusOutOfRange = errors.New("border radius out of range")

// ApplyBorderRadius records the corner radius of the active image. A zero
// radius, or an active object that is not an image, leaves the object
// unclipped.
func (s *Surface) ApplyBorderRadius(radius int) error {
	if radius < MinBorderRadius || radius > MaxBorderRadius {
		return fmt.Errorf("%d: %w", radius, ErrRadiusOutOfRange)
	}
	if im, ok := s.Active().(*Image); ok {
		im.BorderRadius = radius
	}
	return nil
}

// Clip derives the image's clip region from its requested radius and current
// rendered size. The radius is limited to half the shorter rendered side.
func (im *Image) Clip() (ClipRegion, bool) {
	if im.BorderRadius <= 0 {
		return ClipRegion{}, false
	}
	w, h := im.RenderedSize()
	if w <= 0 || h <= 0 {
		return ClipRegion{}, false
	}
	r := math.Min(float64(im.BorderRadius), math.Min(w/2, h/2))
	return ClipRegion{Width: w, Height: h, Radius: r}, true
}
