// Package scaling implements the two placement policies used when a decoded
// picture enters the canvas: cover for backgrounds and fit for overlays.
package scaling

import (
	"errors"
	"fmt"
	"math"

	"github.com/example/snapcanvas/internal/geometry"
)

// DefaultShrink keeps freshly inserted overlays within 70% of the canvas.
const DefaultShrink = 0.7

// ErrInvalidSourceDimensions is returned for sources with no usable size.
var ErrInvalidSourceDimensions = errors.New("invalid source dimensions")

func valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func check(cw, ch, sw, sh float64) error {
	if !valid(sw) || !valid(sh) {
		return fmt.Errorf("source %gx%g: %w", sw, sh, ErrInvalidSourceDimensions)
	}
	if !valid(cw) || !valid(ch) {
		return fmt.Errorf("canvas %gx%g: %w", cw, ch, ErrInvalidSourceDimensions)
	}
	return nil
}

// Cover returns the smallest uniform scale at which a sw x sh source covers
// the whole cw x ch canvas. Overflow is cropped by the canvas edges.
func Cover(cw, ch, sw, sh float64) (float64, error) {
	if err := check(cw, ch, sw, sh); err != nil {
		return 0, err
	}
	return math.Max(cw/sw, ch/sh), nil
}

// Fit returns the uniform scale that fits the source inside the canvas,
// multiplied by shrink.
func Fit(cw, ch, sw, sh, shrink float64) (float64, error) {
	if err := check(cw, ch, sw, sh); err != nil {
		return 0, err
	}
	if !valid(shrink) {
		shrink = DefaultShrink
	}
	return math.Min(cw/sw, ch/sh) * shrink, nil
}

// Centered returns the canvas centre, the anchor for every placement.
func Centered(cw, ch float64) geometry.Point {
	return geometry.Point{X: cw / 2, Y: ch / 2}
}
