// Package surface owns the lifecycle of the editor's canvas: which preset it
// has, rebuilding it when the aspect ratio changes, view zoom, selection
// notifications and the hand-off of asynchronously decoded pictures.
package surface

import (
	"fmt"
	"strings"
)

// Preset names an aspect ratio with fixed pixel dimensions.
type Preset string

const (
	Widescreen Preset = "16:9"
	Square     Preset = "1:1"
	Classic    Preset = "4:3"
	Portrait   Preset = "9:16"
	Ultrawide  Preset = "21:9"

	DefaultPreset = Widescreen
)

// Dimensions is a canvas size in pixels.
type Dimensions struct {
	Width, Height int
}

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

var presetDims = map[Preset]Dimensions{
	Widescreen: {1280, 720},
	Square:     {720, 720},
	Classic:    {960, 720},
	Portrait:   {720, 1280},
	Ultrawide:  {1680, 720},
}

// Presets lists the presets in menu order.
func Presets() []Preset {
	return []Preset{Widescreen, Square, Classic, Portrait, Ultrawide}
}

// Dimensions returns the pixel size bound to p.
func (p Preset) Dimensions() (Dimensions, bool) {
	d, ok := presetDims[p]
	return d, ok
}

// ParsePreset accepts "16:9" style names, and "16x9" or "16/9" spellings.
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("x", ":", "X", ":", "/", ":").Replace(s)
	p := Preset(s)
	if _, ok := presetDims[p]; !ok {
		return "", fmt.Errorf("unknown aspect ratio %q", s)
	}
	return p, nil
}
