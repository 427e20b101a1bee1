package theme

import (
	"image/color"
)

// Theme defines the colours of the editor workspace around the canvas.
type Theme struct {
	Name string

	// Workspace
	Background color.RGBA // Window area behind the card
	Foreground color.RGBA // Status text

	// Card
	Card       color.RGBA // Frame behind the canvas
	CardShadow color.RGBA

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
	StatusError      color.RGBA

	// Selection
	Selection       color.RGBA // Outline around the active object
	SelectionHandle color.RGBA

	// Transparent regions
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Background:       color.RGBA{243, 244, 246, 255},
		Foreground:       color.RGBA{17, 24, 39, 255},
		Card:             color.RGBA{255, 255, 255, 255},
		CardShadow:       color.RGBA{0, 0, 0, 90},
		StatusBackground: color.RGBA{229, 231, 235, 255},
		StatusText:       color.RGBA{55, 65, 81, 255},
		StatusError:      color.RGBA{220, 38, 38, 255},
		Selection:        color.RGBA{59, 130, 246, 255},
		SelectionHandle:  color.RGBA{255, 255, 255, 255},
		CheckerLight:     color.RGBA{220, 220, 220, 255},
		CheckerDark:      color.RGBA{192, 192, 192, 255},
	}
}
