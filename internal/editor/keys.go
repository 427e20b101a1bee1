package editor

import (
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/snapcanvas/internal/geometry"
)

// KeyShortcut identifies a key press. Printable keys match on Rune; keys
// pressed with Control and non-printing keys match on Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// shortcutOf normalises e. Shift is dropped so `+` and `]` match on every
// layout; callers that care read it from the event.
func shortcutOf(e key.Event) KeyShortcut {
	mods := e.Modifiers &^ key.ModShift
	if mods&key.ModControl != 0 || e.Rune <= 0 || !unicode.IsPrint(e.Rune) {
		return KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	return KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}
}

// Action names.
const (
	ActionText        = "text"
	ActionDelete      = "delete"
	ActionZoomIn      = "zoom-in"
	ActionZoomOut     = "zoom-out"
	ActionRadiusDown  = "radius-down"
	ActionRadiusUp    = "radius-up"
	ActionBackground  = "background"
	ActionPaste       = "paste"
	ActionExport      = "export"
	ActionCopy        = "copy"
	ActionReset       = "reset"
	ActionDeselect    = "deselect"
	ActionQuit        = "quit"
	ActionRotateLeft  = "rotate-left"
	ActionRotateRight = "rotate-right"
	ActionLeft        = "left"
	ActionRight       = "right"
	ActionUp          = "up"
	ActionDown        = "down"
	shapePrefix       = "shape:"
	aspectPrefix      = "aspect:"
)

// ShapeKeys maps insertion keys to shapes.
var ShapeKeys = map[rune]geometry.ShapeKind{
	'r': geometry.Rectangle,
	'c': geometry.Circle,
	't': geometry.Triangle,
	's': geometry.Star,
	'a': geometry.Arrow,
	'd': geometry.Diamond,
	'h': geometry.Hexagon,
	'p': geometry.Pentagon,
	'o': geometry.EllipseKind,
	'l': geometry.Lightning,
	'e': geometry.Heart,
	'i': geometry.Plus,
}

// DefaultBindings returns the editor's keyboard map.
func DefaultBindings() map[KeyShortcut]string {
	b := map[KeyShortcut]string{
		{Rune: 'x'}: ActionText,
		{Code: key.CodeDeleteForward}: ActionDelete,
		{Code: key.CodeDeleteBackspace}: ActionDelete,
		{Rune: '+'}: ActionZoomIn,
		{Rune: '='}: ActionZoomIn,
		{Rune: '-'}: ActionZoomOut,
		{Rune: '['}: ActionRadiusDown,
		{Rune: ']'}: ActionRadiusUp,
		{Rune: 'b'}: ActionBackground,
		{Rune: 'q'}: ActionQuit,
		{Rune: ','}: ActionRotateLeft,
		{Rune: '.'}: ActionRotateRight,
		{Code: key.CodeEscape}: ActionDeselect,
		{Code: key.CodeLeftArrow}: ActionLeft,
		{Code: key.CodeRightArrow}: ActionRight,
		{Code: key.CodeUpArrow}: ActionUp,
		{Code: key.CodeDownArrow}: ActionDown,
		{Code: key.CodeV, Modifiers: key.ModControl}: ActionPaste,
		{Code: key.CodeS, Modifiers: key.ModControl}: ActionExport,
		{Code: key.CodeC, Modifiers: key.ModControl}: ActionCopy,
		{Code: key.CodeR, Modifiers: key.ModControl}: ActionReset,
	}
	for r, k := range ShapeKeys {
		b[KeyShortcut{Rune: r}] = shapePrefix + k.String()
	}
	for i := 0; i < 5; i++ {
		b[KeyShortcut{Rune: rune('1' + i)}] = aspectPrefix + string(rune('1'+i))
	}
	return b
}
