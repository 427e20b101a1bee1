// Package scene holds the in-memory composition: a background slot and an
// ordered list of placed objects with a single active selection.
//
// Paint order is insertion order. The background is never an object.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scaling"
)

var (
	// ErrDisposed is returned by mutations on a surface that has been torn down.
	ErrDisposed = errors.New("surface disposed")
	// ErrEmptyText rejects text objects with no content.
	ErrEmptyText = errors.New("text content is empty")
	// ErrInvalidSize rejects surfaces without area.
	ErrInvalidSize = errors.New("surface size must be positive")
)

const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 40
)

// TextMeasurer reports the laid-out size of a text block.
type TextMeasurer interface {
	Measure(content string, fontSize float64) (w, h float64)
}

type estimateMeasurer struct{}

func (estimateMeasurer) Measure(content string, size float64) (float64, float64) {
	lines := strings.Split(content, "\n")
	w := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > w {
			w = n
		}
	}
	return float64(w) * size * 0.55, float64(len(lines)) * size * 1.16
}

// Style holds the global insertion defaults.
type Style struct {
	ShapeColor  color.NRGBA
	StrokeWidth float64
	TextColor   color.NRGBA
	FontSize    float64
	Align       Alignment
}

// DefaultStyle returns the editor's initial insertion defaults.
func DefaultStyle() Style {
	return Style{
		ShapeColor:  color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
		StrokeWidth: 3,
		TextColor:   color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff},
		FontSize:    48,
		Align:       AlignCenter,
	}
}

// ShapeStyle overrides the stroke of a single inserted shape. Zero fields fall
// back to the surface style.
type ShapeStyle struct {
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Surface is one canvas. Its dimensions are fixed for its lifetime.
type Surface struct {
	width, height int
	bg            Background
	objects       []Object
	active        ID
	lastID        ID
	style         Style
	measurer      TextMeasurer
	onSelect      func(Object)
	disposed      bool
}

// New returns an empty surface with a white background.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	return &Surface{
		width:    width,
		height:   height,
		bg:       Background{Mode: BackgroundColor, Color: color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		style:    DefaultStyle(),
		measurer: estimateMeasurer{},
	}, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Center returns the canvas centre point.
func (s *Surface) Center() geometry.Point {
	return scaling.Centered(float64(s.width), float64(s.height))
}

// Style returns the current insertion defaults.
func (s *Surface) Style() Style { return s.style }

// SetStyle replaces the insertion defaults. Existing objects are untouched.
func (s *Surface) SetStyle(st Style) { s.style = st }

// SetMeasurer installs the text measurer used to size text objects.
func (s *Surface) SetMeasurer(m TextMeasurer) {
	if m == nil {
		m = estimateMeasurer{}
	}
	s.measurer = m
	for _, o := range s.objects {
		if t, ok := o.(*Text); ok {
			s.measure(t)
		}
	}
}

// OnSelect installs the selection-change hook.
func (s *Surface) OnSelect(fn func(Object)) { s.onSelect = fn }

// Dispose tears the surface down. Later mutations are rejected or ignored.
func (s *Surface) Dispose() {
	s.disposed = true
	s.objects = nil
	s.active = NoID
	s.onSelect = nil
}

// Disposed reports whether Dispose has been called.
func (s *Surface) Disposed() bool { return s.disposed }

// Objects returns the objects in paint order. The slice is a copy.
func (s *Surface) Objects() []Object {
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Len returns the number of placed objects.
func (s *Surface) Len() int { return len(s.objects) }

// Lookup finds an object by id.
func (s *Surface) Lookup(id ID) (Object, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.objects[i], true
}

func (s *Surface) index(id ID) int {
	if id == NoID {
		return -1
	}
	for i, o := range s.objects {
		if o.ID() == id {
			return i
		}
	}
	return -1
}

// Active returns the selected object or nil.
func (s *Surface) Active() Object {
	o, _ := s.Lookup(s.active)
	return o
}

func (s *Surface) nextID() ID {
	s.lastID++
	return s.lastID
}

func (s *Surface) setSelection(id ID) {
	if s.active == id {
		return
	}
	s.active = id
	if s.onSelect != nil {
		s.onSelect(s.Active())
	}
}

func (s *Surface) appendActive(o Object) {
	s.objects = append(s.objects, o)
	s.setSelection(o.ID())
}

// InsertImage places pic at the canvas centre scaled to fit within the
// default margin and selects it.
func (s *Surface) InsertImage(pic Picture) (*Image, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	w, h := pic.Size()
	k, err := scaling.Fit(float64(s.width), float64(s.height), float64(w), float64(h), scaling.DefaultShrink)
	if err != nil {
		return nil, err
	}
	im := &Image{
		Base:          newBase(s.nextID(), s.Center()),
		Picture:       pic,
		NaturalWidth:  w,
		NaturalHeight: h,
	}
	im.ScaleX, im.ScaleY = k, k
	s.appendActive(im)
	return im, nil
}

// InsertShape places a default-size outline of kind at the canvas centre.
func (s *Surface) InsertShape(kind geometry.ShapeKind, st ShapeStyle) (*Shape, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	o, err := geometry.OutlineFor(kind)
	if err != nil {
		return nil, err
	}
	if st.Stroke.A == 0 {
		st.Stroke = s.style.ShapeColor
	}
	if st.StrokeWidth <= 0 {
		st.StrokeWidth = s.style.StrokeWidth
	}
	sh := &Shape{
		Base:        newBase(s.nextID(), s.Center()),
		Kind:        kind,
		Outline:     o,
		Stroke:      st.Stroke,
		StrokeWidth: clampStroke(st.StrokeWidth),
	}
	s.appendActive(sh)
	return sh, nil
}

// InsertText places a text block at the canvas centre. A non-positive size
// uses the style default.
func (s *Surface) InsertText(content string, fontSize float64) (*Text, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyText
	}
	if !(fontSize > 0) {
		fontSize = s.style.FontSize
	}
	t := &Text{
		Base:     newBase(s.nextID(), s.Center()),
		Content:  content,
		FontSize: fontSize,
		Fill:     s.style.TextColor,
		Align:    s.style.Align,
	}
	s.measure(t)
	s.appendActive(t)
	return t, nil
}

func (s *Surface) measure(t *Text) {
	t.width, t.height = s.measurer.Measure(t.Content, t.FontSize)
}

// Remove deletes the object with id. It reports whether anything was removed;
// unknown ids are ignored.
func (s *Surface) Remove(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	if s.active == id {
		s.setSelection(NoID)
	}
	return true
}

// RemoveActive deletes the selected object, if any.
func (s *Surface) RemoveActive() bool {
	return s.Remove(s.active)
}

// SetActive selects id. Unknown or non-selectable ids clear the selection.
func (s *Surface) SetActive(id ID) Object {
	o, ok := s.Lookup(id)
	if !ok || !o.Common().Selectable {
		s.setSelection(NoID)
		return nil
	}
	s.setSelection(id)
	return o
}

// HitTest returns the topmost evented object under p.
func (s *Surface) HitTest(p geometry.Point) Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		b := o.Common()
		if b.Selectable && b.Evented && Contains(o, p) {
			return o
		}
	}
	return nil
}

// SelectAt selects the topmost object under p, or clears the selection when
// p hits empty canvas.
func (s *Surface) SelectAt(p geometry.Point) Object {
	if o := s.HitTest(p); o != nil {
		return s.SetActive(o.ID())
	}
	s.setSelection(NoID)
	return nil
}

func clampStroke(w float64) float64 {
	return math.Max(MinStrokeWidth, math.Min(MaxStrokeWidth, w))
}

// UpdateActiveStrokeWidth changes the stroke of the active shape. Other
// selections are left alone and false is returned.
func (s *Surface) UpdateActiveStrokeWidth(w float64) bool {
	sh, ok := s.Active().(*Shape)
	if !ok || !(w > 0) {
		return false
	}
	sh.StrokeWidth = clampStroke(w)
	return true
}

// UpdateActiveColor changes the stroke colour of the active shape.
func (s *Surface) UpdateActiveColor(c color.Color) bool {
	sh, ok := s.Active().(*Shape)
	if !ok || c == nil {
		return false
	}
	sh.Stroke = color.NRGBAModel.Convert(c).(color.NRGBA)
	return true
}

// UpdateActiveText replaces the content of the active text block.
func (s *Surface) UpdateActiveText(content string) bool {
	t, ok := s.Active().(*Text)
	if !ok || strings.TrimSpace(content) == "" {
		return false
	}
	t.Content = content
	s.measure(t)
	return true
}

// MoveActive translates the active object by (dx, dy).
func (s *Surface) MoveActive(dx, dy float64) bool {
	o := s.Active()
	if o == nil {
		return false
	}
	b := o.Common()
	b.Position = b.Position.Add(geometry.Point{X: dx, Y: dy})
	return true
}

// ScaleActive multiplies the active object's scale by f.
func (s *Surface) ScaleActive(f float64) bool {
	o := s.Active()
	if o == nil || !(f > 0) || math.IsInf(f, 0) {
		return false
	}
	b := o.Common()
	b.ScaleX *= f
	b.ScaleY *= f
	return true
}

// RotateActive adds deg degrees of clockwise rotation to the active object.
func (s *Surface) RotateActive(deg float64) bool {
	o := s.Active()
	if o == nil {
		return false
	}
	b := o.Common()
	b.Rotation = math.Mod(b.Rotation+deg, 360)
	return true
}

// Clear removes every object and the selection. The background is kept.
func (s *Surface) Clear() {
	s.objects = nil
	s.setSelection(NoID)
}
