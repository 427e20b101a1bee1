// Package script builds a scene from a YAML description so compositions can
// be rendered without the editor window.
//
//	aspect: "16:9"
//	background: mountain-hiker
//	objects:
//	  - image: ./photo.jpg
//	    radius: 24
//	    scale: 0.8
//	  - shape: star
//	    color: gold
//	    offset: [300, -120]
//	  - text: "Summer trip"
//	    size: 72
//	    position: {x: 640, y: 620}
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/snapcanvas/internal/config"
	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
)

// ErrInvalidScript reports a script that parsed but cannot be applied.
var ErrInvalidScript = errors.New("invalid scene script")

// Point is a canvas coordinate written as [x, y] or {x: .., y: ..}.
type Point geometry.Point

// UnmarshalYAML accepts a two element sequence or an x/y mapping.
func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := n.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point needs two numbers, got %d", n.Line, len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	case yaml.MappingNode:
		var m struct{ X, Y float64 }
		if err := n.Decode(&m); err != nil {
			return err
		}
		p.X, p.Y = m.X, m.Y
		return nil
	}
	return fmt.Errorf("line %d: point must be [x, y] or {x, y}", n.Line)
}

// Style overrides the insertion defaults.
type Style struct {
	ShapeColor  string  `yaml:"shape_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	TextColor   string  `yaml:"text_color"`
	FontSize    float64 `yaml:"font_size"`
	Align       string  `yaml:"align"`
}

// Object is one placed element. Exactly one of Image, Shape or Text is set.
type Object struct {
	Image string `yaml:"image"`
	Shape string `yaml:"shape"`
	Text  string `yaml:"text"`

	// Radius also carries over to later images, as the editor's radius
	// control does.
	Radius *int    `yaml:"radius"`
	Color  string  `yaml:"color"`
	Stroke float64 `yaml:"stroke"`
	Size   float64 `yaml:"size"`
	Align  string  `yaml:"align"`

	Position *Point  `yaml:"position"`
	Offset   *Point  `yaml:"offset"`
	Scale    float64 `yaml:"scale"`
	Rotate   float64 `yaml:"rotate"`
}

func (o Object) kind() string {
	var set []string
	for _, kv := range [][2]string{{"image", o.Image}, {"shape", o.Shape}, {"text", o.Text}} {
		if kv[1] != "" {
			set = append(set, kv[0])
		}
	}
	if len(set) != 1 {
		return ""
	}
	return set[0]
}

// Script is a whole composition.
type Script struct {
	Aspect          string   `yaml:"aspect"`
	Background      string   `yaml:"background"`
	BackgroundImage string   `yaml:"background_image"`
	BackgroundColor string   `yaml:"background_color"`
	Style           *Style   `yaml:"style"`
	Objects         []Object `yaml:"objects"`
	Output          string   `yaml:"output"`
}

// Parse decodes a script, rejecting unknown keys.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script without touching a surface.
func (s *Script) Validate() error {
	if s.Aspect != "" {
		if _, err := surface.ParsePreset(s.Aspect); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidScript, err)
		}
	}
	n := 0
	for _, v := range []string{s.Background, s.BackgroundImage, s.BackgroundColor} {
		if v != "" {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%w: set only one of background, background_image, background_color", ErrInvalidScript)
	}
	for i, o := range s.Objects {
		switch o.kind() {
		case "":
			return fmt.Errorf("%w: object %d needs exactly one of image, shape, text", ErrInvalidScript, i)
		case "shape":
			if _, err := geometry.ParseShapeKind(o.Shape); err != nil {
				return fmt.Errorf("%w: object %d: %v", ErrInvalidScript, i, err)
			}
		}
		if o.Align != "" {
			if _, ok := scene.ParseAlignment(o.Align); !ok {
				return fmt.Errorf("%w: object %d: unknown alignment %q", ErrInvalidScript, i, o.Align)
			}
		}
		if o.Scale < 0 {
			return fmt.Errorf("%w: object %d: negative scale", ErrInvalidScript, i)
		}
	}
	return nil
}

// Apply builds the scene on st's surface. Images go through the studio so
// they are gated like uploads in the editor.
func (s *Script) Apply(ctx context.Context, st *studio.Studio) error {
	c := st.Controller()
	if s.Aspect != "" {
		p, _ := surface.ParsePreset(s.Aspect)
		if err := c.ChangeAspectRatio(p); err != nil {
			return err
		}
	}
	if s.Style != nil {
		var style scene.Style
		if err := c.Do(func(sf *scene.Surface) (err error) {
			style, err = s.Style.apply(sf.Style())
			return err
		}); err != nil {
			return err
		}
		c.SetStyle(style)
	}
	if err := s.applyBackground(ctx, st); err != nil {
		return err
	}
	for i, o := range s.Objects {
		if err := o.apply(ctx, st); err != nil {
			return fmt.Errorf("object %d (%s): %w", i, o.kind(), err)
		}
	}
	c.Select(scene.NoID)
	return nil
}

func (st *Style) apply(base scene.Style) (scene.Style, error) {
	if st.ShapeColor != "" {
		col, err := config.ParseColor(st.ShapeColor)
		if err != nil {
			return base, err
		}
		base.ShapeColor = col
	}
	if st.TextColor != "" {
		col, err := config.ParseColor(st.TextColor)
		if err != nil {
			return base, err
		}
		base.TextColor = col
	}
	if st.StrokeWidth > 0 {
		base.StrokeWidth = st.StrokeWidth
	}
	if st.FontSize > 0 {
		base.FontSize = st.FontSize
	}
	if st.Align != "" {
		a, ok := scene.ParseAlignment(st.Align)
		if !ok {
			return base, fmt.Errorf("%w: unknown alignment %q", ErrInvalidScript, st.Align)
		}
		base.Align = a
	}
	return base, nil
}

func (s *Script) applyBackground(ctx context.Context, st *studio.Studio) error {
	c := st.Controller()
	switch {
	case s.Background != "":
		return st.ApplyBackground(ctx, s.Background)
	case s.BackgroundImage != "":
		return <-c.LoadBackground(ctx, surface.BackgroundRef{ID: "script", Ref: s.BackgroundImage})
	case s.BackgroundColor != "":
		col, err := config.ParseColor(s.BackgroundColor)
		if err != nil {
			return err
		}
		return c.Do(func(sf *scene.Surface) error { return sf.SetBackgroundColor(col) })
	}
	return nil
}

func (o Object) apply(ctx context.Context, st *studio.Studio) error {
	c := st.Controller()
	switch o.kind() {
	case "image":
		if err := st.UploadImage(ctx, o.Image); err != nil {
			return err
		}
	case "shape":
		kind, _ := geometry.ParseShapeKind(o.Shape)
		style := scene.ShapeStyle{StrokeWidth: o.Stroke}
		if o.Color != "" {
			col, err := config.ParseColor(o.Color)
			if err != nil {
				return err
			}
			style.Stroke = col
		}
		if err := c.Do(func(sf *scene.Surface) error {
			_, err := sf.InsertShape(kind, style)
			return err
		}); err != nil {
			return err
		}
	case "text":
		err := c.Do(func(sf *scene.Surface) error {
			t, err := sf.InsertText(strings.ReplaceAll(o.Text, `\n`, "\n"), o.Size)
			if err != nil {
				return err
			}
			if o.Color != "" {
				col, err := config.ParseColor(o.Color)
				if err != nil {
					return err
				}
				t.Fill = col
			}
			if o.Align != "" {
				t.Align, _ = scene.ParseAlignment(o.Align)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if err := c.Do(o.transform); err != nil {
		return err
	}
	if o.Radius != nil {
		return c.SetBorderRadius(*o.Radius)
	}
	return nil
}

func (o Object) transform(sf *scene.Surface) error {
	a := sf.Active()
	if a == nil {
		return nil
	}
	if o.Scale > 0 {
		sf.ScaleActive(o.Scale)
	}
	if o.Rotate != 0 {
		sf.RotateActive(o.Rotate)
	}
	if o.Position != nil {
		pos := a.Common().Position
		sf.MoveActive(o.Position.X-pos.X, o.Position.Y-pos.Y)
	}
	if o.Offset != nil {
		sf.MoveActive(o.Offset.X, o.Offset.Y)
	}
	return nil
}
