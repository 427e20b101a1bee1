package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case current != nil:
			err = theme.Set(current, key, value)
		case section == "":
			err = cfg.Set(key, value)
		default:
			err = cfg.Set(section+"."+key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

// Set assigns a value by dotted key, as in `stroke_width` or `notify.export`.
// Unknown keys are ignored.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		c.Theme = value
	case "aspect_ratio":
		c.AspectRatio = value
	case "default_background":
		c.DefaultBackground = value
	case "background_color":
		c.BackgroundColor = value
	case "export_multiplier":
		return setFloat(&c.ExportMultiplier, key, value)
	case "output":
		c.Output = value
	case "data_dir":
		c.DataDir = value
	case "assets_dir":
		c.AssetsDir = value
	case "shape_color":
		c.ShapeColor = value
	case "stroke_width":
		return setFloat(&c.StrokeWidth, key, value)
	case "font_size":
		return setFloat(&c.FontSize, key, value)
	case "notify.export":
		return setBool(&c.Notify.Export, key, value)
	case "notify.copy":
		return setBool(&c.Notify.Copy, key, value)
	case "credits.dsn":
		c.Credits.DSN = value
	case "credits.initial":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		c.Credits.Initial = n
	case "auth.user":
		c.Auth.User = value
	case "auth.email":
		c.Auth.Email = value
	case "auth.token":
		c.Auth.Token = value
	case "auth.jwt_secret":
		c.Auth.JWTSecret = value
	}
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	*dst = b
	return nil
}

// ParseColor accepts an SVG colour name or a hex value.
func ParseColor(s string) (color.NRGBA, error) {
	if c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(s))]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	c, err := theme.ParseColor(strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

func rgba(c color.NRGBA) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// Style returns the insertion defaults described by c.
func (c *Config) Style() (scene.Style, error) {
	st := scene.DefaultStyle()
	if c.ShapeColor != "" {
		col, err := ParseColor(c.ShapeColor)
		if err != nil {
			return st, fmt.Errorf("shape_color: %w", err)
		}
		st.ShapeColor = col
	}
	if c.StrokeWidth > 0 {
		st.StrokeWidth = c.StrokeWidth
	}
	if c.FontSize > 0 {
		st.FontSize = c.FontSize
	}
	return st, nil
}
