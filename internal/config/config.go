package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/snapcanvas/internal/catalog"
	"github.com/example/snapcanvas/internal/credits"
	"github.com/example/snapcanvas/internal/render"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Credits configures the credit ledger. An empty DSN keeps credits in
// memory for the session.
type Credits struct {
	DSN     string
	Initial int
}

// Auth names the signed-in user. Token, when set, is a Supabase access token
// validated with JWTSecret and wins over User.
type Auth struct {
	User      string
	Email     string
	Token     string
	JWTSecret string
}

// Config holds the application configuration.
type Config struct {
	Theme             string
	AspectRatio       string
	DefaultBackground string
	BackgroundColor   string
	ExportMultiplier  float64
	Output            string
	DataDir           string
	AssetsDir         string
	ShapeColor        string
	StrokeWidth       float64
	FontSize          float64
	Notify            Notify
	Credits           Credits
	Auth              Auth
	Themes            map[string]*theme.Theme
}

// New creates a Config with defaults.
func New() *Config {
	st := scene.DefaultStyle()
	return &Config{
		AspectRatio:       "16:9",
		DefaultBackground: catalog.DefaultID,
		BackgroundColor:   "#FFFFFF",
		ExportMultiplier:  render.DefaultMultiplier,
		Output:            render.ExportFilename,
		ShapeColor:        theme.Hex(rgba(st.ShapeColor)),
		StrokeWidth:       st.StrokeWidth,
		FontSize:          st.FontSize,
		Credits:           Credits{Initial: credits.InitialCredits},
		Themes:            make(map[string]*theme.Theme),
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// String implements fmt.Stringer and returns the configuration in RC format.
// Secrets are written only when set.
func (c *Config) String() string {
	var sb strings.Builder

	root := [][2]string{
		{"theme", c.Theme},
		{"aspect_ratio", c.AspectRatio},
		{"default_background", c.DefaultBackground},
		{"background_color", c.BackgroundColor},
		{"export_multiplier", formatFloat(c.ExportMultiplier)},
		{"output", c.Output},
		{"data_dir", c.DataDir},
		{"assets_dir", c.AssetsDir},
		{"shape_color", c.ShapeColor},
		{"stroke_width", formatFloat(c.StrokeWidth)},
		{"font_size", formatFloat(c.FontSize)},
	}
	for _, kv := range root {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	sb.WriteString("\n[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)

	sb.WriteString("\n[credits]\n")
	if c.Credits.DSN != "" {
		fmt.Fprintf(&sb, "dsn = %s\n", c.Credits.DSN)
	}
	fmt.Fprintf(&sb, "initial = %d\n", c.Credits.Initial)

	if c.Auth != (Auth{}) {
		sb.WriteString("\n[auth]\n")
		for _, kv := range [][2]string{{"user", c.Auth.User}, {"email", c.Auth.Email}, {"token", c.Auth.Token}, {"jwt_secret", c.Auth.JWTSecret}} {
			if kv[1] != "" {
				fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
			}
		}
	}

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "\n[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Key, theme.Hex(f.Color))
		}
	}
	return sb.String()
}
