package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
aspect_ratio = 4:3
stroke_width = 6
shape_color = tomato

[notify]
export = true
copy = false

[credits]
dsn = postgres://snap:pw@localhost/snap?sslmode=disable
initial = 25

[auth]
user = 7d1c
email = "me@example.com"

[theme.my_custom_theme]
Background = #111111
Selection: #FF0000
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.AspectRatio != "4:3" {
		t.Errorf("Expected aspect_ratio '4:3', got '%s'", cfg.AspectRatio)
	}
	if cfg.StrokeWidth != 6 {
		t.Errorf("Expected stroke_width 6, got %v", cfg.StrokeWidth)
	}
	if !cfg.Notify.Export || cfg.Notify.Copy {
		t.Errorf("Unexpected notify: %+v", cfg.Notify)
	}
	if cfg.Credits.DSN != "postgres://snap:pw@localhost/snap?sslmode=disable" {
		t.Errorf("Unexpected dsn %q", cfg.Credits.DSN)
	}
	if cfg.Credits.Initial != 25 {
		t.Errorf("Expected initial 25, got %d", cfg.Credits.Initial)
	}
	if cfg.Auth.User != "7d1c" || cfg.Auth.Email != "me@example.com" {
		t.Errorf("Unexpected auth %+v", cfg.Auth)
	}
	if cfg.ExportMultiplier != 2 {
		t.Errorf("Expected default export_multiplier 2, got %v", cfg.ExportMultiplier)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background != (color.RGBA{0x11, 0x11, 0x11, 0xFF}) {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
	if th.Selection != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("Unexpected Selection color: %+v", th.Selection)
	}

	st, err := cfg.Style()
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	if st.ShapeColor != (color.NRGBA{0xFF, 0x63, 0x47, 0xFF}) {
		t.Errorf("tomato parsed as %+v", st.ShapeColor)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"stroke_width = wide",
		"[notify]\nexport = sometimes",
		"[credits]\ninitial = ten",
		"[theme.x]\nCard = blue",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
aspect_ratio = 9:16
export_multiplier = 1.5
output = /home/user/out.png

[notify]
export = true
copy = true

[credits]
initial = 3

[auth]
user = u-1

[theme.custom]
Name = custom
Background = #000000
CardShadow = #00000080
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}
	generated := cfg.String()
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Theme != cfg2.Theme || cfg.AspectRatio != cfg2.AspectRatio || cfg.Output != cfg2.Output {
		t.Errorf("Root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.ExportMultiplier != cfg2.ExportMultiplier {
		t.Errorf("Multiplier mismatch: %v vs %v", cfg.ExportMultiplier, cfg2.ExportMultiplier)
	}
	if cfg.Notify != cfg2.Notify || cfg.Credits != cfg2.Credits || cfg.Auth != cfg2.Auth {
		t.Errorf("Section mismatch:\n%s", generated)
	}
	t1, t2 := cfg.Themes["custom"], cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SNAPCANVAS_ASPECT_RATIO":  "1:1",
		"SNAPCANVAS_NOTIFY_COPY":   "true",
		"SNAPCANVAS_AUTH_TOKEN":    "abc",
		"SNAPCANVAS_CREDITS_DSN":   "postgres://x",
		"SNAPCANVAS_UNRELATED_KEY": "ignored",
	}
	cfg := New()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AspectRatio != "1:1" || !cfg.Notify.Copy || cfg.Auth.Token != "abc" || cfg.Credits.DSN != "postgres://x" {
		t.Errorf("env not applied: %+v", cfg)
	}

	bad := func(k string) (string, bool) { return "x", k == "SNAPCANVAS_FONT_SIZE" }
	if err := New().ApplyEnv(bad); err == nil {
		t.Error("expected error for non-numeric font size")
	}
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "config.rc")
	if err := os.WriteFile(rc, []byte("aspect_ratio = 4:3\nfont_size = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader("test", rc)
	l.DotEnv = []string{filepath.Join(dir, "missing.env")}
	l.LookupEnv = func(k string) (string, bool) {
		if k == "SNAPCANVAS_FONT_SIZE" {
			return "72", true
		}
		return "", false
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AspectRatio != "4:3" {
		t.Errorf("file value lost: %q", cfg.AspectRatio)
	}
	if cfg.FontSize != 72 {
		t.Errorf("env should win over file, got %v", cfg.FontSize)
	}
	if cfg.DefaultBackground != "mountain-hiker" {
		t.Errorf("default lost: %q", cfg.DefaultBackground)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	cfg := New()
	cfg.Theme = "dark"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := Parse(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Theme != "dark" {
		t.Errorf("Theme = %q", got.Theme)
	}
}
