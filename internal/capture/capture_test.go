package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeBackend struct {
	portal, root *image.RGBA
	portalErr    error
	rootErr      error
	monitors     []MonitorInfo
	calls        []string
}

func (f *fakeBackend) Portal(_ context.Context, interactive bool) (*image.RGBA, error) {
	f.calls = append(f.calls, "portal")
	return f.portal, f.portalErr
}

func (f *fakeBackend) Root(context.Context) (*image.RGBA, error) {
	f.calls = append(f.calls, "root")
	return f.root, f.rootErr
}

func (f *fakeBackend) Monitors(context.Context) ([]MonitorInfo, error) {
	return f.monitors, nil
}

func useBackend(t *testing.T, b backend) {
	t.Helper()
	prev := platform
	platform = b
	t.Cleanup(func() { platform = prev })
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func desktop() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 100; x < 200; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	return img
}

var twoMonitors = []MonitorInfo{
	{Index: 0, Name: "HDMI-1", Rect: image.Rect(0, 0, 100, 100)},
	{Index: 1, Name: "eDP-1", Rect: image.Rect(100, 0, 200, 100), Primary: true},
}

func TestFindMonitor(t *testing.T) {
	cases := map[string]string{
		"":        "HDMI-1",
		"primary": "eDP-1",
		"1":       "eDP-1",
		"#0":      "HDMI-1",
		"edp":     "eDP-1",
	}
	for sel, want := range cases {
		m, err := FindMonitor(twoMonitors, sel)
		if err != nil {
			t.Fatalf("FindMonitor(%q): %v", sel, err)
		}
		if m.Name != want {
			t.Errorf("FindMonitor(%q) = %s, want %s", sel, m.Name, want)
		}
	}
	if _, err := FindMonitor(twoMonitors, "5"); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected out of range, got %v", err)
	}
	if _, err := FindMonitor(nil, ""); !errors.Is(err, errNoMonitors) {
		t.Errorf("expected errNoMonitors, got %v", err)
	}
}

func TestScreenFallsBackToRoot(t *testing.T) {
	fb := &fakeBackend{portalErr: errors.New("no portal"), root: desktop(), monitors: twoMonitors}
	useBackend(t, fb)
	img, err := New(quiet()).Screen(context.Background(), "primary")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(fb.calls, ",") != "portal,root" {
		t.Errorf("calls = %v", fb.calls)
	}
	if img.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(10, 10); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("crop took the wrong monitor: %v", got)
	}
}

func TestScreenBothFail(t *testing.T) {
	useBackend(t, &fakeBackend{portalErr: errors.New("no portal"), rootErr: errors.New("no X")})
	if _, err := New(quiet()).Screen(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestCropOutside(t *testing.T) {
	if _, err := cropToRect(desktop(), image.Rect(500, 500, 600, 600)); err == nil {
		t.Fatal("expected error for region outside image")
	}
}
