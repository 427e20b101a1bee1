// Package capture grabs the desktop so a screenshot can be dropped onto the
// canvas as an image or background.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var errNoMonitors = errors.New("no monitors available")

// MonitorInfo describes an individual monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

type backend interface {
	Portal(ctx context.Context, interactive bool) (*image.RGBA, error)
	Root(ctx context.Context) (*image.RGBA, error)
	Monitors(ctx context.Context) ([]MonitorInfo, error)
}

// platform is swapped in tests.
var platform backend = newBackend()

// Capturer takes screenshots, preferring the desktop portal and falling back
// to reading the X11 root window.
type Capturer struct {
	log logrus.FieldLogger
}

// New returns a Capturer.
func New(log logrus.FieldLogger) *Capturer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Capturer{log: log}
}

// Screen captures the whole desktop, cropped to the monitor named by
// selector when it is non-empty (see FindMonitor).
func (c *Capturer) Screen(ctx context.Context, selector string) (*image.RGBA, error) {
	img, err := platform.Portal(ctx, false)
	if err != nil {
		c.log.WithError(err).Debug("portal screenshot failed, reading root window")
		var rootErr error
		if img, rootErr = platform.Root(ctx); rootErr != nil {
			return nil, fmt.Errorf("screenshot: portal: %v; x11: %w", err, rootErr)
		}
	}
	if selector == "" {
		return img, nil
	}
	monitors, err := platform.Monitors(ctx)
	if err != nil {
		return nil, err
	}
	m, err := FindMonitor(monitors, selector)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, m.Rect)
}

// Region lets the user pick an area through the portal.
func (c *Capturer) Region(ctx context.Context) (*image.RGBA, error) {
	return platform.Portal(ctx, true)
}

// Monitors lists connected monitors.
func (c *Capturer) Monitors(ctx context.Context) ([]MonitorInfo, error) {
	return platform.Monitors(ctx)
}

// Source adapts Screen to an image source keyed by the monitor selector.
func (c *Capturer) Source() func(ctx context.Context, selector string) (image.Image, error) {
	return func(ctx context.Context, selector string) (image.Image, error) {
		return c.Screen(ctx, selector)
	}
}

// FindMonitor resolves "primary", an index ("1" or "#1") or a name fragment.
// An empty selector picks the first monitor.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	switch sel {
	case "":
		return monitors[0], nil
	case "primary":
		for _, m := range monitors {
			if m.Primary {
				return m, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, m := range monitors {
		if strings.Contains(strings.ToLower(m.Name), sel) {
			return m, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
