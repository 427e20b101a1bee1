//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/url"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

type unixBackend struct{}

func newBackend() backend { return unixBackend{} }

func portalOptions(interactive bool) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(interactive),
		"modal":        dbus.MakeVariant(interactive),
		"handle_token": dbus.MakeVariant(fmt.Sprintf("snapcanvas_%d", time.Now().UnixNano())),
	}
}

// Portal asks org.freedesktop.portal.Screenshot for an image and waits for
// the Request.Response signal carrying its file URI.
func (unixBackend) Portal(ctx context.Context, interactive bool) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	var handle dbus.ObjectPath
	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	if err := obj.CallWithContext(ctx, "org.freedesktop.portal.Screenshot.Screenshot", 0, "", portalOptions(interactive)).Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", err)
	}
	if err := conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(handle),
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-sigc:
			if !ok {
				return nil, errors.New("portal screenshot: connection closed")
			}
			if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
				continue
			}
			return portalResult(sig.Body)
		}
	}
}

func portalResult(body []interface{}) (*image.RGBA, error) {
	if len(body) < 2 {
		return nil, errors.New("portal screenshot: malformed response")
	}
	if code, _ := body[0].(uint32); code != 0 {
		return nil, fmt.Errorf("portal screenshot: cancelled (%d)", code)
	}
	res, _ := body[1].(map[string]dbus.Variant)
	v, ok := res["uri"]
	if !ok {
		return nil, errors.New("portal screenshot: response missing image data")
	}
	raw, _ := v.Value().(string)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("portal screenshot: unexpected uri %q", raw)
	}
	return loadPNG(u.Path)
}

// loadPNG reads and removes the portal's temporary file.
func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer os.Remove(path)
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
