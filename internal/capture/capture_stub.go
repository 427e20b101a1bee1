//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"errors"
	"image"
)

var errUnsupported = errors.New("screen capture is not supported on this platform")

type unsupported struct{}

func newBackend() backend { return unsupported{} }

func (unsupported) Portal(context.Context, bool) (*image.RGBA, error) { return nil, errUnsupported }
func (unsupported) Root(context.Context) (*image.RGBA, error)         { return nil, errUnsupported }
func (unsupported) Monitors(context.Context) ([]MonitorInfo, error)   { return nil, errUnsupported }
