package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/example/snapcanvas/internal/capture"
)

// screenCapturer is the subset of capture.Capturer the command uses.
type screenCapturer interface {
	Screen(ctx context.Context, selector string) (*image.RGBA, error)
	Region(ctx context.Context) (*image.RGBA, error)
	Monitors(ctx context.Context) ([]capture.MonitorInfo, error)
}

// newCapturer is swapped in tests.
var newCapturer = func(r *root) screenCapturer { return capture.New(r.log) }

type captureCmd struct {
	*root
	fs *flag.FlagSet

	monitor string
	region  bool
	list    bool
	output  string
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.SetOutput(r.stderr)
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.monitor, "monitor", "", "monitor to capture (index, #index, name or primary)")
	fs.BoolVar(&c.region, "region", false, "let the desktop portal pick a region")
	fs.BoolVar(&c.list, "list", false, "list monitors and exit")
	fs.StringVar(&c.output, "o", "screenshot.png", "output PNG path")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.region && c.monitor != "" {
		return nil, fmt.Errorf("-region and -monitor cannot be combined")
	}
	return c, nil
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *captureCmd) Run(ctx context.Context) error {
	cp := newCapturer(c.root)
	if c.list {
		monitors, err := cp.Monitors(ctx)
		if err != nil {
			return fmt.Errorf("failed to list monitors: %w", err)
		}
		for _, m := range monitors {
			primary := ""
			if m.Primary {
				primary = " primary"
			}
			fmt.Fprintf(c.stdout, "%d %s %dx%d+%d+%d%s\n", m.Index, m.Name, m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y, primary)
		}
		return nil
	}

	var (
		img *image.RGBA
		err error
	)
	if c.region {
		img, err = cp.Region(ctx)
	} else {
		img, err = cp.Screen(ctx, c.monitor)
	}
	if err != nil {
		return fmt.Errorf("failed to capture screen: %w", err)
	}
	f, err := os.Create(c.output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", c.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.notifyExport(ctx, c.output)
	fmt.Fprintln(c.stdout, c.output)
	return nil
}
