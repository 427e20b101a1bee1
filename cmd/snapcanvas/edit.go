package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/snapcanvas/internal/clipboard"
	"github.com/example/snapcanvas/internal/editor"
	"github.com/example/snapcanvas/internal/source"
	"github.com/example/snapcanvas/internal/studio"
)

// runEditor is swapped in tests.
var runEditor = func(ctx context.Context, ed *editor.Editor) error { return ed.Run(ctx) }

type editCmd struct {
	*root
	fs *flag.FlagSet

	aspect        string
	background    string
	images        commandList
	fromScreen    bool
	monitor       string
	fromClipboard bool
	output        string
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	c := &editCmd{root: r, fs: fs}
	fs.SetOutput(r.stderr)
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.aspect, "aspect", "", "initial aspect ratio (default: config aspect_ratio)")
	fs.StringVar(&c.background, "background", "", "initial catalog background (default: config default_background)")
	fs.Var(&c.images, "image", "image to place on the canvas (may be specified multiple times)")
	fs.BoolVar(&c.fromScreen, "from-screen", false, "start with a screenshot on the canvas")
	fs.StringVar(&c.monitor, "monitor", "", "monitor to capture with -from-screen (index, name or primary)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "start with the clipboard image on the canvas")
	fs.StringVar(&c.output, "o", "", "export path for Ctrl+S (default: config output)")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		c.images = append(c.images, fs.Args()...)
	}
	if c.monitor != "" && !c.fromScreen {
		return nil, fmt.Errorf("-monitor requires -from-screen")
	}
	return c, nil
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

// initialRefs lists what to upload before the window opens, bottom first.
func (c *editCmd) initialRefs() []string {
	var refs []string
	if c.fromScreen {
		refs = append(refs, source.ScreenRef+c.monitor)
	}
	if c.fromClipboard {
		refs = append(refs, source.ClipboardRef)
	}
	return append(refs, c.images...)
}

func (c *editCmd) populate(ctx context.Context, st *studio.Studio) error {
	for _, ref := range c.initialRefs() {
		if err := st.UploadImage(ctx, ref); err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
	}
	return nil
}

func (c *editCmd) Run(ctx context.Context) error {
	st, closeStudio, err := c.newStudio(ctx, studioOptions{aspect: c.aspect, background: c.background})
	if err != nil {
		return err
	}
	defer closeStudio()
	if err := c.populate(ctx, st); err != nil {
		return err
	}
	output := c.output
	if output == "" {
		output = c.config.Output
	}
	session := editor.NewSession(st,
		editor.WithNotifier(c.notifier),
		editor.WithClipboard(clipboard.WritePNG),
		editor.WithOutput(output),
		editor.WithSessionLogger(c.log),
	)
	title := c.program
	if id, ok := st.User(); ok {
		title = fmt.Sprintf("%s (%s)", c.program, id.ID)
	}
	return runEditor(ctx, editor.New(session, c.activeTheme, title))
}
