package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/snapcanvas/internal/clipboard"
	"github.com/example/snapcanvas/internal/config"
	"github.com/example/snapcanvas/internal/editor"
	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

type interactiveCmd struct {
	*root
	fs *flag.FlagSet

	execs  commandList
	aspect string
	output string

	in      io.Reader
	studio  *studio.Studio
	session *editor.Session
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	c := &interactiveCmd{root: r, fs: fs, in: os.Stdin}
	fs.SetOutput(r.stderr)
	fs.Usage = usageFunc(c)
	fs.Var(&c.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
	fs.StringVar(&c.aspect, "aspect", "", "initial aspect ratio (default: config aspect_ratio)")
	fs.StringVar(&c.output, "o", "", "default export path (default: config output)")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *interactiveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

// attach binds the command to st. Run calls it with a configured studio;
// tests call it directly.
func (c *interactiveCmd) attach(st *studio.Studio) {
	output := c.output
	if output == "" && c.config != nil {
		output = c.config.Output
	}
	c.studio = st
	c.session = editor.NewSession(st,
		editor.WithNotifier(c.notifier),
		editor.WithClipboard(clipboard.WritePNG),
		editor.WithOutput(output),
		editor.WithSessionLogger(c.log),
	)
}

func (c *interactiveCmd) Run(ctx context.Context) error {
	st, closeStudio, err := c.newStudio(ctx, studioOptions{aspect: c.aspect})
	if err != nil {
		return err
	}
	defer closeStudio()
	c.attach(st)

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(ctx, line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(c.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

const interactiveHelp = `commands:
  aspect <16:9|1:1|4:3|9:16|21:9>   change the canvas (drops objects)
  background <id>                  apply a catalog background
  background color <colour>        fill the background
  background image <ref>           use an image as the background
  image <ref>                      upload an image (path, URL, data URI, clipboard:, screen:)
  shape <kind> [colour] [width]    insert a shape
  text <words...>                  insert text
  list                             list objects
  select <id>|none                 select an object
  pick <x> <y>                     select the object under a canvas point
  move <dx> <dy>                   move the selection
  scale <factor>                   scale the selection
  rotate <degrees>                 rotate the selection
  radius <0-100>                   round the selected image's corners
  color <colour>                   recolour the selected shape
  stroke <width>                   change the selected shape's stroke
  export [path]                    export a PNG (costs a credit)
  balance                          show remaining credits
  whoami                           show the signed-in user
  exit                             quit
editor actions: delete, zoom-in, zoom-out, radius-up, radius-down, paste,
  copy, reset, deselect, rotate-left, rotate-right, left, right, up, down
`

func (c *interactiveCmd) reply(format string, args ...any) {
	fmt.Fprintf(c.stdout, format+"\n", args...)
}

func (c *interactiveCmd) ctrl() *surface.Controller {
	return c.studio.Controller()
}

// onActive applies fn to the selection, failing when nothing is selected.
func (c *interactiveCmd) onActive(fn func(*scene.Surface) bool) error {
	var ok bool
	err := c.ctrl().Do(func(sf *scene.Surface) error {
		ok = fn(sf)
		return nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("nothing selected")
	}
	return nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func describe(o scene.Object) string {
	b := o.Common()
	kind := ""
	switch v := o.(type) {
	case *scene.Image:
		kind = fmt.Sprintf("image %dx%d", v.NaturalWidth, v.NaturalHeight)
		if v.BorderRadius > 0 {
			kind += fmt.Sprintf(" radius %d", v.BorderRadius)
		}
	case *scene.Shape:
		kind = v.Kind.String()
	case *scene.Text:
		kind = strconv.Quote(v.Content)
	}
	return fmt.Sprintf("%d %s at (%.0f, %.0f) scale %.2f rotation %.0f", b.ID(), kind, b.Position.X, b.Position.Y, b.ScaleX, b.Rotation)
}

// executeLine runs one command. done reports a request to exit.
func (c *interactiveCmd) executeLine(ctx context.Context, line string) (done bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	verb, rest := strings.ToLower(args[0]), args[1:]
	switch verb {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(c.stdout, interactiveHelp)
	case "aspect":
		if len(rest) != 1 {
			return false, errors.New("usage: aspect <ratio>")
		}
		p, err := surface.ParsePreset(rest[0])
		if err != nil {
			return false, err
		}
		if err := c.ctrl().ChangeAspectRatio(p); err != nil {
			return false, err
		}
		d, _ := p.Dimensions()
		c.reply("canvas %s (%s)", p, d)
	case "background":
		return false, c.background(ctx, rest)
	case "image":
		if len(rest) != 1 {
			return false, errors.New("usage: image <ref>")
		}
		if err := c.studio.UploadImage(ctx, rest[0]); err != nil {
			return false, err
		}
		c.reply("added image")
	case "shape":
		return false, c.shape(rest)
	case "text":
		content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), args[0]))
		err := c.ctrl().Do(func(sf *scene.Surface) error {
			_, err := sf.InsertText(content, 0)
			return err
		})
		if err != nil {
			return false, err
		}
		c.reply("added text")
	case "list":
		var objs []scene.Object
		_ = c.ctrl().Do(func(sf *scene.Surface) error {
			objs = sf.Objects()
			return nil
		})
		for _, o := range objs {
			c.reply("%s", describe(o))
		}
	case "select":
		if len(rest) != 1 {
			return false, errors.New("usage: select <id>|none")
		}
		if rest[0] == "none" {
			c.ctrl().Select(scene.NoID)
			return false, nil
		}
		id, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return false, fmt.Errorf("invalid id %q", rest[0])
		}
		o := c.ctrl().Select(scene.ID(id))
		if o == nil {
			return false, fmt.Errorf("no object %s", rest[0])
		}
		c.reply("%s", describe(o))
	case "pick":
		v, err := parseFloats(rest, 2)
		if err != nil {
			return false, err
		}
		o := c.ctrl().SelectAt(geometry.Point{X: v[0], Y: v[1]})
		if o == nil {
			c.reply("nothing there")
			return false, nil
		}
		c.reply("%s", describe(o))
	case "move":
		v, err := parseFloats(rest, 2)
		if err != nil {
			return false, err
		}
		return false, c.onActive(func(sf *scene.Surface) bool { return sf.MoveActive(v[0], v[1]) })
	case "scale":
		v, err := parseFloats(rest, 1)
		if err != nil {
			return false, err
		}
		return false, c.onActive(func(sf *scene.Surface) bool { return sf.ScaleActive(v[0]) })
	case "rotate":
		v, err := parseFloats(rest, 1)
		if err != nil {
			return false, err
		}
		return false, c.onActive(func(sf *scene.Surface) bool { return sf.RotateActive(v[0]) })
	case "radius":
		if len(rest) != 1 {
			return false, errors.New("usage: radius <0-100>")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, fmt.Errorf("invalid radius %q", rest[0])
		}
		return false, c.ctrl().SetBorderRadius(n)
	case "color", "colour":
		if len(rest) != 1 {
			return false, errors.New("usage: color <colour>")
		}
		col, err := config.ParseColor(rest[0])
		if err != nil {
			return false, err
		}
		return false, c.onActive(func(sf *scene.Surface) bool { return sf.UpdateActiveColor(col) })
	case "stroke":
		v, err := parseFloats(rest, 1)
		if err != nil {
			return false, err
		}
		return false, c.onActive(func(sf *scene.Surface) bool { return sf.UpdateActiveStrokeWidth(v[0]) })
	case "export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		} else if c.output != "" {
			path = c.output
		} else if c.config != nil {
			path = c.config.Output
		}
		saved, err := c.studio.ExportFile(ctx, path)
		if err != nil {
			return false, err
		}
		c.notifyExport(ctx, saved)
		c.reply("saved %s", saved)
	case "balance":
		n, err := c.studio.Balance(ctx)
		if err != nil {
			return false, err
		}
		if n < 0 {
			c.reply("unlimited credits")
		} else {
			c.reply("%d credits", n)
		}
	case "whoami":
		id, ok := c.studio.User()
		if !ok {
			c.reply("signed out")
			return false, nil
		}
		c.reply("%s %s", id.ID, id.Email)
	default:
		msg, err := c.session.Run(ctx, verb, editor.NudgeStep)
		if errors.Is(err, editor.ErrQuit) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if msg != "" {
			c.reply("%s", msg)
		}
	}
	return false, nil
}

func (c *interactiveCmd) background(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: background <id> | color <colour> | image <ref>")
	}
	switch strings.ToLower(args[0]) {
	case "color", "colour":
		if len(args) != 2 {
			return errors.New("usage: background color <colour>")
		}
		col, err := config.ParseColor(args[1])
		if err != nil {
			return err
		}
		return c.ctrl().Do(func(sf *scene.Surface) error { return sf.SetBackgroundColor(col) })
	case "image":
		if len(args) != 2 {
			return errors.New("usage: background image <ref>")
		}
		return <-c.ctrl().LoadBackground(ctx, surface.BackgroundRef{ID: "interactive", Ref: args[1]})
	}
	if err := c.studio.ApplyBackground(ctx, args[0]); err != nil {
		return err
	}
	c.reply("background %s", args[0])
	return nil
}

func (c *interactiveCmd) shape(args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return errors.New("usage: shape <kind> [colour] [width]")
	}
	kind, err := geometry.ParseShapeKind(args[0])
	if err != nil {
		return err
	}
	var style scene.ShapeStyle
	if len(args) > 1 {
		if style.Stroke, err = config.ParseColor(args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if style.StrokeWidth, err = strconv.ParseFloat(args[2], 64); err != nil {
			return fmt.Errorf("invalid width %q", args[2])
		}
	}
	err = c.ctrl().Do(func(sf *scene.Surface) error {
		_, err := sf.InsertShape(kind, style)
		return err
	})
	if err != nil {
		return err
	}
	c.reply("added %s", kind)
	return nil
}
