package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/snapcanvas/internal/script"
)

type composeCmd struct {
	*root
	fs *flag.FlagSet

	output     string
	aspect     string
	background string
	multiplier float64
	dryRun     bool
	file       string
}

func parseComposeCmd(args []string, r *root) (*composeCmd, error) {
	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	c := &composeCmd{root: r, fs: fs}
	fs.SetOutput(r.stderr)
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output PNG path, or - for stdout (default: script output, then config output)")
	fs.StringVar(&c.aspect, "aspect", "", "aspect ratio to start from (16:9, 1:1, 4:3, 9:16, 21:9)")
	fs.StringVar(&c.background, "background", "", "catalog background to start from")
	fs.Float64Var(&c.multiplier, "multiplier", 0, "export scale (default: config export_multiplier)")
	fs.BoolVar(&c.dryRun, "n", false, "validate the script without rendering")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.file = fs.Arg(0)
	return c, nil
}

func (c *composeCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *composeCmd) readScript() (*script.Script, error) {
	var in io.Reader = os.Stdin
	if c.file != "-" {
		f, err := os.Open(c.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	s, err := script.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.file, err)
	}
	return s, nil
}

func (c *composeCmd) Run(ctx context.Context) error {
	s, err := c.readScript()
	if err != nil {
		return err
	}
	if c.dryRun {
		fmt.Fprintf(c.stdout, "%s: %d objects ok\n", c.file, len(s.Objects))
		return nil
	}
	st, closeStudio, err := c.newStudio(ctx, studioOptions{
		aspect:     c.aspect,
		background: c.background,
		multiplier: c.multiplier,
	})
	if err != nil {
		return err
	}
	defer closeStudio()

	if err := s.Apply(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", c.file, err)
	}

	output := c.output
	if output == "" {
		output = s.Output
	}
	if output == "" {
		output = c.config.Output
	}
	if output == "-" {
		return st.Export(ctx, c.stdout)
	}
	path, err := st.ExportFile(ctx, output)
	if err != nil {
		return err
	}
	c.notifyExport(ctx, path)
	fmt.Fprintln(c.stdout, path)
	return nil
}
