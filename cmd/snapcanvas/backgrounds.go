package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/example/snapcanvas/internal/catalog"
)

type backgroundsCmd struct {
	*root
	fs *flag.FlagSet

	op       string
	category string
	args     []string
}

func parseBackgroundsCmd(args []string, r *root) (*backgroundsCmd, error) {
	cmd := &backgroundsCmd{root: r}
	if len(args) == 0 {
		cmd.fs = flag.NewFlagSet("backgrounds", flag.ContinueOnError)
		return nil, &UsageError{of: cmd}
	}
	cmd.op = strings.ToLower(args[0])
	cmd.fs = flag.NewFlagSet("backgrounds "+cmd.op, flag.ContinueOnError)
	cmd.fs.SetOutput(r.stderr)
	cmd.fs.Usage = usageFunc(cmd)
	if cmd.op == "list" {
		cmd.fs.StringVar(&cmd.category, "category", "", "only list backgrounds in this category")
	}
	if err := parseFlags(cmd.fs, args[1:]); err != nil {
		return nil, err
	}
	cmd.args = cmd.fs.Args()
	switch cmd.op {
	case "list":
		if len(cmd.args) != 0 {
			return nil, &UsageError{of: cmd}
		}
	case "add", "remove":
		if len(cmd.args) != 1 {
			return nil, &UsageError{of: cmd}
		}
	default:
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *backgroundsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *backgroundsCmd) Run(ctx context.Context) error {
	switch c.op {
	case "list":
		cat, err := c.newCatalog()
		if err != nil {
			return err
		}
		return c.list(cat)
	case "add":
		return c.add(ctx)
	case "remove":
		cat, err := c.newCatalog()
		if err != nil {
			return err
		}
		if err := cat.Remove(c.args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "removed %s\n", c.args[0])
		return nil
	}
	return &UsageError{of: c}
}

func (c *backgroundsCmd) list(cat *catalog.Catalog) error {
	list, err := cat.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY")
	for _, bg := range list {
		if c.category != "" && !strings.EqualFold(bg.Category, c.category) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", bg.ID, bg.Name, bg.Category)
	}
	return w.Flush()
}

func (c *backgroundsCmd) add(ctx context.Context) error {
	path := c.args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	st, closeStudio, err := c.newStudio(ctx, studioOptions{})
	if err != nil {
		return err
	}
	defer closeStudio()
	bg, err := st.AddCustomBackground(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "added %s (%s)\n", bg.ID, bg.Name)
	return nil
}
