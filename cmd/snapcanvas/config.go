package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/snapcanvas/internal/config"
)

type configCmd struct {
	*root
	fs   *flag.FlagSet
	path string
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs}
	fs.SetOutput(r.stderr)
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.path, "path", "", "file to write with save (default: the loaded config file)")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Run(context.Context) error {
	args := c.fs.Args()
	switch args[0] {
	case "print":
		fmt.Fprint(c.stdout, c.config.String())
		return nil
	case "path":
		fmt.Fprintln(c.stdout, c.savePath())
		return nil
	case "set":
		if len(args) != 3 {
			return &UsageError{of: c}
		}
		if err := c.config.Set(args[1], args[2]); err != nil {
			return err
		}
		return c.save()
	case "save":
		return c.save()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// savePath prefers -path, then the file the config was loaded from, then
// the per-user default.
func (c *configCmd) savePath() string {
	if c.path != "" {
		return c.path
	}
	if p := config.NewLoader(version, configPathOverride).GetConfigPath(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func (c *configCmd) save() error {
	path := c.savePath()
	if path == "" {
		return fmt.Errorf("no config path available")
	}
	if err := c.config.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.stderr, "Configuration saved to %s\n", path)
	return nil
}
