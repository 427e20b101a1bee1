package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/snapcanvas/internal/config"
	"github.com/example/snapcanvas/internal/notify"
	"github.com/example/snapcanvas/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run(ctx context.Context) error }

type root struct {
	fs           *flag.FlagSet
	program      string
	config       *config.Config
	log          *logrus.Logger
	notifier     *notify.Notifier
	verbose      bool
	exportAlerts bool
	copyAlerts   bool
	themeName    string
	activeTheme  *theme.Theme
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

func newRoot() *root {
	log := newLogger(os.Stderr)
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		log.WithError(err).Warn("failed to load config")
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("snapcanvas", flag.ContinueOnError),
		program:  "snapcanvas",
		config:   cfg,
		log:      log,
		notifier: notify.New(notify.LoadPreferences(os.LookupEnv), log),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "editor colour theme (light, dark, or a theme file)")
	r.fs.SetOutput(r.stderr)
	r.fs.Usage = usageFunc(r)
	return r
}

// loadTheme resolves the theme name from the flag, the environment, then the
// config file, falling back to the default theme.
func (r *root) loadTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv(config.EnvName("theme"))
	}
	if name == "" {
		name = r.config.Theme
	}
	loader := theme.NewLoader()
	loader.Inline = r.config.Themes
	t, err := loader.Load(name)
	if err != nil {
		if name != "" && name != "default" {
			r.log.WithError(err).Warnf("failed to load theme %q, using default", name)
		}
		return theme.Default()
	}
	return t
}

func (r *root) Run(ctx context.Context, args []string) error {
	if err := parseFlags(r.fs, args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.verbose {
		r.log.SetLevel(logrus.DebugLevel)
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.loadTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "compose":
		cmd, err = parseComposeCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "backgrounds":
		cmd, err = parseBackgroundsCmd(subArgs, r)
	case "shapes":
		cmd = &shapesCmd{root: r}
	case "presets":
		cmd = &presetsCmd{root: r}
	case "capture":
		cmd, err = parseCaptureCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	case "help":
		return r.help(subArgs)
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run(ctx)
}

// help renders the usage of the named subcommand.
func (r *root) help(args []string) error {
	if len(args) == 0 {
		return &UsageError{of: r}
	}
	name := strings.ToLower(args[0])
	switch name {
	case "shapes":
		return &UsageError{of: &shapesCmd{root: r}}
	case "presets":
		return &UsageError{of: &presetsCmd{root: r}}
	case "version":
		return &UsageError{of: &versionCmd{root: r}}
	}
	cmdArgs := []string{"-h"}
	var err error
	switch name {
	case "compose":
		_, err = parseComposeCmd(cmdArgs, r)
	case "edit":
		_, err = parseEditCmd(cmdArgs, r)
	case "interactive":
		_, err = parseInteractiveCmd(cmdArgs, r)
	case "backgrounds":
		_, err = parseBackgroundsCmd(nil, r)
	case "capture":
		_, err = parseCaptureCmd(cmdArgs, r)
	case "config":
		_, err = parseConfigCmd(nil, r)
	default:
		return &UsageError{of: r}
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := newRoot()
	if err := r.Run(ctx, os.Args[1:]); err != nil {
		var (
			uerr *UsageError
			ferr *flagError
		)
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.As(err, &uerr):
			fmt.Fprintln(os.Stderr, uerr.Error())
		case errors.As(err, &ferr):
			os.Exit(2)
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyExport(ctx context.Context, path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(ctx, path)
}

func (r *root) notifyCopy(ctx context.Context, detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(ctx, detail)
}
