package main

import (
	"bytes"
	"embed"
	"errors"
	"flag"
	"fmt"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := renderHelp(e.of)
	if err != nil {
		return err.Error()
	}
	return help
}

func renderHelp(of HelpData) (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, of.Template(), of); err != nil {
		return "", fmt.Errorf("render help %s: %w", of.Template(), err)
	}
	return buf.String(), nil
}

// usageFunc prints the help for h to its flag set's output. The flag package
// calls it for -h and for parse errors.
func usageFunc(h HelpData) func() {
	return func() {
		help, err := renderHelp(h)
		if err != nil {
			help = err.Error()
		}
		if fs := h.FlagSet(); fs != nil {
			fmt.Fprint(fs.Output(), help)
		}
	}
}

// flagError marks a parse failure the flag package has already reported.
type flagError struct{ err error }

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return &flagError{err: err}
	}
	return nil
}

func (r *root) Template() string {
	return "root.txt"
}

func (c *composeCmd) Template() string {
	return "compose.txt"
}

func (c *editCmd) Template() string {
	return "edit.txt"
}

func (c *interactiveCmd) Template() string {
	return "interactive.txt"
}

func (c *backgroundsCmd) Template() string {
	return "backgrounds.txt"
}

func (c *shapesCmd) Template() string {
	return "shapes.txt"
}

func (c *presetsCmd) Template() string {
	return "presets.txt"
}

func (c *captureCmd) Template() string {
	return "capture.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (v *versionCmd) Template() string {
	return "version.txt"
}
