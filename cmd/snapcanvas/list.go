package main

import (
	"context"
	"fmt"

	"github.com/example/snapcanvas/internal/editor"
	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/surface"
)

type shapesCmd struct{ *root }

func (s *shapesCmd) Run(context.Context) error {
	keys := map[geometry.ShapeKind]rune{}
	for r, k := range editor.ShapeKeys {
		keys[k] = r
	}
	for _, k := range geometry.Kinds() {
		if r, ok := keys[k]; ok {
			fmt.Fprintf(s.stdout, "%-10s %c\n", k, r)
			continue
		}
		fmt.Fprintln(s.stdout, k)
	}
	return nil
}

type presetsCmd struct{ *root }

func (p *presetsCmd) Run(context.Context) error {
	for i, preset := range surface.Presets() {
		d, _ := preset.Dimensions()
		marker := ""
		if p.config != nil && string(preset) == p.config.AspectRatio {
			marker = " (default)"
		}
		fmt.Fprintf(p.stdout, "%d  %-5s %s%s\n", i+1, preset, d, marker)
	}
	return nil
}
