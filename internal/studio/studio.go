// Package studio is the editor's front door. It gates uploads and exports on
// a signed-in user with credits and forwards everything else to the surface
// controller.
package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/example/snapcanvas/internal/auth"
	"github.com/example/snapcanvas/internal/catalog"
	"github.com/example/snapcanvas/internal/credits"
	"github.com/example/snapcanvas/internal/render"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/surface"
)

// Costs of gated operations in credits. Uploads only need a non-empty
// balance; exports spend.
const (
	UploadCost = 1
	ExportCost = 1
)

// ErrSignedOut is returned for gated operations without a user.
var ErrSignedOut = errors.New("sign in to upload or export")

// Studio wires the controller to its collaborators.
type Studio struct {
	ctrl       *surface.Controller
	catalog    *catalog.Catalog
	ledger     credits.Ledger
	auth       auth.Provider
	multiplier float64
	log        logrus.FieldLogger
}

// Option configures a Studio.
type Option func(*Studio)

// WithMultiplier sets the export multiplier.
func WithMultiplier(m float64) Option { return func(s *Studio) { s.multiplier = m } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(s *Studio) { s.log = l } }

// New returns a studio. A nil ledger or provider falls back to unlimited
// credits and no user respectively.
func New(ctrl *surface.Controller, cat *catalog.Catalog, ledger credits.Ledger, provider auth.Provider, opts ...Option) *Studio {
	s := &Studio{
		ctrl:       ctrl,
		catalog:    cat,
		ledger:     ledger,
		auth:       provider,
		multiplier: render.DefaultMultiplier,
		log:        logrus.StandardLogger(),
	}
	if s.ledger == nil {
		s.ledger = credits.Unlimited{}
	}
	if s.auth == nil {
		s.auth = auth.Anonymous{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Controller returns the surface controller.
func (s *Studio) Controller() *surface.Controller { return s.ctrl }

// Catalog returns the background catalog.
func (s *Studio) Catalog() *catalog.Catalog { return s.catalog }

// User returns the signed-in identity.
func (s *Studio) User() (auth.Identity, bool) { return s.auth.CurrentUser() }

// Balance returns the user's remaining credits.
func (s *Studio) Balance(ctx context.Context) (int, error) { return s.ledger.Balance(ctx) }

func (s *Studio) permit(ctx context.Context, cost int) (logrus.FieldLogger, error) {
	id, ok := s.auth.CurrentUser()
	if !ok {
		return s.log, ErrSignedOut
	}
	log := s.log.WithField("user", id.ID)
	if !s.ledger.CanConsume(ctx, cost) {
		return log, credits.ErrInsufficientCredits
	}
	return log, nil
}

func wait(ctx context.Context, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UploadImage decodes ref and inserts it as the selected object.
func (s *Studio) UploadImage(ctx context.Context, ref string) error {
	log, err := s.permit(ctx, UploadCost)
	if err != nil {
		return err
	}
	if err := wait(ctx, s.ctrl.LoadImage(ctx, ref)); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	log.WithField("ref", ref).Info("image inserted")
	return nil
}

// AddCustomBackground stores data as a custom background.
func (s *Studio) AddCustomBackground(ctx context.Context, filename string, data []byte) (catalog.Background, error) {
	if _, err := s.permit(ctx, UploadCost); err != nil {
		return catalog.Background{}, err
	}
	return s.catalog.Add(filename, data)
}

// ApplyBackground installs the catalog background id.
func (s *Studio) ApplyBackground(ctx context.Context, id string) error {
	bg, err := s.catalog.Lookup(id)
	if err != nil {
		return err
	}
	if err := wait(ctx, s.ctrl.LoadBackground(ctx, surface.BackgroundRef{ID: bg.ID, Ref: bg.Image})); err != nil {
		return fmt.Errorf("background %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"background": bg.ID, "name": bg.Name}).Info("background applied")
	return nil
}

// Render flattens the current surface without charging credits.
func (s *Studio) Render(w io.Writer) error {
	return s.ctrl.Do(func(sf *scene.Surface) error {
		return render.ExportPNG(w, sf, s.multiplier)
	})
}

// Export charges ExportCost and writes the flattened PNG to w. Nothing is
// written when the charge fails.
func (s *Studio) Export(ctx context.Context, w io.Writer) error {
	log, png, err := s.prepare(ctx)
	if err != nil {
		return err
	}
	if !s.ledger.Consume(ctx, ExportCost) {
		return credits.ErrInsufficientCredits
	}
	if _, err := w.Write(png); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	log.WithField("multiplier", s.multiplier).Info("exported")
	return nil
}

func (s *Studio) prepare(ctx context.Context) (logrus.FieldLogger, []byte, error) {
	log, err := s.permit(ctx, ExportCost)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		return nil, nil, err
	}
	return log, buf.Bytes(), nil
}

// ExportFile exports to path, or to render.ExportFilename inside path when
// it names a directory. The PNG is staged next to path and only moved into
// place once the credit has been charged.
func (s *Studio) ExportFile(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = render.ExportFilename
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, render.ExportFilename)
	}
	log, png, err := s.prepare(ctx)
	if err != nil {
		return "", err
	}
	tmp, err := stage(path, png)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	if !s.ledger.Consume(ctx, ExportCost) {
		_ = os.Remove(tmp)
		return "", credits.ErrInsufficientCredits
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	log.WithFields(logrus.Fields{"multiplier": s.multiplier, "path": path}).Info("exported")
	return path, nil
}

// stage writes data to a temporary file in path's directory and returns its
// name.
func stage(path string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}
