package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/example/snapcanvas/assets"
	"github.com/example/snapcanvas/internal/auth"
	"github.com/example/snapcanvas/internal/capture"
	"github.com/example/snapcanvas/internal/catalog"
	"github.com/example/snapcanvas/internal/clipboard"
	"github.com/example/snapcanvas/internal/config"
	"github.com/example/snapcanvas/internal/credits"
	"github.com/example/snapcanvas/internal/render"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/source"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
)

// storageFile holds custom backgrounds inside the data directory.
const storageFile = "storage.json"

// studioOptions adjusts a single command's studio.
type studioOptions struct {
	aspect     string
	background string
	multiplier float64
}

// dataDir returns the configured data directory or the per-user default.
func dataDir(cfg *config.Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate data directory: %w", err)
	}
	return filepath.Join(dir, "snapcanvas"), nil
}

func (r *root) newCatalog() (*catalog.Catalog, error) {
	dir, err := dataDir(r.config)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return catalog.New(catalog.NewFileStorage(filepath.Join(dir, storageFile)), r.log), nil
}

func (r *root) newDecoder() *source.Decoder {
	return source.New(
		source.WithLogger(r.log),
		source.WithRoot(r.config.AssetsDir),
		source.WithFS(assets.FS()),
		source.WithClipboard(clipboard.ReadImage),
		source.WithScreen(capture.New(r.log).Source()),
	)
}

// localUser names the identity used when no token or user is configured.
var localUser = func() (auth.Identity, error) {
	u, err := user.Current()
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{ID: u.Username, Role: "local"}, nil
}

// newAuth prefers a Supabase token, then the configured user, then the
// account running the process.
func (r *root) newAuth() auth.Provider {
	a := r.config.Auth
	if a.Token != "" {
		return auth.NewSupabase(a.Token, a.JWTSecret, r.log)
	}
	if a.User != "" {
		return auth.Static{User: auth.Identity{ID: a.User, Email: a.Email}}
	}
	id, err := localUser()
	if err != nil {
		r.log.WithError(err).Warn("no local user; uploads and exports are disabled")
		return auth.Anonymous{}
	}
	return auth.Static{User: id}
}

// newLedger returns the credits ledger for provider's user. The returned
// close function releases any database connection.
func (r *root) newLedger(ctx context.Context, provider auth.Provider) (credits.Ledger, func(), error) {
	nop := func() {}
	c := r.config.Credits
	if c.DSN == "" {
		return credits.NewMemory(c.Initial), nop, nil
	}
	id, ok := provider.CurrentUser()
	if !ok {
		return credits.NewMemory(0), nop, nil
	}
	db, err := credits.Open(c.DSN)
	if err != nil {
		return nil, nop, err
	}
	ledger := credits.NewPostgres(db, id.ID, credits.WithInitial(c.Initial), credits.WithLogger(r.log))
	if err := ledger.Migrate(ctx); err != nil {
		db.Close()
		return nil, nop, err
	}
	return ledger, func() {
		if err := db.Close(); err != nil {
			r.log.WithError(err).Warn("close credits database")
		}
	}, nil
}

// newStudio wires a studio from the configuration. The default background
// is applied before it is returned; failures there are logged, not fatal.
func (r *root) newStudio(ctx context.Context, opts studioOptions) (*studio.Studio, func(), error) {
	cfg := r.config
	style, err := cfg.Style()
	if err != nil {
		return nil, nil, err
	}
	aspect := cfg.AspectRatio
	if opts.aspect != "" {
		aspect = opts.aspect
	}
	preset, err := surface.ParsePreset(aspect)
	if err != nil {
		return nil, nil, err
	}
	cat, err := r.newCatalog()
	if err != nil {
		return nil, nil, err
	}

	ctrlOpts := []surface.Option{
		surface.WithPreset(preset),
		surface.WithDecoder(r.newDecoder()),
		surface.WithLogger(r.log),
		surface.WithStyle(style),
		surface.WithMeasurer(render.FontMeasurer{}),
	}
	bgID := cfg.DefaultBackground
	if opts.background != "" {
		bgID = opts.background
	}
	if bgID != "" {
		bg, err := cat.Lookup(bgID)
		switch {
		case err == nil:
			ctrlOpts = append(ctrlOpts, surface.WithDefaultBackground(surface.BackgroundRef{ID: bg.ID, Ref: bg.Image}))
		case opts.background != "":
			return nil, nil, err
		default:
			r.log.WithError(err).WithField("background", bgID).Warn("default background unavailable")
		}
	}
	ctrl, err := surface.New(ctrlOpts...)
	if err != nil {
		return nil, nil, err
	}
	if cfg.BackgroundColor != "" {
		col, err := config.ParseColor(cfg.BackgroundColor)
		if err != nil {
			return nil, nil, err
		}
		if err := ctrl.Do(func(sf *scene.Surface) error { return sf.SetBackgroundColor(col) }); err != nil {
			return nil, nil, err
		}
	}
	if err := <-ctrl.Reset(ctx); err != nil {
		if opts.background != "" {
			return nil, nil, err
		}
		r.log.WithError(err).Warn("default background failed to load")
	}

	provider := r.newAuth()
	ledger, closeLedger, err := r.newLedger(ctx, provider)
	if err != nil {
		return nil, nil, err
	}
	multiplier := cfg.ExportMultiplier
	if opts.multiplier > 0 {
		multiplier = opts.multiplier
	}
	st := studio.New(ctrl, cat, ledger, provider,
		studio.WithMultiplier(multiplier),
		studio.WithLogger(r.log),
	)
	if id, ok := st.User(); ok {
		r.log.WithFields(logrus.Fields{"user": id.ID, "preset": preset}).Debug("studio ready")
	} else {
		r.log.Warn("not signed in; uploads and exports are disabled")
	}
	return st, closeLedger, nil
}
