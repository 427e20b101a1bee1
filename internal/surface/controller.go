package surface

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
)

// View zoom bounds. Zoom only affects the on-screen view.
const (
	MinZoom     = 0.3
	MaxZoom     = 2.0
	ZoomStep    = 0.1
	DefaultZoom = 0.65
)

var (
	// ErrStaleDecodeTarget marks a decode that finished after its surface was
	// replaced. Callers of the Load helpers never see it.
	ErrStaleDecodeTarget = errors.New("decode target surface was disposed")
	// ErrNoDecoder is returned by the Load helpers when no decoder is set.
	ErrNoDecoder = errors.New("no decoder configured")
)

// Decoder turns a source reference into a picture. It may block on I/O.
type Decoder interface {
	Decode(ctx context.Context, ref string) (scene.Picture, error)
}

// BackgroundRef names a background by catalog id and source reference.
type BackgroundRef struct {
	ID  string
	Ref string
}

// Controller owns the current surface. All access to the surface goes
// through the controller so decode goroutines can hand results back safely.
type Controller struct {
	mu        sync.Mutex
	preset    Preset
	surf      *scene.Surface
	gen       uint64
	style     scene.Style
	measurer  scene.TextMeasurer
	radius    int
	zoom      float64
	subs      map[int]func(scene.Object)
	nextSub   int
	pending   []scene.Object
	decoder   Decoder
	defaultBG BackgroundRef
	log       logrus.FieldLogger
}

// Option configures a Controller.
type Option func(*Controller)

// WithPreset sets the initial aspect ratio.
func WithPreset(p Preset) Option { return func(c *Controller) { c.preset = p } }

// WithDecoder sets the decoder used by the Load helpers.
func WithDecoder(d Decoder) Option { return func(c *Controller) { c.decoder = d } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(c *Controller) { c.log = l } }

// WithStyle sets the insertion defaults carried across surfaces.
func WithStyle(st scene.Style) Option { return func(c *Controller) { c.style = st } }

// WithMeasurer sets the text measurer installed on every surface.
func WithMeasurer(m scene.TextMeasurer) Option { return func(c *Controller) { c.measurer = m } }

// WithZoom sets the initial view zoom.
func WithZoom(z float64) Option { return func(c *Controller) { c.zoom = clampZoom(z) } }

// WithDefaultBackground sets the background restored by Reset.
func WithDefaultBackground(ref BackgroundRef) Option {
	return func(c *Controller) { c.defaultBG = ref }
}

// New builds a controller with an empty surface for the configured preset.
func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		preset: DefaultPreset,
		style:  scene.DefaultStyle(),
		zoom:   DefaultZoom,
		subs:   map[int]func(scene.Object){},
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	d, ok := c.preset.Dimensions()
	if !ok {
		return nil, fmt.Errorf("preset %q: unknown aspect ratio", c.preset)
	}
	s, err := c.build(d)
	if err != nil {
		return nil, err
	}
	c.surf = s
	c.gen = 1
	return c, nil
}

func (c *Controller) build(d Dimensions) (*scene.Surface, error) {
	s, err := scene.New(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	s.SetStyle(c.style)
	if c.measurer != nil {
		s.SetMeasurer(c.measurer)
	}
	s.OnSelect(c.selected)
	return s, nil
}

// selected runs with c.mu held; delivery happens in unlock.
func (c *Controller) selected(o scene.Object) {
	c.pending = append(c.pending, o)
	if im, ok := o.(*scene.Image); ok {
		im.BorderRadius = c.radius
	}
}

func (c *Controller) lock() { c.mu.Lock() }

func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	subs := make([]func(scene.Object), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()
	for _, o := range pending {
		for _, fn := range subs {
			fn(o)
		}
	}
}

// Do runs fn against the current surface while holding the controller lock.
// fn must not retain the surface.
func (c *Controller) Do(fn func(*scene.Surface) error) error {
	c.lock()
	defer c.unlock()
	return fn(c.surf)
}

// Surface returns the current surface. Callers on other goroutines should use
// Do instead.
func (c *Controller) Surface() *scene.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surf
}

// Preset returns the current aspect ratio.
func (c *Controller) Preset() Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preset
}

// Generation increases every time the surface is rebuilt.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Subscribe registers fn for selection changes. fn receives nil when the
// selection is cleared. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(scene.Object)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// ChangeAspectRatio disposes the current surface and builds a new one for p.
// Objects are not carried over; the background is re-applied by id with a
// fresh cover scale.
func (c *Controller) ChangeAspectRatio(p Preset) error {
	d, ok := p.Dimensions()
	if !ok {
		return fmt.Errorf("preset %q: unknown aspect ratio", p)
	}
	c.lock()
	defer c.unlock()
	ns, err := c.build(d)
	if err != nil {
		return err
	}
	old := c.surf
	bg := old.Background()
	hadSelection := old.Active() != nil
	old.Dispose()
	c.surf = ns
	c.gen++
	c.preset = p
	log := c.log.WithFields(logrus.Fields{"preset": p, "size": d.String(), "background": bg.ID})
	switch bg.Mode {
	case scene.BackgroundImage:
		if err := ns.SetBackground(bg.ID, bg.Picture); err != nil {
			log.WithError(err).Warn("could not re-apply background")
		}
	case scene.BackgroundColor:
		_ = ns.SetBackgroundColor(bg.Color)
	}
	if hadSelection {
		c.pending = append(c.pending, nil)
	}
	log.Debug("surface rebuilt")
	return nil
}

type ticket struct {
	gen uint64
}

func (c *Controller) ticket() ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ticket{gen: c.gen}
}

// commit applies fn if the surface the ticket was issued for is still live.
func (c *Controller) commit(t ticket, fn func(*scene.Surface) error) error {
	c.lock()
	defer c.unlock()
	if t.gen != c.gen || c.surf.Disposed() {
		return ErrStaleDecodeTarget
	}
	return fn(c.surf)
}

func (c *Controller) load(ctx context.Context, ref string, fields logrus.Fields, apply func(*scene.Surface, scene.Picture) error) <-chan error {
	done := make(chan error, 1)
	if c.decoder == nil {
		done <- ErrNoDecoder
		return done
	}
	t := c.ticket()
	go func() {
		pic, err := c.decoder.Decode(ctx, ref)
		if err != nil {
			done <- err
			return
		}
		err = c.commit(t, func(s *scene.Surface) error { return apply(s, pic) })
		if errors.Is(err, ErrStaleDecodeTarget) {
			c.log.WithFields(fields).Debug("discarding decode for replaced surface")
			err = nil
		}
		done <- err
	}()
	return done
}

// LoadBackground decodes ref in the background and installs it as the
// background once ready. The surface keeps its old fill meanwhile.
func (c *Controller) LoadBackground(ctx context.Context, bg BackgroundRef) <-chan error {
	return c.load(ctx, bg.Ref, logrus.Fields{"background": bg.ID}, func(s *scene.Surface, pic scene.Picture) error {
		return s.SetBackground(bg.ID, pic)
	})
}

// LoadImage decodes ref in the background and inserts it as a selected image.
func (c *Controller) LoadImage(ctx context.Context, ref string) <-chan error {
	return c.load(ctx, ref, logrus.Fields{"ref": ref}, func(s *scene.Surface, pic scene.Picture) error {
		_, err := s.InsertImage(pic)
		return err
	})
}

// Reset clears every object and restores the default background.
func (c *Controller) Reset(ctx context.Context) <-chan error {
	c.lock()
	c.surf.Clear()
	c.unlock()
	if c.defaultBG.Ref == "" {
		done := make(chan error, 1)
		done <- nil
		return done
	}
	return c.LoadBackground(ctx, c.defaultBG)
}

// Select sets the active object. Unknown ids clear the selection.
func (c *Controller) Select(id scene.ID) scene.Object {
	c.lock()
	defer c.unlock()
	return c.surf.SetActive(id)
}

// SelectAt selects the topmost object under canvas point p.
func (c *Controller) SelectAt(p geometry.Point) scene.Object {
	c.lock()
	defer c.unlock()
	return c.surf.SelectAt(p)
}

// BorderRadius returns the current border radius control value.
func (c *Controller) BorderRadius() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

// SetBorderRadius updates the control value and re-derives the active
// image's clip region.
func (c *Controller) SetBorderRadius(r int) error {
	c.lock()
	defer c.unlock()
	if err := c.surf.ApplyBorderRadius(r); err != nil {
		return err
	}
	c.radius = r
	return nil
}

// SetStyle updates the insertion defaults for this and future surfaces.
func (c *Controller) SetStyle(st scene.Style) {
	c.lock()
	defer c.unlock()
	c.style = st
	c.surf.SetStyle(st)
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	return math.Round(z*100) / 100
}

// Zoom returns the view zoom.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// SetZoom sets the view zoom, clamped to [MinZoom, MaxZoom], and returns the
// value applied.
func (c *Controller) SetZoom(z float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(z)
	return c.zoom
}

// ZoomIn steps the zoom up.
func (c *Controller) ZoomIn() float64 { return c.SetZoom(c.Zoom() + ZoomStep) }

// ZoomOut steps the zoom down.
func (c *Controller) ZoomOut() float64 { return c.SetZoom(c.Zoom() - ZoomStep) }

// ViewToCanvas maps a point in view pixels to canvas coordinates.
func (c *Controller) ViewToCanvas(p geometry.Point) geometry.Point {
	z := c.Zoom()
	return geometry.Point{X: p.X / z, Y: p.Y / z}
}
