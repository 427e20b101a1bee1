// Package editor hosts the interactive canvas window: key and mouse input
// drive a studio, and each frame shows the surface on a themed card.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/notify"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/source"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
)

// Editing steps.
const (
	RadiusStep   = 5
	RotateStep   = 15
	NudgeStep    = 1
	NudgeStepBig = 10
	WheelScale   = 1.1
)

// ErrQuit is returned by HandleKey when the user asked to leave.
var ErrQuit = errors.New("quit")

// Session turns input into studio operations. It is safe for concurrent use;
// the window runs slow actions off the event goroutine.
type Session struct {
	studio   *studio.Studio
	notifier *notify.Notifier
	copyPNG  func([]byte) error
	output   string
	log      logrus.FieldLogger
	bindings map[KeyShortcut]string

	mu      sync.Mutex
	bgIndex int
	drag    *geometry.Point
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNotifier sets the notifier used after export and copy.
func WithNotifier(n *notify.Notifier) SessionOption { return func(s *Session) { s.notifier = n } }

// WithClipboard sets the function that publishes PNG bytes for Ctrl+C.
func WithClipboard(fn func([]byte) error) SessionOption { return func(s *Session) { s.copyPNG = fn } }

// WithOutput sets the export path for Ctrl+S.
func WithOutput(path string) SessionOption { return func(s *Session) { s.output = path } }

// WithSessionLogger sets the logger.
func WithSessionLogger(l logrus.FieldLogger) SessionOption { return func(s *Session) { s.log = l } }

// NewSession returns a session over st.
func NewSession(st *studio.Studio, opts ...SessionOption) *Session {
	s := &Session{
		studio:   st,
		log:      logrus.StandardLogger(),
		bindings: DefaultBindings(),
		bgIndex:  -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) ctrl() *surface.Controller { return s.studio.Controller() }

// Action returns the action bound to e, if any.
func (s *Session) Action(e key.Event) (string, bool) {
	a, ok := s.bindings[shortcutOf(e)]
	return a, ok
}

// Slow reports whether action may block on I/O.
func Slow(action string) bool {
	switch action {
	case ActionBackground, ActionPaste, ActionExport, ActionCopy, ActionReset:
		return true
	}
	return false
}

// HandleKey runs the action bound to e and returns a status line. Unbound
// keys return "" and no error.
func (s *Session) HandleKey(ctx context.Context, e key.Event) (string, error) {
	action, ok := s.Action(e)
	if !ok {
		return "", nil
	}
	step := float64(NudgeStep)
	if e.Modifiers&key.ModShift != 0 {
		step = NudgeStepBig
	}
	return s.Run(ctx, action, step)
}

// Run performs a named action. step is the nudge distance for arrow actions.
func (s *Session) Run(ctx context.Context, action string, step float64) (string, error) {
	c := s.ctrl()
	if name, ok := strings.CutPrefix(action, shapePrefix); ok {
		kind, err := geometry.ParseShapeKind(name)
		if err != nil {
			return "", err
		}
		err = c.Do(func(sf *scene.Surface) error {
			_, err := sf.InsertShape(kind, scene.ShapeStyle{})
			return err
		})
		return "added " + name, err
	}
	if n, ok := strings.CutPrefix(action, aspectPrefix); ok {
		presets := surface.Presets()
		i := int(n[0] - '1')
		if i < 0 || i >= len(presets) {
			return "", fmt.Errorf("no preset %s", n)
		}
		if err := c.ChangeAspectRatio(presets[i]); err != nil {
			return "", err
		}
		return "aspect " + string(presets[i]), nil
	}

	switch action {
	case ActionText:
		err := c.Do(func(sf *scene.Surface) error {
			_, err := sf.InsertText("Text", sf.Style().FontSize)
			return err
		})
		return "added text", err
	case ActionDelete:
		return s.active(func(sf *scene.Surface) bool { return sf.RemoveActive() }, "deleted")
	case ActionZoomIn:
		return fmt.Sprintf("zoom %.0f%%", c.ZoomIn()*100), nil
	case ActionZoomOut:
		return fmt.Sprintf("zoom %.0f%%", c.ZoomOut()*100), nil
	case ActionRadiusDown, ActionRadiusUp:
		return s.radius(action == ActionRadiusUp)
	case ActionRotateLeft:
		return s.active(func(sf *scene.Surface) bool { return sf.RotateActive(-RotateStep) }, "rotated")
	case ActionRotateRight:
		return s.active(func(sf *scene.Surface) bool { return sf.RotateActive(RotateStep) }, "rotated")
	case ActionLeft:
		return s.active(func(sf *scene.Surface) bool { return sf.MoveActive(-step, 0) }, "")
	case ActionRight:
		return s.active(func(sf *scene.Surface) bool { return sf.MoveActive(step, 0) }, "")
	case ActionUp:
		return s.active(func(sf *scene.Surface) bool { return sf.MoveActive(0, -step) }, "")
	case ActionDown:
		return s.active(func(sf *scene.Surface) bool { return sf.MoveActive(0, step) }, "")
	case ActionDeselect:
		c.Select(scene.NoID)
		return "", nil
	case ActionBackground:
		return s.nextBackground(ctx)
	case ActionPaste:
		if err := s.studio.UploadImage(ctx, source.ClipboardRef); err != nil {
			return "", err
		}
		return "pasted image", nil
	case ActionExport:
		path, err := s.studio.ExportFile(ctx, s.output)
		if err != nil {
			return "", err
		}
		s.notifier.Export(ctx, path)
		return "saved " + path, nil
	case ActionCopy:
		return s.copy(ctx)
	case ActionReset:
		if err := <-c.Reset(ctx); err != nil {
			return "", err
		}
		return "reset", nil
	case ActionQuit:
		return "", ErrQuit
	}
	return "", fmt.Errorf("unknown action %q", action)
}

func (s *Session) active(fn func(*scene.Surface) bool, done string) (string, error) {
	var ok bool
	err := s.ctrl().Do(func(sf *scene.Surface) error {
		ok = fn(sf)
		return nil
	})
	if err != nil || !ok {
		return "", err
	}
	return done, nil
}

func (s *Session) radius(up bool) (string, error) {
	c := s.ctrl()
	var isImage bool
	_ = c.Do(func(sf *scene.Surface) error {
		_, isImage = sf.Active().(*scene.Image)
		return nil
	})
	if !isImage {
		return "", nil
	}
	r := c.BorderRadius()
	if up {
		r += RadiusStep
	} else {
		r -= RadiusStep
	}
	r = min(max(r, scene.MinBorderRadius), scene.MaxBorderRadius)
	if err := c.SetBorderRadius(r); err != nil {
		return "", err
	}
	return fmt.Sprintf("radius %d", r), nil
}

func (s *Session) nextBackground(ctx context.Context) (string, error) {
	list, err := s.studio.Catalog().List()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	s.mu.Lock()
	s.bgIndex = (s.bgIndex + 1) % len(list)
	bg := list[s.bgIndex]
	s.mu.Unlock()
	if err := s.studio.ApplyBackground(ctx, bg.ID); err != nil {
		return "", err
	}
	return "background " + bg.Name, nil
}

func (s *Session) copy(ctx context.Context) (string, error) {
	if s.copyPNG == nil {
		return "", errors.New("clipboard unavailable")
	}
	var buf bytes.Buffer
	if err := s.studio.Export(ctx, &buf); err != nil {
		return "", err
	}
	if err := s.copyPNG(buf.Bytes()); err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	s.notifier.Copy(ctx, "image")
	return "copied to clipboard", nil
}

// Press selects the topmost object under p (canvas units) and starts a drag
// when one was hit.
func (s *Session) Press(p geometry.Point) scene.Object {
	o := s.ctrl().SelectAt(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
	if o != nil {
		s.drag = &p
	}
	return o
}

// Drag moves the active object by the distance since the last call.
func (s *Session) Drag(p geometry.Point) bool {
	s.mu.Lock()
	if s.drag == nil {
		s.mu.Unlock()
		return false
	}
	d := p.Sub(*s.drag)
	*s.drag = p
	s.mu.Unlock()
	var moved bool
	_ = s.ctrl().Do(func(sf *scene.Surface) error {
		moved = sf.MoveActive(d.X, d.Y)
		return nil
	})
	return moved
}

// Release ends a drag.
func (s *Session) Release() {
	s.mu.Lock()
	s.drag = nil
	s.mu.Unlock()
}

// Wheel scales the active object one notch up or down.
func (s *Session) Wheel(up bool) bool {
	f := WheelScale
	if !up {
		f = 1 / WheelScale
	}
	var ok bool
	_ = s.ctrl().Do(func(sf *scene.Surface) error {
		ok = sf.ScaleActive(f)
		return nil
	})
	return ok
}
