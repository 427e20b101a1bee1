package editor

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/theme"
)

// statusEvent carries the result of an action back to the event loop.
type statusEvent Status

// Editor is the canvas window.
type Editor struct {
	session *Session
	theme   *theme.Theme
	title   string
	log     logrus.FieldLogger
}

// New returns an editor window over session.
func New(session *Session, th *theme.Theme, title string) *Editor {
	if th == nil {
		th = theme.Default()
	}
	return &Editor{session: session, theme: th, title: title, log: session.log}
}

// Run executes the UI loop using shiny's driver and returns when the window
// closes.
func (ed *Editor) Run(ctx context.Context) error {
	var err error
	driver.Main(func(s screen.Screen) { err = ed.main(ctx, s) })
	return err
}

func (ed *Editor) main(ctx context.Context, s screen.Screen) error {
	ctrl := ed.session.ctrl()
	canvas := func() image.Point {
		var p image.Point
		_ = ctrl.Do(func(sf *scene.Surface) error {
			p = image.Pt(sf.Width(), sf.Height())
			return nil
		})
		return p
	}
	win := FitWindow(canvas(), ctrl.Zoom())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: win.X, Height: win.Y, Title: ed.title})
	if err != nil {
		return err
	}
	defer w.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := ctrl.Subscribe(func(scene.Object) { w.Send(paint.Event{}) })
	defer unsubscribe()

	status := Status{Text: "r c t s a d h p o l e i: shapes  x: text  b: background  ctrl+s: export  q: quit"}
	layout := func() Layout { return Layout{Window: win, Canvas: canvas(), Zoom: ctrl.Zoom()} }
	report := func(text string, err error) {
		switch {
		case errors.Is(err, ErrQuit):
			w.Send(lifecycle.Event{To: lifecycle.StageDead})
		case err != nil:
			ed.log.WithError(err).Warn("action failed")
			w.Send(statusEvent{Text: err.Error(), Error: true})
		case text != "":
			w.Send(statusEvent{Text: text})
		default:
			w.Send(paint.Event{})
		}
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}
		case size.Event:
			win = image.Pt(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case statusEvent:
			status = Status(e)
			w.Send(paint.Event{})
		case paint.Event:
			ed.paint(s, w, layout(), status)
		case mouse.Event:
			l := layout()
			p := l.ToCanvas(image.Pt(int(e.X), int(e.Y)))
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				ed.session.Press(p)
				w.Send(paint.Event{})
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				ed.session.Release()
			case e.Direction == mouse.DirNone:
				if ed.session.Drag(p) {
					w.Send(paint.Event{})
				}
			case e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown:
				if ed.session.Wheel(e.Button == mouse.ButtonWheelUp) {
					w.Send(paint.Event{})
				}
			}
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			action, ok := ed.session.Action(e)
			if !ok {
				continue
			}
			if Slow(action) {
				status = Status{Text: action + "..."}
				w.Send(paint.Event{})
				go func(e key.Event) { report(ed.session.HandleKey(ctx, e)) }(e)
				continue
			}
			report(ed.session.HandleKey(ctx, e))
		case error:
			ed.log.WithError(e).Error("window event")
		}
	}
}

func (ed *Editor) paint(s screen.Screen, w screen.Window, l Layout, st Status) {
	if l.Window.X <= 0 || l.Window.Y <= 0 {
		return
	}
	b, err := s.NewBuffer(l.Window)
	if err != nil {
		ed.log.WithError(err).Error("new buffer")
		return
	}
	defer b.Release()
	err = ed.session.ctrl().Do(func(sf *scene.Surface) error {
		return Compose(b.RGBA(), sf, l, ed.theme, st)
	})
	if err != nil {
		ed.log.WithError(err).Error("compose frame")
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
