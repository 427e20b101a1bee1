package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"

	"github.com/example/snapcanvas/internal/auth"
	"github.com/example/snapcanvas/internal/catalog"
	"github.com/example/snapcanvas/internal/credits"
	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/source"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
	"github.com/example/snapcanvas/internal/theme"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	session *Session
	studio  *studio.Studio
	ledger  *credits.Memory
	copied  []byte
}

func newFixture(t *testing.T, clip []byte) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	dec := source.New(source.WithLogger(log), source.WithClipboard(func() ([]byte, error) { return clip, nil }))
	ctrl, err := surface.New(surface.WithDecoder(dec), surface.WithLogger(log))
	require.NoError(t, err)
	f := &fixture{ledger: credits.NewMemory(5)}
	f.studio = studio.New(ctrl, catalog.New(catalog.NewMemoryStorage(), log), f.ledger,
		auth.Static{User: auth.Identity{ID: "u1"}}, studio.WithLogger(log), studio.WithMultiplier(0.1))
	f.session = NewSession(f.studio,
		WithSessionLogger(log),
		WithOutput(filepath.Join(t.TempDir(), "out.png")),
		WithClipboard(func(b []byte) error {
			f.copied = b
			return nil
		}),
	)
	return f
}

func press(r rune) key.Event { return key.Event{Rune: r, Direction: key.DirPress} }

func ctrlKey(c key.Code) key.Event {
	return key.Event{Rune: -1, Code: c, Modifiers: key.ModControl, Direction: key.DirPress}
}

func (f *fixture) surface() *scene.Surface { return f.studio.Controller().Surface() }

func TestBindingsCoverEveryShape(t *testing.T) {
	b := DefaultBindings()
	seen := map[string]bool{}
	for r := range ShapeKeys {
		seen[b[KeyShortcut{Rune: r}]] = true
	}
	assert.Len(t, seen, len(geometry.Kinds()))
	for _, k := range geometry.Kinds() {
		assert.True(t, seen[shapePrefix+k.String()], k.String())
	}
}

func TestShortcutNormalisation(t *testing.T) {
	assert.Equal(t, KeyShortcut{Rune: '+'}, shortcutOf(key.Event{Rune: '+', Modifiers: key.ModShift}))
	assert.Equal(t, KeyShortcut{Rune: 'r'}, shortcutOf(key.Event{Rune: 'R', Modifiers: key.ModShift}))
	assert.Equal(t, KeyShortcut{Code: key.CodeS, Modifiers: key.ModControl},
		shortcutOf(key.Event{Rune: 's', Code: key.CodeS, Modifiers: key.ModControl}))
	assert.Equal(t, KeyShortcut{Code: key.CodeEscape}, shortcutOf(key.Event{Rune: 27, Code: key.CodeEscape}))
}

func TestInsertAndEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	status, err := f.session.HandleKey(ctx, press('s'))
	require.NoError(t, err)
	assert.Equal(t, "added star", status)
	sh, ok := f.surface().Active().(*scene.Shape)
	require.True(t, ok)
	assert.Equal(t, geometry.Star, sh.Kind)
	start := sh.Position

	_, err = f.session.HandleKey(ctx, key.Event{Code: key.CodeRightArrow, Modifiers: key.ModShift, Rune: -1})
	require.NoError(t, err)
	assert.InDelta(t, start.X+NudgeStepBig, sh.Position.X, 1e-9)

	_, err = f.session.HandleKey(ctx, press('.'))
	require.NoError(t, err)
	assert.InDelta(t, RotateStep, sh.Rotation, 1e-9)

	_, err = f.session.HandleKey(ctx, press('x'))
	require.NoError(t, err)
	assert.IsType(t, &scene.Text{}, f.surface().Active())
	assert.Equal(t, 2, f.surface().Len())

	_, err = f.session.HandleKey(ctx, key.Event{Code: key.CodeDeleteForward, Rune: 127})
	require.NoError(t, err)
	assert.Equal(t, 1, f.surface().Len())

	_, err = f.session.HandleKey(ctx, key.Event{Code: key.CodeEscape, Rune: 27})
	require.NoError(t, err)
	assert.Nil(t, f.surface().Active())

	_, err = f.session.HandleKey(ctx, press('q'))
	assert.ErrorIs(t, err, ErrQuit)

	status, err = f.session.HandleKey(ctx, press('z'))
	assert.NoError(t, err)
	assert.Empty(t, status)
}

func TestZoomAndAspect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	status, err := f.session.HandleKey(ctx, press('+'))
	require.NoError(t, err)
	assert.Equal(t, "zoom 75%", status)

	_, err = f.session.HandleKey(ctx, press('2'))
	require.NoError(t, err)
	assert.Equal(t, surface.Square, f.studio.Controller().Preset())
	assert.Equal(t, 720, f.surface().Width())
}

func TestPasteRadiusAndCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pngBytes(t, 200, 100))

	status, err := f.session.HandleKey(ctx, ctrlKey(key.CodeV))
	require.NoError(t, err)
	assert.Equal(t, "pasted image", status)
	im, ok := f.surface().Active().(*scene.Image)
	require.True(t, ok)

	status, err = f.session.HandleKey(ctx, press(']'))
	require.NoError(t, err)
	assert.Equal(t, "radius 5", status)
	assert.Equal(t, 5, im.BorderRadius)
	_, err = f.session.HandleKey(ctx, press('['))
	require.NoError(t, err)
	_, err = f.session.HandleKey(ctx, press('['))
	require.NoError(t, err)
	assert.Equal(t, 0, im.BorderRadius)

	_, err = f.session.HandleKey(ctx, ctrlKey(key.CodeC))
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(f.copied))
	assert.NoError(t, err)
	n, _ := f.ledger.Balance(ctx)
	assert.Equal(t, 4, n)
}

func TestExportAndBackgroundCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.studio.AddCustomBackground(ctx, "dunes.png", pngBytes(t, 64, 36))
	require.NoError(t, err)

	status, err := f.session.Run(ctx, ActionBackground, 0)
	require.NoError(t, err)
	assert.Equal(t, "background dunes", status)
	assert.Equal(t, scene.BackgroundImage, f.surface().Background().Mode)

	status, err = f.session.HandleKey(ctx, ctrlKey(key.CodeS))
	require.NoError(t, err)
	assert.Contains(t, status, "out.png")
}

func TestMouseDrag(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.session.Run(context.Background(), shapePrefix+"rectangle", 0)
	require.NoError(t, err)
	f.studio.Controller().Select(scene.NoID)

	c := f.surface().Center()
	require.NotNil(t, f.session.Press(c))
	assert.True(t, f.session.Drag(c.Add(geometry.Point{X: 30, Y: -10})))
	f.session.Release()
	assert.False(t, f.session.Drag(c))

	sh := f.surface().Active().(*scene.Shape)
	assert.InDelta(t, c.X+30, sh.Position.X, 1e-9)
	assert.InDelta(t, c.Y-10, sh.Position.Y, 1e-9)

	assert.True(t, f.session.Wheel(true))
	assert.InDelta(t, WheelScale, sh.ScaleX, 1e-9)

	assert.Nil(t, f.session.Press(geometry.Point{X: 2, Y: 2}))
	assert.Nil(t, f.surface().Active())
}

func TestLayoutAndCompose(t *testing.T) {
	l := Layout{Window: FitWindow(image.Pt(1280, 720), 0.5), Canvas: image.Pt(1280, 720), Zoom: 0.5}
	r := l.ViewRect()
	assert.Equal(t, image.Pt(640, 360), r.Size())
	assert.Equal(t, image.Pt(margin, margin), r.Min)
	p := l.ToCanvas(r.Min.Add(image.Pt(100, 50)))
	assert.Equal(t, geometry.Point{X: 200, Y: 100}, p)

	sf, err := scene.New(1280, 720)
	require.NoError(t, err)
	_, err = sf.InsertShape(geometry.Rectangle, scene.ShapeStyle{})
	require.NoError(t, err)
	th := theme.Default()
	dst := image.NewRGBA(image.Rectangle{Max: l.Window})
	require.NoError(t, Compose(dst, sf, l, th, Status{Text: "hello"}))

	assert.Equal(t, th.Background, dst.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(r.Min.X+40, r.Min.Y+40))
	assert.Equal(t, th.StatusBackground, dst.RGBAAt(l.Window.X-2, l.Window.Y-2))
}
