package scene

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scaling"
)

func picture(w, h int) Picture {
	return Picture{Ref: "test.png", Image: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

func newSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := New(1280, 720)
	require.NoError(t, err)
	return s
}

func TestNewRejectsEmptySize(t *testing.T) {
	_, err := New(0, 720)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestInsertSelectsAndAppends(t *testing.T) {
	s := newSurface(t)

	im, err := s.InsertImage(picture(1000, 500))
	require.NoError(t, err)
	assert.Equal(t, Object(im), s.Active())

	sh, err := s.InsertShape(geometry.Star, ShapeStyle{})
	require.NoError(t, err)
	assert.Equal(t, Object(sh), s.Active())

	tx, err := s.InsertText("hello", 0)
	require.NoError(t, err)
	assert.Equal(t, Object(tx), s.Active())

	objs := s.Objects()
	require.Len(t, objs, 3)
	assert.Equal(t, Object(tx), objs[len(objs)-1])
	assert.Less(t, objs[0].ID(), objs[1].ID())
	assert.Less(t, objs[1].ID(), objs[2].ID())
	assert.Equal(t, s.Style().FontSize, tx.FontSize)
	for _, o := range objs {
		assert.Equal(t, s.Center(), o.Common().Position)
	}
}

func TestInsertImageUsesFitScale(t *testing.T) {
	s := newSurface(t)
	im, err := s.InsertImage(picture(1000, 500))
	require.NoError(t, err)
	want, _ := scaling.Fit(1280, 720, 1000, 500, scaling.DefaultShrink)
	assert.InDelta(t, want, im.ScaleX, 1e-12)
	assert.InDelta(t, want, im.ScaleY, 1e-12)
	w, h := im.RenderedSize()
	assert.LessOrEqual(t, w, 0.7*1280+1e-9)
	assert.LessOrEqual(t, h, 0.7*720+1e-9)
}

func TestInsertImageRejectsZeroSize(t *testing.T) {
	s := newSurface(t)
	_, err := s.InsertImage(Picture{Ref: "broken"})
	assert.ErrorIs(t, err, scaling.ErrInvalidSourceDimensions)
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Active())
}

func TestInsertShapeStyleDefaults(t *testing.T) {
	s := newSurface(t)
	sh, err := s.InsertShape(geometry.Rectangle, ShapeStyle{})
	require.NoError(t, err)
	assert.Equal(t, s.Style().ShapeColor, sh.Stroke)
	assert.Equal(t, s.Style().StrokeWidth, sh.StrokeWidth)
	assert.Equal(t, uint8(0), sh.Fill.A, "shapes are outline only")

	red := color.NRGBA{R: 255, A: 255}
	sh, err = s.InsertShape(geometry.Heart, ShapeStyle{Stroke: red, StrokeWidth: 500})
	require.NoError(t, err)
	assert.Equal(t, red, sh.Stroke)
	assert.Equal(t, float64(MaxStrokeWidth), sh.StrokeWidth)

	_, err = s.InsertShape(geometry.ShapeKind(42), ShapeStyle{})
	assert.Error(t, err)
}

func TestInsertTextRejectsEmpty(t *testing.T) {
	s := newSurface(t)
	_, err := s.InsertText("  ", 20)
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newSurface(t)
	a, _ := s.InsertShape(geometry.Circle, ShapeStyle{})
	b, _ := s.InsertShape(geometry.Plus, ShapeStyle{})

	assert.True(t, s.Remove(a.ID()))
	before := s.Objects()
	assert.False(t, s.Remove(a.ID()))
	assert.Equal(t, before, s.Objects())
	assert.Equal(t, Object(b), s.Active(), "removing a non-active object keeps the selection")

	assert.True(t, s.RemoveActive())
	assert.Nil(t, s.Active())
	assert.False(t, s.RemoveActive())
	assert.Equal(t, 0, s.Len())
}

func TestSetActive(t *testing.T) {
	s := newSurface(t)
	a, _ := s.InsertShape(geometry.Diamond, ShapeStyle{})
	_, _ = s.InsertShape(geometry.Hexagon, ShapeStyle{})

	assert.Equal(t, Object(a), s.SetActive(a.ID()))
	assert.Nil(t, s.SetActive(999))
	assert.Nil(t, s.Active())

	s.SetActive(a.ID())
	a.Selectable = false
	assert.Nil(t, s.SetActive(a.ID()))
}

func TestSelectionHook(t *testing.T) {
	s := newSurface(t)
	var seen []Object
	s.OnSelect(func(o Object) { seen = append(seen, o) })

	a, _ := s.InsertShape(geometry.Triangle, ShapeStyle{})
	s.SetActive(a.ID())
	s.SetActive(NoID)
	s.SetActive(NoID)

	require.Len(t, seen, 2)
	assert.Equal(t, Object(a), seen[0])
	assert.Nil(t, seen[1])
}

func TestUpdatesOnlyTouchShapes(t *testing.T) {
	s := newSurface(t)
	sh, _ := s.InsertShape(geometry.Arrow, ShapeStyle{})
	assert.True(t, s.UpdateActiveStrokeWidth(8))
	assert.True(t, s.UpdateActiveColor(color.RGBA{G: 255, A: 255}))
	assert.Equal(t, 8.0, sh.StrokeWidth)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, sh.Stroke)

	tx, _ := s.InsertText("caption", 30)
	fill := tx.Fill
	assert.False(t, s.UpdateActiveStrokeWidth(2))
	assert.False(t, s.UpdateActiveColor(color.Black))
	assert.Equal(t, fill, tx.Fill)

	s.SetActive(NoID)
	assert.False(t, s.UpdateActiveStrokeWidth(2))
}

func TestClearKeepsBackground(t *testing.T) {
	s := newSurface(t)
	require.NoError(t, s.SetBackground("mountain-hiker", picture(1920, 1080)))
	_, _ = s.InsertText("a", 10)
	_, _ = s.InsertShape(geometry.Star, ShapeStyle{})

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Active())
	assert.Equal(t, BackgroundImage, s.Background().Mode)
	assert.Equal(t, "mountain-hiker", s.Background().ID)
}

func TestBackgroundModesAreExclusive(t *testing.T) {
	s := newSurface(t)
	assert.Equal(t, BackgroundColor, s.Background().Mode)

	require.NoError(t, s.SetBackground("ocean", picture(100, 400)))
	bg := s.Background()
	assert.Equal(t, BackgroundImage, bg.Mode)
	assert.InDelta(t, 12.8, bg.Scale, 1e-12)
	assert.Equal(t, s.Center(), bg.Position)

	require.NoError(t, s.SetBackgroundColor(color.Black))
	bg = s.Background()
	assert.Equal(t, BackgroundColor, bg.Mode)
	assert.Nil(t, bg.Picture.Image)
	assert.Equal(t, "", bg.ID)
}

func TestBackgroundFailureKeepsPrevious(t *testing.T) {
	s := newSurface(t)
	require.NoError(t, s.SetBackground("ocean", picture(100, 400)))
	err := s.SetBackground("broken", Picture{})
	assert.ErrorIs(t, err, scaling.ErrInvalidSourceDimensions)
	assert.Equal(t, "ocean", s.Background().ID)
}

func TestBackgroundTransformCentres(t *testing.T) {
	s := newSurface(t)
	require.NoError(t, s.SetBackground("sq", picture(100, 100)))
	m := s.Background().Transform()
	c := m.Apply(geometry.Point{X: 50, Y: 50})
	assert.InDelta(t, 640, c.X, 1e-9)
	assert.InDelta(t, 360, c.Y, 1e-9)
	tl := m.Apply(geometry.Point{})
	assert.InDelta(t, 0, tl.X, 1e-9)
	assert.InDelta(t, -280, tl.Y, 1e-9)
}

func TestHitTestTopmost(t *testing.T) {
	s := newSurface(t)
	a, _ := s.InsertShape(geometry.Rectangle, ShapeStyle{})
	b, _ := s.InsertShape(geometry.Rectangle, ShapeStyle{})
	b.Position = b.Position.Add(geometry.Point{X: 50})

	assert.Equal(t, Object(b), s.HitTest(geometry.Point{X: 700, Y: 360}))
	assert.Equal(t, Object(a), s.HitTest(geometry.Point{X: 560, Y: 360}))
	assert.Nil(t, s.HitTest(geometry.Point{X: 5, Y: 5}))

	assert.Equal(t, Object(a), s.SelectAt(geometry.Point{X: 560, Y: 360}))
	assert.Nil(t, s.SelectAt(geometry.Point{X: 5, Y: 5}))
	assert.Nil(t, s.Active())
}

func TestTransformsActive(t *testing.T) {
	s := newSurface(t)
	sh, _ := s.InsertShape(geometry.Rectangle, ShapeStyle{})
	assert.True(t, s.MoveActive(10, -5))
	assert.Equal(t, geometry.Point{X: 650, Y: 355}, sh.Position)
	assert.True(t, s.ScaleActive(2))
	assert.Equal(t, 2.0, sh.ScaleX)
	assert.False(t, s.ScaleActive(0))
	assert.True(t, s.RotateActive(370))
	assert.InDelta(t, 10, sh.Rotation, 1e-9)
}

func TestDisposedSurfaceRejectsMutations(t *testing.T) {
	s := newSurface(t)
	_, _ = s.InsertShape(geometry.Star, ShapeStyle{})
	s.Dispose()
	assert.True(t, s.Disposed())
	assert.Equal(t, 0, s.Len())

	_, err := s.InsertImage(picture(10, 10))
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = s.InsertShape(geometry.Star, ShapeStyle{})
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = s.InsertText("x", 10)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, s.SetBackground("x", picture(10, 10)), ErrDisposed)
	assert.ErrorIs(t, s.SetBackgroundColor(color.White), ErrDisposed)
}

type fixedMeasurer struct{}

func (fixedMeasurer) Measure(string, float64) (float64, float64) { return 100, 20 }

func TestMeasurerSizesText(t *testing.T) {
	s := newSurface(t)
	tx, _ := s.InsertText("hello", 20)
	s.SetMeasurer(fixedMeasurer{})
	b := tx.LocalBounds()
	assert.Equal(t, 100.0, b.Width())
	assert.Equal(t, 20.0, b.Height())
	assert.True(t, s.UpdateActiveText("bye"))
	assert.Equal(t, "bye", tx.Content)
}
