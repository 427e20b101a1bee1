package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestStarPoints(t *testing.T) {
	pts, err := StarPoints(5, 80, 40)
	require.NoError(t, err)
	require.Len(t, pts, 10)
	assert.InDelta(t, 0, pts[0].X, eps)
	assert.InDelta(t, -80, pts[0].Y, eps)
	for i, p := range pts {
		want := 80.0
		if i%2 == 1 {
			want = 40
		}
		assert.InDelta(t, want, p.Len(), 1e-6, "vertex %d", i)
	}
}

func TestStarPointsRejectsDegenerate(t *testing.T) {
	for _, tc := range []struct {
		spikes       int
		outer, inner float64
	}{
		{2, 80, 40},
		{5, 0, 40},
		{5, 80, -1},
		{5, math.NaN(), 40},
	} {
		_, err := StarPoints(tc.spikes, tc.outer, tc.inner)
		assert.ErrorIs(t, err, ErrInvalidParameters)
	}
}

func TestArrowPoints(t *testing.T) {
	pts, err := ArrowPoints(140, 60, 90)
	require.NoError(t, err)
	require.Len(t, pts, 7)
	tip := pts[3]
	assert.InDelta(t, 100, tip.X, eps)
	assert.InDelta(t, 0, tip.Y, eps)
	assert.InDelta(t, -100, pts[0].X, eps)
	assert.InDelta(t, pts[0].X, pts[6].X, eps)
	assert.InDelta(t, -45, pts[2].Y, eps)
	assert.InDelta(t, 45, pts[4].Y, eps)
	b := Bounds(pts)
	assert.InDelta(t, 0, b.Center().X, eps)
	assert.InDelta(t, 0, b.Center().Y, eps)
}

func TestOutlinesAreCentred(t *testing.T) {
	for _, k := range Kinds() {
		o, err := OutlineFor(k)
		require.NoError(t, err, k.String())
		b := o.Bounds()
		assert.False(t, b.Empty(), k.String())
		c := b.Center()
		assert.InDelta(t, 0, c.X, 0.5, k.String())
		if k != Star && k != Pentagon {
			assert.InDelta(t, 0, c.Y, 0.5, k.String())
		}
		assert.GreaterOrEqual(t, len(o.Polygon()), 3, k.String())
	}
}

func TestParseShapeKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseShapeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseShapeKind("hexagram")
	assert.Error(t, err)
	assert.Equal(t, "ShapeKind(99)", ShapeKind(99).String())
}

func TestRoundedRectClamp(t *testing.T) {
	r := RoundedRect{Width: 40, Height: 200, Radius: 100}.Clamped()
	assert.Equal(t, 20.0, r.Radius)
	r = RoundedRect{Width: 40, Height: 200, Radius: -3}.Clamped()
	assert.Equal(t, 0.0, r.Radius)
	assert.Len(t, RoundedRect{Width: 10, Height: 10}.Points(), 4)
	b := Bounds(RoundedRect{Width: 40, Height: 200, Radius: 100}.Points())
	assert.InDelta(t, 40, b.Width(), 1e-6)
	assert.InDelta(t, 200, b.Height(), 1e-6)
}

func TestMatrixInvert(t *testing.T) {
	m := Object(Point{640, 360}, 0.5, 2, 30)
	inv, ok := m.Invert()
	require.True(t, ok)
	p := Point{12, -7}
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	_, ok = Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestMatrixRotateClockwise(t *testing.T) {
	p := Rotate(90).Apply(Point{1, 0})
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 1, p.Y, eps)
}
