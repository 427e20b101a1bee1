package scaling

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverAlwaysCovers(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		cw := 1 + r.Float64()*4000
		ch := 1 + r.Float64()*4000
		sw := 1 + r.Float64()*6000
		sh := 1 + r.Float64()*6000
		s, err := Cover(cw, ch, sw, sh)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s*sw, cw*(1-1e-12))
		assert.GreaterOrEqual(t, s*sh, ch*(1-1e-12))
		assert.True(t, math.Abs(s*sw-cw) < 1e-6 || math.Abs(s*sh-ch) < 1e-6, "one axis fits exactly")
	}
}

func TestFitStaysWithinMargin(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		cw := 1 + r.Float64()*4000
		ch := 1 + r.Float64()*4000
		sw := 1 + r.Float64()*6000
		sh := 1 + r.Float64()*6000
		s, err := Fit(cw, ch, sw, sh, DefaultShrink)
		require.NoError(t, err)
		assert.LessOrEqual(t, s*sw, 0.7*cw+1e-9)
		assert.LessOrEqual(t, s*sh, 0.7*ch+1e-9)
	}
}

func TestKnownValues(t *testing.T) {
	s, err := Cover(1280, 720, 1920, 1920)
	require.NoError(t, err)
	assert.InDelta(t, 1280.0/1920, s, 1e-12)

	s, err = Fit(1280, 720, 1000, 500, DefaultShrink)
	require.NoError(t, err)
	assert.InDelta(t, 0.7*1.28, s, 1e-12)

	s, err = Fit(1280, 720, 1000, 500, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.7*1.28, s, 1e-12, "invalid shrink falls back to the default")
}

func TestZeroSourceIsRejected(t *testing.T) {
	for _, dims := range [][2]float64{{0, 10}, {10, 0}, {0, 0}, {-5, 10}, {math.NaN(), 4}} {
		_, err := Cover(1280, 720, dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidSourceDimensions)
		_, err = Fit(1280, 720, dims[0], dims[1], DefaultShrink)
		assert.ErrorIs(t, err, ErrInvalidSourceDimensions)
	}
}

func TestCentered(t *testing.T) {
	c := Centered(720, 1280)
	assert.Equal(t, 360.0, c.X)
	assert.Equal(t, 640.0, c.Y)
}
