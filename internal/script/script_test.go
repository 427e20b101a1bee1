package script

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapcanvas/internal/auth"
	"github.com/example/snapcanvas/internal/catalog"
	"github.com/example/snapcanvas/internal/credits"
	"github.com/example/snapcanvas/internal/geometry"
	"github.com/example/snapcanvas/internal/scene"
	"github.com/example/snapcanvas/internal/source"
	"github.com/example/snapcanvas/internal/studio"
	"github.com/example/snapcanvas/internal/surface"
)

func dataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newStudio(t *testing.T, provider auth.Provider) *studio.Studio {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	ctrl, err := surface.New(surface.WithDecoder(source.New(source.WithLogger(log))), surface.WithLogger(log))
	require.NoError(t, err)
	cat := catalog.New(catalog.NewMemoryStorage(), log)
	return studio.New(ctrl, cat, credits.NewMemory(3), provider, studio.WithLogger(log))
}

func TestPointForms(t *testing.T) {
	s, err := Parse(strings.NewReader(`
objects:
  - shape: circle
    position: [10, 20]
  - shape: star
    offset: {x: -5, y: 7.5}
`))
	require.NoError(t, err)
	require.Len(t, s.Objects, 2)
	assert.Equal(t, &Point{X: 10, Y: 20}, s.Objects[0].Position)
	assert.Equal(t, &Point{X: -5, Y: 7.5}, s.Objects[1].Offset)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "colour: red\n",
		"two kinds":      "objects:\n  - shape: star\n    text: hi\n",
		"no kind":        "objects:\n  - color: red\n",
		"bad shape":      "objects:\n  - shape: blob\n",
		"bad aspect":     "aspect: 5:4\n",
		"bad align":      "objects:\n  - text: hi\n    align: middle\n",
		"short point":    "objects:\n  - shape: star\n    position: [1]\n",
		"two background": "background: dunes\nbackground_color: red\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestEmptyScript(t *testing.T) {
	s, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Objects)
}

func TestApplyBuildsScene(t *testing.T) {
	st := newStudio(t, auth.Static{User: auth.Identity{ID: "u"}})
	src := `
aspect: "1:1"
background_color: navy
style:
  shape_color: "#ff0000"
objects:
  - shape: star
    position: [100, 120]
  - shape: rectangle
    color: gold
    stroke: 6
    offset: [10, 0]
    rotate: 45
  - text: "Hello\nthere"
    size: 30
    align: left
    color: "#00ff00"
`
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, s.Apply(context.Background(), st))

	c := st.Controller()
	assert.Equal(t, surface.Square, c.Preset())
	sf := c.Surface()
	assert.Equal(t, 720, sf.Width())
	assert.Equal(t, scene.BackgroundColor, sf.Background().Mode)
	assert.Nil(t, sf.Active())

	objs := sf.Objects()
	require.Len(t, objs, 3)

	star := objs[0].(*scene.Shape)
	assert.Equal(t, geometry.Point{X: 100, Y: 120}, star.Position)

	rect := objs[1].(*scene.Shape)
	assert.Equal(t, geometry.Point{X: 370, Y: 360}, rect.Position)
	assert.InDelta(t, 45, rect.Rotation, 1e-9)

	text := objs[2].(*scene.Text)
	assert.Equal(t, "Hello\nthere", text.Content)
	assert.Equal(t, 30.0, text.FontSize)
	assert.Equal(t, scene.AlignLeft, text.Align)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, text.Fill)

	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, sf.Style().ShapeColor)
}

func TestApplyImageWithRadius(t *testing.T) {
	st := newStudio(t, auth.Static{User: auth.Identity{ID: "u"}})
	s := &Script{
		BackgroundImage: dataURI(t, 64, 36),
		Objects: []Object{
			{Image: dataURI(t, 100, 50), Radius: intPtr(12)},
			{Image: dataURI(t, 80, 80)},
		},
	}
	require.NoError(t, s.Validate())
	require.NoError(t, s.Apply(context.Background(), st))

	sf := st.Controller().Surface()
	assert.Equal(t, scene.BackgroundImage, sf.Background().Mode)
	require.Equal(t, 2, sf.Len())
	im := sf.Objects()[0].(*scene.Image)
	clip, ok := im.Clip()
	require.True(t, ok)
	assert.Greater(t, clip.Radius, 0.0)
	assert.Equal(t, 12, sf.Objects()[1].(*scene.Image).BorderRadius)
}

func TestApplyImageSignedOut(t *testing.T) {
	st := newStudio(t, auth.Anonymous{})
	s := &Script{Objects: []Object{{Image: dataURI(t, 10, 10)}}}
	err := s.Apply(context.Background(), st)
	assert.ErrorIs(t, err, studio.ErrSignedOut)
}

func intPtr(n int) *int { return &n }
