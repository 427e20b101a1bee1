package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/snapcanvas/internal/scene"
)

// LineHeight is the spacing between text lines as a multiple of font size.
const LineHeight = 1.16

var (
	fontOnce  sync.Once
	fontErr   error
	regular   *opentype.Font
	faceCache sync.Map // map[float64]font.Face
	faceMu    sync.Mutex
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	return regular, fontErr
}

func faceForSize(size float64) (font.Face, error) {
	size = math.Round(size*4) / 4
	if size <= 0 {
		return nil, fmt.Errorf("font size %g", size)
	}
	if f, ok := faceCache.Load(size); ok {
		return f.(font.Face), nil
	}
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faceCache.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// FontMeasurer sizes text blocks with the Go Regular face used for drawing.
type FontMeasurer struct{}

var _ scene.TextMeasurer = FontMeasurer{}

// Measure returns the block size of content at fontSize. Lines are spaced
// LineHeight apart.
func (FontMeasurer) Measure(content string, fontSize float64) (float64, float64) {
	lines, err := layoutText(content, fontSize)
	if err != nil {
		return 0, 0
	}
	return lines.width, lines.height
}

type textLayout struct {
	lines  []string
	widths []float64
	width  float64
	height float64
	ascent float64
	face   font.Face
	lineH  float64
}

func layoutText(content string, size float64) (*textLayout, error) {
	face, err := faceForSize(size)
	if err != nil {
		return nil, err
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	l := &textLayout{lines: strings.Split(content, "\n"), face: face, lineH: size * LineHeight}
	d := &font.Drawer{Face: face}
	for _, line := range l.lines {
		w := fixedToFloat(d.MeasureString(line))
		l.widths = append(l.widths, w)
		l.width = math.Max(l.width, w)
	}
	l.height = float64(len(l.lines)) * l.lineH
	m := face.Metrics()
	l.ascent = fixedToFloat(m.Ascent) + (l.lineH-fixedToFloat(m.Ascent+m.Descent))/2
	return l, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// drawTextBlock renders t at pixel scale k into a fresh image sized to the
// block. The image's centre is the text's local origin.
func drawTextBlock(t *scene.Text, k float64) (*image.RGBA, error) {
	l, err := layoutText(t.Content, t.FontSize*k)
	if err != nil {
		return nil, err
	}
	w := int(math.Ceil(l.width)) + 2
	h := int(math.Ceil(l.height)) + 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	faceMu.Lock()
	defer faceMu.Unlock()
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Color(t.Fill)), Face: l.face}
	for i, line := range l.lines {
		x := 1.0
		switch t.Align {
		case scene.AlignCenter:
			x += (l.width - l.widths[i]) / 2
		case scene.AlignRight:
			x += l.width - l.widths[i]
		}
		y := 1 + float64(i)*l.lineH + l.ascent
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
		d.DrawString(line)
	}
	return img, nil
}
