package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestFrameExpandsForShadow(t *testing.T) {
	view := image.NewRGBA(image.Rect(0, 0, 40, 30))
	draw.Draw(view, view.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	opts := CardOptions{CornerRadius: 8, ShadowRadius: 4, ShadowOffset: image.Pt(0, 6), Opacity: 0.5}
	card := Frame(view, opts)
	want := image.Rect(0, 0, 48, 40)
	if !card.Image.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", card.Image.Bounds(), want)
	}
	if card.Offset != image.Pt(4, 0) {
		t.Fatalf("offset %v", card.Offset)
	}
	if got := card.Image.RGBAAt(24, 33); got.A == 0 {
		t.Fatalf("expected shadow below the view, got %v", got)
	}
	if got := card.Image.RGBAAt(4+20, 15); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("view content changed: %v", got)
	}
}

func TestFrameRoundsCorners(t *testing.T) {
	view := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(view, view.Bounds(), image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)
	card := Frame(view, CardOptions{CornerRadius: 12})
	if card.Offset != (image.Point{}) {
		t.Fatalf("offset %v without shadow", card.Offset)
	}
	if a := card.Image.RGBAAt(0, 0).A; a != 0 {
		t.Fatalf("corner alpha %d, want 0", a)
	}
	if a := card.Image.RGBAAt(20, 20).A; a != 255 {
		t.Fatalf("centre alpha %d, want 255", a)
	}
}

func TestBoxBlurSpreads(t *testing.T) {
	src := image.NewAlpha(image.Rect(0, 0, 9, 9))
	src.SetAlpha(4, 4, color.Alpha{A: 255})
	out := boxBlur(src, 1)
	if out.AlphaAt(4, 4).A == 255 || out.AlphaAt(5, 5).A == 0 {
		t.Fatalf("unexpected blur result centre=%d diag=%d", out.AlphaAt(4, 4).A, out.AlphaAt(5, 5).A)
	}
	if out.AlphaAt(0, 0).A != 0 {
		t.Fatal("blur leaked past its radius")
	}
	same := boxBlur(src, 0)
	if same.AlphaAt(4, 4).A != 255 {
		t.Fatal("zero radius should copy")
	}
}
