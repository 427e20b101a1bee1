package assets

import (
	"bytes"
	"image/png"
	"io/fs"
	"testing"

	"github.com/example/snapcanvas/internal/catalog"
)

func TestBuiltinBackgroundsEmbedded(t *testing.T) {
	for _, bg := range catalog.BuiltIn() {
		if !Has(bg.Image) {
			t.Fatalf("%s: %s not embedded", bg.ID, bg.Image)
		}
	}
	refs, err := References()
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if got, want := len(refs), len(catalog.BuiltIn()); got != want {
		t.Fatalf("got %d references, want %d", got, want)
	}
}

func TestEmbeddedDecode(t *testing.T) {
	refs, err := References()
	if err != nil || len(refs) == 0 {
		t.Fatalf("references: %v %v", refs, err)
	}
	b, err := fs.ReadFile(FS(), refs[0][1:])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 384 || img.Bounds().Dy() != 216 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
}
