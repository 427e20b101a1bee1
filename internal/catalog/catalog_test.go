package catalog

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapcanvas/internal/source"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestBuiltIns(t *testing.T) {
	b := BuiltIn()
	require.Len(t, b, 11)
	assert.Equal(t, DefaultID, b[0].ID)
	seen := map[string]bool{}
	for _, e := range b {
		assert.False(t, seen[e.ID], e.ID)
		seen[e.ID] = true
		assert.False(t, e.Custom())
	}
	b[0].Name = "changed"
	assert.Equal(t, "Mountain Hiker", BuiltIn()[0].Name)
}

func TestAddListsCustomFirst(t *testing.T) {
	c := New(NewMemoryStorage(), quiet())
	bg, err := c.Add("/tmp/My Beach.final.png", pngData(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bg.ID, "custom-"))
	assert.Equal(t, "My Beach.final", bg.Name)
	assert.Equal(t, CustomCategory, bg.Category)
	assert.True(t, strings.HasPrefix(bg.Image, "data:image/png;base64,"))

	list, err := c.List()
	require.NoError(t, err)
	require.Len(t, list, 12)
	assert.Equal(t, bg, list[0])
	assert.Equal(t, DefaultID, list[1].ID)

	got, err := c.Lookup(bg.ID)
	require.NoError(t, err)
	assert.Equal(t, bg, got)
	_, err = c.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRejectsNonImages(t *testing.T) {
	c := New(NewMemoryStorage(), quiet())
	_, err := c.Add("notes.txt", []byte("hello there"))
	assert.ErrorIs(t, err, source.ErrUnsupportedFileType)
	custom, err := c.Custom()
	require.NoError(t, err)
	assert.Empty(t, custom)
}

func TestRemove(t *testing.T) {
	c := New(NewMemoryStorage(), quiet())
	a, err := c.Add("a.png", pngData(t))
	require.NoError(t, err)
	b, err := c.Add("b.png", pngData(t))
	require.NoError(t, err)

	require.NoError(t, c.Remove(a.ID))
	require.NoError(t, c.Remove(a.ID))
	custom, err := c.Custom()
	require.NoError(t, err)
	assert.Equal(t, []Background{b}, custom)

	assert.ErrorIs(t, c.Remove(DefaultID), ErrBuiltin)
	list, _ := c.List()
	assert.Len(t, list, 12)
}

func TestStoredShapeMatchesLocalStorage(t *testing.T) {
	st := NewMemoryStorage()
	c := New(st, quiet())
	c.newID = func() string { return "custom-1" }
	_, err := c.Add("x.png", pngData(t))
	require.NoError(t, err)

	raw, ok, err := st.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw, `[{"id":"custom-1","name":"x","image":"data:image/png;base64,`))
	assert.True(t, strings.HasSuffix(raw, `","category":"Custom"}]`))
}

func TestCorruptStorageIsIgnored(t *testing.T) {
	st := NewMemoryStorage()
	require.NoError(t, st.Set(StorageKey, "{not json"))
	c := New(st, quiet())
	list, err := c.List()
	require.NoError(t, err)
	assert.Len(t, list, 11)
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	c := New(NewFileStorage(path), quiet())
	bg, err := c.Add("sky.jpg.png", pngData(t))
	require.NoError(t, err)

	reopened := New(NewFileStorage(path), quiet())
	custom, err := reopened.Custom()
	require.NoError(t, err)
	assert.Equal(t, []Background{bg}, custom)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are renamed away")
}

func TestFileStorageMissingFile(t *testing.T) {
	s := NewFileStorage(filepath.Join(t.TempDir(), "none.json"))
	_, ok, err := s.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
