// Package catalog lists the backgrounds the editor offers: a fixed set of
// built-in scenes plus custom uploads kept in local storage.
package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/snapcanvas/internal/source"
)

const (
	// StorageKey is the local-storage key holding custom entries.
	StorageKey = "customBackgrounds"
	// CustomCategory is the category assigned to uploads.
	CustomCategory = "Custom"
	// DefaultID is the background applied to new and reset canvases.
	DefaultID = "mountain-hiker"
)

var (
	// ErrBuiltin is returned when removing a built-in background.
	ErrBuiltin = errors.New("built-in backgrounds cannot be removed")
	// ErrNotFound is returned by Lookup for unknown ids.
	ErrNotFound = errors.New("background not found")
)

// Background is one selectable background.
type Background struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// Custom reports whether b was uploaded by the user.
func (b Background) Custom() bool { return b.Category == CustomCategory || strings.HasPrefix(b.ID, "custom-") }

var builtins = []Background{
	{"mountain-hiker", "Mountain Hiker", "/lovable-uploads/24711e9d-7e61-42fe-8fa0-71748aa71822.png", "Adventure"},
	{"ocean-sunset", "Ocean Sunset", "/lovable-uploads/4ea1b169-b31c-4d23-900f-31b093972a0b.png", "Nature"},
	{"balloon-night", "Balloon Night", "/lovable-uploads/2b43ed90-a252-4cd1-927e-192dd4ee1a1e.png", "Fantasy"},
	{"mountain-lake", "Mountain Lake", "/lovable-uploads/f6118879-64aa-4984-ab90-69c7010b893e.png", "Nature"},
	{"mountain-layers", "Mountain Layers", "/lovable-uploads/eb405c2d-69ef-4ac9-98fc-0c773030109f.png", "Nature"},
	{"snowy-peaks", "Snowy Peaks", "/lovable-uploads/14ec5711-4b96-47c2-846b-a2ef8da0f58d.png", "Nature"},
	{"desert-gradient", "Desert Vista", "/lovable-uploads/c2db0ae4-c657-480c-82ae-7cfc8e9d7f08.png", "Landscape"},
	{"mountain-sunset", "Mountain Sunset", "/lovable-uploads/4e5516e4-daef-4db6-8d3a-7c6a4b16ed26.png", "Nature"},
	{"ocean-waves", "Ocean Waves", "/lovable-uploads/20c14ad3-7de0-476a-a6f5-e46ffb8e8257.png", "Nature"},
	{"valley-golden", "Valley Golden", "/lovable-uploads/e3bb28ea-89fb-445e-a12c-da9bb9daec73.png", "Nature"},
	{"misty-mountains", "Misty Mountains", "/lovable-uploads/e337bb92-b378-4af2-bb0e-f7469c3d9970.png", "Nature"},
}

// BuiltIn returns a copy of the built-in backgrounds.
func BuiltIn() []Background {
	out := make([]Background, len(builtins))
	copy(out, builtins)
	return out
}

func isBuiltin(id string) bool {
	for _, b := range builtins {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Catalog combines the built-ins with custom entries from a Storage.
type Catalog struct {
	store Storage
	log   logrus.FieldLogger
	newID func() string
}

// New returns a catalog backed by store.
func New(store Storage, log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Catalog{
		store: store,
		log:   log,
		newID: func() string { return "custom-" + uuid.NewString() },
	}
}

// Custom returns the user's uploads in the order they were added. A corrupt
// stored value is logged and treated as empty.
func (c *Catalog) Custom() ([]Background, error) {
	raw, ok, err := c.store.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", StorageKey, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var out []Background
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		c.log.WithError(err).Warn("ignoring unreadable custom backgrounds")
		return nil, nil
	}
	return out, nil
}

func (c *Catalog) saveCustom(list []Background) error {
	if list == nil {
		list = []Background{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := c.store.Set(StorageKey, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", StorageKey, err)
	}
	return nil
}

// List returns custom entries first, then the built-ins.
func (c *Catalog) List() ([]Background, error) {
	custom, err := c.Custom()
	if err != nil {
		return nil, err
	}
	return append(custom, BuiltIn()...), nil
}

// Lookup finds a background by id.
func (c *Catalog) Lookup(id string) (Background, error) {
	list, err := c.List()
	if err != nil {
		return Background{}, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, nil
		}
	}
	return Background{}, fmt.Errorf("%q: %w", id, ErrNotFound)
}

// Add stores an uploaded image as a custom background. The name is the file
// name without its extension; the image is kept inline as a data URI.
func (c *Catalog) Add(filename string, data []byte) (Background, error) {
	mt, err := source.Sniff(data)
	if err != nil {
		return Background{}, err
	}
	custom, err := c.Custom()
	if err != nil {
		return Background{}, err
	}
	base := filepath.Base(filename)
	bg := Background{
		ID:       c.newID(),
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Image:    "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data),
		Category: CustomCategory,
	}
	if err := c.saveCustom(append(custom, bg)); err != nil {
		return Background{}, err
	}
	c.log.WithFields(logrus.Fields{"background": bg.ID, "name": bg.Name}).Info("custom background added")
	return bg, nil
}

// Remove deletes a custom background. Unknown ids are ignored; built-ins are
// refused.
func (c *Catalog) Remove(id string) error {
	if isBuiltin(id) {
		return fmt.Errorf("%q: %w", id, ErrBuiltin)
	}
	custom, err := c.Custom()
	if err != nil {
		return err
	}
	kept := custom[:0]
	for _, b := range custom {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(custom) {
		return nil
	}
	if err := c.saveCustom(kept); err != nil {
		return err
	}
	c.log.WithField("background", id).Info("custom background removed")
	return nil
}
