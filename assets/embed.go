// Package assets carries the built-in background scenes so the catalog works
// without an assets directory on disk.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed lovable-uploads/*.png
var embedded embed.FS

var (
	listOnce sync.Once
	listErr  error
	names    []string
)

func loadNames() {
	entries, err := fs.ReadDir(embedded, "lovable-uploads")
	if err != nil {
		listErr = err
		return
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			names = append(names, "/"+path.Join("lovable-uploads", e.Name()))
		}
	}
	sort.Strings(names)
}

// FS returns the embedded files. Paths match catalog references with the
// leading slash removed.
func FS() fs.FS { return embedded }

// References lists the catalog references served from FS.
func References() ([]string, error) {
	listOnce.Do(loadNames)
	if listErr != nil {
		return nil, listErr
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// Has reports whether ref is embedded.
func Has(ref string) bool {
	_, err := fs.Stat(embedded, strings.TrimPrefix(ref, "/"))
	return err == nil
}
