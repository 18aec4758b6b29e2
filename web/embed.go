// Package web holds the HTML templates and static assets, embedded into the
// binary. Either tree can be replaced by an on-disk directory for local
// template work without rebuilding.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed templates static
var assets embed.FS

// Templates returns the template tree: dir when set, else the embedded copy.
func Templates(dir string) (fs.FS, error) {
	return sub(dir, "templates")
}

// Static returns the static asset tree: dir when set, else the embedded copy.
func Static(dir string) (fs.FS, error) {
	return sub(dir, "static")
}

func sub(dir, name string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("web: %s dir: %w", name, err)
		}
		return os.DirFS(dir), nil
	}
	fsys, err := fs.Sub(assets, name)
	if err != nil {
		return nil, fmt.Errorf("web: embedded %s: %w", name, err)
	}
	return fsys, nil
}
