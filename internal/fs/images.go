package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var imageExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// ListOptions tunes ListImages.
type ListOptions struct {
	ShowHidden bool
}

// IsImageName reports whether name carries one of the viewable extensions.
// The comparison is case-insensitive.
func IsImageName(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ListImages returns the images in folder sorted by normalized name.
// Directories, non-image files and (unless requested) hidden files are skipped.
// Symlinks are followed; dangling links are ignored.
func ListImages(folder string, opts ListOptions) ([]Entry, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", folder, err)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", abs, err)
	}

	images := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		rawName := de.Name()
		if !IsImageName(rawName) {
			continue
		}

		fullPath := filepath.Join(abs, rawName)
		if isProtected(fullPath) {
			continue
		}
		if !opts.ShowHidden && IsHidden(fullPath, rawName) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(fullPath)
			if err != nil {
				continue
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			continue
		}

		images = append(images, Entry{
			Name:     norm.NFC.String(rawName),
			Path:     fullPath,
			Size:     info.Size(),
			Modified: info.ModTime(),
			Mode:     info.Mode(),
		})
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Name != images[j].Name {
			return images[i].Name < images[j].Name
		}
		return images[i].Path < images[j].Path
	})

	return images, nil
}

// Paths extracts the ordered path list from entries.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
