//go:build !windows

package fs

// IsHidden reports whether an image is hidden: on Unix-like systems that is a
// leading dot in its name.
func IsHidden(_ string, name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// isProtected reports entries that never appear, even with hidden files
// shown. Only Windows has such entries.
func isProtected(string) bool {
	return false
}
