//go:build windows

package fs

import "syscall"

const (
	fileAttributeHidden       = 0x02
	fileAttributeSystem       = 0x04
	fileAttributeReparsePoint = 0x0400
)

func fileAttributes(path string) (uint32, error) {
	ptr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	return syscall.GetFileAttributes(ptr)
}

// IsHidden reports whether an image is hidden. Dot files count as hidden on
// Windows too, so folders synced from other systems look the same.
func IsHidden(fullPath string, name string) bool {
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	if fullPath == "" {
		return false
	}
	attrs, err := fileAttributes(fullPath)
	if err != nil {
		return false
	}
	return attrs&fileAttributeHidden != 0
}

// isProtected reports system reparse points such as compatibility junctions,
// which are skipped even when hidden files are shown.
func isProtected(fullPath string) bool {
	attrs, err := fileAttributes(fullPath)
	if err != nil {
		return false
	}
	const mask = fileAttributeSystem | fileAttributeReparsePoint
	return attrs&mask == mask
}
