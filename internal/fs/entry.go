package fs

import (
	"os"
	"time"
)

// Entry represents a single image file on disk.
type Entry struct {
	Name     string // NFC-normalized base name, used for display and ordering
	Path     string // absolute path exactly as found on disk
	Size     int64
	Modified time.Time
	Mode     os.FileMode
}
