package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrFileTooLarge is returned by ReadFileLimited when a file exceeds the limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileLimited reads the whole file, refusing anything larger than limit
// bytes. A non-positive limit disables the check.
func ReadFileLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	if limit <= 0 {
		return io.ReadAll(f)
	}

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, fmt.Errorf("%s: %d bytes exceeds %d: %w", path, info.Size(), limit, ErrFileTooLarge)
	}

	// The file may grow between Stat and Read; read one byte past the limit to notice.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: exceeds %d bytes: %w", path, limit, ErrFileTooLarge)
	}
	return data, nil
}
