package state

import (
	"context"
	"strconv"
	"sync"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	"golang.org/x/sync/singleflight"
)

// FolderLoader lists folders asynchronously.
type FolderLoader interface {
	Start(req FolderLoadRequest)
	Cancel(token int)
}

// FolderLoadRequest describes a folder listing to perform.
type FolderLoadRequest struct {
	Token      int
	Path       string
	ShowHidden bool
	Callback   func(FolderLoadResult)
}

// FolderLoadResult is emitted by FolderLoader once the listing completes.
type FolderLoadResult struct {
	Token   int
	Path    string
	Entries []FileEntry
	Err     error
}

// listImagesFn is overridable in tests.
var listImagesFn = fsutil.ListImages

// NewAsyncFolderLoader constructs the default goroutine-based loader.
// Concurrent listings of the same folder share one read.
func NewAsyncFolderLoader() FolderLoader {
	return &asyncFolderLoader{
		jobs: make(map[int]context.CancelFunc),
	}
}

type asyncFolderLoader struct {
	mu    sync.Mutex
	jobs  map[int]context.CancelFunc
	group singleflight.Group
}

func (l *asyncFolderLoader) Start(req FolderLoadRequest) {
	if req.Token == 0 || req.Path == "" || req.Callback == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.jobs[req.Token] = cancel
	l.mu.Unlock()

	go func() {
		defer func() {
			l.mu.Lock()
			delete(l.jobs, req.Token)
			l.mu.Unlock()
		}()

		key := req.Path + "\x00" + strconv.FormatBool(req.ShowHidden)
		v, err, _ := l.group.Do(key, func() (any, error) {
			return listImagesFn(req.Path, fsutil.ListOptions{ShowHidden: req.ShowHidden})
		})
		entries, _ := v.([]FileEntry)

		select {
		case <-ctx.Done():
			return
		default:
		}

		req.Callback(FolderLoadResult{
			Token:   req.Token,
			Path:    req.Path,
			Entries: entries,
			Err:     err,
		})
	}()
}

func (l *asyncFolderLoader) Cancel(token int) {
	l.mu.Lock()
	if cancel, ok := l.jobs[token]; ok {
		cancel()
		delete(l.jobs, token)
	}
	l.mu.Unlock()
}
