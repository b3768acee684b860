package state

import (
	"time"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/kk-code-lab/rpix/internal/pipeline"
)

// FileEntry mirrors fs.Entry so UI/state code can rely on a stable type.
type FileEntry = fsutil.Entry

// ===== STATE DEFINITIONS =====

// Window is the extent kept warm around the current image.
type Window struct {
	Back  int
	Ahead int
}

var (
	// DefaultOpenWindow warms the first image and the five after it.
	DefaultOpenWindow = Window{Back: 0, Ahead: 5}
	// DefaultNavWindow is biased forward; users page ahead more than back.
	DefaultNavWindow = Window{Back: 3, Ahead: 5}
)

// ImageDispatcher accepts decode jobs without blocking. *pipeline.Pipeline
// satisfies it.
type ImageDispatcher interface {
	Submit(job pipeline.Job) bool
}

// ViewState is what the display layer should currently show.
type ViewState struct {
	Path         string
	Image        *imaging.Image
	Loading      bool
	LoadingSince time.Time
	Err          string
}

// Stats counts completions seen by the reducer.
type Stats struct {
	Requested  int
	Decoded    int
	Failed     int
	Stale      int
	LastDecode time.Duration
}

// AppState is the single source of truth. Only the goroutine running the
// reducer may touch it.
type AppState struct {
	// Folder & ordered file list
	Folder     string
	Files      []FileEntry
	ShowHidden bool

	// CurrentIndex is -1 while no image is loaded.
	CurrentIndex int

	// Generation increases on every folder open. Jobs carry it so completions
	// from an older folder can be recognised.
	Generation int

	// Pending holds paths with an accepted, unresolved decode request.
	Pending map[string]struct{}
	Cache   *ImageCache

	OpenWindow Window
	NavWindow  Window

	// Decode target caps; zero means unbounded.
	MaxDecodeWidth  int
	MaxDecodeHeight int

	View  ViewState
	Stats Stats

	// Collaborators
	Pipeline     ImageDispatcher
	FolderLoader FolderLoader
	Sink         DisplaySink

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	// Status line
	ClipboardAvailable bool
	LastYankTime       time.Time
	HelpVisible        bool

	// Error state
	LastError error

	dispatchAction func(Action)

	folderLoadToken   int
	folderLoadPath    string
	folderLoadFocus   string
	folderLoadCounter int
}

// NewAppState returns an empty state with a cache of the given capacity.
func NewAppState(cacheSize int) *AppState {
	return &AppState{
		CurrentIndex: -1,
		Pending:      make(map[string]struct{}),
		Cache:        NewImageCache(cacheSize),
		OpenWindow:   DefaultOpenWindow,
		NavWindow:    DefaultNavWindow,
	}
}

// ===== HELPER METHODS =====

func (s *AppState) setDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

func (s *AppState) getDispatch() func(Action) {
	return s.dispatchAction
}

// SetDispatch exposes the reducer dispatch hook to other packages.
func (s *AppState) SetDispatch(fn func(Action)) {
	s.setDispatch(fn)
}

// IsEmpty reports whether there is no image to view.
func (s *AppState) IsEmpty() bool {
	return len(s.Files) == 0 || s.CurrentIndex < 0
}

// CurrentFile returns the entry at CurrentIndex, or nil when empty.
func (s *AppState) CurrentFile() *FileEntry {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Files) {
		return nil
	}
	return &s.Files[s.CurrentIndex]
}

// CurrentFilePath returns the path of the current image or "".
func (s *AppState) CurrentFilePath() string {
	if f := s.CurrentFile(); f != nil {
		return f.Path
	}
	return ""
}

// IsPending reports whether path has an outstanding request.
func (s *AppState) IsPending(path string) bool {
	_, ok := s.Pending[path]
	return ok
}

// PendingCount returns the size of the pending set.
func (s *AppState) PendingCount() int {
	return len(s.Pending)
}

// FolderLoading reports whether an asynchronous folder listing is in flight.
func (s *AppState) FolderLoading() bool {
	return s.folderLoadToken != 0
}

// FolderLoadingPath returns the folder being listed, if any.
func (s *AppState) FolderLoadingPath() string {
	return s.folderLoadPath
}

// decodeTarget sizes decodes to what the terminal can show: one pixel per
// column and two per row (half blocks), minus the header and status rows.
func (s *AppState) decodeTarget() (int, int) {
	w, h := s.MaxDecodeWidth, s.MaxDecodeHeight
	if s.ScreenWidth > 0 && s.ScreenHeight > 2 {
		sw, sh := s.ScreenWidth, (s.ScreenHeight-2)*2
		if w <= 0 || sw < w {
			w = sw
		}
		if h <= 0 || sh < h {
			h = sh
		}
	}
	return w, h
}

func (s *AppState) nextFolderLoadToken() int {
	s.folderLoadCounter++
	return s.folderLoadCounter
}

func (s *AppState) setFolderLoadInFlight(token int, path, focus string) {
	s.folderLoadToken = token
	s.folderLoadPath = path
	s.folderLoadFocus = focus
}

func (s *AppState) clearFolderLoadingState() {
	s.folderLoadToken = 0
	s.folderLoadPath = ""
	s.folderLoadFocus = ""
}

func (s *AppState) indexOfPath(path string) int {
	if path == "" {
		return -1
	}
	for i, f := range s.Files {
		if f.Path == path {
			return i
		}
	}
	return -1
}
