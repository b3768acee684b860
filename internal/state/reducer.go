package state

import (
	"fmt"
	"path/filepath"
	"time"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	"github.com/sirupsen/logrus"
)

// ===== REDUCER =====

// StateReducer applies actions to state
type StateReducer struct {
	log *logrus.Entry
	now func() time.Time
}

// NewStateReducer creates a new reducer
func NewStateReducer() *StateReducer {
	return &StateReducer{
		log: logrus.NewEntry(logrus.StandardLogger()).WithField("component", "state"),
		now: time.Now,
	}
}

// SetLogger replaces the reducer's logger.
func (r *StateReducer) SetLogger(log *logrus.Entry) {
	if log == nil {
		return
	}
	r.log = log.WithField("component", "state")
}

func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== FOLDER =====

	case OpenFolderAction:
		state.LastError = nil
		return state, r.startFolderLoad(state, a.Path, a.Focus)

	case ReloadFolderAction:
		if state.Folder == "" {
			return state, nil
		}
		state.LastError = nil
		return state, r.startFolderLoad(state, state.Folder, state.CurrentFilePath())

	case FolderLoadedAction:
		if a.Token != state.folderLoadToken {
			return state, nil
		}
		focus := state.folderLoadFocus
		state.clearFolderLoadingState()

		if a.Err != nil {
			state.LastError = a.Err
			r.log.WithError(a.Err).WithField("folder", a.Path).Warn("folder listing failed")
			return state, nil
		}
		r.openFolder(state, a.Path, a.Entries, focus)
		return state, nil

	// ===== NAVIGATION =====

	case NextImageAction:
		if state.IsEmpty() {
			return state, nil
		}
		r.moveTo(state, (state.CurrentIndex+1)%len(state.Files))
		return state, nil

	case PrevImageAction:
		if state.IsEmpty() {
			return state, nil
		}
		n := len(state.Files)
		r.moveTo(state, (state.CurrentIndex-1+n)%n)
		return state, nil

	case FirstImageAction:
		if state.IsEmpty() {
			return state, nil
		}
		r.moveTo(state, 0)
		return state, nil

	case LastImageAction:
		if state.IsEmpty() {
			return state, nil
		}
		r.moveTo(state, len(state.Files)-1)
		return state, nil

	// ===== PIPELINE =====

	case ImageLoadedAction:
		r.handleCompletion(state, pipeline.Completion(a))
		return state, nil

	// ===== VIEW =====

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		return state, nil

	case YankPathAction:
		state.LastYankTime = r.now()
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil
	}

	return state, nil
}

// RequestImage submits path for decoding unless it is already pending. It
// never blocks and reports whether a new request was accepted.
func (r *StateReducer) RequestImage(state *AppState, path string) bool {
	if path == "" || state.Pipeline == nil {
		return false
	}
	if state.IsPending(path) {
		return false
	}
	if state.Pending == nil {
		state.Pending = make(map[string]struct{})
	}

	w, h := state.decodeTarget()
	if !state.Pipeline.Submit(pipeline.Job{
		Path:         path,
		Generation:   state.Generation,
		TargetWidth:  w,
		TargetHeight: h,
	}) {
		r.log.WithField("path", path).Debug("pipeline rejected request")
		return false
	}
	state.Pending[path] = struct{}{}
	state.Stats.Requested++
	return true
}

func (r *StateReducer) startFolderLoad(state *AppState, path, focus string) error {
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve folder %s: %w", path, err)
	}
	if focus != "" {
		if f, err := filepath.Abs(focus); err == nil {
			focus = f
		}
	}

	loader := state.FolderLoader
	dispatch := state.getDispatch()
	if loader == nil || dispatch == nil {
		entries, err := listImagesFn(abs, fsutil.ListOptions{ShowHidden: state.ShowHidden})
		if err != nil {
			return err
		}
		r.openFolder(state, abs, entries, focus)
		return nil
	}

	if prev := state.folderLoadToken; prev != 0 {
		loader.Cancel(prev)
	}
	token := state.nextFolderLoadToken()
	state.setFolderLoadInFlight(token, abs, focus)

	loader.Start(FolderLoadRequest{
		Token:      token,
		Path:       abs,
		ShowHidden: state.ShowHidden,
		Callback: func(result FolderLoadResult) {
			dispatch(FolderLoadedAction(result))
		},
	})
	return nil
}

// openFolder starts a new folder generation. Cache and pending set are
// dropped; requests still in flight for the old folder will be ignored when
// they complete.
func (r *StateReducer) openFolder(state *AppState, folder string, entries []FileEntry, focus string) {
	state.Generation++
	state.Cache.Clear()
	state.Pending = make(map[string]struct{})
	state.Folder = folder
	state.Files = entries

	r.log.WithFields(logrus.Fields{
		"folder":     folder,
		"images":     len(entries),
		"generation": state.Generation,
	}).Info("folder opened")

	if len(entries) == 0 {
		state.CurrentIndex = -1
		state.clearView()
		return
	}

	idx := state.indexOfPath(focus)
	if idx < 0 {
		idx = 0
	}
	state.CurrentIndex = idx
	r.showCurrent(state)
	r.refreshWindow(state, state.OpenWindow)
}

func (r *StateReducer) moveTo(state *AppState, idx int) {
	state.LastError = nil
	state.CurrentIndex = idx
	r.showCurrent(state)
	r.refreshWindow(state, state.NavWindow)
}

// showCurrent displays the current image from the cache, or requests it and
// shows the loading state.
func (r *StateReducer) showCurrent(state *AppState) {
	path := state.CurrentFilePath()
	if path == "" {
		state.clearView()
		return
	}
	if img, ok := state.Cache.Get(path); ok {
		state.showReady(path, img)
		return
	}
	r.RequestImage(state, path)
	state.showLoading(path)
}

func (r *StateReducer) handleCompletion(state *AppState, c pipeline.Completion) {
	log := r.log.WithFields(logrus.Fields{"path": c.Path, "generation": c.Generation})
	if c.Generation != state.Generation {
		state.Stats.Stale++
		log.Debug("discarding completion from previous folder")
		return
	}

	delete(state.Pending, c.Path)
	current := c.Path == state.CurrentFilePath()

	if c.Err != nil || c.Image == nil {
		state.Stats.Failed++
		msg := "no image"
		if c.Err != nil {
			msg = c.Err.Error()
		}
		if current {
			log.WithField("error", msg).Warn("image failed to load")
			state.showError(c.Path, msg)
			return
		}
		log.WithField("error", msg).Debug("prefetch failed")
		return
	}

	state.Stats.Decoded++
	state.Stats.LastDecode = c.DecodeTime
	state.Cache.Put(c.Path, c.Image)
	log.WithFields(logrus.Fields{
		"read":   c.ReadTime,
		"decode": c.DecodeTime,
		"size":   fmt.Sprintf("%dx%d", c.Image.Width, c.Image.Height),
	}).Debug("image decoded")

	if current {
		state.showReady(c.Path, c.Image)
	}
}
