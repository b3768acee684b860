package state

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	"github.com/sirupsen/logrus"
)

type fakePipeline struct {
	jobs   []pipeline.Job
	closed bool
}

func (p *fakePipeline) Submit(job pipeline.Job) bool {
	if p.closed {
		return false
	}
	p.jobs = append(p.jobs, job)
	return true
}

func (p *fakePipeline) paths() []string {
	out := make([]string, len(p.jobs))
	for i, j := range p.jobs {
		out[i] = j.Path
	}
	return out
}

func (p *fakePipeline) reset() {
	p.jobs = nil
}

type recordingSink struct {
	events []string
}

func (s *recordingSink) OnReady(path string, _ *imaging.Image) {
	s.events = append(s.events, "ready "+filepath.Base(path))
}

func (s *recordingSink) OnError(path string, _ string) {
	s.events = append(s.events, "error "+filepath.Base(path))
}

func (s *recordingSink) OnLoading(path string) {
	s.events = append(s.events, "loading "+filepath.Base(path))
}

func fakeEntries(folder string, n int) []FileEntry {
	entries := make([]FileEntry, n)
	for i := range entries {
		name := fmt.Sprintf("img%02d.png", i)
		entries[i] = FileEntry{Name: name, Path: filepath.Join(folder, name)}
	}
	return entries
}

// withListing makes folder listings return entries for the rest of the test.
func withListing(t *testing.T, entries []FileEntry, err error) {
	t.Helper()
	prev := listImagesFn
	listImagesFn = func(string, fsutil.ListOptions) ([]fsutil.Entry, error) {
		return entries, err
	}
	t.Cleanup(func() { listImagesFn = prev })
}

func quietReducer() *StateReducer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := NewStateReducer()
	r.SetLogger(logrus.NewEntry(logger))
	return r
}

type engineFixture struct {
	state    *AppState
	reducer  *StateReducer
	pipeline *fakePipeline
	sink     *recordingSink
	folder   string
}

func newEngineFixture(t *testing.T, images int) *engineFixture {
	t.Helper()
	folder := t.TempDir()
	withListing(t, fakeEntries(folder, images), nil)

	f := &engineFixture{
		state:    NewAppState(DefaultCacheSize),
		reducer:  quietReducer(),
		pipeline: &fakePipeline{},
		sink:     &recordingSink{},
		folder:   folder,
	}
	f.state.Pipeline = f.pipeline
	f.state.Sink = f.sink
	f.state.ScreenWidth = 80
	f.state.ScreenHeight = 24
	return f
}

func (f *engineFixture) reduce(t *testing.T, action Action) {
	t.Helper()
	if _, err := f.reducer.Reduce(f.state, action); err != nil {
		t.Fatalf("reduce %T: %v", action, err)
	}
}

func (f *engineFixture) open(t *testing.T) {
	t.Helper()
	f.reduce(t, OpenFolderAction{Path: f.folder})
}

func (f *engineFixture) path(i int) string {
	return f.state.Files[i].Path
}

func (f *engineFixture) complete(t *testing.T, i int) {
	t.Helper()
	f.reduce(t, ImageLoadedAction{
		Path:       f.path(i),
		Generation: f.state.Generation,
		Image:      imaging.NewImage(1, 1),
	})
}
