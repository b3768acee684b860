package state

import (
	"time"

	"github.com/kk-code-lab/rpix/internal/imaging"
)

// DisplaySink receives display events for the current image. Calls come from
// the reducer goroutine.
type DisplaySink interface {
	OnReady(path string, img *imaging.Image)
	OnError(path string, message string)
	OnLoading(path string)
}

func (s *AppState) showReady(path string, img *imaging.Image) {
	s.View = ViewState{Path: path, Image: img}
	if s.Sink != nil {
		s.Sink.OnReady(path, img)
	}
}

func (s *AppState) showError(path string, message string) {
	s.View = ViewState{Path: path, Err: message}
	if s.Sink != nil {
		s.Sink.OnError(path, message)
	}
}

func (s *AppState) showLoading(path string) {
	since := time.Now()
	if s.View.Loading && s.View.Path == path {
		since = s.View.LoadingSince
	}
	s.View = ViewState{Path: path, Loading: true, LoadingSince: since}
	if s.Sink != nil {
		s.Sink.OnLoading(path)
	}
}

func (s *AppState) clearView() {
	s.View = ViewState{}
}
