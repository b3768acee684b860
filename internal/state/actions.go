package state

import "github.com/kk-code-lab/rpix/internal/pipeline"

// Action is the base interface for all state mutations
type Action interface{}

// ===== FOLDER ACTIONS =====

// OpenFolderAction replaces the file list. Focus, when it names a file in
// the folder, becomes the current image instead of the first one.
type OpenFolderAction struct {
	Path  string
	Focus string
}

// ReloadFolderAction re-lists the current folder, keeping the current image.
type ReloadFolderAction struct{}

// FolderLoadedAction carries the result of an asynchronous folder listing.
type FolderLoadedAction FolderLoadResult

// ===== NAVIGATION ACTIONS =====

type NextImageAction struct{}
type PrevImageAction struct{}
type FirstImageAction struct{}
type LastImageAction struct{}

// ===== PIPELINE ACTIONS =====

// ImageLoadedAction is a pipeline completion delivered to the reducer.
type ImageLoadedAction pipeline.Completion

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type YankPathAction struct{}
type HelpToggleAction struct{}
type HelpHideAction struct{}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
type SuspendAction struct{}
