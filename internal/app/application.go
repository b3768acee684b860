package app

import (
	"errors"
	"os/exec"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	inputui "github.com/kk-code-lab/rpix/internal/ui/input"
	renderui "github.com/kk-code-lab/rpix/internal/ui/render"
	"github.com/sirupsen/logrus"
)

// commandBuilder is swapped in tests to avoid running real clipboard tools.
var commandBuilder = exec.Command

// ImagePipeline is the decode engine seen by the UI: it accepts jobs and
// reports their completions.
type ImagePipeline interface {
	statepkg.ImageDispatcher
	Completions() <-chan pipeline.Completion
}

// Config wires an Application. State and Pipeline are required.
type Config struct {
	Folder string
	Focus  string

	State    *statepkg.AppState
	Pipeline ImagePipeline
	Logger   *logrus.Entry

	// Screen defaults to the real terminal.
	Screen tcell.Screen

	// OnFolderOpened runs on the event loop after a folder listing replaces
	// the file list.
	OnFolderOpened func(folder string)
}

// Application represents the running app.
type Application struct {
	screen         tcell.Screen
	state          *statepkg.AppState
	reducer        *statepkg.StateReducer
	renderer       *renderui.Renderer
	input          *inputui.InputHandler
	images         ImagePipeline
	actionCh       chan statepkg.Action
	log            *logrus.Entry
	shouldQuit     bool
	clipboardCmd   []string
	clipboardAvail bool
	onFolderOpened func(string)
}

// Close releases the terminal. It is safe to call after Run returned.
func (app *Application) Close() error {
	app.screen.Fini()
	return nil
}

// State exposes the application state. Only read it once Run has returned.
func (app *Application) State() *statepkg.AppState {
	return app.state
}

var errMissingPipeline = errors.New("app: pipeline and state are required")
