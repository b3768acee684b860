//go:build !windows

package app

import (
	"os"
	"syscall"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
)

func contSignals() []os.Signal {
	return []os.Signal{syscall.SIGCONT}
}

// suspendToShell hands the terminal back and stops rpix alone. Signalling the
// process group would also stop a wrapping shell function and break fg.
func (app *Application) suspendToShell() {
	_ = app.screen.Suspend()
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

// resumeAfterStop reclaims the terminal. The window may have been resized
// while stopped, so the new size goes through the reducer like any resize.
func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		app.log.WithError(err).Warn("resume terminal")
		return false
	}
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt(nil))
	if w, h := app.screen.Size(); w > 0 && h > 0 {
		app.handleAction(statepkg.ResizeAction{Width: w, Height: h})
	}
	return true
}
