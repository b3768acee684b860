package app

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	statepkg "github.com/kk-code-lab/rpix/internal/state"
)

// handleClipboard copies the current image path with the detected clipboard
// tool. Success goes through the reducer so the status line flashes.
func (app *Application) handleClipboard() bool {
	current := app.state.CurrentFilePath()
	if current == "" || !app.clipboardAvail || len(app.clipboardCmd) == 0 {
		return true
	}

	cmd := commandBuilder(app.clipboardCmd[0], app.clipboardCmd[1:]...)
	cmd.Stdin = strings.NewReader(normalizeClipboardPath(current, runtime.GOOS))
	if out, err := cmd.CombinedOutput(); err != nil {
		name := filepath.Base(app.clipboardCmd[0])
		app.state.LastError = fmt.Errorf("%s: %w", name, err)
		if app.log != nil {
			app.log.WithError(err).WithField("output", strings.TrimSpace(string(out))).Warn("clipboard copy failed")
		}
		return true
	}

	app.state.LastError = nil
	if _, err := app.reducer.Reduce(app.state, statepkg.YankPathAction{}); err != nil {
		app.state.LastError = err
	}
	return true
}
