package render

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	textutil "github.com/kk-code-lab/rpix/internal/textutil"
)

const (
	// SpinnerInterval is how often the loading spinner advances.
	SpinnerInterval = 80 * time.Millisecond

	yankFlashDuration = 100 * time.Millisecond
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme
	widths map[rune]int
	now    func() time.Time
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
		now:    time.Now,
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()

	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		r.screen.Show()
		return
	}

	if state != nil && state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(state, w)
	if h > 2 {
		r.drawViewport(state, 1, w, h-2)
	}
	if h > 1 {
		r.drawStatusLine(state, w, h)
	}

	r.screen.Show()
}

// NeedsAnimation reports whether the screen changes without new input, so the
// caller should keep a redraw timer running.
func (r *Renderer) NeedsAnimation(state *statepkg.AppState) bool {
	if state == nil {
		return false
	}
	if state.View.Loading || (state.IsEmpty() && state.FolderLoading()) {
		return true
	}
	return r.yankFlashing(state)
}

func (r *Renderer) yankFlashing(state *statepkg.AppState) bool {
	if state.LastYankTime.IsZero() {
		return false
	}
	return r.now().Sub(state.LastYankTime) < yankFlashDuration
}

// drawHeader renders the top bar with the folder and the position counter
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, headerStyle)
	}

	endX := r.drawTextLine(0, 0, w, "rpix ", headerStyle.Bold(true))
	if state == nil {
		return
	}

	counter := formatPosition(state)
	counterWidth := r.measureTextWidth(counter)
	available := w - endX - counterWidth - 1
	if available < 0 {
		available = w - endX
		counter = ""
	}

	folder := state.Folder
	if state.FolderLoading() {
		folder = state.FolderLoadingPath()
	}
	folder = textutil.SanitizeTerminalText(folder)
	r.drawTextLine(endX, 0, available, r.truncateTextLeft(folder, available), headerStyle)

	if counter != "" {
		r.drawTextLine(w-counterWidth, 0, counterWidth, counter, headerStyle)
	}
}

func formatPosition(state *statepkg.AppState) string {
	if state.IsEmpty() {
		if state.FolderLoading() {
			return "…"
		}
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", state.CurrentIndex+1, len(state.Files))
}

// drawViewport fills the rows between header and status line
func (r *Renderer) drawViewport(state *statepkg.AppState, top, w, rows int) {
	switch {
	case state == nil:
		return
	case state.IsEmpty() && state.FolderLoading():
		r.drawCenteredMessage(top, w, rows, r.spinnerFrame(state.View.LoadingSince)+" reading folder", r.messageStyle())
	case state.IsEmpty():
		msg := "no images"
		if state.LastError != nil {
			r.drawCenteredMessage(top, w, rows, textutil.SanitizeTerminalText(state.LastError.Error()), r.errorStyle())
			return
		}
		if state.Folder != "" {
			msg = "no images in " + filepath.Base(state.Folder)
		}
		r.drawCenteredMessage(top, w, rows, textutil.SanitizeTerminalText(msg), r.messageStyle())
	default:
		r.drawCurrent(state, top, w, rows)
	}
}

func (r *Renderer) drawCurrent(state *statepkg.AppState, top, w, rows int) {
	view := state.View
	if view.Path != state.CurrentFilePath() {
		return
	}
	name := textutil.SanitizeTerminalText(filepath.Base(view.Path))

	switch {
	case view.Image != nil:
		r.drawImage(view.Image, top, w, rows)
	case view.Err != "":
		msg := fmt.Sprintf("cannot display %s: %s", name, textutil.SanitizeTerminalText(view.Err))
		r.drawCenteredMessage(top, w, rows, msg, r.errorStyle())
	case view.Loading:
		msg := r.spinnerFrame(view.LoadingSince) + " loading " + name
		r.drawCenteredMessage(top, w, rows, msg, r.messageStyle())
	}
}

func (r *Renderer) spinnerFrame(since time.Time) string {
	if since.IsZero() {
		idx := int(r.now().UnixNano()/int64(SpinnerInterval)) % len(spinnerFrames)
		return string(spinnerFrames[idx])
	}
	elapsed := r.now().Sub(since)
	if elapsed < 0 {
		elapsed = 0
	}
	idx := int(elapsed/SpinnerInterval) % len(spinnerFrames)
	return string(spinnerFrames[idx])
}

func (r *Renderer) drawCenteredMessage(top, w, rows int, text string, style tcell.Style) {
	if rows <= 0 || w <= 0 {
		return
	}
	text = r.truncateTextToWidth(text, w)
	width := r.measureTextWidth(text)
	x := (w - width) / 2
	if x < 0 {
		x = 0
	}
	r.drawTextLine(x, top+rows/2, w-x, text, style)
}

func (r *Renderer) messageStyle() tcell.Style {
	return tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.MutedFg)
}

func (r *Renderer) errorStyle() tcell.Style {
	return tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.ErrorFg)
}

// drawStatusLine renders the bottom row: image facts on the left, key hints on
// the right when they fit
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	normalStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	flashStyle := tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	y := h - 1

	lineStyle := normalStyle
	if state != nil && r.yankFlashing(state) {
		lineStyle = flashStyle
	}
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, ' ', nil, lineStyle)
	}
	if state == nil {
		return
	}

	left := textutil.SanitizeTerminalText(formatStatusText(state))
	x := r.drawTextLine(0, y, w, r.truncateTextToWidth(left, w), lineStyle)

	if state.LastError != nil && x < w-2 {
		errText := " ! " + textutil.SanitizeTerminalText(state.LastError.Error())
		x = r.drawTextLine(x, y, w-x, r.truncateTextToWidth(errText, w-x), lineStyle.Foreground(r.theme.ErrorFg))
	}

	help := buildFooterHelpText(state)
	helpWidth := r.measureTextWidth(help)
	if help != "" && x+helpWidth+1 <= w {
		r.drawTextLine(w-helpWidth, y, helpWidth, help, lineStyle.Foreground(r.theme.MutedFg))
	}
}
