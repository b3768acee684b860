package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	textutil "github.com/kk-code-lab/rpix/internal/textutil"
)

// hintScope says when a binding appears in the status line.
type hintScope int

const (
	hintNever hintScope = iota
	hintAlways
	hintWithImages
	hintWhenEmpty
)

// keyBinding documents one key group. The help overlay lists every binding;
// the status line shows the short hint of those whose scope matches.
type keyBinding struct {
	section string
	keys    string
	desc    string
	hint    string
	scope   hintScope

	needsClipboard bool
}

var keyBindings = []keyBinding{
	{section: "Navigation", keys: "→ l j Space", desc: "Next image", hint: "←/→: prev/next", scope: hintWithImages},
	{section: "Navigation", keys: "← h k Bksp", desc: "Previous image"},
	{section: "Navigation", keys: "PgDn / PgUp", desc: "Next / previous image"},
	{section: "Navigation", keys: "g Home", desc: "First image", hint: "g/G: first/last", scope: hintWithImages},
	{section: "Navigation", keys: "G End", desc: "Last image"},
	{section: "Actions", keys: "r", desc: "Reload folder", hint: "r: reload", scope: hintWhenEmpty},
	{section: "Actions", keys: "y", desc: "Yank path to clipboard", hint: "y: yank path", scope: hintWithImages, needsClipboard: true},
	{section: "Actions", keys: "Ctrl+Z", desc: "Suspend"},
	{section: "Exit", keys: "?", desc: "Toggle this help", hint: "?: help", scope: hintAlways},
	{section: "Exit", keys: "q Esc", desc: "Quit", hint: "q: quit", scope: hintAlways},
	{section: "Exit", keys: "Ctrl+C", desc: "Quit immediately"},
}

const helpKeyColumn = 14

// ===== STATUS LINE HINTS =====

// buildFooterHelpText returns the status line hints with one space of padding
// on each side.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}
	empty := state.IsEmpty()
	var segments []string
	for _, b := range keyBindings {
		switch {
		case b.scope == hintNever:
			continue
		case b.scope == hintWithImages && empty:
			continue
		case b.scope == hintWhenEmpty && !empty:
			continue
		case b.needsClipboard && !state.ClipboardAvailable:
			continue
		}
		segments = append(segments, b.hint)
	}
	return segments
}

// ===== HELP OVERLAY =====

// helpRow is a section title when keys is empty, otherwise a binding.
type helpRow struct {
	title string
	keys  string
	desc  string
}

func buildHelpRows(state *statepkg.AppState) []helpRow {
	rows := make([]helpRow, 0, len(keyBindings)+6)
	section := ""
	for _, b := range keyBindings {
		if b.section != section {
			if section != "" {
				rows = append(rows, helpRow{})
			}
			section = b.section
			rows = append(rows, helpRow{title: section})
		}
		desc := b.desc
		if b.needsClipboard && state != nil && !state.ClipboardAvailable {
			desc += " (no clipboard tool found)"
		}
		rows = append(rows, helpRow{keys: b.keys, desc: desc})
	}
	return rows
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	barStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', nil, baseStyle)
		}
	}
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, barStyle)
	}

	title := " Help "
	r.drawTextLine(max(0, (w-r.measureTextWidth(title))/2), 0, w, title, barStyle.Bold(true))

	y := 2
	for _, row := range buildHelpRows(state) {
		if y >= h-1 {
			break
		}
		switch {
		case row.title != "":
			r.drawTextLine(2, y, w-4, r.truncateTextToWidth(row.title, w-4), baseStyle.Bold(true))
		case row.keys != "":
			keys := textutil.PadRight(textutil.SanitizeTerminalText(row.keys), helpKeyColumn)
			x := r.drawTextLine(4, y, w-4, r.truncateTextToWidth(keys, w-4), baseStyle.Foreground(r.theme.HeaderFg).Bold(true))
			if x < w {
				r.drawTextLine(x+1, y, w-x-1, r.truncateTextToWidth(row.desc, w-x-1), baseStyle)
			}
		}
		y++
	}

	if h > 1 {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, h-1, ' ', nil, barStyle)
		}
		r.drawTextLine(0, h-1, w, r.truncateTextToWidth(" ? toggle · Esc/q close", w), barStyle.Foreground(r.theme.MutedFg))
	}
}
