package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const ellipsis = '…'

// runeWidth memoizes go-runewidth lookups. Rendering happens on the event
// loop goroutine only, so the map needs no lock.
func (r *Renderer) runeWidth(ru rune) int {
	if w, ok := r.widths[ru]; ok {
		return w
	}
	w := runewidth.RuneWidth(ru)
	if w < 0 {
		w = 0
	}
	if r.widths == nil {
		r.widths = make(map[rune]int, 128)
	}
	r.widths[ru] = w
	return w
}

func (r *Renderer) measureTextWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += r.runeWidth(ru)
	}
	return width
}

// truncateTextToWidth keeps the head of text and ends it with an ellipsis.
func (r *Renderer) truncateTextToWidth(text string, maxWidth int) string {
	return r.truncate(text, maxWidth, false)
}

// truncateTextLeft keeps the tail of text, the informative end of a path.
func (r *Renderer) truncateTextLeft(text string, maxWidth int) string {
	return r.truncate(text, maxWidth, true)
}

func (r *Renderer) truncate(text string, maxWidth int, keepTail bool) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if r.measureTextWidth(text) <= maxWidth {
		return text
	}
	budget := maxWidth - r.runeWidth(ellipsis)
	if budget <= 0 {
		return string(ellipsis)
	}

	runes := []rune(text)
	if keepTail {
		start := len(runes)
		for start > 0 {
			w := r.runeWidth(runes[start-1])
			if w > budget {
				break
			}
			budget -= w
			start--
		}
		return string(ellipsis) + string(runes[start:])
	}

	end := 0
	for end < len(runes) {
		w := r.runeWidth(runes[end])
		if w > budget {
			break
		}
		budget -= w
		end++
	}
	return string(runes[:end]) + string(ellipsis)
}

// drawTextLine draws text from startX, clipped to maxWidth columns, and
// returns the column after the last cell drawn. Zero-width runes combine
// with the rune before them.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	for i := 0; i < len(runes); {
		mainc := runes[i]
		w := r.runeWidth(mainc)
		if x-startX+w > maxWidth {
			break
		}
		i++
		var combc []rune
		for i < len(runes) && r.runeWidth(runes[i]) == 0 {
			combc = append(combc, runes[i])
			i++
		}
		r.screen.SetContent(x, y, mainc, combc, style)
		x += w
	}
	return x
}
