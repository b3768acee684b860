package input

import (
	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false when
// the event asks the application to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

// processKeyEvent handles keyboard input
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	helpVisible := ih.state != nil && ih.state.HelpVisible

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			ih.actionChan <- statepkg.QuitAction{}
			return false
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.HelpHideAction{}
			return true
		case tcell.KeyRune:
			r := ev.Rune()
			if r == '?' || r == 'q' || r == 'Q' {
				ih.actionChan <- statepkg.HelpHideAction{}
			}
			return true
		default:
			return true
		}
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		ih.actionChan <- statepkg.QuitAction{}
		return false

	case tcell.KeyCtrlZ:
		ih.actionChan <- statepkg.SuspendAction{}
		return true

	case tcell.KeyRight, tcell.KeyDown, tcell.KeyPgDn:
		ih.actionChan <- statepkg.NextImageAction{}
		return true

	case tcell.KeyLeft, tcell.KeyUp, tcell.KeyPgUp, tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.PrevImageAction{}
		return true

	case tcell.KeyHome:
		ih.actionChan <- statepkg.FirstImageAction{}
		return true

	case tcell.KeyEnd:
		ih.actionChan <- statepkg.LastImageAction{}
		return true

	case tcell.KeyRune:
		return ih.processRune(ev.Rune())
	}

	return true
}

func (ih *InputHandler) processRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case 'l', 'j', ' ', 'n':
		ih.actionChan <- statepkg.NextImageAction{}
	case 'h', 'k', 'p':
		ih.actionChan <- statepkg.PrevImageAction{}
	case 'g':
		ih.actionChan <- statepkg.FirstImageAction{}
	case 'G':
		ih.actionChan <- statepkg.LastImageAction{}
	case 'r':
		ih.actionChan <- statepkg.ReloadFolderAction{}
	case 'y':
		ih.actionChan <- statepkg.YankPathAction{}
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	}
	return true
}
