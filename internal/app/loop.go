package app

import (
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	"github.com/kk-code-lab/rpix/internal/ui/input"
	renderui "github.com/kk-code-lab/rpix/internal/ui/render"
	"github.com/sirupsen/logrus"
)

func NewApplication(cfg Config) (*Application, error) {
	if cfg.State == nil || cfg.Pipeline == nil {
		return nil, errMissingPipeline
	}

	screen := cfg.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, err
		}
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "app")

	clipboardCmd, clipboardAvail := detectClipboard()

	state := cfg.State
	state.Pipeline = cfg.Pipeline
	if state.FolderLoader == nil {
		state.FolderLoader = statepkg.NewAsyncFolderLoader()
	}
	state.ClipboardAvailable = clipboardAvail
	w, h := screen.Size()
	state.ScreenWidth = w
	state.ScreenHeight = h

	actionCh := make(chan statepkg.Action, 10)
	state.SetDispatch(func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() { actionCh <- action }()
		}
	})

	reducer := statepkg.NewStateReducer()
	reducer.SetLogger(cfg.Logger)
	renderer := renderui.NewRenderer(screen)
	inputHandler := input.NewInputHandler(actionCh)

	app := &Application{
		screen:         screen,
		state:          state,
		reducer:        reducer,
		renderer:       renderer,
		input:          inputHandler,
		images:         cfg.Pipeline,
		actionCh:       actionCh,
		log:            log,
		clipboardCmd:   clipboardCmd,
		clipboardAvail: clipboardAvail,
		onFolderOpened: cfg.OnFolderOpened,
	}

	inputHandler.SetState(state)
	app.handleAction(statepkg.OpenFolderAction{Path: cfg.Folder, Focus: cfg.Focus})
	return app, nil
}

func (app *Application) Run() {
	defer app.screen.Fini()

	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	var animationTimer *time.Timer
	var animationCh <-chan time.Time

	startAnimation := func() {
		if animationCh != nil {
			return
		}
		if animationTimer == nil {
			animationTimer = time.NewTimer(renderui.SpinnerInterval)
		} else {
			animationTimer.Reset(renderui.SpinnerInterval)
		}
		animationCh = animationTimer.C
	}

	stopAnimation := func() {
		if animationTimer == nil {
			return
		}
		if !animationTimer.Stop() {
			select {
			case <-animationTimer.C:
			default:
			}
		}
		animationCh = nil
	}

	completions := app.images.Completions()

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		if app.renderer.NeedsAnimation(app.state) {
			startAnimation()
		} else {
			stopAnimation()
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case <-animationCh:
			animationCh = nil
			renderPending = true
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case c, ok := <-completions:
			if !ok {
				completions = nil
				continue
			}
			if app.handleAction(statepkg.ImageLoadedAction(c)) {
				renderPending = true
			}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}

	stopAnimation()
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev.(type) {
	case *tcell.EventKey, *tcell.EventResize:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	case statepkg.YankPathAction:
		return app.handleClipboard()
	}

	folder := app.state.Folder
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
		app.log.WithError(err).Warn("action failed")
	}
	if app.state.Folder != folder && app.state.Folder != "" && app.onFolderOpened != nil {
		app.onFolderOpened(app.state.Folder)
	}
	return true
}
