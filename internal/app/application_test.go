package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
)

func writePNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func screenHasPixel(screen tcell.SimulationScreen, want tcell.Color) bool {
	w, h := screen.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mainc, _, style, _ := screen.GetContent(x, y)
			if mainc != '▀' {
				continue
			}
			if fg, _, _ := style.Decompose(); fg == want {
				return true
			}
		}
	}
	return false
}

func headerText(screen tcell.SimulationScreen) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := screen.GetContent(x, 0)
		b.WriteRune(mainc)
	}
	return b.String()
}

func TestApplicationViewsAndNavigatesFolder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", color.RGBA{R: 255, A: 255})
	writePNG(t, dir, "b.png", color.RGBA{B: 255, A: 255})

	p := pipeline.New(imaging.NewNativeDecoder(), pipeline.Options{
		IOWorkers:     1,
		DecodeWorkers: 1,
		Logger:        quietLogger(),
	})
	defer p.Close()

	screen := tcell.NewSimulationScreen("")
	opened := make(chan string, 1)
	app, err := NewApplication(Config{
		Folder:         dir,
		State:          statepkg.NewAppState(statepkg.DefaultCacheSize),
		Pipeline:       p,
		Logger:         quietLogger(),
		Screen:         screen,
		OnFolderOpened: func(folder string) { opened <- folder },
	})
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	done := make(chan struct{})
	go func() {
		app.Run()
		close(done)
	}()

	select {
	case folder := <-opened:
		if folder != dir {
			t.Fatalf("expected folder %s, got %s", dir, folder)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("folder was never opened")
	}

	waitFor(t, "first image on screen", func() bool {
		return screenHasPixel(screen, tcell.NewRGBColor(255, 0, 0))
	})

	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	waitFor(t, "second image on screen", func() bool {
		return screenHasPixel(screen, tcell.NewRGBColor(0, 0, 255)) &&
			strings.Contains(headerText(screen), "2/2")
	})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("application did not quit")
	}

	state := app.State()
	if state.CurrentIndex != 1 {
		t.Fatalf("expected current index 1, got %d", state.CurrentIndex)
	}
	if !state.Cache.Contains(filepath.Join(dir, "a.png")) {
		t.Fatal("expected first image to stay cached")
	}
}

func TestNewApplicationRequiresPipeline(t *testing.T) {
	if _, err := NewApplication(Config{State: statepkg.NewAppState(1)}); err == nil {
		t.Fatal("expected error without a pipeline")
	}
}

func TestHandleActionRecordsFolderErrors(t *testing.T) {
	app := newTestApplicationWithFile(t)
	called := false
	app.onFolderOpened = func(string) { called = true }

	missing := filepath.Join(t.TempDir(), "missing")
	app.handleAction(statepkg.OpenFolderAction{Path: missing})

	if app.state.LastError == nil {
		t.Fatal("expected listing error to be recorded")
	}
	if called {
		t.Fatal("expected no folder callback after a failed listing")
	}
}

func TestHandleActionReportsFolderChangeOnce(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "only.png", color.RGBA{G: 255, A: 255})

	app := newTestApplicationWithFile(t)
	var folders []string
	app.onFolderOpened = func(folder string) { folders = append(folders, folder) }

	app.handleAction(statepkg.OpenFolderAction{Path: dir})
	app.handleAction(statepkg.ReloadFolderAction{})

	if len(folders) != 1 || folders[0] != dir {
		t.Fatalf("expected one callback for %s, got %v", dir, folders)
	}
	if app.state.CurrentFilePath() != filepath.Join(dir, "only.png") {
		t.Fatalf("expected only.png to be current, got %s", app.state.CurrentFilePath())
	}
}

func TestHandleActionQuit(t *testing.T) {
	app := newTestApplicationWithFile(t)
	if app.handleAction(statepkg.QuitAction{}) {
		t.Fatal("quit should not request a render")
	}
	if !app.shouldQuit {
		t.Fatal("expected quit flag")
	}
}
