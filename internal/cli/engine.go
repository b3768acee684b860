package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kk-code-lab/rpix/internal/config"
	"github.com/kk-code-lab/rpix/internal/decodeproc"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	"github.com/sirupsen/logrus"
)

// newDecoder picks the decode backend. Process isolation gets one child per
// decode worker so a crashing codec only takes its own request down.
func newDecoder(cfg *config.Config, workers int, log *logrus.Entry) (imaging.Decoder, func()) {
	if cfg.DecodeIsolation == config.DecodeIsolationInline {
		return imaging.NewNativeDecoder(), func() {}
	}
	pool := decodeproc.NewPool(decodeproc.Options{
		Size:    workers,
		Timeout: cfg.DecodeTimeout,
		Logger:  log,
	})
	return pool, pool.Close
}

// newPipeline builds the read/decode pipeline and returns a func that stops
// it together with its decoder.
func newPipeline(cfg *config.Config, log *logrus.Entry) (*pipeline.Pipeline, func()) {
	decodeWorkers := cfg.DecodeWorkers
	if decodeWorkers <= 0 {
		decodeWorkers = pipeline.DefaultDecodeWorkers()
	}
	decoder, closeDecoder := newDecoder(cfg, decodeWorkers, log.WithField("component", "decodeproc"))

	p := pipeline.New(decoder, pipeline.Options{
		IOWorkers:     cfg.IOWorkers,
		DecodeWorkers: decodeWorkers,
		MaxFileSize:   cfg.MaxFileSize,
		Logger:        log,
	})
	return p, func() {
		p.Close()
		closeDecoder()
	}
}

// newEngineState applies the engine settings from cfg to a fresh state.
func newEngineState(cfg *config.Config) *statepkg.AppState {
	state := statepkg.NewAppState(cfg.CacheSize)
	state.OpenWindow = statepkg.Window{Back: cfg.OpenWindowBack, Ahead: cfg.OpenWindowAhead}
	state.NavWindow = statepkg.Window{Back: cfg.WindowBack, Ahead: cfg.WindowAhead}
	state.MaxDecodeWidth = cfg.MaxDecodeWidth
	state.MaxDecodeHeight = cfg.MaxDecodeHeight
	state.ShowHidden = cfg.ShowHidden
	return state
}

// resolveTarget turns the optional command argument into a folder and the
// file to focus. Without an argument the last viewed folder is reused when it
// still exists, otherwise the working directory.
func resolveTarget(args []string, lastFolder string) (folder, focus string, err error) {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	} else if lastFolder != "" {
		if info, statErr := os.Stat(lastFolder); statErr == nil && info.IsDir() {
			target = lastFolder
		}
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return abs, "", nil
	}
	return filepath.Dir(abs), abs, nil
}
