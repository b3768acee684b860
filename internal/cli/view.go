package cli

import (
	"errors"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	apppkg "github.com/kk-code-lab/rpix/internal/app"
	"github.com/kk-code-lab/rpix/internal/config"
	"github.com/kk-code-lab/rpix/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("rpix view needs an interactive terminal; try 'rpix list' or 'rpix walk'")

// isTerminal is swapped in tests.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view [folder|file]",
		Short: "Open the terminal viewer (default command)",
		Long: `Open the terminal viewer on a folder. When a file is given its folder is
opened and the file becomes the current image. Without an argument the last
viewed folder is reopened.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, args)
		},
	}
}

func runView(opts *options, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNotTerminal
	}

	folder, focus, err := resolveTarget(args, opts.cfg.LastFolder)
	if err != nil {
		return err
	}

	// The screen owns stdout, so logs go to a file or nowhere.
	logPath, err := opts.cfg.LogFilePath()
	if err != nil {
		return err
	}
	if logPath != "" {
		f, err := logging.OpenFile(logPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		opts.logTo(f)
	} else {
		opts.logTo(io.Discard)
	}
	log := opts.component("view")

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	images, stop := newPipeline(opts.cfg, opts.component("pipeline"))
	defer stop()
	ioWorkers, decodeWorkers := images.Workers()
	log.WithFields(logrus.Fields{
		"folder":         folder,
		"io_workers":     ioWorkers,
		"decode_workers": decodeWorkers,
		"isolation":      opts.cfg.DecodeIsolation,
	}).Info("starting viewer")

	app, err := apppkg.NewApplication(apppkg.Config{
		Folder:   folder,
		Focus:    focus,
		State:    newEngineState(opts.cfg),
		Pipeline: images,
		Logger:   opts.component("app"),
		OnFolderOpened: func(opened string) {
			if err := config.SaveLastFolder(opts.viper, opened); err != nil {
				log.WithError(err).Warn("could not remember folder")
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	app.Run()

	stats := app.State().Stats
	log.WithFields(logrus.Fields{
		"decoded": stats.Decoded,
		"failed":  stats.Failed,
		"stale":   stats.Stale,
	}).Info("viewer closed")
	return nil
}
