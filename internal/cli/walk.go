package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/kk-code-lab/rpix/internal/pipeline"
	statepkg "github.com/kk-code-lab/rpix/internal/state"
	"github.com/spf13/cobra"
)

func newWalkCmd(opts *options) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "walk [folder]",
		Short: "Page through every image headlessly and report timings",
		Long: `Run the viewer engine without a terminal: open the folder, show each image
in order and move on as soon as it is ready. Each line reports how long the
image took to appear, and a summary of decodes, failures and cache use
follows. Useful to check a folder for broken files or to measure prefetch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, focus, err := resolveTarget(args, "")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			images, closeImages := newPipeline(opts.cfg, opts.component("pipeline"))
			defer closeImages()

			state := newEngineState(opts.cfg)
			state.ScreenWidth = width
			state.ScreenHeight = height
			state.Pipeline = images

			w := &walker{
				out:       cmd.OutOrStdout(),
				state:     state,
				reducer:   statepkg.NewStateReducer(),
				images:    images,
				now:       time.Now,
				startedAt: make(map[string]time.Time),
			}
			w.reducer.SetLogger(opts.component("walk"))
			state.Sink = w

			return w.run(ctx, folder, focus)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "pretend terminal width in columns (0 decodes at the configured maximum)")
	cmd.Flags().IntVar(&height, "height", 0, "pretend terminal height in rows")
	return cmd
}

type completionSource interface {
	Completions() <-chan pipeline.Completion
}

// walker drives the reducer without a screen. It implements
// statepkg.DisplaySink to time each image from request to display.
type walker struct {
	out     io.Writer
	state   *statepkg.AppState
	reducer *statepkg.StateReducer
	images  completionSource
	now     func() time.Time

	startedAt map[string]time.Time
	shown     int
	errors    int
}

func (w *walker) run(ctx context.Context, folder, focus string) error {
	start := w.now()
	if _, err := w.reducer.Reduce(w.state, statepkg.OpenFolderAction{Path: folder, Focus: focus}); err != nil {
		return err
	}
	if w.state.IsEmpty() {
		fmt.Fprintf(w.out, "no images in %s\n", w.state.Folder)
		return nil
	}

	for {
		if w.resolved() {
			if w.state.CurrentIndex == len(w.state.Files)-1 {
				break
			}
			if _, err := w.reducer.Reduce(w.state, statepkg.NextImageAction{}); err != nil {
				return err
			}
			continue
		}

		select {
		case c := <-w.images.Completions():
			if _, err := w.reducer.Reduce(w.state, statepkg.ImageLoadedAction(c)); err != nil {
				return err
			}
		case <-ctx.Done():
			w.summary(w.now().Sub(start))
			return ctx.Err()
		}
	}

	w.summary(w.now().Sub(start))
	return nil
}

// resolved reports whether the current image is on display or has failed.
func (w *walker) resolved() bool {
	view := w.state.View
	return view.Path == w.state.CurrentFilePath() && !view.Loading && (view.Image != nil || view.Err != "")
}

func (w *walker) OnLoading(path string) {
	if _, ok := w.startedAt[path]; !ok {
		w.startedAt[path] = w.now()
	}
}

func (w *walker) OnReady(path string, img *imaging.Image) {
	w.shown++
	timing := "cached"
	if started, ok := w.startedAt[path]; ok {
		timing = w.now().Sub(started).Round(time.Microsecond).String()
		delete(w.startedAt, path)
	}
	fmt.Fprintf(w.out, "%s %s %dx%d %s\n", w.position(), filepath.Base(path), img.Width, img.Height, timing)
}

func (w *walker) OnError(path string, message string) {
	w.errors++
	delete(w.startedAt, path)
	fmt.Fprintf(w.out, "%s %s error: %s\n", w.position(), filepath.Base(path), message)
}

func (w *walker) position() string {
	n := len(w.state.Files)
	return fmt.Sprintf("[%*d/%d]", len(fmt.Sprint(n)), w.state.CurrentIndex+1, n)
}

func (w *walker) summary(elapsed time.Duration) {
	stats := w.state.Stats
	cache := w.state.Cache
	fmt.Fprintf(w.out, "\n%d shown, %d errors in %s\n", w.shown, w.errors, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w.out, "requests %d, decoded %d, failed %d, stale %d\n",
		stats.Requested, stats.Decoded, stats.Failed, stats.Stale)
	fmt.Fprintf(w.out, "cache %d/%d, %d evictions, %s resident\n",
		cache.Len(), cache.Cap(), cache.Evictions(), formatSize(cache.SizeBytes()))
}
