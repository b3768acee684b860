package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	textutil "github.com/kk-code-lab/rpix/internal/textutil"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [folder]",
		Short: "Print the images of a folder in viewing order",
		Long: `Print the images rpix would show for a folder, in the order it shows them.
On a terminal the list is numbered with sizes; otherwise one absolute path is
printed per line for use in scripts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _, err := resolveTarget(args, "")
			if err != nil {
				return err
			}
			entries, err := fsutil.ListImages(folder, fsutil.ListOptions{ShowHidden: opts.cfg.ShowHidden})
			if err != nil {
				return err
			}
			opts.component("list").WithField("folder", folder).Debugf("%d images", len(entries))

			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); ok && isTerminal(f) {
				return printNumbered(out, entries)
			}
			return printPaths(out, entries)
		},
	}
}

func printPaths(w io.Writer, entries []fsutil.Entry) error {
	for _, path := range fsutil.Paths(entries) {
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
	}
	return nil
}

func printNumbered(w io.Writer, entries []fsutil.Entry) error {
	digits := len(strconv.Itoa(len(entries)))
	nameWidth := 0
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = textutil.SanitizeTerminalText(e.Name)
		if nw := textutil.DisplayWidth(names[i]); nw > nameWidth {
			nameWidth = nw
		}
	}

	for i, e := range entries {
		line := fmt.Sprintf("%*d  %s  %s", digits, i+1, textutil.PadRight(names[i], nameWidth), formatSize(e.Size))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
