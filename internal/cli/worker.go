package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kk-code-lab/rpix/internal/decodeproc"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/spf13/cobra"
)

// newDecodeWorkerCmd is the child side of process isolation. stdout carries
// frames only; logs go to stderr where the parent picks them up.
func newDecodeWorkerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:    decodeproc.WorkerCommand,
		Short:  "Decode images sent on stdin (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.logTo(os.Stderr)
			log := opts.component("decode-worker")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithField("pid", os.Getpid()).Debug("decode worker started")
			err := decodeproc.Serve(ctx, os.Stdin, os.Stdout, imaging.NewNativeDecoder())
			if err != nil {
				log.WithError(err).Error("decode worker stopped")
				return err
			}
			log.Debug("decode worker finished")
			return nil
		},
	}
}
