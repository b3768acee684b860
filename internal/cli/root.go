// Package cli wires the rpix commands: the terminal viewer, the headless
// list and walk commands, and the hidden decode worker.
package cli

import (
	"io"

	"github.com/kk-code-lab/rpix/internal/config"
	"github.com/kk-code-lab/rpix/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// options holds what the persistent flags and config loading produce. Each
// command tree gets its own copy so tests can run commands side by side.
type options struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	viper  *viper.Viper
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "rpix [folder|file]",
		Short: "Browse a folder of images in the terminal",
		Long: `rpix shows the images of a folder one at a time in the terminal, drawn
with half-block characters in true colour. Images around the current one are
decoded in the background so paging stays instant.

Examples:
  rpix ~/Pictures/trip
  rpix ~/Pictures/trip/IMG_0042.jpg
  rpix list ~/Pictures/trip
  rpix walk ~/Pictures/trip`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.rpix.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("hidden", "a", false, "include hidden files")

	rootCmd.AddCommand(
		newViewCmd(opts),
		newListCmd(opts),
		newWalkCmd(opts),
		newDecodeWorkerCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func (o *options) load(cmd *cobra.Command) error {
	v, err := config.NewViper(o.cfgFile)
	if err != nil {
		return err
	}
	if flag := cmd.Flags().Lookup("hidden"); flag != nil && flag.Changed {
		if err := v.BindPFlag("show_hidden", flag); err != nil {
			return err
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.viper = v
	o.logger = logrus.New()
	return logging.Setup(o.logger, cfg.LogLevel, o.verbose, cmd.ErrOrStderr())
}

// logTo sends log output to w, keeping level and format.
func (o *options) logTo(w io.Writer) {
	o.logger.SetOutput(w)
}

func (o *options) component(name string) *logrus.Entry {
	return logging.Component(o.logger, name)
}
