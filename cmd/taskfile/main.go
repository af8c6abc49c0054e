package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"taskfile/internal/config"
	"taskfile/internal/taskfile"
	"taskfile/pkg/task"

	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands of one invocation
type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "taskfile",
		Short: "taskfile - read, write and browse task records",
		Long: `taskfile works with task records: a small text format with a ruled
header (title, authors, time frame) followed by a free-form body.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
			slog.Debug("Configuration loaded",
				"dir", cfg.Dir,
				"port", cfg.Port,
				"max_body_size", cfg.MaxBodySize,
				"export_format", cfg.ExportFormat)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./taskfile.yaml or $XDG_CONFIG_HOME/taskfile/taskfile.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Int("max-body-size", defaults.MaxBodySize, "Maximum body size in bytes, 0 for no limit")

	rootCmd.AddCommand(
		a.newCheckCmd(),
		a.newFmtCmd(),
		a.newShowCmd(),
		a.newNewCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newServeCmd(),
	)
	return rootCmd
}

// setupLogging installs the default slog handler. Logs go to stderr so they
// never mix with task output.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// readTask loads and parses one task file with the configured body limit
func (a *app) readTask(path string) (*taskfile.Session, *task.Task, error) {
	sess, err := taskfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	sess.MaxBodySize = a.cfg.MaxBodySize
	if sess.MaxBodySize == 0 {
		// zero would mean "decoder default" to the session
		sess.MaxBodySize = -1
	}
	t, err := sess.Task()
	if err != nil {
		return nil, nil, err
	}
	return sess, t, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
