package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cochaviz/swift-ci/internal/logging"
	"github.com/cochaviz/swift-ci/internal/repositories/local"
	"github.com/cochaviz/swift-ci/internal/setup"
	"github.com/cochaviz/swift-ci/internal/versions"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "cli"
)

// app holds the state shared by every command once the root flags are parsed.
type app struct {
	logger   *slog.Logger
	levelVar *slog.LevelVar
	stderr   io.Writer

	configPath string
}

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	logger := logging.NewCLI(os.Stderr, &levelVar)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{logger: logger, levelVar: &levelVar, stderr: os.Stderr}
	root := newRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		a.logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	var (
		logLevel  = defaultLogLevel
		logFormat = defaultLogFormat
	)

	root := &cobra.Command{
		Use:           "swift-ci",
		Short:         "Build and publish the Swift CI container images",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Set log verbosity (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "Log output format (cli, json)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML version table to use instead of the built-in one")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		mode, err := logging.ParseMode(logFormat)
		if err != nil {
			return err
		}
		if a.levelVar != nil {
			a.levelVar.Set(level)
		}
		if mode == logging.ModeJSON {
			a.logger = logging.NewJSON(a.stderr, a.levelVar)
			slog.SetDefault(a.logger)
		}
		setup.SetLogger(a.logger.With("component", "setup"))
		return nil
	}

	root.AddCommand(
		newPublishCommand(a),
		newVersionsCommand(a),
		newHistoryCommand(a),
	)
	return root
}

// loadTable returns the table from --config, or the built-in one.
func (a *app) loadTable() (*versions.Table, error) {
	if a.configPath == "" {
		return versions.Default()
	}
	return versions.Load(a.configPath)
}

func newVersionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Print the version and alias table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.loadTable()
			if err != nil {
				return err
			}
			out, err := table.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var recordDir string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded publish runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newEnvConfig(cmd.Flags(), "record-dir")
			if err != nil {
				return err
			}
			dir, err := resolveRecordDir(v.GetString("record-dir"))
			if err != nil {
				return err
			}

			cmdLogger := a.logger.With("command", "history", "record_dir", dir)
			repo := &local.LocalRunRepository{BaseDir: dir}
			records, err := repo.List()
			if err != nil {
				cmdLogger.Error("listing runs failed", "error", err)
				return err
			}
			if len(records) == 0 {
				cmdLogger.Warn("no runs recorded")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, record := range records {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\ttags: %d\n",
					record.ID,
					record.StartedAt.Format("2006-01-02 15:04:05"),
					record.Status,
					record.Mode,
					len(record.Tags()),
				)
				if record.Error != "" {
					fmt.Fprintf(out, "\terror: %s\n", record.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordDir, "record-dir", "", "Directory holding run records (env SWIFT_CI_RECORD_DIR)")
	return cmd
}
