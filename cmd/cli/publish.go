package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cochaviz/swift-ci/internal/actions"
	"github.com/cochaviz/swift-ci/internal/images"
	"github.com/cochaviz/swift-ci/internal/registry"
	"github.com/cochaviz/swift-ci/internal/release"
	"github.com/cochaviz/swift-ci/internal/repositories/local"
	"github.com/cochaviz/swift-ci/internal/setup"
)

const envPrefix = "SWIFT_CI"

// newEnvConfig binds the named flags to SWIFT_CI_* environment variables.
// An explicitly set flag wins over the environment.
func newEnvConfig(flags *pflag.FlagSet, names ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return v, nil
}

func resolveRecordDir(dir string) (string, error) {
	if dir = strings.TrimSpace(dir); dir != "" {
		return dir, nil
	}
	return setup.DefaultRecordDir()
}

type publishOptions struct {
	build   bool
	push    bool
	alias   bool
	dryRun  bool
	verbose bool

	registry      string
	password      string
	passwordStdin bool

	recordDir string
	noRecord  bool
	flavors   []string
	tool      string
}

func newPublishCommand(a *app) *cobra.Command {
	var opts publishOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build, push, and alias the images of every configured version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newEnvConfig(cmd.Flags(), "registry", "registry-password", "record-dir")
			if err != nil {
				return err
			}
			opts.registry = v.GetString("registry")
			opts.password = v.GetString("registry-password")
			opts.recordDir = v.GetString("record-dir")

			return runPublish(cmd, a, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.build, "build", false, "Build the images")
	flags.BoolVar(&opts.push, "push", false, "Push the images to the public registry")
	flags.BoolVar(&opts.alias, "alias", false, "Tag and push the aliases of every version")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print what would happen without doing it")
	flags.BoolVar(&opts.verbose, "verbose", false, "Print every action before performing it")
	flags.StringVar(&opts.registry, "registry", "", "Private registry to mirror to, e.g. https://user@host:5000 (env SWIFT_CI_REGISTRY)")
	flags.StringVar(&opts.password, "registry-password", "", "Password for the private registry (env SWIFT_CI_REGISTRY_PASSWORD)")
	flags.BoolVar(&opts.passwordStdin, "registry-password-stdin", false, "Read the private registry password from stdin")
	flags.StringVar(&opts.recordDir, "record-dir", "", "Directory holding run records (env SWIFT_CI_RECORD_DIR)")
	flags.BoolVar(&opts.noRecord, "no-record", false, "Do not record the run")
	flags.StringSliceVar(&opts.flavors, "flavor", nil, "Image flavor to publish (ci, development); repeat for several (default ci)")
	flags.StringVar(&opts.tool, "tool", images.DefaultTool, "Container CLI to invoke")

	return cmd
}

func runPublish(cmd *cobra.Command, a *app, opts publishOptions) error {
	// stdin is consumed up front, before anything is built
	sources := registry.PasswordSources{Flag: opts.password}
	if opts.passwordStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read registry password from stdin: %w", err)
		}
		sources.Stdin = string(data)
		sources.StdinSet = true
	}

	var target *registry.Target
	if strings.TrimSpace(opts.registry) != "" {
		parsed, err := registry.Parse(opts.registry)
		if err != nil {
			return err
		}
		if err := parsed.ResolvePassword(sources); err != nil {
			return err
		}
		target = parsed
	}

	table, err := a.loadTable()
	if err != nil {
		return err
	}

	flavors, err := selectFlavors(opts.flavors)
	if err != nil {
		return err
	}

	mode := actions.ParseMode(opts.dryRun, opts.verbose)
	if mode == actions.ModeVerbose && a.levelVar != nil && a.levelVar.Level() > slog.LevelDebug {
		a.levelVar.Set(slog.LevelDebug)
	}

	cmdLogger := a.logger.With("command", "publish", "mode", string(mode))
	if mode != actions.ModeDryRun {
		if err := setup.Verify(opts.tool); err != nil {
			cmdLogger.Error("setup verification failed", "error", err)
			return err
		}
	}

	executor, err := actions.New(mode, cmd.OutOrStdout(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	service := &release.ReleaseService{
		Logger:   cmdLogger,
		Executor: executor,
		Table:    table,
		Flavors:  flavors,
		Tool:     opts.tool,
	}
	if !opts.noRecord {
		dir, err := resolveRecordDir(opts.recordDir)
		if err != nil {
			cmdLogger.Warn("run will not be recorded", "error", err)
		} else {
			service.Runs = &local.LocalRunRepository{BaseDir: dir}
		}
	}

	record, err := service.Run(&release.ReleaseRequest{
		Build:    opts.build,
		Push:     opts.push,
		Alias:    opts.alias,
		Registry: target,
		Mode:     mode,
	})
	if err != nil {
		return err
	}
	cmdLogger.Info("publish finished", "run", record.ID, "tags", len(record.Tags()))
	return nil
}

func selectFlavors(names []string) ([]images.Flavor, error) {
	if len(names) == 0 {
		return images.DefaultFlavors(), nil
	}
	flavors := make([]images.Flavor, 0, len(names))
	for _, name := range names {
		flavor, err := images.Lookup(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		flavors = append(flavors, flavor)
	}
	return flavors, nil
}
