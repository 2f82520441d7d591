package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/endless-browser/resource-convert/internal/config"
	"github.com/endless-browser/resource-convert/internal/converter"
	"github.com/endless-browser/resource-convert/internal/fetcher"
	"github.com/endless-browser/resource-convert/internal/logger"
	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/endless-browser/resource-convert/internal/output"
	"github.com/endless-browser/resource-convert/internal/revision"
	"github.com/endless-browser/resource-convert/internal/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func versionString() string {
	return version.Version
}

// env is the loaded configuration plus the shared dependencies built from it
type env struct {
	cfg  *models.Config
	fs   afero.Fs
	log  *slog.Logger
	opts converter.Options
}

func (a *app) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if a.logLevel != "" {
		if err := logger.ValidateLevel(a.logLevel); err != nil {
			return nil, err
		}
		level = a.logLevel
	}
	log := logger.Setup(level, cmd.ErrOrStderr())

	if a.dryRun {
		log.Info("dry run, no files will be written")
	}

	return &env{
		cfg:  cfg,
		fs:   afero.NewOsFs(),
		log:  log,
		opts: converter.Options{DryRun: a.dryRun, Logger: log},
	}, nil
}

func (e *env) rulesets(ctx context.Context, force bool) error {
	rev := revision.Resolver(e.cfg.Rulesets.Repo, e.cfg.Rulesets.Revision)
	c := converter.NewRulesetConverter(e.fs, e.cfg.Rulesets, rev, e.opts)
	_, err := c.Run(ctx, force)
	return err
}

func (e *env) blocklist(ctx context.Context) error {
	_, err := converter.NewBlocklistConverter(e.fs, e.cfg.Blocklist, e.opts).Run(ctx)
	return err
}

func (e *env) preload(ctx context.Context) error {
	f := fetcher.New(e.cfg.HTTP)
	_, err := converter.NewPreloadConverter(e.fs, e.cfg.Preload, f, e.opts).Run(ctx)
	return err
}

func (a *app) runAll(cmd *cobra.Command, args []string) error {
	e, err := a.setup(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := e.rulesets(ctx, a.force); err != nil {
		return err
	}
	if err := e.blocklist(ctx); err != nil {
		return err
	}
	return e.preload(ctx)
}

func (a *app) runRulesets(cmd *cobra.Command, args []string) error {
	e, err := a.setup(cmd)
	if err != nil {
		return err
	}
	return e.rulesets(context.Background(), a.force)
}

func (a *app) runBlocklist(cmd *cobra.Command, args []string) error {
	e, err := a.setup(cmd)
	if err != nil {
		return err
	}
	return e.blocklist(context.Background())
}

func (a *app) runPreload(cmd *cobra.Command, args []string) error {
	e, err := a.setup(cmd)
	if err != nil {
		return err
	}
	return e.preload(context.Background())
}

func (a *app) runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	fs := afero.NewOsFs()
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "Configured sources:")
	for _, src := range cfg.Sources() {
		fmt.Fprintf(w, "\n  %s\n", src.Name)
		fmt.Fprintf(w, "    from %s\n", src.Input)
		for _, out := range src.Outputs {
			fmt.Fprintf(w, "    to   %s (%s)\n", out, describeOutput(fs, out))
		}
	}
	return nil
}

// describeOutput reports the entry count and provenance of a generated file
func describeOutput(fs afero.Fs, path string) string {
	var entries map[string]any
	header, err := output.Read(fs, path, &entries)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "not generated"
		}
		return "unreadable: " + err.Error()
	}
	return fmt.Sprintf("%d entries, %s", len(entries), header)
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultPath
	if a.cfgFile != "" {
		configPath = a.cfgFile
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := config.DefaultTOML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configPath)
	return nil
}
