package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every command needs once flags are parsed
type app struct {
	cfgFile  string
	logLevel string
	force    bool
	dryRun   bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "resource-convert",
		Short: "Generate the browser's bundled plist resources",
		Long: `Converts HTTPS Everywhere rulesets, the URL blocker list and the
Chromium HSTS preload list into the plist files bundled with the browser.

Without a subcommand all three conversions run in order. Rulesets are only
reconverted when the HTTPS Everywhere revision changed, unless -f is given.`,
		Version:       versionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runAll,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./configs/resource_convert.toml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "parse and validate without writing files")
	rootCmd.Flags().BoolVarP(&a.force, "force", "f", false, "reconvert rulesets even if the revision is unchanged")

	rulesetsCmd := &cobra.Command{
		Use:   "rulesets",
		Short: "Convert HTTPS Everywhere rulesets",
		Args:  cobra.NoArgs,
		RunE:  a.runRulesets,
	}
	rulesetsCmd.Flags().BoolVarP(&a.force, "force", "f", false, "reconvert even if the revision is unchanged")

	blocklistCmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Convert the URL blocker list",
		Args:  cobra.NoArgs,
		RunE:  a.runBlocklist,
	}

	preloadCmd := &cobra.Command{
		Use:   "preload",
		Short: "Download and convert the HSTS preload list",
		Args:  cobra.NoArgs,
		RunE:  a.runPreload,
	}

	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "List configured sources and their generated files",
		Args:  cobra.NoArgs,
		RunE:  a.runSources,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}

	rootCmd.AddCommand(rulesetsCmd, blocklistCmd, preloadCmd, sourcesCmd, initCmd)
	return rootCmd
}
