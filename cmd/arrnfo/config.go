package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrnfo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Long:  "Writes the default config.toml to path, or to $XDG_CONFIG_HOME/arrnfo/config.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTestCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			printConfigErrors(out, cfgErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  TMDB:       language %s\n", cfg.TMDB.Language)
	fmt.Fprintf(w, "  OMDB:       %s\n", enabled(cfg.OMDB.APIKey != ""))

	search := enabled(cfg.WebSearch.Enabled)
	if cfg.WebSearch.Enabled {
		if cfg.WebSearch.APIKey != "" {
			search += " (custom search api)"
		} else {
			search += " (results page)"
		}
	}
	fmt.Fprintf(w, "  Web search: %s\n", search)

	translator := enabled(cfg.Translator.Enabled)
	if cfg.Translator.Enabled {
		translator += fmt.Sprintf(" (%s, tags %s)", cfg.Translator.Model, enabled(cfg.Translator.Tags))
	}
	fmt.Fprintf(w, "  Translator: %s\n", translator)
	fmt.Fprintf(w, "  Cache:      %s\n", cfg.Cache.Path)

	images := "enabled"
	switch {
	case cfg.Images.Skip:
		images = "skipped"
	case cfg.Images.Extra:
		images = "enabled (with extras)"
	}
	fmt.Fprintf(w, "  Images:     %s\n", images)

	proxy := cfg.HTTP.Proxy
	if proxy == "" {
		proxy = "none"
	}
	fmt.Fprintf(w, "  HTTP:       timeout %s, %d retries, proxy %s\n", cfg.HTTP.Timeout, cfg.HTTP.Retries, proxy)

	logDest := "stderr"
	if cfg.Log.File != "" {
		logDest = "stderr + " + cfg.Log.File
	}
	fmt.Fprintf(w, "  Log:        %s (%s)\n", cfg.Log.Level, logDest)
}
