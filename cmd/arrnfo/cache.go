package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrnfo/internal/config"
	"github.com/vmunix/arrnfo/internal/metadata"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Lookup cache maintenance",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cache entries",
	Long: `Remove every cache entry, or only those whose key starts with --prefix.

Prefixes: tmdb:search, tmdb:find, tmdb:details, tmdb:season, tmdb:episode,
tmdb:credits, tmdb:keywords, tmdb:images, tag`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheClearCmd.Flags().String("prefix", "", "Only clear keys with this prefix")
}

// loadConfigLenient loads the config without validation, falling back to
// defaults when none is found.
func loadConfigLenient() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.LoadWithoutValidation(path)
}

// cacheResult reports one maintenance operation.
type cacheResult struct {
	Path      string `json:"path"`
	Removed   int64  `json:"removed"`
	Remaining int64  `json:"remaining"`
}

func withCache(cmd *cobra.Command, op func(*metadata.Cache) (int64, error)) error {
	cfg, err := loadConfigLenient()
	if err != nil {
		return err
	}
	cache, err := metadata.OpenCache(cmd.Context(), cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	removed, err := op(cache)
	if err != nil {
		return err
	}
	remaining, err := cache.Count(cmd.Context())
	if err != nil {
		return err
	}

	res := cacheResult{Path: cfg.Cache.Path, Removed: removed, Remaining: remaining}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries from %s (%d remaining)\n", res.Removed, res.Path, res.Remaining)
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	return withCache(cmd, func(c *metadata.Cache) (int64, error) {
		return c.Prune(cmd.Context())
	})
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	return withCache(cmd, func(c *metadata.Cache) (int64, error) {
		return c.Clear(cmd.Context(), prefix)
	})
}
