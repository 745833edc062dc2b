package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/mirrorpaint/internal/config"
	"github.com/ayusman/mirrorpaint/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mirrorpaint",
	Short: "Draw on screen with two hands in front of a webcam",
	Long: `mirrorpaint turns a webcam into a two-hand drawing tool. One hand sets the
brush size and shape, the other paints with a thumb and index finger pinch.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.mirrorpaint/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for the database and exports")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// configPath returns the --config flag or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, applies the persistent flags and
// resolves paths.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Resolve(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// openStore opens the export history database, creating the data directory.
func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
