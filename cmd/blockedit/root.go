package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/internal/platform"
)

var (
	verbose    bool
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blockedit",
	Short: "Block-level document editing tools for LLM agents",
	Long: `blockedit splits markdown documents into blocks and exposes the batch tools
an agent uses to edit them: list_blocks, read_blocks, edit_blocks, add_blocks
and delete_blocks. Changes are kept as pending diffs until applied.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: nearest "+platform.ConfigFileName+")")
}

// sessionOptions builds the options shared by every command.
func sessionOptions() []blockedit.Option {
	opts := []blockedit.Option{blockedit.WithLogger(slog.Default())}

	path := configFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			if found, err := platform.FindConfig(wd); err == nil {
				path = found
			}
		}
	}
	if path != "" {
		slog.Debug("using config file", "path", path)
		opts = append(opts, blockedit.WithConfigFile(path))
	}
	return opts
}
