package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/config"
	clierrors "github.com/zfogg/inkwell/pkg/errors"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

// app is built once per run, before any subcommand executes
var app *App

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell CLI - read, write and discuss articles",
	Long: `Inkwell CLI is a command-line client for the Inkwell blogging
platform. Likes, bookmarks, comments and follows show up immediately
and are undone if the server turns them down.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if !output.Valid(outputFmt) {
			return fmt.Errorf("unknown output format %q (want text, json or table)", outputFmt)
		}
		config.Set("output.format", outputFmt)

		a, err := NewApp()
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close(cmd.Context())
		}
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}
	if app != nil {
		app.Close(context.Background())
	}

	// the rollback notice has already been printed
	var rb *optimistic.RollbackError
	if !errors.As(err, &rb) {
		fmt.Fprint(os.Stderr, clierrors.Format(err))
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/inkwell/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(articleCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
