// Package main is troopctl, an operator CLI that evaluates the visibility policy against the
// troop fixtures and plays the archive sync in a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/store"
)

// App holds the CLI dependencies.
type App struct {
	store  *store.Store
	logger *zap.Logger
	ctx    context.Context
}

var (
	fixtures string
	verbose  bool
)

func main() {
	if err := newRootCmd(&App{ctx: context.Background()}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "troopctl",
		Short:        "troopctl - inspect the troop portal policy and data",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&fixtures, "fixtures", "f", "", "Fixture YAML file (default: embedded fixtures)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(policyCmd(app))
	rootCmd.AddCommand(rosterCmd(app))
	rootCmd.AddCommand(searchCmd(app))
	rootCmd.AddCommand(syncCmd(app))

	return rootCmd
}

// initApp sets up the logger and loads the fixtures. Dependencies already set are kept.
func initApp(app *App) error {
	var err error
	if app.ctx == nil {
		app.ctx = context.Background()
	}
	if app.logger == nil {
		app.logger = zap.NewNop()
		if verbose {
			if app.logger, err = zap.NewDevelopment(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
	}
	if app.store != nil {
		return nil
	}

	if fixtures != "" {
		app.logger.Info("Loading fixtures", zap.String("path", fixtures))
		app.store, err = store.Load(fixtures)
	} else {
		app.store, err = store.LoadEmbedded()
	}
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	return nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
