package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/adapters/repository/sqlite"
	"github.com/hkunkun/hkun-links/pkg/config"
	"github.com/hkunkun/hkun-links/pkg/core/metadata"
	"github.com/hkunkun/hkun-links/pkg/logging"
)

var (
	// Global flags
	databaseURL string
	timeout     time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "links",
	Short:         "Admin tool for the links site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if databaseURL != "" {
			cfg.DatabaseURL = databaseURL
		}
		logger, err = logging.New(cfg.AppEnv, cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "ls",
	Short: "List categories and their links in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *cliServices) error {
			categories, err := svc.categories.ListCategories(ctx, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range categories {
				fmt.Fprintf(out, "%d\t%s\t%s %s\n", c.SortOrder, c.ID, c.Icon, c.Name)
				for _, l := range c.Links {
					fmt.Fprintf(out, "\t%d\t%s\t%s\n", l.SortOrder, l.ID, l.Title)
				}
			}
			return nil
		})
	},
}

var metaCmd = &cobra.Command{
	Use:   "meta <url>",
	Short: "Fetch the title, description, image and favicon of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		extractor := metadata.New(
			metadata.WithUserAgent(cfg.MetadataUserAgent),
			metadata.WithTimeout(cfg.MetadataTimeout),
			metadata.WithLogger(logger),
		)
		md, err := extractor.Fetch(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "Database URL (default: DATABASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reorderCmd)
}

// withServices opens the database for the duration of fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *cliServices) error) error {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, newCLIServices(repo))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
