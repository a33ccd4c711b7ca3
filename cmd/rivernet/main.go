package main

import (
	"fmt"
	"os"

	"rivernet/internal/config"
	"rivernet/internal/crawler"
	"rivernet/internal/index"
	"rivernet/internal/logging"
	"rivernet/internal/network"
	"rivernet/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "rivernet",
		Short:         "Read, check and map Flood Modeller DAT models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}
	configPath string
	dbPath     string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "rivernet.yaml", "Path to the config file")
	// Overrides storage.path from the config
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the model database (SQLite)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(findCmd)
}

func setup(cmd *cobra.Command) error {
	c, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		c.Storage.Path = dbPath
	}
	cfg = c
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}

// initStore opens the configured SQLite store.
func initStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Storage.Path, err)
	}
	return store, nil
}

func newIndexer(opts ...index.Option) *index.Indexer {
	opts = append([]index.Option{
		index.WithWorkers(cfg.Scan.Workers),
		index.WithNetworkOptions(network.IncludePartialReaches(cfg.Network.IncludePartialReaches)),
	}, opts...)
	return index.NewIndexer(crawler.NewCrawler(cfg.Scan.Ignored...), opts...)
}
