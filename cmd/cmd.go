package cmd

import (
	"context"
	"log/slog"

	"github.com/openmarket-network/market-indexer/internal/config"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:  "market",
	Long: `Marketplace settlement ledger and event-sourced listing indexer`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "sepolia", "network to connect to, E.g. `mainnet` or `sepolia`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		conf := config.Parse(configFile)

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	rootCmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute root command", slogx.Error(err))
	}
}
