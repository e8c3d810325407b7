package config

import (
	"github.com/openmarket-network/market-indexer/internal/postgres"
	"github.com/openmarket-network/market-indexer/modules/marketplace/scanner"
)

type Config struct {
	// Database backend for the settlement ledger: "memory" or "postgres".
	Database string          `mapstructure:"database"`
	Postgres postgres.Config `mapstructure:"postgres"`

	// OperatorAddress is the only account allowed to manage fees.
	OperatorAddress string `mapstructure:"operator_address"`

	// DeploymentHeight is the block height scans start from.
	DeploymentHeight uint64 `mapstructure:"deployment_height"`

	// MaxFilterRange caps the block span of a single event query in memory
	// mode, imitating the range limits of real read providers. 0 disables
	// the cap.
	MaxFilterRange uint64 `mapstructure:"max_filter_range"`

	Scanner           scanner.Config `mapstructure:"scanner"`
	VerifyConcurrency int            `mapstructure:"verify_concurrency"`

	Metadata Metadata `mapstructure:"metadata"`

	APIHandlers []string `mapstructure:"api_handlers"`
}

type Metadata struct {
	// BaseURL of the external metadata lookup service. Empty disables
	// resolution; listings then render with placeholder metadata.
	BaseURL string `mapstructure:"base_url"`
	Debug   bool   `mapstructure:"debug"`
}

func Default() Config {
	return Config{
		Database:    "memory",
		APIHandlers: []string{"http"},
	}
}
