package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/openmarket-network/market-indexer/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/config"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/openmarket-network/market-indexer/pkg/logger/slogx"
	"github.com/openmarket-network/market-indexer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	conf       = &Config{
		Logger: logger.Config{
			Output: "text",
		},
		Network: common.NetworkSepolia,
		HTTPServer: HTTPServer{
			Port: 8080,
		},
		Marketplace: config.Default(),
	}
)

type Config struct {
	Logger      logger.Config  `mapstructure:"logger"`
	Network     common.Network `mapstructure:"network"`
	HTTPServer  HTTPServer     `mapstructure:"http_server"`
	Marketplace config.Config  `mapstructure:"marketplace"`
}

type HTTPServer struct {
	Port   int                  `mapstructure:"port"`
	Logger requestlogger.Config `mapstructure:"logger"`
}

// BindPFlag binds a cobra flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse reads the configuration from the given file (or ./config.yaml when
// empty), environment variables and bound flags. Parse is idempotent; later
// calls return the already parsed configuration.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "Config file not found, using default values", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&conf); err != nil {
			logger.PanicContext(ctx, "Failed to unmarshal config", slogx.Error(err))
		}
	})

	return *conf
}

// Load returns the parsed configuration.
func Load() Config {
	return Parse("")
}
