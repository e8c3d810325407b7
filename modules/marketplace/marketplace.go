package marketplace

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/internal/config"
	"github.com/openmarket-network/market-indexer/internal/postgres"
	"github.com/openmarket-network/market-indexer/modules/marketplace/api/httphandler"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/ledger"
	"github.com/openmarket-network/market-indexer/modules/marketplace/metadata"
	"github.com/openmarket-network/market-indexer/modules/marketplace/projector"
	"github.com/openmarket-network/market-indexer/modules/marketplace/reconciler"
	marketmemory "github.com/openmarket-network/market-indexer/modules/marketplace/repository/memory"
	marketpostgres "github.com/openmarket-network/market-indexer/modules/marketplace/repository/postgres"
	"github.com/openmarket-network/market-indexer/modules/marketplace/scanner"
	"github.com/openmarket-network/market-indexer/modules/marketplace/usecase"
	"github.com/openmarket-network/market-indexer/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

// Module wires the settlement ledger, the event-sourced read pipeline, and
// the HTTP API together.
type Module struct {
	Ledger  *ledger.Ledger
	Usecase *usecase.Usecase

	cleanupFuncs []func(context.Context) error
}

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	var (
		marketDg     datagateway.MarketDataGateway
		cleanupFuncs []func(context.Context) error
	)
	switch strings.ToLower(conf.Marketplace.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Marketplace.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for marketplace")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		marketDg = marketpostgres.NewRepository(pg)
	case "memory":
		marketDg = marketmemory.NewRepository(conf.Marketplace.MaxFilterRange)
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for marketplace is not supported", conf.Marketplace.Database)
	}

	if !ethcommon.IsHexAddress(conf.Marketplace.OperatorAddress) {
		return nil, errors.Wrapf(errs.InvalidArgument, "%q is not a valid operator address", conf.Marketplace.OperatorAddress)
	}
	operator := ethcommon.HexToAddress(conf.Marketplace.OperatorAddress)

	marketLedger := ledger.New(marketDg, operator)
	marketScanner := scanner.New(marketLedger, conf.Marketplace.DeploymentHeight, conf.Marketplace.Scanner)

	var resolver datagateway.MetadataResolver
	if conf.Marketplace.Metadata.BaseURL != "" {
		httpResolver, err := metadata.NewHTTPResolver(conf.Marketplace.Metadata.BaseURL, conf.Marketplace.Metadata.Debug)
		if err != nil {
			return nil, errors.Wrap(err, "can't create metadata resolver")
		}
		resolver = httpResolver
	}

	marketReconciler := reconciler.New(marketScanner, marketLedger, resolver, conf.Marketplace.VerifyConcurrency)
	marketProjector := projector.New(marketScanner)
	marketUsecase := usecase.New(marketLedger, marketReconciler, marketProjector)

	apiHandlers := lo.Uniq(conf.Marketplace.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			marketHTTPHandler := httphandler.New(marketUsecase)
			if err := marketHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Marketplace API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	return &Module{
		Ledger:       marketLedger,
		Usecase:      marketUsecase,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

// Shutdown releases the module's resources.
func (m *Module) Shutdown(ctx context.Context) error {
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
