package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/openmarket-network/market-indexer/internal/postgres"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
)

type Repository struct {
	db postgres.DB
	q  postgres.Queryable
	tx pgx.Tx
}

var _ datagateway.MarketDataGateway = (*Repository)(nil)

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
		q:  db,
	}
}
