package postgres

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

func (r *Repository) GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	rows, err := r.q.Query(ctx, `
		SELECT key, seller, contract, token_id, price, amount, standard, active
		FROM market_listings WHERE key = $1
	`, key.String())
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	model, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[listingModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	listing, err := mapListingModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse listing model")
	}
	return listing, nil
}

func (r *Repository) GetActiveListings(ctx context.Context) ([]*entity.Listing, error) {
	rows, err := r.q.Query(ctx, `
		SELECT key, seller, contract, token_id, price, amount, standard, active
		FROM market_listings WHERE active ORDER BY key
	`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[listingModel])
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	listings := make([]*entity.Listing, 0, len(models))
	for _, model := range models {
		listing, err := mapListingModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse listing model")
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (r *Repository) PutListing(ctx context.Context, listing *entity.Listing) error {
	model := mapListingTypeToModel(listing)
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_listings (key, seller, contract, token_id, price, amount, standard, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (key) DO UPDATE SET
			seller = EXCLUDED.seller,
			price = EXCLUDED.price,
			amount = EXCLUDED.amount,
			active = EXCLUDED.active
	`, model.Key, model.Seller, model.Contract, model.TokenID, model.Price, model.Amount, model.Standard, model.Active)
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetEvents(ctx context.Context, filter datagateway.EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error) {
	if fromHeight > toHeight {
		return nil, errors.Wrapf(errs.InvalidArgument, "fromHeight %d is greater than toHeight %d", fromHeight, toHeight)
	}
	types := make([]string, 0, len(filter.Types))
	for _, t := range filter.Types {
		types = append(types, string(t))
	}
	rows, err := r.q.Query(ctx, `
		SELECT block_height, log_index, type, seller, buyer, contract, token_id, price, old_price, amount, standard, tx_hash
		FROM market_events
		WHERE block_height >= $1 AND block_height <= $2
			AND (cardinality($3::text[]) = 0 OR type = ANY($3::text[]))
			AND ($4 = '' OR contract = $4)
			AND ($5 = '' OR token_id = $5)
			AND ($6 = '' OR seller = $6)
			AND ($7 = '' OR buyer = $7)
		ORDER BY block_height, log_index
	`, int64(fromHeight), int64(toHeight), types,
		optionalAddress(filter.Contract), optionalTokenID(filter.TokenID), optionalAddress(filter.Seller), optionalAddress(filter.Buyer))
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventModel])
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	events := make([]*entity.EventRecord, 0, len(models))
	for _, model := range models {
		event, err := mapEventModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse event model")
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *Repository) AppendEvent(ctx context.Context, event *entity.EventRecord) error {
	model := mapEventTypeToModel(event)
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_events (block_height, log_index, type, seller, buyer, contract, token_id, price, old_price, amount, standard, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, model.BlockHeight, model.LogIndex, model.Type, model.Seller, model.Buyer, model.Contract, model.TokenID, model.Price, model.OldPrice, model.Amount, model.Standard, model.TxHash)
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetChainHead(ctx context.Context) (uint64, error) {
	var height int64
	err := r.q.QueryRow(ctx, `SELECT height FROM market_chain_head WHERE id`).Scan(&height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(height), nil
}

func (r *Repository) SetChainHead(ctx context.Context, height uint64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_chain_head (id, height) VALUES (TRUE, $1)
		ON CONFLICT (id) DO UPDATE SET height = EXCLUDED.height
	`, int64(height))
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetFeeState(ctx context.Context) (entity.FeeState, error) {
	var (
		accumulated string
		rateBps     int16
	)
	err := r.q.QueryRow(ctx, `SELECT accumulated_fees, fee_rate_bps FROM market_fee_state WHERE id`).Scan(&accumulated, &rateBps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.FeeState{AccumulatedFees: big.NewInt(0), FeeRateBps: entity.DefaultFeeRateBps}, nil
		}
		return entity.FeeState{}, errors.Wrap(err, "error during query")
	}
	fees, ok := new(big.Int).SetString(accumulated, 10)
	if !ok {
		return entity.FeeState{}, errors.Errorf("failed to parse accumulated fees %q", accumulated)
	}
	return entity.FeeState{
		AccumulatedFees: fees,
		FeeRateBps:      uint16(rateBps),
	}, nil
}

func (r *Repository) SetFeeState(ctx context.Context, state entity.FeeState) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_fee_state (id, accumulated_fees, fee_rate_bps) VALUES (TRUE, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			accumulated_fees = EXCLUDED.accumulated_fees,
			fee_rate_bps = EXCLUDED.fee_rate_bps
	`, state.AccumulatedFees.String(), int16(state.FeeRateBps))
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func optionalAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addressToString(addr)
}

func optionalTokenID(tokenID *big.Int) string {
	if tokenID == nil {
		return ""
	}
	return tokenID.String()
}
