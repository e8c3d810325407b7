package postgres

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

type listingModel struct {
	Key      string `db:"key"`
	Seller   string `db:"seller"`
	Contract string `db:"contract"`
	TokenID  string `db:"token_id"`
	Price    string `db:"price"`
	Amount   int64  `db:"amount"`
	Standard string `db:"standard"`
	Active   bool   `db:"active"`
}

type eventModel struct {
	BlockHeight int64       `db:"block_height"`
	LogIndex    int32       `db:"log_index"`
	Type        string      `db:"type"`
	Seller      string      `db:"seller"`
	Buyer       pgtype.Text `db:"buyer"`
	Contract    string      `db:"contract"`
	TokenID     string      `db:"token_id"`
	Price       string      `db:"price"`
	OldPrice    pgtype.Text `db:"old_price"`
	Amount      int64       `db:"amount"`
	Standard    string      `db:"standard"`
	TxHash      string      `db:"tx_hash"`
}

func mapListingModelToType(model listingModel) (*entity.Listing, error) {
	tokenID, ok := new(big.Int).SetString(model.TokenID, 10)
	if !ok {
		return nil, errors.Errorf("failed to parse token id %q", model.TokenID)
	}
	price, ok := new(big.Int).SetString(model.Price, 10)
	if !ok {
		return nil, errors.Errorf("failed to parse price %q", model.Price)
	}
	return &entity.Listing{
		Seller:   common.HexToAddress(model.Seller),
		Contract: common.HexToAddress(model.Contract),
		TokenID:  tokenID,
		Price:    price,
		Amount:   uint64(model.Amount),
		Standard: entity.TokenStandard(model.Standard),
		Active:   model.Active,
	}, nil
}

func mapListingTypeToModel(listing *entity.Listing) listingModel {
	return listingModel{
		Key:      listing.Key().String(),
		Seller:   addressToString(listing.Seller),
		Contract: addressToString(listing.Contract),
		TokenID:  listing.TokenID.String(),
		Price:    listing.Price.String(),
		Amount:   int64(listing.Amount),
		Standard: string(listing.Standard),
		Active:   listing.Active,
	}
}

func mapEventModelToType(model eventModel) (*entity.EventRecord, error) {
	tokenID, ok := new(big.Int).SetString(model.TokenID, 10)
	if !ok {
		return nil, errors.Errorf("failed to parse token id %q", model.TokenID)
	}
	price, ok := new(big.Int).SetString(model.Price, 10)
	if !ok {
		return nil, errors.Errorf("failed to parse price %q", model.Price)
	}
	event := &entity.EventRecord{
		Type:        entity.EventType(model.Type),
		Seller:      common.HexToAddress(model.Seller),
		Contract:    common.HexToAddress(model.Contract),
		TokenID:     tokenID,
		Price:       price,
		Amount:      uint64(model.Amount),
		Standard:    entity.TokenStandard(model.Standard),
		BlockHeight: uint64(model.BlockHeight),
		LogIndex:    uint32(model.LogIndex),
		TxHash:      common.HexToHash(model.TxHash),
	}
	if model.Buyer.Valid {
		event.Buyer = common.HexToAddress(model.Buyer.String)
	}
	if model.OldPrice.Valid {
		oldPrice, ok := new(big.Int).SetString(model.OldPrice.String, 10)
		if !ok {
			return nil, errors.Errorf("failed to parse old price %q", model.OldPrice.String)
		}
		event.OldPrice = oldPrice
	}
	return event, nil
}

func mapEventTypeToModel(event *entity.EventRecord) eventModel {
	model := eventModel{
		BlockHeight: int64(event.BlockHeight),
		LogIndex:    int32(event.LogIndex),
		Type:        string(event.Type),
		Seller:      addressToString(event.Seller),
		Contract:    addressToString(event.Contract),
		TokenID:     event.TokenID.String(),
		Price:       event.Price.String(),
		Amount:      int64(event.Amount),
		Standard:    string(event.Standard),
		TxHash:      strings.ToLower(event.TxHash.Hex()),
	}
	if event.Buyer != (common.Address{}) {
		model.Buyer = pgtype.Text{String: addressToString(event.Buyer), Valid: true}
	}
	if event.OldPrice != nil {
		model.OldPrice = pgtype.Text{String: event.OldPrice.String(), Valid: true}
	}
	return model
}

func addressToString(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
