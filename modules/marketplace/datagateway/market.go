package datagateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

type MarketDataGateway interface {
	MarketReaderDataGateway
	MarketWriterDataGateway

	// BeginMarketTx returns a new MarketDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginMarketTx(ctx context.Context) (MarketDataGatewayWithTx, error)
}

type MarketDataGatewayWithTx interface {
	MarketDataGateway
	Tx
}

type MarketReaderDataGateway interface {
	// GetListing returns the listing for the given key. Returns errs.NotFound if no listing exists for the key, active or not.
	GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error)
	// GetActiveListings returns all listings with Active == true, in no particular order.
	GetActiveListings(ctx context.Context) ([]*entity.Listing, error)
	GetFeeState(ctx context.Context) (entity.FeeState, error)
	GetChainHead(ctx context.Context) (uint64, error)
	// GetEvents returns events with fromHeight <= BlockHeight <= toHeight matching the filter,
	// ordered by (BlockHeight, LogIndex) ascending. Returns ErrRangeTooLarge if the range
	// exceeds the gateway's configured cap.
	GetEvents(ctx context.Context, filter EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error)

	// GetUniqueOwner returns the owner of an ERC-721 token. Returns errs.NotFound for unminted tokens.
	GetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error)
	// GetSemiFungibleBalance returns an account's ERC-1155 balance for a token. Zero if never minted.
	GetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address) (uint64, error)
	IsApprovedForMarketplace(ctx context.Context, contract common.Address, owner common.Address) (bool, error)
	GetNativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

type MarketWriterDataGateway interface {
	PutListing(ctx context.Context, listing *entity.Listing) error
	AppendEvent(ctx context.Context, event *entity.EventRecord) error
	SetChainHead(ctx context.Context, height uint64) error
	SetFeeState(ctx context.Context, state entity.FeeState) error

	SetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int, owner common.Address) error
	SetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address, balance uint64) error
	SetApprovalForMarketplace(ctx context.Context, contract common.Address, owner common.Address, approved bool) error
	SetNativeBalance(ctx context.Context, account common.Address, balance *big.Int) error
}

// EventFilter narrows GetEvents results. Zero-value fields are ignored.
type EventFilter struct {
	Types    []entity.EventType
	Contract common.Address
	TokenID  *big.Int
	Seller   common.Address
	Buyer    common.Address
}
