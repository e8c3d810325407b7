package memory

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// BeginMarketTx returns a staged view of the repository. Writes accumulate in
// the overlay and reach the base only on Commit.
func (r *Repository) BeginMarketTx(ctx context.Context) (datagateway.MarketDataGatewayWithTx, error) {
	return &txRepository{
		base:      r,
		listings:  make(map[string]*entity.Listing),
		owners:    make(map[string]common.Address),
		balances:  make(map[string]*uint64),
		approvals: make(map[string]*bool),
		native:    make(map[common.Address]*big.Int),
	}, nil
}

// txRepository overlays staged writes on a base Repository. Reads consult the
// overlay first. Not safe for concurrent use; the ledger serializes access.
type txRepository struct {
	base *Repository

	listings  map[string]*entity.Listing
	events    []*entity.EventRecord
	chainHead *uint64
	feeState  *entity.FeeState
	owners    map[string]common.Address
	balances  map[string]*uint64
	approvals map[string]*bool
	native    map[common.Address]*big.Int

	done bool
}

func (t *txRepository) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.base.mu.Lock()
	defer t.base.mu.Unlock()
	for key, listing := range t.listings {
		t.base.listings[key] = listing
	}
	t.base.events = append(t.base.events, t.events...)
	if t.chainHead != nil {
		t.base.chainHead = *t.chainHead
	}
	if t.feeState != nil {
		t.base.feeState = *t.feeState
	}
	for key, owner := range t.owners {
		t.base.owners[key] = owner
	}
	for key, balance := range t.balances {
		t.base.balances[key] = *balance
	}
	for key, approved := range t.approvals {
		t.base.approvals[key] = *approved
	}
	for account, balance := range t.native {
		t.base.native[account] = balance
	}
	return nil
}

func (t *txRepository) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

func (t *txRepository) BeginMarketTx(ctx context.Context) (datagateway.MarketDataGatewayWithTx, error) {
	return nil, errors.Wrap(errs.Unsupported, "nested transactions are not supported")
}

func (t *txRepository) GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	if listing, ok := t.listings[key.String()]; ok {
		return copyListing(listing), nil
	}
	return t.base.GetListing(ctx, key)
}

func (t *txRepository) GetActiveListings(ctx context.Context) ([]*entity.Listing, error) {
	listings, err := t.base.GetActiveListings(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.Listing, 0, len(listings))
	for _, listing := range listings {
		if staged, ok := t.listings[listing.Key().String()]; ok {
			if staged.Active {
				result = append(result, copyListing(staged))
			}
			continue
		}
		result = append(result, listing)
	}
	for _, staged := range t.listings {
		if !staged.Active {
			continue
		}
		if _, err := t.base.GetListing(ctx, staged.Key()); errors.Is(err, errs.NotFound) {
			result = append(result, copyListing(staged))
		}
	}
	return result, nil
}

func (t *txRepository) GetFeeState(ctx context.Context) (entity.FeeState, error) {
	if t.feeState != nil {
		return copyFeeState(*t.feeState), nil
	}
	return t.base.GetFeeState(ctx)
}

func (t *txRepository) GetChainHead(ctx context.Context) (uint64, error) {
	if t.chainHead != nil {
		return *t.chainHead, nil
	}
	return t.base.GetChainHead(ctx)
}

func (t *txRepository) GetEvents(ctx context.Context, filter datagateway.EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error) {
	result, err := t.base.GetEvents(ctx, filter, fromHeight, toHeight)
	if err != nil {
		return nil, err
	}
	for _, event := range t.events {
		if event.BlockHeight < fromHeight || event.BlockHeight > toHeight {
			continue
		}
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}
	return result, nil
}

func (t *txRepository) GetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	if owner, ok := t.owners[tokenKey(contract, tokenID)]; ok {
		return owner, nil
	}
	return t.base.GetUniqueOwner(ctx, contract, tokenID)
}

func (t *txRepository) GetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address) (uint64, error) {
	if balance, ok := t.balances[balanceKey(contract, tokenID, account)]; ok {
		return *balance, nil
	}
	return t.base.GetSemiFungibleBalance(ctx, contract, tokenID, account)
}

func (t *txRepository) IsApprovedForMarketplace(ctx context.Context, contract common.Address, owner common.Address) (bool, error) {
	if approved, ok := t.approvals[approvalKey(contract, owner)]; ok {
		return *approved, nil
	}
	return t.base.IsApprovedForMarketplace(ctx, contract, owner)
}

func (t *txRepository) GetNativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	if balance, ok := t.native[account]; ok {
		return new(big.Int).Set(balance), nil
	}
	return t.base.GetNativeBalance(ctx, account)
}

func (t *txRepository) PutListing(ctx context.Context, listing *entity.Listing) error {
	t.listings[listing.Key().String()] = copyListing(listing)
	return nil
}

func (t *txRepository) AppendEvent(ctx context.Context, event *entity.EventRecord) error {
	t.events = append(t.events, event)
	return nil
}

func (t *txRepository) SetChainHead(ctx context.Context, height uint64) error {
	t.chainHead = &height
	return nil
}

func (t *txRepository) SetFeeState(ctx context.Context, state entity.FeeState) error {
	staged := copyFeeState(state)
	t.feeState = &staged
	return nil
}

func (t *txRepository) SetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int, owner common.Address) error {
	t.owners[tokenKey(contract, tokenID)] = owner
	return nil
}

func (t *txRepository) SetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address, balance uint64) error {
	t.balances[balanceKey(contract, tokenID, account)] = &balance
	return nil
}

func (t *txRepository) SetApprovalForMarketplace(ctx context.Context, contract common.Address, owner common.Address, approved bool) error {
	t.approvals[approvalKey(contract, owner)] = &approved
	return nil
}

func (t *txRepository) SetNativeBalance(ctx context.Context, account common.Address, balance *big.Int) error {
	t.native[account] = new(big.Int).Set(balance)
	return nil
}
