package memory

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/datagateway"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// Repository is an in-memory MarketDataGateway. It backs tests and the
// "memory" database mode, where the whole chain lives in process.
//
// A non-zero maxFilterRange caps the block span of a single GetEvents call,
// imitating the range limits real read providers impose.
type Repository struct {
	mu             sync.RWMutex
	maxFilterRange uint64

	listings  map[string]*entity.Listing
	events    []*entity.EventRecord
	chainHead uint64
	feeState  entity.FeeState
	owners    map[string]common.Address
	balances  map[string]uint64
	approvals map[string]bool
	native    map[common.Address]*big.Int
}

func NewRepository(maxFilterRange uint64) *Repository {
	return &Repository{
		maxFilterRange: maxFilterRange,
		listings:       make(map[string]*entity.Listing),
		feeState: entity.FeeState{
			AccumulatedFees: big.NewInt(0),
			FeeRateBps:      entity.DefaultFeeRateBps,
		},
		owners:    make(map[string]common.Address),
		balances:  make(map[string]uint64),
		approvals: make(map[string]bool),
		native:    make(map[common.Address]*big.Int),
	}
}

func (r *Repository) GetListing(ctx context.Context, key entity.ListingKey) (*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.listings[key.String()]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return copyListing(listing), nil
}

func (r *Repository) GetActiveListings(ctx context.Context) ([]*entity.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*entity.Listing
	for _, listing := range r.listings {
		if listing.Active {
			result = append(result, copyListing(listing))
		}
	}
	return result, nil
}

func (r *Repository) GetFeeState(ctx context.Context) (entity.FeeState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyFeeState(r.feeState), nil
}

func (r *Repository) GetChainHead(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chainHead, nil
}

func (r *Repository) GetEvents(ctx context.Context, filter datagateway.EventFilter, fromHeight, toHeight uint64) ([]*entity.EventRecord, error) {
	if fromHeight > toHeight {
		return nil, errors.Wrapf(errs.InvalidArgument, "fromHeight %d is greater than toHeight %d", fromHeight, toHeight)
	}
	if r.maxFilterRange > 0 && toHeight-fromHeight+1 > r.maxFilterRange {
		return nil, errors.Wrapf(datagateway.ErrRangeTooLarge, "range %d exceeds maximum %d", toHeight-fromHeight+1, r.maxFilterRange)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*entity.EventRecord
	for _, event := range r.events {
		if event.BlockHeight < fromHeight || event.BlockHeight > toHeight {
			continue
		}
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}
	return result, nil
}

func (r *Repository) GetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[tokenKey(contract, tokenID)]
	if !ok {
		return common.Address{}, errors.WithStack(errs.NotFound)
	}
	return owner, nil
}

func (r *Repository) GetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[balanceKey(contract, tokenID, account)], nil
}

func (r *Repository) IsApprovedForMarketplace(ctx context.Context, contract common.Address, owner common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approvals[approvalKey(contract, owner)], nil
}

func (r *Repository) GetNativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	balance, ok := r.native[account]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

func (r *Repository) PutListing(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.Key().String()] = copyListing(listing)
	return nil
}

func (r *Repository) AppendEvent(ctx context.Context, event *entity.EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Repository) SetChainHead(ctx context.Context, height uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chainHead = height
	return nil
}

func (r *Repository) SetFeeState(ctx context.Context, state entity.FeeState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeState = copyFeeState(state)
	return nil
}

func (r *Repository) SetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int, owner common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[tokenKey(contract, tokenID)] = owner
	return nil
}

func (r *Repository) SetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address, balance uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(contract, tokenID, account)] = balance
	return nil
}

func (r *Repository) SetApprovalForMarketplace(ctx context.Context, contract common.Address, owner common.Address, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals[approvalKey(contract, owner)] = approved
	return nil
}

func (r *Repository) SetNativeBalance(ctx context.Context, account common.Address, balance *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.native[account] = new(big.Int).Set(balance)
	return nil
}

func matchesFilter(event *entity.EventRecord, filter datagateway.EventFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Contract != (common.Address{}) && event.Contract != filter.Contract {
		return false
	}
	if filter.TokenID != nil && event.TokenID.Cmp(filter.TokenID) != 0 {
		return false
	}
	if filter.Seller != (common.Address{}) && event.Seller != filter.Seller {
		return false
	}
	if filter.Buyer != (common.Address{}) && event.Buyer != filter.Buyer {
		return false
	}
	return true
}

func tokenKey(contract common.Address, tokenID *big.Int) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(contract.Hex()), tokenID.String())
}

func balanceKey(contract common.Address, tokenID *big.Int, account common.Address) string {
	return fmt.Sprintf("%s:%s:%s", strings.ToLower(contract.Hex()), tokenID.String(), strings.ToLower(account.Hex()))
}

func approvalKey(contract common.Address, owner common.Address) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(contract.Hex()), strings.ToLower(owner.Hex()))
}

func copyListing(listing *entity.Listing) *entity.Listing {
	out := *listing
	if listing.Price != nil {
		out.Price = new(big.Int).Set(listing.Price)
	}
	if listing.TokenID != nil {
		out.TokenID = new(big.Int).Set(listing.TokenID)
	}
	return &out
}

func copyFeeState(state entity.FeeState) entity.FeeState {
	out := state
	if state.AccumulatedFees != nil {
		out.AccumulatedFees = new(big.Int).Set(state.AccumulatedFees)
	}
	return out
}
