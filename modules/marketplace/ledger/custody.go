package ledger

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/common/errs"
)

// Custody operations mirror the token contracts the marketplace settles
// against. They exist so a deployment without an external chain (the memory
// repository) can mint assets, grant approvals, and fund accounts.

// MintUnique assigns a fresh Unique token to an owner. Fails if the token was
// already minted.
func (l *Ledger) MintUnique(ctx context.Context, contract common.Address, tokenID *big.Int, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.GetUniqueOwner(ctx, contract, tokenID); err == nil {
		return errors.Wrap(errs.InvalidArgument, "token already minted")
	} else if !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get token owner")
	}
	if err := tx.SetUniqueOwner(ctx, contract, tokenID, to); err != nil {
		return errors.Wrap(err, "failed to set token owner")
	}
	return l.commit(ctx, tx, nil)
}

// MintSemiFungible credits an owner's balance of a SemiFungible token.
func (l *Ledger) MintSemiFungible(ctx context.Context, contract common.Address, tokenID *big.Int, to common.Address, amount uint64) error {
	if amount == 0 {
		return errors.WithStack(ErrAmountCannotBeZero)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := tx.GetSemiFungibleBalance(ctx, contract, tokenID, to)
	if err != nil {
		return errors.Wrap(err, "failed to get token balance")
	}
	if err := tx.SetSemiFungibleBalance(ctx, contract, tokenID, to, balance+amount); err != nil {
		return errors.Wrap(err, "failed to set token balance")
	}
	return l.commit(ctx, tx, nil)
}

// SetApprovalForAll grants or revokes the marketplace's permission to move
// the caller's tokens in a contract.
func (l *Ledger) SetApprovalForAll(ctx context.Context, caller common.Address, contract common.Address, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SetApprovalForMarketplace(ctx, contract, caller, approved); err != nil {
		return errors.Wrap(err, "failed to set approval")
	}
	return l.commit(ctx, tx, nil)
}

// Deposit credits an account's native balance.
func (l *Ledger) Deposit(ctx context.Context, account common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(errs.InvalidArgument, "deposit amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.dg.BeginMarketTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := tx.GetNativeBalance(ctx, account)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if err := tx.SetNativeBalance(ctx, account, new(big.Int).Add(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return l.commit(ctx, tx, nil)
}
