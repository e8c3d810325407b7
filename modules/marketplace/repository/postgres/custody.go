package postgres

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/openmarket-network/market-indexer/common/errs"
)

func (r *Repository) GetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	var owner string
	err := r.q.QueryRow(ctx, `
		SELECT owner FROM market_token_owners WHERE contract = $1 AND token_id = $2
	`, addressToString(contract), tokenID.String()).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Address{}, errors.WithStack(errs.NotFound)
		}
		return common.Address{}, errors.Wrap(err, "error during query")
	}
	return common.HexToAddress(owner), nil
}

func (r *Repository) SetUniqueOwner(ctx context.Context, contract common.Address, tokenID *big.Int, owner common.Address) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_token_owners (contract, token_id, owner) VALUES ($1, $2, $3)
		ON CONFLICT (contract, token_id) DO UPDATE SET owner = EXCLUDED.owner
	`, addressToString(contract), tokenID.String(), addressToString(owner))
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address) (uint64, error) {
	var balance int64
	err := r.q.QueryRow(ctx, `
		SELECT balance FROM market_token_balances WHERE contract = $1 AND token_id = $2 AND account = $3
	`, addressToString(contract), tokenID.String(), addressToString(account)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(balance), nil
}

func (r *Repository) SetSemiFungibleBalance(ctx context.Context, contract common.Address, tokenID *big.Int, account common.Address, balance uint64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_token_balances (contract, token_id, account, balance) VALUES ($1, $2, $3, $4)
		ON CONFLICT (contract, token_id, account) DO UPDATE SET balance = EXCLUDED.balance
	`, addressToString(contract), tokenID.String(), addressToString(account), int64(balance))
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) IsApprovedForMarketplace(ctx context.Context, contract common.Address, owner common.Address) (bool, error) {
	var approved bool
	err := r.q.QueryRow(ctx, `
		SELECT approved FROM market_approvals WHERE contract = $1 AND owner = $2
	`, addressToString(contract), addressToString(owner)).Scan(&approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "error during query")
	}
	return approved, nil
}

func (r *Repository) SetApprovalForMarketplace(ctx context.Context, contract common.Address, owner common.Address, approved bool) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_approvals (contract, owner, approved) VALUES ($1, $2, $3)
		ON CONFLICT (contract, owner) DO UPDATE SET approved = EXCLUDED.approved
	`, addressToString(contract), addressToString(owner), approved)
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetNativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var raw string
	err := r.q.QueryRow(ctx, `
		SELECT balance FROM market_native_balances WHERE account = $1
	`, addressToString(account)).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return big.NewInt(0), nil
		}
		return nil, errors.Wrap(err, "error during query")
	}
	balance, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.Errorf("failed to parse balance %q", raw)
	}
	return balance, nil
}

func (r *Repository) SetNativeBalance(ctx context.Context, account common.Address, balance *big.Int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO market_native_balances (account, balance) VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE SET balance = EXCLUDED.balance
	`, addressToString(account), balance.String())
	if err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
