package usecase

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

func (u *Usecase) GetFeeState(ctx context.Context) (entity.FeeState, error) {
	feeState, err := u.ledger.GetFeeState(ctx)
	if err != nil {
		return entity.FeeState{}, errors.Wrap(err, "failed to get fee state")
	}
	return feeState, nil
}

func (u *Usecase) SetFeeRate(ctx context.Context, caller common.Address, rateBps uint16) error {
	if err := u.ledger.SetFeeRate(ctx, caller, rateBps); err != nil {
		return errors.Wrap(err, "failed to set fee rate")
	}
	return nil
}

func (u *Usecase) WithdrawFees(ctx context.Context, caller common.Address) (*big.Int, error) {
	withdrawn, err := u.ledger.WithdrawFees(ctx, caller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to withdraw fees")
	}
	return withdrawn, nil
}
