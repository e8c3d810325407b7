package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/ledger"
	"github.com/openmarket-network/market-indexer/modules/marketplace/reconciler"
)

type AccountProjector interface {
	AccountHistory(ctx context.Context, account common.Address) ([]*entity.AccountActivity, error)
}

// Usecase is the client facade: writes go to the settlement ledger, reads go
// through the reconciler or the projector.
type Usecase struct {
	ledger     *ledger.Ledger
	reconciler *reconciler.Reconciler
	projector  AccountProjector
}

func New(l *ledger.Ledger, r *reconciler.Reconciler, p AccountProjector) *Usecase {
	return &Usecase{
		ledger:     l,
		reconciler: r,
		projector:  p,
	}
}
