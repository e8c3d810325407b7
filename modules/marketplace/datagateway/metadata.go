package datagateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

// MetadataResolver fetches off-chain token metadata. Failures are non-fatal
// for callers, which degrade to placeholder metadata.
type MetadataResolver interface {
	ResolveMetadata(ctx context.Context, contract common.Address, tokenID *big.Int) (entity.TokenMetadata, error)
}
