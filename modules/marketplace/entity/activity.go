package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type ActivityKind string

const (
	ActivityListed    ActivityKind = "listed"
	ActivitySold      ActivityKind = "sold"
	ActivityBought    ActivityKind = "bought"
	ActivityCancelled ActivityKind = "cancelled"
)

// AccountActivity is one row of an account's trading history, derived from an
// event record and classified relative to the account.
type AccountActivity struct {
	Kind         ActivityKind
	Contract     common.Address
	TokenID      *big.Int
	Price        *big.Int
	Amount       uint64
	Counterparty common.Address
	Standard     TokenStandard
	BlockHeight  uint64
	LogIndex     uint32
	TxHash       common.Hash
}
