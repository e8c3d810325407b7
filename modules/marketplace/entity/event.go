package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventType enumerates the facts a settlement transaction can emit.
type EventType string

const (
	EventTypeListed    EventType = "listed"
	EventTypeRepriced  EventType = "repriced"
	EventTypeCancelled EventType = "cancelled"
	EventTypeSold      EventType = "sold"
)

// EventRecord is an immutable fact appended by a successful ledger
// transaction. Records are totally ordered by (BlockHeight, LogIndex) and are
// the only historical record of the marketplace.
type EventRecord struct {
	Type     EventType
	Seller   common.Address
	Buyer    common.Address // set for Sold only
	Contract common.Address
	TokenID  *big.Int
	Price    *big.Int
	OldPrice *big.Int // set for Repriced only
	Amount   uint64
	Standard TokenStandard

	BlockHeight uint64
	LogIndex    uint32
	TxHash      common.Hash
}

// Key returns the listing identity the event refers to.
func (e *EventRecord) Key() ListingKey {
	if e.Standard == TokenStandardSemiFungible {
		return NewSemiFungibleKey(e.Contract, e.TokenID, e.Seller)
	}
	return NewUniqueKey(e.Contract, e.TokenID)
}

// Before reports whether e was emitted before other in the ledger's total order.
func (e *EventRecord) Before(other *EventRecord) bool {
	if e.BlockHeight != other.BlockHeight {
		return e.BlockHeight < other.BlockHeight
	}
	return e.LogIndex < other.LogIndex
}
