package httphandler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/reconciler"
	"github.com/shopspring/decimal"
)

// nativeDecimals is the smallest-unit exponent of the native currency.
const nativeDecimals = 18

type listingResult struct {
	Seller       string          `json:"seller"`
	Contract     string          `json:"contract"`
	TokenID      string          `json:"tokenId"`
	Price        string          `json:"price"`
	PriceDecimal decimal.Decimal `json:"priceDecimal"`
	Amount       uint64          `json:"amount"`
	Standard     string          `json:"standard"`
	Active       bool            `json:"active"`
}

type activeListingResult struct {
	listingResult
	Name       string             `json:"name"`
	Image      string             `json:"image,omitempty"`
	Attributes []entity.Attribute `json:"attributes,omitempty"`
}

type eventResult struct {
	Type        string `json:"type"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer,omitempty"`
	Contract    string `json:"contract"`
	TokenID     string `json:"tokenId"`
	Price       string `json:"price"`
	OldPrice    string `json:"oldPrice,omitempty"`
	Amount      uint64 `json:"amount"`
	Standard    string `json:"standard"`
	BlockHeight uint64 `json:"blockHeight"`
	LogIndex    uint32 `json:"logIndex"`
	TxHash      string `json:"txHash"`
}

type activityResult struct {
	Kind         string `json:"kind"`
	Contract     string `json:"contract"`
	TokenID      string `json:"tokenId"`
	Price        string `json:"price"`
	Amount       uint64 `json:"amount"`
	Counterparty string `json:"counterparty,omitempty"`
	Standard     string `json:"standard"`
	BlockHeight  uint64 `json:"blockHeight"`
	TxHash       string `json:"txHash"`
}

func mapListingToResult(listing *entity.Listing) listingResult {
	return listingResult{
		Seller:       strings.ToLower(listing.Seller.Hex()),
		Contract:     strings.ToLower(listing.Contract.Hex()),
		TokenID:      listing.TokenID.String(),
		Price:        listing.Price.String(),
		PriceDecimal: decimal.NewFromBigInt(listing.Price, -nativeDecimals),
		Amount:       listing.Amount,
		Standard:     string(listing.Standard),
		Active:       listing.Active,
	}
}

func mapActiveListingToResult(listing *reconciler.ActiveListing) activeListingResult {
	return activeListingResult{
		listingResult: mapListingToResult(listing.Listing),
		Name:          listing.Metadata.Name,
		Image:         listing.Metadata.Image,
		Attributes:    listing.Metadata.Attributes,
	}
}

func mapEventToResult(event *entity.EventRecord) eventResult {
	result := eventResult{
		Type:        string(event.Type),
		Seller:      strings.ToLower(event.Seller.Hex()),
		Contract:    strings.ToLower(event.Contract.Hex()),
		TokenID:     event.TokenID.String(),
		Price:       event.Price.String(),
		Amount:      event.Amount,
		Standard:    string(event.Standard),
		BlockHeight: event.BlockHeight,
		LogIndex:    event.LogIndex,
		TxHash:      event.TxHash.Hex(),
	}
	if event.Buyer != (common.Address{}) {
		result.Buyer = strings.ToLower(event.Buyer.Hex())
	}
	if event.OldPrice != nil {
		result.OldPrice = event.OldPrice.String()
	}
	return result
}

func mapActivityToResult(activity *entity.AccountActivity) activityResult {
	result := activityResult{
		Kind:        string(activity.Kind),
		Contract:    strings.ToLower(activity.Contract.Hex()),
		TokenID:     activity.TokenID.String(),
		Price:       activity.Price.String(),
		Amount:      activity.Amount,
		Standard:    string(activity.Standard),
		BlockHeight: activity.BlockHeight,
		TxHash:      activity.TxHash.Hex(),
	}
	if activity.Counterparty != (common.Address{}) {
		result.Counterparty = strings.ToLower(activity.Counterparty.Hex())
	}
	return result
}
