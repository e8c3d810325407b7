package httphandler

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
	"github.com/openmarket-network/market-indexer/modules/marketplace/ledger"
	"github.com/openmarket-network/market-indexer/modules/marketplace/reconciler"
	"github.com/openmarket-network/market-indexer/modules/marketplace/scanner"
	"github.com/openmarket-network/market-indexer/modules/marketplace/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func parseAddress(raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func parseTokenID(raw string) (*big.Int, bool) {
	tokenID, ok := new(big.Int).SetString(raw, 10)
	if !ok || tokenID.Sign() < 0 {
		return nil, false
	}
	return tokenID, true
}

func parseStandard(raw string) (entity.TokenStandard, bool) {
	standard := entity.TokenStandard(strings.ToLower(raw))
	if raw == "" {
		return entity.TokenStandardUnique, true
	}
	if !standard.IsValid() {
		return "", false
	}
	return standard, true
}

// resolveListingKey builds a listing identity from request values. The seller
// is required for SemiFungible listings, which are seller-scoped.
func resolveListingKey(contractRaw, tokenIDRaw, sellerRaw, standardRaw string) (entity.ListingKey, error) {
	contract, ok := parseAddress(contractRaw)
	if !ok {
		return entity.ListingKey{}, errs.NewPublicError("'contract' is not a valid address")
	}
	tokenID, ok := parseTokenID(tokenIDRaw)
	if !ok {
		return entity.ListingKey{}, errs.NewPublicError("'tokenId' is not a valid token id")
	}
	standard, ok := parseStandard(standardRaw)
	if !ok {
		return entity.ListingKey{}, errs.NewPublicError("'standard' must be erc721 or erc1155")
	}
	if standard == entity.TokenStandardSemiFungible {
		seller, ok := parseAddress(sellerRaw)
		if !ok {
			return entity.ListingKey{}, errs.NewPublicError("'seller' is required for erc1155 listings")
		}
		return entity.NewSemiFungibleKey(contract, tokenID, seller), nil
	}
	return entity.NewUniqueKey(contract, tokenID), nil
}

// preconditionKinds are surfaced to the caller as-is. They describe invalid
// operations, not system failures.
var preconditionKinds = []errs.ErrorKind{
	ledger.ErrNotTokenOwner,
	ledger.ErrNotApprovedForMarketplace,
	ledger.ErrPriceCannotBeZero,
	ledger.ErrAmountCannotBeZero,
	ledger.ErrListingNotActive,
	ledger.ErrNotSeller,
	ledger.ErrInsufficientPayment,
	ledger.ErrInsufficientBalance,
	ledger.ErrFeeTooHigh,
	ledger.ErrNoFeesToWithdraw,
	ledger.ErrUnsupportedTokenType,
	ledger.ErrNotOperator,
}

func mapLedgerError(err error) error {
	for _, kind := range preconditionKinds {
		if errors.Is(err, kind) {
			return errs.NewPublicError(kind.Error())
		}
	}
	return err
}

// mapScanError hides transient read-path failures behind a retryable status.
func mapScanError(err error) error {
	if errors.Is(err, scanner.ErrScanFailed) || errors.Is(err, scanner.ErrScanTimeout) || errors.Is(err, reconciler.ErrVerificationTimeout) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "unable to load listings, please retry")
	}
	return err
}
