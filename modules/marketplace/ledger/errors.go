package ledger

import "github.com/openmarket-network/market-indexer/common/errs"

// Precondition violations. These are surfaced to the caller verbatim and are
// never retried: an invalid operation cannot become valid by retrying.
var (
	ErrNotTokenOwner             = errs.ErrorKind("caller does not own the token")
	ErrNotApprovedForMarketplace = errs.ErrorKind("marketplace is not approved to transfer the token")
	ErrPriceCannotBeZero         = errs.ErrorKind("price cannot be zero")
	ErrAmountCannotBeZero        = errs.ErrorKind("amount cannot be zero")
	ErrListingNotActive          = errs.ErrorKind("listing is not active")
	ErrNotSeller                 = errs.ErrorKind("caller is not the seller of the listing")
	ErrInsufficientPayment       = errs.ErrorKind("payment is less than the listing price")
	ErrInsufficientBalance       = errs.ErrorKind("caller balance is insufficient")
	ErrFeeTooHigh                = errs.ErrorKind("fee rate exceeds the maximum")
	ErrNoFeesToWithdraw          = errs.ErrorKind("no accumulated fees to withdraw")
	ErrUnsupportedTokenType      = errs.ErrorKind("unsupported token standard")
	ErrNotOperator               = errs.ErrorKind("caller is not the marketplace operator")
)
