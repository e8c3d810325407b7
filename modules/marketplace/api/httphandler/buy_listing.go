package httphandler

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
)

type buyListingRequest struct {
	Contract string `params:"contract"`
	TokenID  string `params:"tokenId"`
	Buyer    string `json:"buyer"`
	Payment  string `json:"payment"`
	Seller   string `json:"seller"`
	Standard string `json:"standard"`
}

func (r buyListingRequest) Validate() error {
	var errList []error
	if _, ok := parseAddress(r.Buyer); !ok {
		errList = append(errList, errors.Errorf("'buyer' %q is not a valid address", r.Buyer))
	}
	if _, ok := new(big.Int).SetString(r.Payment, 10); !ok {
		errList = append(errList, errors.Errorf("'payment' %q is not a valid integer", r.Payment))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type buyListingResponse = HttpResponse[eventResult]

func (h *HttpHandler) BuyListing(ctx *fiber.Ctx) (err error) {
	var req buyListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	key, err := resolveListingKey(req.Contract, req.TokenID, req.Seller, req.Standard)
	if err != nil {
		return errors.WithStack(err)
	}
	buyer, _ := parseAddress(req.Buyer)
	payment, _ := new(big.Int).SetString(req.Payment, 10)

	event, err := h.usecase.BuyItem(ctx.UserContext(), buyer, key, payment)
	if err != nil {
		return errors.Wrap(mapLedgerError(err), "error during BuyItem")
	}

	result := mapEventToResult(event)
	resp := buyListingResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
