package httphandler

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
)

type repriceListingRequest struct {
	Contract string `params:"contract"`
	TokenID  string `params:"tokenId"`
	Caller   string `json:"caller"`
	NewPrice string `json:"newPrice"`
	Standard string `json:"standard"`
}

func (r repriceListingRequest) Validate() error {
	var errList []error
	if _, ok := parseAddress(r.Caller); !ok {
		errList = append(errList, errors.Errorf("'caller' %q is not a valid address", r.Caller))
	}
	if _, ok := new(big.Int).SetString(r.NewPrice, 10); !ok {
		errList = append(errList, errors.Errorf("'newPrice' %q is not a valid integer", r.NewPrice))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type repriceListingResponse = HttpResponse[eventResult]

func (h *HttpHandler) RepriceListing(ctx *fiber.Ctx) (err error) {
	var req repriceListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	key, err := resolveListingKey(req.Contract, req.TokenID, req.Caller, req.Standard)
	if err != nil {
		return errors.WithStack(err)
	}
	caller, _ := parseAddress(req.Caller)
	newPrice, _ := new(big.Int).SetString(req.NewPrice, 10)

	event, err := h.usecase.RepriceListing(ctx.UserContext(), caller, key, newPrice)
	if err != nil {
		return errors.Wrap(mapLedgerError(err), "error during RepriceListing")
	}

	result := mapEventToResult(event)
	resp := repriceListingResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
