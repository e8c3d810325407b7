package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
)

type cancelListingRequest struct {
	Contract string `params:"contract"`
	TokenID  string `params:"tokenId"`
	Caller   string `json:"caller"`
	Standard string `json:"standard"`
}

func (r cancelListingRequest) Validate() error {
	var errList []error
	if _, ok := parseAddress(r.Caller); !ok {
		errList = append(errList, errors.Errorf("'caller' %q is not a valid address", r.Caller))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type cancelListingResponse = HttpResponse[eventResult]

func (h *HttpHandler) CancelListing(ctx *fiber.Ctx) (err error) {
	var req cancelListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	// SemiFungible listings are seller-scoped and only the seller may cancel,
	// so the caller's own address scopes the key.
	key, err := resolveListingKey(req.Contract, req.TokenID, req.Caller, req.Standard)
	if err != nil {
		return errors.WithStack(err)
	}
	caller, _ := parseAddress(req.Caller)

	event, err := h.usecase.CancelListing(ctx.UserContext(), caller, key)
	if err != nil {
		return errors.Wrap(mapLedgerError(err), "error during CancelListing")
	}

	result := mapEventToResult(event)
	resp := cancelListingResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
