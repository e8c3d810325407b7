package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
)

type getListingRequest struct {
	Contract string `params:"contract"`
	TokenID  string `params:"tokenId"`
	Seller   string `query:"seller"`
	Standard string `query:"standard"`
}

type getListingResponse = HttpResponse[listingResult]

func (h *HttpHandler) GetListing(ctx *fiber.Ctx) (err error) {
	var req getListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	key, err := resolveListingKey(req.Contract, req.TokenID, req.Seller, req.Standard)
	if err != nil {
		return errors.WithStack(err)
	}

	listing, err := h.usecase.GetListing(ctx.UserContext(), key)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("listing not found")
		}
		return errors.Wrap(err, "error during GetListing")
	}

	result := mapListingToResult(listing)
	resp := getListingResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
