package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/usecase"
)

type getActiveListingsRequest struct {
	Contract string `query:"contract"`
	TokenID  string `query:"tokenId"`
	Seller   string `query:"seller"`
}

func (r getActiveListingsRequest) Validate() error {
	var errList []error
	if r.Contract != "" {
		if _, ok := parseAddress(r.Contract); !ok {
			errList = append(errList, errors.Errorf("'contract' %q is not a valid address", r.Contract))
		}
	}
	if r.TokenID != "" {
		if _, ok := parseTokenID(r.TokenID); !ok {
			errList = append(errList, errors.Errorf("'tokenId' %q is not a valid token id", r.TokenID))
		}
	}
	if r.Seller != "" {
		if _, ok := parseAddress(r.Seller); !ok {
			errList = append(errList, errors.Errorf("'seller' %q is not a valid address", r.Seller))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getActiveListingsResult struct {
	List []activeListingResult `json:"list"`
}

type getActiveListingsResponse = HttpResponse[getActiveListingsResult]

func (h *HttpHandler) GetActiveListings(ctx *fiber.Ctx) (err error) {
	var req getActiveListingsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	var filter usecase.ListingsFilter
	filter.Contract, _ = parseAddress(req.Contract)
	filter.Seller, _ = parseAddress(req.Seller)
	if req.TokenID != "" {
		filter.TokenID, _ = parseTokenID(req.TokenID)
	}

	listings, err := h.usecase.GetActiveListings(ctx.UserContext(), filter)
	if err != nil {
		return errors.Wrap(mapScanError(err), "error during GetActiveListings")
	}

	list := make([]activeListingResult, 0, len(listings))
	for _, listing := range listings {
		list = append(list, mapActiveListingToResult(listing))
	}

	resp := getActiveListingsResponse{
		Result: &getActiveListingsResult{List: list},
	}
	return errors.WithStack(ctx.JSON(resp))
}
