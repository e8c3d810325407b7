package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
)

type getAccountHistoryRequest struct {
	Account string `params:"account"`
}

type getAccountHistoryResult struct {
	List []activityResult `json:"list"`
}

type getAccountHistoryResponse = HttpResponse[getAccountHistoryResult]

func (h *HttpHandler) GetAccountHistory(ctx *fiber.Ctx) (err error) {
	var req getAccountHistoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		return errs.NewPublicError("'account' is not a valid address")
	}

	activities, err := h.usecase.GetAccountHistory(ctx.UserContext(), account)
	if err != nil {
		return errors.Wrap(mapScanError(err), "error during GetAccountHistory")
	}

	list := make([]activityResult, 0, len(activities))
	for _, activity := range activities {
		list = append(list, mapActivityToResult(activity))
	}

	resp := getAccountHistoryResponse{
		Result: &getAccountHistoryResult{List: list},
	}
	return errors.WithStack(ctx.JSON(resp))
}
