package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/shopspring/decimal"
)

type feeStateResult struct {
	AccumulatedFees        string          `json:"accumulatedFees"`
	AccumulatedFeesDecimal decimal.Decimal `json:"accumulatedFeesDecimal"`
	FeeRateBps             uint16          `json:"feeRateBps"`
}

type getFeeStateResponse = HttpResponse[feeStateResult]

func (h *HttpHandler) GetFeeState(ctx *fiber.Ctx) (err error) {
	feeState, err := h.usecase.GetFeeState(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetFeeState")
	}

	resp := getFeeStateResponse{
		Result: &feeStateResult{
			AccumulatedFees:        feeState.AccumulatedFees.String(),
			AccumulatedFeesDecimal: decimal.NewFromBigInt(feeState.AccumulatedFees, -nativeDecimals),
			FeeRateBps:             feeState.FeeRateBps,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}

type setFeeRateRequest struct {
	Caller  string `json:"caller"`
	RateBps uint16 `json:"rateBps"`
}

type setFeeRateResult struct {
	FeeRateBps uint16 `json:"feeRateBps"`
}

type setFeeRateResponse = HttpResponse[setFeeRateResult]

func (h *HttpHandler) SetFeeRate(ctx *fiber.Ctx) (err error) {
	var req setFeeRateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		return errs.NewPublicError("'caller' is not a valid address")
	}

	if err := h.usecase.SetFeeRate(ctx.UserContext(), caller, req.RateBps); err != nil {
		return errors.Wrap(mapLedgerError(err), "error during SetFeeRate")
	}

	resp := setFeeRateResponse{
		Result: &setFeeRateResult{FeeRateBps: req.RateBps},
	}
	return errors.WithStack(ctx.JSON(resp))
}

type withdrawFeesRequest struct {
	Caller string `json:"caller"`
}

type withdrawFeesResult struct {
	Withdrawn        string          `json:"withdrawn"`
	WithdrawnDecimal decimal.Decimal `json:"withdrawnDecimal"`
}

type withdrawFeesResponse = HttpResponse[withdrawFeesResult]

func (h *HttpHandler) WithdrawFees(ctx *fiber.Ctx) (err error) {
	var req withdrawFeesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		return errs.NewPublicError("'caller' is not a valid address")
	}

	withdrawn, err := h.usecase.WithdrawFees(ctx.UserContext(), caller)
	if err != nil {
		return errors.Wrap(mapLedgerError(err), "error during WithdrawFees")
	}

	resp := withdrawFeesResponse{
		Result: &withdrawFeesResult{
			Withdrawn:        withdrawn.String(),
			WithdrawnDecimal: decimal.NewFromBigInt(withdrawn, -nativeDecimals),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
