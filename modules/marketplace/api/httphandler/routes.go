package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/market")

	r.Get("/listings", h.GetActiveListings)
	r.Post("/listings", h.CreateListing)
	r.Get("/listings/:contract/:tokenId", h.GetListing)
	r.Post("/listings/:contract/:tokenId/buy", h.BuyListing)
	r.Post("/listings/:contract/:tokenId/cancel", h.CancelListing)
	r.Post("/listings/:contract/:tokenId/price", h.RepriceListing)
	r.Get("/history/:account", h.GetAccountHistory)
	r.Get("/fees", h.GetFeeState)
	r.Post("/fees/rate", h.SetFeeRate)
	r.Post("/fees/withdraw", h.WithdrawFees)
	return nil
}
