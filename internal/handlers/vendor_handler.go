package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"planify/internal/auth"
	"planify/internal/services"
	"planify/models"
)

type VendorHandler struct {
	app            *pocketbase.PocketBase
	bookingService *services.BookingService
	ledger         services.Ledger
}

func NewVendorHandler(app *pocketbase.PocketBase, bookingService *services.BookingService, ledger services.Ledger) *VendorHandler {
	return &VendorHandler{
		app:            app,
		bookingService: bookingService,
		ledger:         ledger,
	}
}

type vendorAction func(ctx context.Context, vendor *auth.Identity, bookingID string) (*models.Booking, error)

func (h *VendorHandler) transition(e *core.RequestEvent, action vendorAction) error {
	identity, err := auth.Require(e, models.RoleVendor)
	if err != nil {
		return apiError(err)
	}

	booking, err := action(e.Request.Context(), identity, e.Request.PathValue("bookingId"))
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, booking)
}

// ApproveBooking - POST /api/v1/vendor/bookings/{bookingId}/approve
func (h *VendorHandler) ApproveBooking(e *core.RequestEvent) error {
	return h.transition(e, h.bookingService.Approve)
}

// RejectBooking - POST /api/v1/vendor/bookings/{bookingId}/reject
func (h *VendorHandler) RejectBooking(e *core.RequestEvent) error {
	return h.transition(e, h.bookingService.Reject)
}

// StartBooking - POST /api/v1/vendor/bookings/{bookingId}/start
func (h *VendorHandler) StartBooking(e *core.RequestEvent) error {
	return h.transition(e, h.bookingService.Start)
}

// CompleteBooking - POST /api/v1/vendor/bookings/{bookingId}/complete
func (h *VendorHandler) CompleteBooking(e *core.RequestEvent) error {
	return h.transition(e, h.bookingService.Complete)
}

// GetVendorBookings - GET /api/v1/vendor/bookings
func (h *VendorHandler) GetVendorBookings(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleVendor)
	if err != nil {
		return apiError(err)
	}

	bookings, err := h.ledger.BookingsForVendor(e.Request.Context(), identity.ID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// GetVendorEarnings - GET /api/v1/vendor/earnings
func (h *VendorHandler) GetVendorEarnings(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleVendor)
	if err != nil {
		return apiError(err)
	}

	earnings, err := h.ledger.EarningsForVendor(e.Request.Context(), identity.ID)
	if err != nil {
		return apiError(err)
	}

	total := decimal.Zero
	for _, earning := range earnings {
		total = total.Add(earning.NetAmount)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"earnings":  earnings,
		"total_net": total,
	})
}
