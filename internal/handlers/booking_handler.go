package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"planify/internal/auth"
	"planify/internal/services"
	"planify/models"
)

type BookingHandler struct {
	app            *pocketbase.PocketBase
	bookingService *services.BookingService
	ledger         services.Ledger
}

func NewBookingHandler(app *pocketbase.PocketBase, bookingService *services.BookingService, ledger services.Ledger) *BookingHandler {
	return &BookingHandler{
		app:            app,
		bookingService: bookingService,
		ledger:         ledger,
	}
}

// CreateBooking - POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleCustomer)
	if err != nil {
		return apiError(err)
	}

	var req services.CreateBookingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.EventID == "" || req.StoreID == "" {
		return apis.NewBadRequestError("event_id and store_id are required", nil)
	}

	booking, err := h.bookingService.CreateBooking(e.Request.Context(), identity, &req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, booking)
}

// StartAdvancePayment - POST /api/v1/bookings/{bookingId}/advance-order
func (h *BookingHandler) StartAdvancePayment(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleCustomer)
	if err != nil {
		return apiError(err)
	}

	bookingID := e.Request.PathValue("bookingId")

	order, err := h.bookingService.StartAdvancePayment(e.Request.Context(), identity, bookingID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, order)
}

// CancelBooking - POST /api/v1/bookings/{bookingId}/cancel
func (h *BookingHandler) CancelBooking(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleCustomer)
	if err != nil {
		return apiError(err)
	}

	booking, err := h.bookingService.CancelByCustomer(e.Request.Context(), identity, e.Request.PathValue("bookingId"))
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, booking)
}

// GetMyBookings - GET /api/v1/bookings
func (h *BookingHandler) GetMyBookings(e *core.RequestEvent) error {
	identity, err := auth.Require(e, models.RoleCustomer)
	if err != nil {
		return apiError(err)
	}

	bookings, err := h.ledger.BookingsForCustomer(e.Request.Context(), identity.ID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// GetBooking - GET /api/v1/bookings/{bookingId}
func (h *BookingHandler) GetBooking(e *core.RequestEvent) error {
	identity, err := auth.FromRequest(e)
	if err != nil {
		return apiError(err)
	}

	booking, err := h.ledger.BookingByID(e.Request.Context(), e.Request.PathValue("bookingId"))
	if err != nil {
		return apiError(err)
	}

	if booking.CustomerID != identity.ID && booking.VendorID != identity.ID && identity.Role != models.RoleAdmin {
		return apis.NewForbiddenError("Access denied", nil)
	}

	return e.JSON(http.StatusOK, booking)
}
