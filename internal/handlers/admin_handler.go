package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"planify/internal/auth"
	"planify/models"
)

type AdminHandler struct {
	app   *pocketbase.PocketBase
	redis *redis.Client
}

func NewAdminHandler(app *pocketbase.PocketBase, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{
		app:   app,
		redis: redisClient,
	}
}

// GetBookings - GET /api/v1/admin/bookings
func (h *AdminHandler) GetBookings(e *core.RequestEvent) error {
	if _, err := auth.Require(e, models.RoleAdmin); err != nil {
		return apiError(err)
	}

	exprs := []dbx.Expression{}
	if s := e.Request.URL.Query().Get("status"); s != "" {
		exprs = append(exprs, dbx.HashExp{"status": s})
	}

	records, err := h.app.FindAllRecords("bookings", exprs...)
	if err != nil {
		return apiError(err)
	}

	bookings := make([]map[string]any, 0, len(records))
	for _, r := range records {
		bookings = append(bookings, map[string]any{
			"id":               r.Id,
			"event_id":         r.GetString("event_id"),
			"store_id":         r.GetString("store_id"),
			"customer_id":      r.GetString("customer_id"),
			"vendor_id":        r.GetString("vendor_id"),
			"amount":           r.GetString("amount"),
			"advance_required": r.GetString("advance_required"),
			"advance_paid":     r.GetString("advance_paid"),
			"status":           r.GetString("status"),
			"created":          r.GetDateTime("created"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// GetEarnings - GET /api/v1/admin/earnings
func (h *AdminHandler) GetEarnings(e *core.RequestEvent) error {
	if _, err := auth.Require(e, models.RoleAdmin); err != nil {
		return apiError(err)
	}

	records, err := h.app.FindAllRecords("vendor_earnings")
	if err != nil {
		return apiError(err)
	}

	earnings := make([]map[string]any, 0, len(records))
	for _, r := range records {
		earnings = append(earnings, map[string]any{
			"id":              r.Id,
			"booking_id":      r.GetString("booking_id"),
			"vendor_id":       r.GetString("vendor_id"),
			"amount":          r.GetString("amount"),
			"commission_rate": r.GetString("commission_rate"),
			"net_amount":      r.GetString("net_amount"),
			"payment_status":  r.GetString("payment_status"),
			"created":         r.GetDateTime("created"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"earnings": earnings,
		"total":    len(earnings),
	})
}

// GetUsers - GET /api/v1/admin/users
func (h *AdminHandler) GetUsers(e *core.RequestEvent) error {
	if _, err := auth.Require(e, models.RoleAdmin); err != nil {
		return apiError(err)
	}

	exprs := []dbx.Expression{}
	if role := e.Request.URL.Query().Get("role"); role != "" {
		exprs = append(exprs, dbx.HashExp{"role": role})
	}

	records, err := h.app.FindAllRecords("users", exprs...)
	if err != nil {
		return apiError(err)
	}

	users := make([]map[string]any, 0, len(records))
	for _, r := range records {
		users = append(users, map[string]any{
			"id":      r.Id,
			"email":   r.GetString("email"),
			"name":    r.GetString("name"),
			"role":    r.GetString("role"),
			"created": r.GetDateTime("created"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"users": users,
		"total": len(users),
	})
}

// GetSettlementDashboard - GET /api/v1/admin/settlement-dashboard
func (h *AdminHandler) GetSettlementDashboard(e *core.RequestEvent) error {
	if _, err := auth.Require(e, models.RoleAdmin); err != nil {
		return apiError(err)
	}

	bookingCounts := map[string]int64{}
	for _, s := range []string{
		models.BookingPending,
		models.BookingConfirmed,
		models.BookingInProgress,
		models.BookingCompleted,
		models.BookingCancelled,
	} {
		count, err := h.app.CountRecords("bookings", dbx.HashExp{"status": s})
		if err != nil {
			return apiError(err)
		}
		bookingCounts[s] = count
	}

	paymentCounts := map[string]int64{}
	for _, s := range []string{models.AdvancePending, models.AdvanceSucceeded, models.AdvanceFailed} {
		count, err := h.app.CountRecords("advance_payments", dbx.HashExp{"status": s})
		if err != nil {
			return apiError(err)
		}
		paymentCounts[s] = count
	}

	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookingCounts,
		"payments": paymentCounts,
	})
}

// MarkEarningPaid - POST /api/v1/admin/earnings/{earningId}/mark-paid
func (h *AdminHandler) MarkEarningPaid(e *core.RequestEvent) error {
	if _, err := auth.Require(e, models.RoleAdmin); err != nil {
		return apiError(err)
	}

	r, err := h.app.FindRecordById("vendor_earnings", e.Request.PathValue("earningId"))
	if err != nil {
		return apiError(err)
	}

	r.Set("payment_status", models.EarningPaid)
	if err := h.app.SaveWithContext(e.Request.Context(), r); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"id":             r.Id,
		"payment_status": r.GetString("payment_status"),
	})
}
