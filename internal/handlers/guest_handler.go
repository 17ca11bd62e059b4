package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"planify/internal/auth"
	"planify/internal/services"
	"planify/models"
	"planify/utils"
)

const accessCodeLength = 6

// GuestStore is the Ledger plus the guest access writes the guest endpoints
// need.
type GuestStore interface {
	services.Ledger
	SaveGuestAccess(ctx context.Context, g *models.GuestAccess) error
}

type GuestHandler struct {
	app   *pocketbase.PocketBase
	store GuestStore
}

func NewGuestHandler(app *pocketbase.PocketBase, store GuestStore) *GuestHandler {
	return &GuestHandler{
		app:   app,
		store: store,
	}
}

func (h *GuestHandler) ownedEvent(e *core.RequestEvent) (*auth.Identity, *models.Event, error) {
	identity, err := auth.Require(e, models.RoleCustomer)
	if err != nil {
		return nil, nil, err
	}

	event, err := h.store.EventByID(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return nil, nil, err
	}
	if event.OwnerID != identity.ID {
		return nil, nil, auth.ErrForbidden
	}
	return identity, event, nil
}

// CreateGuestAccess - POST /api/v1/events/{eventId}/guest-access
//
// The plain code is returned exactly once; only its bcrypt hash is stored.
func (h *GuestHandler) CreateGuestAccess(e *core.RequestEvent) error {
	_, event, err := h.ownedEvent(e)
	if err != nil {
		return apiError(err)
	}

	var req struct {
		Label string `json:"label"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	code, err := utils.GenerateAccessCode(accessCodeLength)
	if err != nil {
		return apiError(err)
	}
	hash, err := auth.HashAccessCode(code)
	if err != nil {
		return apiError(err)
	}

	grant := &models.GuestAccess{
		EventID:  event.ID,
		Label:    req.Label,
		CodeHash: hash,
		Active:   true,
	}
	if err := h.store.SaveGuestAccess(e.Request.Context(), grant); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"access": grant,
		"code":   code,
	})
}

// ListGuestAccess - GET /api/v1/events/{eventId}/guest-access
func (h *GuestHandler) ListGuestAccess(e *core.RequestEvent) error {
	_, event, err := h.ownedEvent(e)
	if err != nil {
		return apiError(err)
	}

	grants, err := h.store.GuestAccessForEvent(e.Request.Context(), event.ID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"access": grants})
}

// RevokeGuestAccess - POST /api/v1/events/{eventId}/guest-access/{accessId}/revoke
func (h *GuestHandler) RevokeGuestAccess(e *core.RequestEvent) error {
	_, event, err := h.ownedEvent(e)
	if err != nil {
		return apiError(err)
	}

	grants, err := h.store.GuestAccessForEvent(e.Request.Context(), event.ID)
	if err != nil {
		return apiError(err)
	}

	accessID := e.Request.PathValue("accessId")
	for _, grant := range grants {
		if grant.ID != accessID {
			continue
		}
		grant.Active = false
		if err := h.store.SaveGuestAccess(e.Request.Context(), grant); err != nil {
			return apiError(err)
		}
		return e.JSON(http.StatusOK, map[string]any{"access": grant})
	}

	return apis.NewNotFoundError("Access grant not found", nil)
}

// GuestView - POST /api/v1/events/{eventId}/guest-view
//
// Unauthenticated; a valid, still-active access code is the credential. A
// revoked grant fails exactly like a wrong code.
func (h *GuestHandler) GuestView(e *core.RequestEvent) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil || req.Code == "" {
		return apis.NewBadRequestError("Access code is required", nil)
	}

	ctx := e.Request.Context()
	eventID := e.Request.PathValue("eventId")

	event, err := h.store.EventByID(ctx, eventID)
	if err != nil {
		return apiError(err)
	}

	grants, err := h.store.GuestAccessForEvent(ctx, eventID)
	if err != nil {
		return apiError(err)
	}

	authorized := false
	for _, grant := range grants {
		if grant.Active && auth.CheckAccessCode(grant.CodeHash, req.Code) {
			authorized = true
			break
		}
	}
	if !authorized {
		return apis.NewForbiddenError("Invalid access code", nil)
	}

	bookings, err := h.store.BookingsForEvent(ctx, eventID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event":    event,
		"bookings": bookings,
	})
}
