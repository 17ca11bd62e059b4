package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"planify/internal/auth"
	"planify/internal/services"
	"planify/internal/status"
)

type PaymentHandler struct {
	app              *pocketbase.PocketBase
	reconcileService *services.ReconcileService
}

func NewPaymentHandler(app *pocketbase.PocketBase, reconcileService *services.ReconcileService) *PaymentHandler {
	return &PaymentHandler{
		app:              app,
		reconcileService: reconcileService,
	}
}

// Callback - POST /api/v1/payments/callback
//
// The client reports the checkout result here. The body is never trusted;
// the service re-fetches the payment from the provider before anything is
// applied.
func (h *PaymentHandler) Callback(e *core.RequestEvent) error {
	if _, err := auth.FromRequest(e); err != nil {
		return apiError(err)
	}

	var req services.CallbackRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	booking, err := h.reconcileService.HandleCallback(e.Request.Context(), &req)
	if err != nil {
		code := http.StatusBadRequest
		switch {
		case errors.Is(err, status.ErrGatewayUnavailable), errors.Is(err, status.ErrGatewayFetch):
			code = http.StatusBadGateway
		case errors.Is(err, status.ErrNotFound):
			code = http.StatusNotFound
		}
		return e.JSON(code, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"booking": booking,
	})
}

// Webhook - POST /api/v1/payments/webhook
//
// Unauthenticated endpoint; the HMAC signature header is the credential.
// Once the signature checks out the delivery is always acked with 200, so
// the provider does not retry events we have already absorbed.
func (h *PaymentHandler) Webhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Unreadable body", err)
	}

	signature := e.Request.Header.Get("X-Razorpay-Signature")

	if err := h.reconcileService.HandleWebhook(e.Request.Context(), body, signature); err != nil {
		return apis.NewUnauthorizedError("Invalid signature", nil)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
