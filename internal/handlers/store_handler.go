package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// StoreHandler serves the public vendor directory.
type StoreHandler struct {
	app *pocketbase.PocketBase
}

func NewStoreHandler(app *pocketbase.PocketBase) *StoreHandler {
	return &StoreHandler{app: app}
}

// GetStores - GET /api/v1/stores
func (h *StoreHandler) GetStores(e *core.RequestEvent) error {
	exprs := []dbx.Expression{dbx.HashExp{"active": true}}
	if category := e.Request.URL.Query().Get("category"); category != "" {
		exprs = append(exprs, dbx.HashExp{"category": category})
	}
	if city := e.Request.URL.Query().Get("city"); city != "" {
		exprs = append(exprs, dbx.HashExp{"city": city})
	}

	records, err := h.app.FindAllRecords("stores", exprs...)
	if err != nil {
		return apiError(err)
	}

	stores := make([]map[string]any, 0, len(records))
	for _, r := range records {
		stores = append(stores, map[string]any{
			"id":          r.Id,
			"store_name":  r.GetString("store_name"),
			"description": r.GetString("description"),
			"category":    r.GetString("category"),
			"address":     r.GetString("address"),
			"city":        r.GetString("city"),
			"price_start": r.GetString("price_start"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"stores": stores,
		"total":  len(stores),
	})
}

// GetStoreServices - GET /api/v1/stores/{storeId}/services
func (h *StoreHandler) GetStoreServices(e *core.RequestEvent) error {
	storeID := e.Request.PathValue("storeId")

	records, err := h.app.FindAllRecords("services",
		dbx.HashExp{"store_id": storeID, "active": true})
	if err != nil {
		return apiError(err)
	}

	services := make([]map[string]any, 0, len(records))
	for _, r := range records {
		services = append(services, map[string]any{
			"id":          r.Id,
			"store_id":    r.GetString("store_id"),
			"name":        r.GetString("name"),
			"description": r.GetString("description"),
			"price":       r.GetString("price"),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"services": services,
		"total":    len(services),
	})
}
