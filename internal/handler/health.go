package handler

import "net/http"

// StoreCounter reports how many session stores are alive.
type StoreCounter interface {
	Len() int
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	stores StoreCounter
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(stores StoreCounter) *HealthHandler {
	return &HealthHandler{stores: stores}
}

// HandleHealth reports that the process is up.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stores": h.stores.Len(),
	})
}
