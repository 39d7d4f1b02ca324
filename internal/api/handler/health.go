package handler

import (
	"net/http"

	"github.com/mcoot/spendboard/internal/api/response"
	"github.com/mcoot/spendboard/internal/storage"
)

// HealthHandler reports server and storage health
type HealthHandler struct {
	storage     storage.Storage
	storageKind string
	degraded    bool
}

// NewHealthHandler creates a new health handler. degraded marks a server
// running on the volatile fallback store.
func NewHealthHandler(store storage.Storage, storageKind string, degraded bool) *HealthHandler {
	return &HealthHandler{
		storage:     store,
		storageKind: storageKind,
		degraded:    degraded,
	}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := response.Health{
		Status:   "ok",
		Storage:  h.storageKind,
		Degraded: h.degraded,
	}

	status := http.StatusOK
	if err := h.storage.Ping(r.Context()); err != nil {
		body.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, body)
}
