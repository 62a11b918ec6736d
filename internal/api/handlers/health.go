package handlers

import (
	"net/http"

	"github.com/clearbooks/reconcile-backend/internal/api/dto"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

// HealthHandler handles health check requests, including a storage
// reachability probe so load balancers can drain an instance whose
// database is gone.
type HealthHandler struct {
	*Base
	db Pinger
}

// NewHealthHandler creates a new health handler. A nil Pinger skips the
// storage probe.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		Base: &Base{},
		db:   db,
	}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	databaseOK := h.db == nil || h.db.Ping() == nil

	status := http.StatusOK
	if !databaseOK {
		status = http.StatusServiceUnavailable
	}

	h.WriteJSON(w, status, dto.NewHealthResponse(databaseOK))
}
