package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger is satisfied by [*sql.DB].
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the database is reachable.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a [HealthHandler] for db.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Routes implements [Handler].
func (h *HealthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

// ServeHTTP implements [http.Handler].
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.db.PingContext(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "database unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(w, "ok")
}
