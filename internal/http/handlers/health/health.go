// Package health serves the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the body of a healthy response.
type Status struct {
	Status string `json:"status"`
}

// New handles GET /healthz: 200 {"status":"ok"} when p answers, 503
// otherwise.
func New(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			logger.FromRequest(r).Error().Err(err).Msg("storage ping failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Error("Service Unavailable", err))
			return
		}

		response.WriteJSON(w, http.StatusOK, Status{Status: "ok"})
	}
}
