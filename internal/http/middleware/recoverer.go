// Package middleware holds the http.Handler wrappers applied to every route.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Recoverer turns a panic in next into a 500 JSON response. The stack trace
// is logged and never sent to the client.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logger.FromRequest(r).Error().
				Interface("panic", rvr).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			response.WriteJSON(w, http.StatusInternalServerError, response.Error("Internal Server Error", nil))
		}()

		next.ServeHTTP(w, r)
	})
}
