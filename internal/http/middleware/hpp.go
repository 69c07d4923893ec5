package middleware

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/logger"
)

// ParameterPollution collapses repeated query parameters to their last
// value, so ?id=a&id=b reaches handlers as ?id=b.
func ParameterPollution(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		polluted := false
		for key, values := range query {
			if len(values) > 1 {
				query[key] = values[len(values)-1:]
				polluted = true
			}
		}

		if polluted {
			logger.FromRequest(r).Debug().Str("query", r.URL.RawQuery).Msg("collapsed repeated query parameters")
			r2 := r.Clone(r.Context())
			r2.URL.RawQuery = query.Encode()
			r = r2
		}

		next.ServeHTTP(w, r)
	})
}
