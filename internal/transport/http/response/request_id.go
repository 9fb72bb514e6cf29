package response

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDFromContext returns the request id set by chi's RequestID
// middleware, or "" when the middleware is not installed.
func RequestIDFromContext(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}
