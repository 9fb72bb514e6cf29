package response

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// ErrorBody is the single-cause failure shape: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// FieldErrorBody is the validation failure shape: a summary message plus a
// field -> message map.
type FieldErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// WriteError converts a domain error into the wire error shape. Non-domain
// errors become a 500 without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		message = de.Message

		if de.Code == "validation_failed" && len(de.Meta) > 0 {
			WriteJSON(w, status, FieldErrorBody{Message: de.Message, Errors: de.Meta})
			return
		}
	}

	// The wire shape stays terse; the cause and request id go to the log
	// where an operator can correlate them.
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", RequestIDFromContext(r)).
			Int("status", status).
			Msg("request failed")
	}

	WriteJSON(w, status, ErrorBody{Error: message})
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
