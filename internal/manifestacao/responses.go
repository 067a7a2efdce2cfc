package manifestacao

// responses.go provides helper functions for sending HTTP responses from the handlers.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fiscal-integrations/manifestacao/internal/logger"
	"github.com/fiscal-integrations/manifestacao/internal/nfe"
)

// ErrorDetailPrefix starts the detail of every pipeline failure
const ErrorDetailPrefix = "Erro ao buscar manifestações: "

// StatusCode returns the HTTP status for err.
//
// Request errors map to 413, 422 and 429. Anything else, including every nfe error,
// is a 500.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Code() {
		case ErrCodeMalformedRequest:
			return http.StatusUnprocessableEntity
		case ErrCodeRequestTooLarge:
			return http.StatusRequestEntityTooLarge
		case ErrCodeRateLimitExceeded:
			return http.StatusTooManyRequests
		}
	}
	return http.StatusInternalServerError
}

// ErrorCodeText returns the error code used in logs and metrics.
func ErrorCodeText(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return string(reqErr.Code())
	}
	var nfeErr *nfe.NfeError
	if errors.As(err, &nfeErr) {
		return string(nfeErr.Code())
	}
	return string(nfe.ErrCodeInternal)
}

// RespondWithError sends the {"detail": ...} error response for err.
//
// Pipeline failures carry the full error text after ErrorDetailPrefix.
// The error is logged with its code on the request logger.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ErrorDetailPrefix + detail
	}

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("Request failed",
		slog.String("error", err.Error()),
		slog.String("error_code", ErrorCodeText(err)),
		slog.Int("status_code", status),
	)

	RespondWithJSON(w, status, ErrorResponse{Detail: detail})
}

// RespondWithJSON sends a JSON response with the given status code
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written
			// #nosec G706 -- error is escaped (slog) and not from user input
			slog.Error("Failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}
