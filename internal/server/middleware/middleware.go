package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/fiscal-integrations/manifestacao/internal/logger"
	"github.com/fiscal-integrations/manifestacao/internal/manifestacao"
)

// RequestSizeLimit caps the manifestation request body at maxBytes.
//
// A declared Content-Length above the limit is rejected with 413 before the body is read.
// Bodies without (or with a wrong) Content-Length are wrapped in http.MaxBytesReader, so
// handlers must still check for *http.MaxBytesError when decoding.
//
// Every response carries X-Max-Request-Size with the configured limit.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Max-Request-Size", strconv.FormatInt(maxBytes, 10))

			if r.ContentLength > maxBytes {
				err := manifestacao.NewRequestTooLargeError(
					fmt.Sprintf("corpo da requisição (%d bytes) excede o tamanho máximo permitido (%d bytes)", r.ContentLength, maxBytes),
				)
				manifestacao.RespondWithError(w, r, err)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related headers to all responses
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if environment == "prod" || environment == "staging" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies a process-wide token bucket to the manifestation routes.
// requestsPerSecond <= 0 disables it.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				reqLogger := logger.ContextRequestLogger(r.Context())

				reqLogger.Warn("rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("remote_addr", r.RemoteAddr),
				)

				logger.ContextWithLogAttrs(r.Context(),
					slog.String("remote_addr", r.RemoteAddr),
				)

				err := manifestacao.NewRateLimitError("limite de requisições excedido, tente novamente mais tarde")
				manifestacao.RespondWithError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
