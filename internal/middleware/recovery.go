package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/pkg/response"
)

// Recovery converts handler panics into a logged 500 with the standard JSON
// envelope, so a scoring bug never tears down the connection mid-response.
func Recovery(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("panic", err).
						Str("stack", string(debug.Stack())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")

					response.InternalError(w, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
