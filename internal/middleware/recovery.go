package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/songbook/songbook/internal/handler/dto"
)

// Recoverer is a middleware that recovers from panics.
// It logs the panic and returns a 500 envelope. When exposeStack is set
// the stack trace is included in the response details.
func Recoverer(logger *slog.Logger, exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					stack := string(debug.Stack())

					logger.Error("panic recovered",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.Any("panic", rvr),
						slog.String("stack", stack),
					)

					var details any
					if exposeStack {
						details = strings.Split(strings.TrimSpace(stack), "\n")
					}
					dto.WriteError(w, http.StatusInternalServerError, "internal server error", "", details)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
