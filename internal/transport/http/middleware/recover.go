package middleware

import (
	"log/slog"
	"net/http"

	"github.com/campusfinds/comments-service/internal/transport/http/respond"
	logctx "github.com/campusfinds/comments-service/pkg/log"
)

// Recover перехватывает panic и отвечает унифицированным 500.
// Детали паники не утекают на клиент.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					respond.Fail(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
