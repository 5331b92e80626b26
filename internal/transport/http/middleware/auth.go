package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusfinds/comments-service/internal/auth"
	"github.com/campusfinds/comments-service/internal/transport/http/respond"
	"github.com/google/uuid"
)

type ctxKeyActor struct{}

// AuthBearer извлекает Bearer-токен из Authorization, валидирует его
// и кладёт UUID актора в контекст. Отсутствие заголовка не является
// ошибкой (публичные ручки); невалидный токен — 401 сразу.
func AuthBearer(v *auth.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) || len(header) <= len(prefix) {
				respond.Fail(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			token := strings.TrimSpace(header[len(prefix):])

			actorID, err := v.VerifyAccessToken(token)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyActor{}, actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth — 401 для ручек, требующих аутентифицированного актора.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ActorFrom(r.Context()) == uuid.Nil {
				respond.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ActorFrom возвращает UUID актора из контекста (uuid.Nil если нет).
func ActorFrom(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(ctxKeyActor{}).(uuid.UUID); ok {
		return v
	}

	return uuid.Nil
}
