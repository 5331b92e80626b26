// Package http собирает HTTP-маршрутизатор comments-сервиса.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campusfinds/comments-service/internal/auth"
	"github.com/campusfinds/comments-service/internal/service"
	"github.com/campusfinds/comments-service/internal/transport/http/handlers"
	"github.com/campusfinds/comments-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, verifier *auth.Verifier, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),             // безопасно ловим паники
		middleware.RequestID(),           // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),  // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),             // счётчик и гистограмма запросов
		middleware.AuthBearer(verifier),  // валидируем Bearer-токен, актор в контекст
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	// Публичные чтения.
	root.Get("/comments/item/{itemId}", h.ListByItem)
	root.Get("/comments/student/{id}", h.ListByAuthor)
	root.Get("/comments/mentions/{id}", h.ListMentioning)
	root.Get("/comments/{id}/replies", h.ListReplies)
	root.Get("/comments/{id}", h.CommentByID)

	// Мутации — только с аутентифицированным актором.
	root.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())

		r.Post("/comments", h.CreateComment)
		r.Put("/comments/{id}", h.UpdateComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Post("/comments/{id}/like", h.ToggleLike)
	})

	return root
}
