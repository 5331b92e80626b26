package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusfinds/comments-service/pkg/log"
	"github.com/google/uuid"

	"github.com/campusfinds/comments-service/internal/models"
	"github.com/campusfinds/comments-service/internal/storage"
)

// ToggleLike — переключение лайка пользователя на комментарии.
// Операция инволютивна: повторный вызов того же пользователя
// возвращает состояние к исходному.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id/актор;
//   - ErrUserNotFound — актор отсутствует в справочнике;
//   - ErrNotFound — комментарий не найден;
//   - ErrInternal — иные ошибки.
func (s *Service) ToggleLike(ctx context.Context, commentID string, actorID uuid.UUID) (*models.LikeState, error) {
	const op = "service/likes/ToggleLike"

	commentID = strings.TrimSpace(commentID)
	lg := log.From(ctx).With("op", op, "id", commentID, "actor_id", actorID.String())

	if commentID == "" || actorID == uuid.Nil {
		lg.Warn("invalid argument: empty id or actor_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if _, err := s.directory.UserByID(ctx, actorID); err != nil {
		if isDirNotFound(err) {
			lg.Warn("actor not found")
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("directory error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	state, err := s.storage.ToggleLike(ctx, commentID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on ToggleLike", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return state, nil
}
