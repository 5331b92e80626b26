// Package directory — справочник смежных сущностей платформы
// (объявления и профили студентов), к которым комментарии привязаны
// по идентификаторам. Сервис комментариев эти коллекции не изменяет,
// только читает.
package directory

import (
	"context"
	"errors"

	"github.com/campusfinds/comments-service/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrItemNotFound — объявление отсутствует.
	ErrItemNotFound = errors.New("item not found")
	// ErrUserNotFound — пользователь отсутствует.
	ErrUserNotFound = errors.New("user not found")
)

// Directory описывает операции чтения справочника.
type Directory interface {
	// ItemByID возвращает объявление по идентификатору.
	// Если запись не найдена — ErrItemNotFound.
	ItemByID(ctx context.Context, id uuid.UUID) (*models.ItemRef, error)

	// UserByID возвращает профиль пользователя по идентификатору.
	// Если запись не найдена — ErrUserNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*models.UserRef, error)

	// UsersByHandles возвращает профили по списку хендлов одним
	// запросом. Несуществующие хендлы молча опускаются: результат
	// может быть короче запроса, порядок соответствует порядку
	// найденных хендлов во входном списке.
	UsersByHandles(ctx context.Context, handles []string) ([]models.UserRef, error)

	// UsersByIDs возвращает профили по списку идентификаторов одним
	// запросом; несуществующие идентификаторы молча опускаются.
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserRef, error)
}
