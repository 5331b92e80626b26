// service содержит бизнес-логику comments-сервиса.
package service

import (
	"errors"

	"github.com/campusfinds/comments-service/internal/config"
	"github.com/campusfinds/comments-service/internal/directory"
	"github.com/campusfinds/comments-service/internal/storage"
)

var (
	// ErrNotFound — комментарий отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrItemNotFound — объявление отсутствует.
	ErrItemNotFound = errors.New("item not found")
	// ErrAuthorNotFound — автор создаваемого комментария отсутствует.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrUserNotFound — пользователь (актор/субъект выборки) отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrParentIsReply — попытка ответить на ответ (допустим один уровень вложенности).
	ErrParentIsReply = errors.New("parent is a reply")
	// ErrForbidden — операция доступна только автору комментария.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInternal — внутренняя ошибка (сторадж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика comments-service: ветки комментариев,
// упоминания, лайки, постраничные выборки.
type Service struct {
	storage   storage.Storage
	directory directory.Directory
	cfg       config.Config
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, directory directory.Directory, cfg config.Config) *Service {
	return &Service{
		storage:   storage,
		directory: directory,
		cfg:       cfg,
	}
}

// isDirNotFound — «не найдено» любого вида от справочника.
func isDirNotFound(err error) bool {
	return errors.Is(err, directory.ErrItemNotFound) || errors.Is(err, directory.ErrUserNotFound)
}
