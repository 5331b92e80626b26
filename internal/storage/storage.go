package storage

import (
	"context"
	"errors"

	"github.com/campusfinds/comments-service/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrParentIsReply — попытка ответить на ответ (допустим один уровень вложенности).
	ErrParentIsReply = errors.New("parent is a reply")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
)

// Window — окно выборки (skip/limit), вычисленное сервисным слоем.
type Window struct {
	Skip  int64
	Limit int64
}

// Storage описывает операции над комментариями.
type Storage interface {
	// CreateComment создаёт корневой комментарий или ответ.
	// Входной Comment должен содержать ItemID, AuthorID, Content,
	// MentionedIDs; ParentID — опционально (если это ответ).
	// Вычисляемые хранилищем поля: ID, IsReply, CreatedAt, UpdatedAt.
	// Возможные ошибки: ErrParentNotFound, ErrParentIsReply.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий по строковому идентификатору.
	// Некорректный формат id трактуется как «нет такой записи» -> ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// UpdateContent заменяет текст и список упоминаний, выставляет
	// is_edited=true/edited_at=now и возвращает обновлённый документ.
	// Если запись не найдена — ErrNotFound.
	UpdateContent(ctx context.Context, id, content string, mentionedIDs []uuid.UUID) (*models.Comment, error)

	// DeleteComment удаляет комментарий; для корневого — каскадно
	// удаляет и все его ответы. Возвращает общее число удалённых
	// документов. Если запись не найдена — ErrNotFound.
	DeleteComment(ctx context.Context, id string) (int64, error)

	// ToggleLike атомарно переключает лайк пользователя:
	// нет в множестве -> добавить (liked=true), есть -> убрать (liked=false).
	// Если запись не найдена — ErrNotFound.
	ToggleLike(ctx context.Context, id string, userID uuid.UUID) (*models.LikeState, error)

	// ListByItem возвращает окно комментариев объявления: только корни
	// (includeReplies=false) или корни вместе с ответами.
	// Сортировка: сначала новые (created_at DESC).
	ListByItem(ctx context.Context, itemID uuid.UUID, includeReplies bool, w Window) ([]models.Comment, error)

	// CountByItem — количество комментариев объявления (с учётом или
	// без учёта ответов, симметрично ListByItem).
	CountByItem(ctx context.Context, itemID uuid.UUID, includeReplies bool) (int64, error)

	// ListReplies возвращает окно ответов одной ветки.
	// Сортировка: сначала старые (created_at ASC).
	// Существование родителя не проверяется (это делает сервисный
	// слой); некорректный формат parentID -> ErrNotFound.
	ListReplies(ctx context.Context, parentID string, w Window) ([]models.Comment, error)

	// CountReplies — количество ответов в ветке.
	CountReplies(ctx context.Context, parentID string) (int64, error)

	// ReplyCounts возвращает количество ответов для каждой из веток
	// одним запросом; идентификаторы без ответов в карте отсутствуют.
	ReplyCounts(ctx context.Context, parentIDs []string) (map[string]int64, error)

	// ListByAuthor возвращает окно всех комментариев пользователя
	// (корни и ответы). Сортировка: created_at DESC.
	ListByAuthor(ctx context.Context, authorID uuid.UUID, w Window) ([]models.Comment, error)

	// CountByAuthor — количество комментариев пользователя.
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)

	// ListMentioning возвращает окно комментариев, упоминающих
	// пользователя. Сортировка: created_at DESC.
	ListMentioning(ctx context.Context, userID uuid.UUID, w Window) ([]models.Comment, error)

	// CountMentioning — количество комментариев, упоминающих пользователя.
	CountMentioning(ctx context.Context, userID uuid.UUID) (int64, error)
}
