package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusfinds/comments-service/pkg/log"
	"github.com/google/uuid"

	"github.com/campusfinds/comments-service/internal/mentions"
	"github.com/campusfinds/comments-service/internal/models"
	"github.com/campusfinds/comments-service/internal/pagination"
	"github.com/campusfinds/comments-service/internal/storage"
)

// Входные структуры сервисного слоя.

// CreateCommentInput — создание корневого комментария или ответа.
// Правила:
//   - если ParentID пуст, создаётся корень и обязателен ItemID;
//   - если ParentID не пуст, создаётся ответ; ItemID можно не передавать
//     (слой storage унаследует item_id от родителя);
//   - всегда обязательны: AuthorID, Content.
type CreateCommentInput struct {
	ItemID   uuid.UUID
	ParentID string
	AuthorID uuid.UUID
	Content  string
}

// ListByItemInput — параметры постраничной выдачи комментариев объявления.
// IncludeReplies=false (по умолчанию) — только корни, с аннотацией
// reply_count; true — корни вместе с ответами единым списком.
type ListByItemInput struct {
	ItemID         uuid.UUID
	IncludeReplies bool
	Page           int64
	Limit          int64
}

// ListRepliesInput — параметры постраничной выдачи ответов одной ветки.
type ListRepliesInput struct {
	ParentID string
	Page     int64
	Limit    int64
}

// UpdateCommentInput — редактирование текста комментария его автором.
type UpdateCommentInput struct {
	CommentID string
	ActorID   uuid.UUID
	Content   string
}

// ListByUserInput — выборки «комментарии пользователя» и
// «упоминания пользователя».
type ListByUserInput struct {
	UserID uuid.UUID
	Page   int64
	Limit  int64
}

// limits — действующие лимиты постраничной выдачи из конфигурации.
func (s *Service) limits() pagination.Limits {
	return pagination.Limits{
		DefaultPage:  s.cfg.Limits.DefaultPage,
		DefaultLimit: s.cfg.Limits.DefaultLimit,
		MaxLimit:     s.cfg.Limits.MaxLimit,
	}
}

// resolveMentions извлекает @хендлы из текста и резолвит их в профили
// одним запросом к справочнику. Несуществующие хендлы молча
// опускаются; самоупоминание автора отбрасывается. Порядок — по
// первому вхождению в текст.
func (s *Service) resolveMentions(ctx context.Context, content string, authorID uuid.UUID) ([]uuid.UUID, []models.UserRef, error) {
	handles := mentions.ExtractUnique(content)
	if len(handles) == 0 {
		return nil, nil, nil
	}

	refs, err := s.directory.UsersByHandles(ctx, handles)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(refs))
	kept := make([]models.UserRef, 0, len(refs))

	for _, ref := range refs {
		if ref.ID == authorID {
			continue
		}

		ids = append(ids, ref.ID)
		kept = append(kept, ref)
	}

	return ids, kept, nil
}

// enrich заполняет производные поля Author/Mentioned для пачки
// комментариев одним запросом к справочнику. Удалённые профили
// опускаются (Author остаётся nil).
func (s *Service) enrich(ctx context.Context, items []models.Comment) error {
	if len(items) == 0 {
		return nil
	}

	want := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))

	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		want = append(want, id)
	}

	for i := range items {
		add(items[i].AuthorID)
		for _, id := range items[i].MentionedIDs {
			add(id)
		}
	}

	refs, err := s.directory.UsersByIDs(ctx, want)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]models.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	for i := range items {
		if ref, ok := byID[items[i].AuthorID]; ok {
			author := ref
			items[i].Author = &author
		}

		if len(items[i].MentionedIDs) == 0 {
			continue
		}

		mentioned := make([]models.UserRef, 0, len(items[i].MentionedIDs))
		for _, id := range items[i].MentionedIDs {
			if ref, ok := byID[id]; ok {
				mentioned = append(mentioned, ref)
			}
		}

		items[i].Mentioned = mentioned
	}

	return nil
}

// annotateReplyCounts проставляет reply_count корневым комментариям
// пачки одним агрегирующим запросом.
func (s *Service) annotateReplyCounts(ctx context.Context, items []models.Comment) error {
	rootIDs := make([]string, 0, len(items))
	for i := range items {
		if !items[i].IsReply {
			rootIDs = append(rootIDs, items[i].ID)
		}
	}

	if len(rootIDs) == 0 {
		return nil
	}

	counts, err := s.storage.ReplyCounts(ctx, rootIDs)
	if err != nil {
		return err
	}

	for i := range items {
		if !items[i].IsReply {
			items[i].ReplyCount = counts[items[i].ID]
		}
	}

	return nil
}

// CreateComment — бизнес-операция создания комментария.
//
// Валидация:
//   - AuthorID обязателен (uuid.Nil -> ErrInvalidArgument);
//   - Content нормализуется (TrimSpace) и не должен быть пустым;
//   - если ParentID пуст (создание корня) — ItemID обязателен и
//     объявление должно существовать.
//
// Поведение/ошибки:
//   - ErrItemNotFound — корень указывает на несуществующее объявление;
//   - ErrAuthorNotFound — автор не найден в справочнике;
//   - ErrParentNotFound — указан ParentID, но родитель отсутствует;
//   - ErrParentIsReply — родитель сам является ответом;
//   - ErrInternal — прочие ошибки стораджа/справочника.
//
// Упоминания резолвятся до записи: несуществующие хендлы и
// самоупоминание молча отбрасываются.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"author_id", in.AuthorID.String(),
		"item_id", in.ItemID.String(),
		"parent_id", in.ParentID,
	)

	if in.AuthorID == uuid.Nil {
		lg.Warn("invalid argument: empty author_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.ParentID = strings.TrimSpace(in.ParentID)

	// Для корня обязательна привязка к существующему объявлению.
	if in.ParentID == "" {
		if in.ItemID == uuid.Nil {
			lg.Warn("invalid argument: empty item_id for root comment")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		if _, err := s.directory.ItemByID(ctx, in.ItemID); err != nil {
			if isDirNotFound(err) {
				lg.Warn("item not found")
				return nil, fmt.Errorf("%s: %w", op, ErrItemNotFound)
			}

			lg.Error("directory error on ItemByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	author, err := s.directory.UserByID(ctx, in.AuthorID)
	if err != nil {
		if isDirNotFound(err) {
			lg.Warn("author not found")
			return nil, fmt.Errorf("%s: %w", op, ErrAuthorNotFound)
		}

		lg.Error("directory error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	mentionedIDs, mentioned, err := s.resolveMentions(ctx, in.Content, in.AuthorID)
	if err != nil {
		lg.Error("directory error on UsersByHandles", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	comm := models.Comment{
		ItemID:       in.ItemID,
		AuthorID:     in.AuthorID,
		ParentID:     in.ParentID,
		Content:      in.Content,
		MentionedIDs: mentionedIDs,
	}

	result, err := s.storage.CreateComment(ctx, comm)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent not found")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		case errors.Is(err, storage.ErrParentIsReply):
			lg.Warn("parent is a reply")
			return nil, fmt.Errorf("%s: %w", op, ErrParentIsReply)
		default:
			lg.Error("storage error on CreateComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	result.Author = author
	result.Mentioned = mentioned

	return result, nil
}

// CommentByID — получить комментарий по ID с заполненными
// Author/Mentioned и reply_count (для корня).
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id;
//   - ErrNotFound — комментарий не найден (включая неверный формат id);
//   - ErrInternal — иные ошибки стораджа/справочника.
func (s *Service) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	batch := []models.Comment{*result}
	if err := s.enrich(ctx, batch); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.annotateReplyCounts(ctx, batch); err != nil {
		lg.Error("storage error on ReplyCounts", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &batch[0], nil
}

// ListByItem — страница комментариев объявления, сначала новые.
// Корневые комментарии аннотируются количеством ответов (пакетно).
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой itemID;
//   - ErrItemNotFound — объявление отсутствует;
//   - ErrInternal — иные ошибки.
func (s *Service) ListByItem(ctx context.Context, in ListByItemInput) (*models.Page, error) {
	const op = "service/comments/ListByItem"

	lg := log.From(ctx).With("op", op, "item_id", in.ItemID.String())

	if in.ItemID == uuid.Nil {
		lg.Warn("invalid argument: empty item_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if _, err := s.directory.ItemByID(ctx, in.ItemID); err != nil {
		if isDirNotFound(err) {
			lg.Warn("item not found")
			return nil, fmt.Errorf("%s: %w", op, ErrItemNotFound)
		}

		lg.Error("directory error on ItemByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	params := pagination.Normalize(in.Page, in.Limit, s.limits())

	total, err := s.storage.CountByItem(ctx, in.ItemID, in.IncludeReplies)
	if err != nil {
		lg.Error("storage error on CountByItem", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	items, err := s.storage.ListByItem(ctx, in.ItemID, in.IncludeReplies, storage.Window{
		Skip:  params.Skip(),
		Limit: params.Limit,
	})
	if err != nil {
		lg.Error("storage error on ListByItem", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.annotateReplyCounts(ctx, items); err != nil {
		lg.Error("storage error on ReplyCounts", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.enrich(ctx, items); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &models.Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: params.Pages(total),
	}, nil
}

// ListReplies — страница ответов одной ветки, сначала старые.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой parentID;
//   - ErrNotFound — родительский комментарий отсутствует;
//   - ErrInternal — иные ошибки.
func (s *Service) ListReplies(ctx context.Context, in ListRepliesInput) (*models.Page, error) {
	const op = "service/comments/ListReplies"

	in.ParentID = strings.TrimSpace(in.ParentID)
	lg := log.From(ctx).With("op", op, "parent_id", in.ParentID)

	if in.ParentID == "" {
		lg.Warn("invalid argument: empty parent_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	// Существование родителя проверяем здесь: storage по несуществующей
	// ветке просто вернул бы пустой список.
	if _, err := s.storage.CommentByID(ctx, in.ParentID); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("parent not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	params := pagination.Normalize(in.Page, in.Limit, s.limits())

	total, err := s.storage.CountReplies(ctx, in.ParentID)
	if err != nil {
		lg.Error("storage error on CountReplies", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	items, err := s.storage.ListReplies(ctx, in.ParentID, storage.Window{
		Skip:  params.Skip(),
		Limit: params.Limit,
	})
	if err != nil {
		lg.Error("storage error on ListReplies", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.enrich(ctx, items); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &models.Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: params.Pages(total),
	}, nil
}

// UpdateComment — редактирование текста комментария его автором.
// Упоминания пересчитываются по новому тексту; комментарий помечается
// отредактированным (is_edited/edited_at).
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id/актор/текст;
//   - ErrNotFound — комментарий не найден;
//   - ErrForbidden — актор не является автором;
//   - ErrInternal — иные ошибки.
func (s *Service) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	const op = "service/comments/UpdateComment"

	in.CommentID = strings.TrimSpace(in.CommentID)
	lg := log.From(ctx).With("op", op, "id", in.CommentID, "actor_id", in.ActorID.String())

	if in.CommentID == "" || in.ActorID == uuid.Nil {
		lg.Warn("invalid argument: empty id or actor_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.CommentByID(ctx, in.CommentID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if current.AuthorID != in.ActorID {
		lg.Warn("forbidden: actor is not the author")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	mentionedIDs, mentioned, err := s.resolveMentions(ctx, in.Content, current.AuthorID)
	if err != nil {
		lg.Error("directory error on UsersByHandles", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	result, err := s.storage.UpdateContent(ctx, in.CommentID, in.Content, mentionedIDs)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateContent", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	batch := []models.Comment{*result}
	if err := s.enrich(ctx, batch); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	// Упоминания уже отрезолвлены по новому тексту — не даём enrich
	// перекрыть их устаревшим состоянием.
	batch[0].Mentioned = mentioned

	return &batch[0], nil
}

// DeleteComment — удаление комментария его автором. Для корневого
// комментария каскадно удаляются и все его ответы. Возвращает общее
// число удалённых документов.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id/актор;
//   - ErrNotFound — комментарий не найден;
//   - ErrForbidden — актор не является автором;
//   - ErrInternal — иные ошибки.
func (s *Service) DeleteComment(ctx context.Context, id string, actorID uuid.UUID) (int64, error) {
	const op = "service/comments/DeleteComment"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "id", id, "actor_id", actorID.String())

	if id == "" || actorID == uuid.Nil {
		lg.Warn("invalid argument: empty id or actor_id")
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return 0, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if current.AuthorID != actorID {
		lg.Warn("forbidden: actor is not the author")
		return 0, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	deleted, err := s.storage.DeleteComment(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on DeleteComment", "err", err)
			return 0, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return deleted, nil
}

// ListByAuthor — страница всех комментариев пользователя (корни и
// ответы), сначала новые.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой userID;
//   - ErrUserNotFound — пользователь отсутствует;
//   - ErrInternal — иные ошибки.
func (s *Service) ListByAuthor(ctx context.Context, in ListByUserInput) (*models.Page, error) {
	const op = "service/comments/ListByAuthor"

	lg := log.From(ctx).With("op", op, "user_id", in.UserID.String())

	if in.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if _, err := s.directory.UserByID(ctx, in.UserID); err != nil {
		if isDirNotFound(err) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("directory error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	params := pagination.Normalize(in.Page, in.Limit, s.limits())

	total, err := s.storage.CountByAuthor(ctx, in.UserID)
	if err != nil {
		lg.Error("storage error on CountByAuthor", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	items, err := s.storage.ListByAuthor(ctx, in.UserID, storage.Window{
		Skip:  params.Skip(),
		Limit: params.Limit,
	})
	if err != nil {
		lg.Error("storage error on ListByAuthor", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.enrich(ctx, items); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &models.Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: params.Pages(total),
	}, nil
}

// ListMentioning — страница комментариев, упоминающих пользователя,
// сначала новые.
//
// Поведение/ошибки: как у ListByAuthor.
func (s *Service) ListMentioning(ctx context.Context, in ListByUserInput) (*models.Page, error) {
	const op = "service/comments/ListMentioning"

	lg := log.From(ctx).With("op", op, "user_id", in.UserID.String())

	if in.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if _, err := s.directory.UserByID(ctx, in.UserID); err != nil {
		if isDirNotFound(err) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("directory error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	params := pagination.Normalize(in.Page, in.Limit, s.limits())

	total, err := s.storage.CountMentioning(ctx, in.UserID)
	if err != nil {
		lg.Error("storage error on CountMentioning", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	items, err := s.storage.ListMentioning(ctx, in.UserID, storage.Window{
		Skip:  params.Skip(),
		Limit: params.Limit,
	})
	if err != nil {
		lg.Error("storage error on ListMentioning", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.enrich(ctx, items); err != nil {
		lg.Error("directory error on enrich", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return &models.Page{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: params.Pages(total),
	}, nil
}

// CountByItem — количество корневых комментариев объявления
// (для карточки объявления).
func (s *Service) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	const op = "service/comments/CountByItem"

	lg := log.From(ctx).With("op", op, "item_id", itemID.String())

	if itemID == uuid.Nil {
		lg.Warn("invalid argument: empty item_id")
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	total, err := s.storage.CountByItem(ctx, itemID, false)
	if err != nil {
		lg.Error("storage error on CountByItem", "err", err)
		return 0, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return total, nil
}

// CountByAuthor — количество комментариев пользователя (для профиля).
func (s *Service) CountByAuthor(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service/comments/CountByAuthor"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	total, err := s.storage.CountByAuthor(ctx, userID)
	if err != nil {
		lg.Error("storage error on CountByAuthor", "err", err)
		return 0, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return total, nil
}
