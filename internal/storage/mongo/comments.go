package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusfinds/comments-service/internal/models"
	"github.com/campusfinds/comments-service/internal/storage"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// commentDoc — представление комментария в коллекции.
// ParentID хранится hex-строкой ObjectID родителя ("" для корней).
type commentDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ItemID       uuid.UUID          `bson:"item_id"`
	AuthorID     uuid.UUID          `bson:"author_id"`
	Content      string             `bson:"content"`
	MentionedIDs []uuid.UUID        `bson:"mentioned_ids"`
	ParentID     string             `bson:"parent_id"`
	IsReply      bool               `bson:"is_reply"`
	LikerIDs     []uuid.UUID        `bson:"liker_ids"`
	IsEdited     bool               `bson:"is_edited"`
	EditedAt     *time.Time         `bson:"edited_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// toModel конвертирует документ в доменную модель, нормализуя времена к UTC.
func (d commentDoc) toModel() models.Comment {
	out := models.Comment{
		ID:           d.ID.Hex(),
		ItemID:       d.ItemID,
		AuthorID:     d.AuthorID,
		Content:      d.Content,
		MentionedIDs: d.MentionedIDs,
		ParentID:     d.ParentID,
		IsReply:      d.IsReply,
		LikerIDs:     d.LikerIDs,
		IsEdited:     d.IsEdited,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}

	if d.EditedAt != nil {
		t := d.EditedAt.UTC()
		out.EditedAt = &t
	}

	return out
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// CreateComment создаёт комментарий (корневой или ответ).
//   - Для ответа проверяет существование родителя и что родитель сам
//     не является ответом (разрешён один уровень вложенности).
//   - ItemID ответа принудительно берётся у родителя (защита от рассинхрона).
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	now := toMS(time.Now())

	doc := commentDoc{
		ItemID:       comm.ItemID,
		AuthorID:     comm.AuthorID,
		Content:      comm.Content,
		MentionedIDs: comm.MentionedIDs,
		ParentID:     "",
		IsReply:      false,
		LikerIDs:     []uuid.UUID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if doc.MentionedIDs == nil {
		doc.MentionedIDs = []uuid.UUID{}
	}

	if strings.TrimSpace(comm.ParentID) != "" {
		parentOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(comm.ParentID))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		var parent commentDoc
		if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: parentOID}}).Decode(&parent); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		if parent.IsReply {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentIsReply)
		}

		doc.ParentID = parentOID.Hex()
		doc.IsReply = true
		doc.ItemID = parent.ItemID
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()

	return &out, nil
}

// CommentByID возвращает комментарий по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// UpdateContent заменяет текст и упоминания, помечая комментарий
// отредактированным. Возвращает обновлённый документ.
func (m *Mongo) UpdateContent(ctx context.Context, id, content string, mentionedIDs []uuid.UUID) (*models.Comment, error) {
	const op = "storage/mongo/UpdateContent"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if mentionedIDs == nil {
		mentionedIDs = []uuid.UUID{}
	}

	now := toMS(time.Now())

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "mentioned_ids", Value: mentionedIDs},
		{Key: "is_edited", Value: true},
		{Key: "edited_at", Value: now},
		{Key: "updated_at", Value: now},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc commentDoc
	if err := m.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// DeleteComment удаляет комментарий; для корневого каскадно удаляет
// ответы. Возвращает общее число удалённых документов.
func (m *Mongo) DeleteComment(ctx context.Context, id string) (int64, error) {
	const op = "storage/mongo/DeleteComment"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return 0, fmt.Errorf("%s: find: %w", op, err)
	}

	filter := bson.D{{Key: "_id", Value: oid}}
	if !doc.IsReply {
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "_id", Value: oid}},
			bson.D{{Key: "parent_id", Value: oid.Hex()}},
		}}}
	}

	res, err := m.comments.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: delete: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return res.DeletedCount, nil
}

// ToggleLike атомарно переключает лайк пользователя в liker_ids.
// Два шага, каждый из которых — одна атомарная операция:
//  1. $addToSet с условием «пользователя нет в множестве» -> liked=true;
//  2. если первый шаг никого не нашёл — $pull -> liked=false;
//  3. если и второй никого не нашёл — комментария нет.
func (m *Mongo) ToggleLike(ctx context.Context, id string, userID uuid.UUID) (*models.LikeState, error) {
	const op = "storage/mongo/ToggleLike"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	now := toMS(time.Now())

	addFilter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "liker_ids", Value: bson.D{{Key: "$ne", Value: userID}}},
	}
	addUpdate := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "liker_ids", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
	}

	var doc commentDoc
	err = m.comments.FindOneAndUpdate(ctx, addFilter, addUpdate, opts).Decode(&doc)
	if err == nil {
		return &models.LikeState{Liked: true, LikeCount: int64(len(doc.LikerIDs))}, nil
	}

	if !errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: add: %w", op, err)
	}

	pullFilter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "liker_ids", Value: userID},
	}
	pullUpdate := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "liker_ids", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
	}

	err = m.comments.FindOneAndUpdate(ctx, pullFilter, pullUpdate, opts).Decode(&doc)
	if err == nil {
		return &models.LikeState{Liked: false, LikeCount: int64(len(doc.LikerIDs))}, nil
	}

	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil, fmt.Errorf("%s: pull: %w", op, err)
}

// itemFilter — фильтр комментариев объявления: все или только корни.
func itemFilter(itemID uuid.UUID, includeReplies bool) bson.D {
	filter := bson.D{{Key: "item_id", Value: itemID}}
	if !includeReplies {
		filter = append(filter, bson.E{Key: "is_reply", Value: false})
	}

	return filter
}

// ListByItem возвращает окно комментариев объявления.
// Сортировка: created_at DESC, _id DESC.
func (m *Mongo) ListByItem(ctx context.Context, itemID uuid.UUID, includeReplies bool, w storage.Window) ([]models.Comment, error) {
	const op = "storage/mongo/ListByItem"

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(w.Skip).
		SetLimit(w.Limit)

	return m.list(ctx, op, itemFilter(itemID, includeReplies), opts)
}

// CountByItem — количество комментариев объявления.
func (m *Mongo) CountByItem(ctx context.Context, itemID uuid.UUID, includeReplies bool) (int64, error) {
	const op = "storage/mongo/CountByItem"

	total, err := m.comments.CountDocuments(ctx, itemFilter(itemID, includeReplies))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// ListReplies возвращает окно ответов одной ветки.
// Сортировка: created_at ASC, _id ASC — удобно для постепенной подзагрузки.
func (m *Mongo) ListReplies(ctx context.Context, parentID string, w storage.Window) ([]models.Comment, error) {
	const op = "storage/mongo/ListReplies"

	parentOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(parentID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	filter := bson.D{{Key: "parent_id", Value: parentOID.Hex()}}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(w.Skip).
		SetLimit(w.Limit)

	return m.list(ctx, op, filter, opts)
}

// CountReplies — количество ответов в ветке.
func (m *Mongo) CountReplies(ctx context.Context, parentID string) (int64, error) {
	const op = "storage/mongo/CountReplies"

	parentOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(parentID))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	total, err := m.comments.CountDocuments(ctx, bson.D{{Key: "parent_id", Value: parentOID.Hex()}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// ReplyCounts возвращает количество ответов для каждой из веток одним
// агрегирующим запросом. Ветки без ответов в карте отсутствуют.
func (m *Mongo) ReplyCounts(ctx context.Context, parentIDs []string) (map[string]int64, error) {
	const op = "storage/mongo/ReplyCounts"

	if len(parentIDs) == 0 {
		return map[string]int64{}, nil
	}

	hexes := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			continue
		}

		hexes = append(hexes, oid.Hex())
	}

	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "parent_id", Value: bson.D{{Key: "$in", Value: hexes}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$parent_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := m.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", op, err)
	}
	defer cur.Close(ctx)

	out := make(map[string]int64, len(hexes))

	for cur.Next(ctx) {
		var row struct {
			ParentID string `bson:"_id"`
			Count    int64  `bson:"count"`
		}

		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		out[row.ParentID] = row.Count
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

// ListByAuthor возвращает окно всех комментариев пользователя (корни и ответы).
// Сортировка: created_at DESC, _id DESC.
func (m *Mongo) ListByAuthor(ctx context.Context, authorID uuid.UUID, w storage.Window) ([]models.Comment, error) {
	const op = "storage/mongo/ListByAuthor"

	filter := bson.D{{Key: "author_id", Value: authorID}}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(w.Skip).
		SetLimit(w.Limit)

	return m.list(ctx, op, filter, opts)
}

// CountByAuthor — количество комментариев пользователя.
func (m *Mongo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	const op = "storage/mongo/CountByAuthor"

	total, err := m.comments.CountDocuments(ctx, bson.D{{Key: "author_id", Value: authorID}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// ListMentioning возвращает окно комментариев, упоминающих пользователя.
// Сортировка: created_at DESC, _id DESC.
func (m *Mongo) ListMentioning(ctx context.Context, userID uuid.UUID, w storage.Window) ([]models.Comment, error) {
	const op = "storage/mongo/ListMentioning"

	filter := bson.D{{Key: "mentioned_ids", Value: userID}}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(w.Skip).
		SetLimit(w.Limit)

	return m.list(ctx, op, filter, opts)
}

// CountMentioning — количество комментариев, упоминающих пользователя.
func (m *Mongo) CountMentioning(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "storage/mongo/CountMentioning"

	total, err := m.comments.CountDocuments(ctx, bson.D{{Key: "mentioned_ids", Value: userID}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// list — общая выборка окна документов по фильтру.
func (m *Mongo) list(ctx context.Context, op string, filter bson.D, opts *options.FindOptions) ([]models.Comment, error) {
	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Comment

	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}
