// Package mongo — реализация справочника платформы поверх коллекций
// items/students той же базы MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusfinds/comments-service/internal/directory"
	"github.com/campusfinds/comments-service/internal/models"
	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

const (
	itemsCollection    = "items"
	studentsCollection = "students"
)

// itemDoc — проекция объявления (только поля, нужные сервису комментариев).
type itemDoc struct {
	ID     uuid.UUID `bson:"_id"`
	Name   string    `bson:"name"`
	Kind   string    `bson:"kind"`
	Status string    `bson:"status"`
}

// studentDoc — проекция профиля студента.
type studentDoc struct {
	ID        uuid.UUID `bson:"_id"`
	Username  string    `bson:"username"`
	Name      string    `bson:"name"`
	AvatarURL string    `bson:"avatar_url"`
}

// Directory — адаптер чтения справочных коллекций.
type Directory struct {
	items    *mongodriver.Collection
	students *mongodriver.Collection
}

// New строит справочник поверх уже открытой базы
// (разделяет подключение с хранилищем комментариев).
func New(db *mongodriver.Database) (*Directory, error) {
	if db == nil {
		return nil, fmt.Errorf("directory/mongo: nil database")
	}

	return &Directory{
		items:    db.Collection(itemsCollection),
		students: db.Collection(studentsCollection),
	}, nil
}

// ItemByID возвращает объявление по идентификатору.
func (d *Directory) ItemByID(ctx context.Context, id uuid.UUID) (*models.ItemRef, error) {
	const op = "directory/mongo/ItemByID"

	var doc itemDoc
	if err := d.items.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, directory.ErrItemNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.ItemRef{
		ID:     doc.ID,
		Name:   doc.Name,
		Kind:   doc.Kind,
		Status: doc.Status,
	}, nil
}

// UserByID возвращает профиль пользователя по идентификатору.
func (d *Directory) UserByID(ctx context.Context, id uuid.UUID) (*models.UserRef, error) {
	const op = "directory/mongo/UserByID"

	var doc studentDoc
	if err := d.students.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, directory.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ref := toUserRef(doc)

	return &ref, nil
}

// UsersByHandles возвращает профили по списку хендлов одним запросом
// ($in). Несуществующие хендлы молча опускаются; порядок результата
// соответствует порядку найденных хендлов во входном списке.
func (d *Directory) UsersByHandles(ctx context.Context, handles []string) ([]models.UserRef, error) {
	const op = "directory/mongo/UsersByHandles"

	if len(handles) == 0 {
		return nil, nil
	}

	cur, err := d.students.Find(ctx, bson.D{
		{Key: "username", Value: bson.D{{Key: "$in", Value: handles}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	byHandle := make(map[string]models.UserRef, len(handles))

	for cur.Next(ctx) {
		var doc studentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		byHandle[doc.Username] = toUserRef(doc)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	// Порядок входного списка, без дублей.
	out := make([]models.UserRef, 0, len(byHandle))
	seen := make(map[string]struct{}, len(handles))

	for _, h := range handles {
		if _, ok := seen[h]; ok {
			continue
		}

		seen[h] = struct{}{}

		if ref, ok := byHandle[h]; ok {
			out = append(out, ref)
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out, nil
}

// UsersByIDs возвращает профили по списку идентификаторов одним
// запросом; несуществующие идентификаторы молча опускаются.
func (d *Directory) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserRef, error) {
	const op = "directory/mongo/UsersByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := d.students.Find(ctx, bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	byID := make(map[uuid.UUID]models.UserRef, len(ids))

	for cur.Next(ctx) {
		var doc studentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		byID[doc.ID] = toUserRef(doc)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	out := make([]models.UserRef, 0, len(byID))
	seen := make(map[uuid.UUID]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}

		if ref, ok := byID[id]; ok {
			out = append(out, ref)
		}
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out, nil
}

func toUserRef(doc studentDoc) models.UserRef {
	return models.UserRef{
		ID:        doc.ID,
		Username:  doc.Username,
		Name:      doc.Name,
		AvatarURL: doc.AvatarURL,
	}
}
