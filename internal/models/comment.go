// Package models содержит доменные сущности comments-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment — внутренняя доменная модель комментария (MongoDB).
// Важно:
//   - ID — ObjectID MongoDB. Наружу/вовнутрь конвертируется в string.
//   - ItemID/AuthorID — UUID из смежных сервисов платформы (items/students).
//   - ParentID — ObjectID корневого комментария; "" для корней.
//   - IsReply — денормализация parent_id != "" для индексных выборок;
//     всегда вычисляется на записи, никогда не принимается от клиента.
//   - MentionedIDs — упоминания из текста, порядок первого вхождения,
//     без дублей и без самого автора; пересчитываются при каждом
//     редактировании текста.
//   - LikerIDs — множество лайкнувших; меняется только атомарным toggle.
//   - IsEdited/EditedAt — выставляются вместе при каждом изменении текста.
//   - CreatedAt/UpdatedAt — UTC, точность до миллисекунды (Mongo DateTime).
type Comment struct {
	ID           string
	ItemID       uuid.UUID
	AuthorID     uuid.UUID
	Content      string
	MentionedIDs []uuid.UUID
	ParentID     string
	IsReply      bool
	LikerIDs     []uuid.UUID
	IsEdited     bool
	EditedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Производные поля, не хранятся в коллекции; заполняются сервисом.
	ReplyCount int64
	Author     *UserRef
	Mentioned  []UserRef
}

// LikeCount — количество лайков (длина множества лайкнувших).
func (c *Comment) LikeCount() int64 {
	return int64(len(c.LikerIDs))
}

// UserRef — каноническая ссылка на пользователя платформы
// (подмножество профиля students, достаточное для отображения).
type UserRef struct {
	ID        uuid.UUID
	Username  string
	Name      string
	AvatarURL string
}

// ItemRef — ссылка на объявление о находке/потере.
type ItemRef struct {
	ID     uuid.UUID
	Name   string
	Kind   string // lost | found
	Status string // available | claimed | resolved
}

// Page — результат постраничной выдачи.
// Items — элементы текущей страницы; Total — всего записей по фильтру;
// Page/Pages — номер страницы и их общее количество.
type Page struct {
	Items []Comment
	Total int64
	Page  int64
	Pages int64
}

// LikeState — результат переключения лайка.
type LikeState struct {
	Liked     bool
	LikeCount int64
}
