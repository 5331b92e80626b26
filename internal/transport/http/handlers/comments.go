package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusfinds/comments-service/internal/models"
	"github.com/campusfinds/comments-service/internal/service"
	"github.com/campusfinds/comments-service/internal/transport/http/middleware"
	"github.com/campusfinds/comments-service/internal/transport/http/respond"
)

// DTO ответов. Имена полей повторяют контракт платформы (camelCase).

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type commentResponse struct {
	ID              string         `json:"id"`
	ItemID          string         `json:"itemId"`
	AuthorID        string         `json:"authorId"`
	Author          *userResponse  `json:"author,omitempty"`
	Text            string         `json:"text"`
	Mentions        []userResponse `json:"mentions"`
	ParentCommentID string         `json:"parentCommentId,omitempty"`
	IsReply         bool           `json:"isReply"`
	LikeCount       int64          `json:"likeCount"`
	ReplyCount      int64          `json:"replyCount"`
	IsEdited        bool           `json:"isEdited"`
	EditedAt        *time.Time     `json:"editedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type likeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

func toUserResponse(ref models.UserRef) userResponse {
	return userResponse{
		ID:        ref.ID.String(),
		Username:  ref.Username,
		Name:      ref.Name,
		AvatarURL: ref.AvatarURL,
	}
}

func toCommentResponse(c models.Comment) commentResponse {
	out := commentResponse{
		ID:              c.ID,
		ItemID:          c.ItemID.String(),
		AuthorID:        c.AuthorID.String(),
		Text:            c.Content,
		Mentions:        []userResponse{},
		ParentCommentID: c.ParentID,
		IsReply:         c.IsReply,
		LikeCount:       c.LikeCount(),
		ReplyCount:      c.ReplyCount,
		IsEdited:        c.IsEdited,
		EditedAt:        c.EditedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	if c.Author != nil {
		author := toUserResponse(*c.Author)
		out.Author = &author
	}

	for _, ref := range c.Mentioned {
		out.Mentions = append(out.Mentions, toUserResponse(ref))
	}

	return out
}

func toCommentResponses(items []models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCommentResponse(c))
	}
	return out
}

// CreateComment — POST /comments.
// Тело: {text, itemId, authorId?, parentCommentId?}; автор — актор из
// токена; явный authorId обязан совпадать с актором.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text            string `json:"text"`
		ItemID          string `json:"itemId"`
		AuthorID        string `json:"authorId"`
		ParentCommentID string `json:"parentCommentId"`
	}

	if err := decodeStrict(r, &req); err != nil {
		respond.Error(w, r, service.ErrInvalidArgument)
		return
	}

	actorID := middleware.ActorFrom(r.Context())

	if req.AuthorID != "" && req.AuthorID != actorID.String() {
		respond.Error(w, r, service.ErrForbidden)
		return
	}

	var itemID uuid.UUID
	if req.ItemID != "" {
		parsed, err := uuid.Parse(req.ItemID)
		if err != nil {
			respond.Error(w, r, service.ErrInvalidArgument)
			return
		}
		itemID = parsed
	}

	result, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		ItemID:   itemID,
		AuthorID: actorID,
		ParentID: req.ParentCommentID,
		Content:  req.Text,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toCommentResponse(*result))
}

// CommentByID — GET /comments/{id}.
func (h *Handlers) CommentByID(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CommentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toCommentResponse(*result))
}

// ListByItem — GET /comments/item/{itemId}?includeReplies&page&limit.
func (h *Handlers) ListByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respond.Error(w, r, service.ErrInvalidArgument)
		return
	}

	page, limit := pageParams(r)

	result, err := h.svc.ListByItem(r.Context(), service.ListByItemInput{
		ItemID:         itemID,
		IncludeReplies: r.URL.Query().Get("includeReplies") == "true",
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.List(w, toCommentResponses(result.Items),
		int64(len(result.Items)), result.Total, result.Page, result.Pages)
}

// ListReplies — GET /comments/{id}/replies?page&limit.
func (h *Handlers) ListReplies(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := h.svc.ListReplies(r.Context(), service.ListRepliesInput{
		ParentID: chi.URLParam(r, "id"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.List(w, toCommentResponses(result.Items),
		int64(len(result.Items)), result.Total, result.Page, result.Pages)
}

// UpdateComment — PUT /comments/{id}, только автор.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}

	if err := decodeStrict(r, &req); err != nil {
		respond.Error(w, r, service.ErrInvalidArgument)
		return
	}

	result, err := h.svc.UpdateComment(r.Context(), service.UpdateCommentInput{
		CommentID: chi.URLParam(r, "id"),
		ActorID:   middleware.ActorFrom(r.Context()),
		Content:   req.Text,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toCommentResponse(*result))
}

// DeleteComment — DELETE /comments/{id}, только автор. Для корневого
// комментария каскадно удаляются и ответы.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.DeleteComment(r.Context(), chi.URLParam(r, "id"), middleware.ActorFrom(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Message(w, "comment deleted", map[string]int64{"deleted": deleted})
}

// ToggleLike — POST /comments/{id}/like. Актор — из токена; явный
// actorId в теле обязан совпадать с ним.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorFrom(r.Context())

	if r.ContentLength > 0 {
		var req struct {
			ActorID string `json:"actorId"`
		}

		if err := decodeStrict(r, &req); err != nil {
			respond.Error(w, r, service.ErrInvalidArgument)
			return
		}

		if req.ActorID != "" && req.ActorID != actorID.String() {
			respond.Error(w, r, service.ErrForbidden)
			return
		}
	}

	state, err := h.svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, likeResponse{Liked: state.Liked, LikeCount: state.LikeCount})
}

// ListByAuthor — GET /comments/student/{id}?page&limit.
func (h *Handlers) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, service.ErrInvalidArgument)
		return
	}

	page, limit := pageParams(r)

	result, err := h.svc.ListByAuthor(r.Context(), service.ListByUserInput{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.List(w, toCommentResponses(result.Items),
		int64(len(result.Items)), result.Total, result.Page, result.Pages)
}

// ListMentioning — GET /comments/mentions/{id}?page&limit.
func (h *Handlers) ListMentioning(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, service.ErrInvalidArgument)
		return
	}

	page, limit := pageParams(r)

	result, err := h.svc.ListMentioning(r.Context(), service.ListByUserInput{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.List(w, toCommentResponses(result.Items),
		int64(len(result.Items)), result.Total, result.Page, result.Pages)
}
