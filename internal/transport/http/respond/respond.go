// respond стандартизирует JSON-ответы comments-сервиса: единый
// конверт {success, message?, data?} (+count/total/page/pages для
// списков) и маппинг сервисных ошибок в HTTP-статусы. Внутренние
// детали ошибок на клиент не утекают.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusfinds/comments-service/internal/auth"
	"github.com/campusfinds/comments-service/internal/service"
)

// Envelope — ответ одиночной операции.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListEnvelope — ответ списочной операции; count/total/page/pages
// присутствуют всегда, даже нулевые.
type ListEnvelope struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Count   int64 `json:"count"`
	Total   int64 `json:"total"`
	Page    int64 `json:"page"`
	Pages   int64 `json:"pages"`
}

// JSON — единый ответ JSON с нужным Content-Type.
func JSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// OK — 200 с данными.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created — 201 с данными.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message — 200 с сообщением и (опционально) данными.
func Message(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// List — 200 со страницей данных и метаданными пагинации.
func List(w http.ResponseWriter, data any, count, total, page, pages int64) {
	JSON(w, http.StatusOK, ListEnvelope{
		Success: true,
		Data:    data,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   pages,
	})
}

// Fail — произвольный отрицательный ответ с безопасным сообщением.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// Error конвертирует ошибку сервисного слоя в HTTP-статус и
// унифицированный ответ. Сообщение всегда называет отсутствующую
// сущность («item not found», «parent comment not found»), но не
// раскрывает внутренних деталей.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := toHTTP(err)
	Fail(w, status, message)
}

// toHTTP — маппинг сервисных ошибок:
//   - ErrInvalidArgument -> 400;
//   - ошибки токена -> 401;
//   - ErrForbidden -> 403;
//   - *NotFound -> 404;
//   - ErrParentIsReply -> 412 (логическое ограничение вложенности);
//   - прочее -> 500/internal.
func toHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid argument"
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, service.ErrAuthorNotFound):
		return http.StatusNotFound, "author not found"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, service.ErrParentNotFound):
		return http.StatusNotFound, "parent comment not found"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "comment not found"
	case errors.Is(err, service.ErrParentIsReply):
		return http.StatusPreconditionFailed, "parent comment is a reply"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
