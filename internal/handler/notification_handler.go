package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID            uint64  `json:"id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Body          string  `json:"body"`
	LockID        *string `json:"lockId,omitempty"`
	TransactionID *string `json:"transactionId,omitempty"`
	Read          bool    `json:"read"`
	CreatedAt     string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		LockID:        n.LockID,
		TransactionID: n.TransactionID,
		Read:          n.ReadAt != nil,
		CreatedAt:     formatTime(n.CreatedAt),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	f := repository.NotificationFilter{
		UnreadOnly:    c.QueryParam("unread_only") != "false",
		Type:          c.QueryParam("type"),
		LockID:        c.QueryParam("lockId"),
		TransactionID: c.QueryParam("transactionId"),
		Limit:         queryInt(c, "limit", 20),
		Offset:        queryInt(c, "offset", 0),
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, f)
	if err != nil {
		return writeError(c, err, "fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unreadCount":   unreadCount,
	})
}

type markReadRequest struct {
	IDs []uint64 `json:"ids"`
}

// MarkRead marks the listed notifications read, or all of them when the body
// carries no ids.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	var req markReadRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
		}
	}
	n, err := h.svc.MarkRead(c.Request().Context(), uid, req.IDs)
	if err != nil {
		return writeError(c, err, "mark read")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "updated": n})
}
