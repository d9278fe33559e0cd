package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type chatRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id"`
}

type chatResponse struct {
	ThreadID string `json:"thread_id"`
	Response string `json:"response"`
	Queries  int    `json:"queries"`
}

// Chat answers one free-text query. A missing thread_id starts a new
// conversation thread.
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}

	ctx := c.Request().Context()
	userKey, _ := c.Get("user_hash").(string)

	answer := h.answerer.Answer(ctx, req.Query)

	if err := h.store.SaveChatHistory(ctx, req.ThreadID, userKey, req.Query, map[string]string{
		"content": answer,
		"type":    "chat_response",
	}); err != nil {
		h.log.Warn("chat history save failed", zap.Error(err))
	}

	return c.JSON(http.StatusOK, chatResponse{
		ThreadID: req.ThreadID,
		Response: answer,
		Queries:  h.store.UserChatCount(ctx, userKey),
	})
}

// ChatHistory returns the caller's newest chat entries, optionally for one
// thread.
func (h *Handler) ChatHistory(c echo.Context) error {
	userKey, _ := c.Get("user_hash").(string)
	threadID := c.QueryParam("thread_id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	rows, err := h.store.RecentChatHistory(c.Request().Context(), threadID, userKey, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
