package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

type postMessageRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

// PostMessage сохраняет обращение покупателя.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.service.PostMessage(r.Context(), req.Username, req.Name, req.Message); err != nil {
		h.respondError(w, err, "post message", zap.String("username", req.Username))
		return
	}
	h.writeJSON(w, http.StatusCreated, messageResponse{Message: "Message sent"})
}

// GetMessages возвращает все обращения.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context())
	if err != nil {
		h.respondError(w, err, "list messages")
		return
	}
	h.writeMessages(w, messages)
}

// GetUserMessages возвращает обращения пользователя вместе с ответами.
func (h *Handler) GetUserMessages(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	messages, err := h.service.ListUserMessages(r.Context(), username)
	if err != nil {
		h.respondError(w, err, "list user messages", zap.String("username", username))
		return
	}
	h.writeMessages(w, messages)
}

func (h *Handler) writeMessages(w http.ResponseWriter, messages []model.Message) {
	if messages == nil {
		messages = []model.Message{}
	}
	h.writeJSON(w, http.StatusOK, messages)
}

type replyMessageRequest struct {
	MsgID string `json:"msgId"`
	Reply string `json:"reply"`
}

// ReplyMessage сохраняет ответ администратора.
func (h *Handler) ReplyMessage(w http.ResponseWriter, r *http.Request) {
	var req replyMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ReplyMessage(r.Context(), req.MsgID, req.Reply); err != nil {
		h.respondError(w, err, "reply message", zap.String("message", req.MsgID))
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Reply sent"})
}
