package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

const guestName = "Guest"

// PostMessage сохраняет обращение покупателя. Имя по умолчанию берётся из логина.
func (s *Service) PostMessage(ctx context.Context, username, name, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("message", "required")
	}

	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	if name == "" {
		name = guestName
	}

	m := &model.Message{Username: username, Name: name, Text: text}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages возвращает все обращения, новые первыми.
func (s *Service) ListMessages(ctx context.Context) ([]model.Message, error) {
	return s.repo.ListMessages(ctx)
}

// ListUserMessages возвращает обращения пользователя вместе с ответами.
func (s *Service) ListUserMessages(ctx context.Context, username string) ([]model.Message, error) {
	return s.repo.ListMessagesByUser(ctx, username)
}

// ReplyMessage сохраняет ответ администратора на обращение.
func (s *Service) ReplyMessage(ctx context.Context, id, reply string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("msgId", "required")
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return invalid("reply", "required")
	}
	return s.repo.ReplyMessage(ctx, id, reply)
}
