package session

import (
	"context"
)

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context, userID int, q ListQuery) ([]Session, error) {
	return s.repo.List(ctx, userID, q.IncludeArchived, q.Limit, q.Offset)
}

func (s *ServiceImpl) Create(ctx context.Context, userID int, req CreateSessionRequest) (*Session, error) {
	session := &Session{
		UserID:   userID,
		Title:    valueOr(req.Title, DefaultTitle),
		Provider: valueOr(req.Provider, DefaultProvider),
		Model:    valueOr(req.Model, DefaultModel),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ServiceImpl) Search(ctx context.Context, userID int, q SearchQuery) ([]Session, error) {
	return s.repo.Search(ctx, userID, q.Q, q.Limit)
}

func (s *ServiceImpl) Get(ctx context.Context, userID, sessionID int) (*Detail, error) {
	session, err := s.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.AllMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Detail{Session: *session, Messages: messages}, nil
}

func (s *ServiceImpl) Update(ctx context.Context, userID, sessionID int, req UpdateSessionRequest) (*Session, error) {
	session, err := s.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.IsArchived != nil {
		session.IsArchived = *req.IsArchived
	}
	if req.IsPinned != nil {
		session.IsPinned = *req.IsPinned
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, userID, sessionID int) error {
	return s.repo.Delete(ctx, userID, sessionID)
}

func (s *ServiceImpl) ListMessages(ctx context.Context, userID, sessionID int, q MessageQuery) ([]Message, error) {
	if _, err := s.repo.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.repo.Messages(ctx, sessionID, q.Limit, q.Offset)
}

func (s *ServiceImpl) CreateMessage(ctx context.Context, userID, sessionID int, req CreateMessageRequest) (*Message, error) {
	if _, err := s.repo.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	message := &Message{
		SessionID:        sessionID,
		Role:             req.Role,
		Content:          valueOr(req.Content, ""),
		ThinkingContent:  req.ThinkingContent,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		TotalTokens:      req.TotalTokens,
		Model:            req.Model,
		Provider:         req.Provider,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ServiceImpl) DeleteMessage(ctx context.Context, userID, sessionID, messageID int) error {
	if _, err := s.repo.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.repo.DeleteMessage(ctx, sessionID, messageID)
}

func (s *ServiceImpl) ClearMessages(ctx context.Context, userID, sessionID int) error {
	if _, err := s.repo.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.repo.ClearMessages(ctx, sessionID)
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
