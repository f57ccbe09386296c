package notifications

import (
	"context"

	"github.com/google/uuid"

	"transitly/internal/shared/apperrors"
	"transitly/pkg/logger"
)

// Service interface defines the contract for notification logic
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType Type, title, body string)
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new notification service instance
func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: logger.GetDefault(),
	}
}

// Notify persists a notification, swallowing failures. Callers never
// block or fail on notification delivery.
func (s *service) Notify(ctx context.Context, userID uuid.UUID, notifType Type, title, body string) {
	notification := &Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to persist notification", err, map[string]interface{}{
			"user_id": userID.String(),
			"type":    string(notifType),
		})
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}
