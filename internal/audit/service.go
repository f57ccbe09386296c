package audit

import (
	"context"

	"github.com/google/uuid"

	"transitly/pkg/logger"
)

// Service interface defines the contract for the audit trail
type Service interface {
	Record(actorID *uuid.UUID, action, path string, status int, clientIP string)
	List(ctx context.Context, query ListQuery) ([]Log, int64, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new audit service instance
func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: logger.GetDefault(),
	}
}

// Record writes an audit entry in the background. It deliberately takes
// no context: the request that triggered it has already completed.
func (s *service) Record(actorID *uuid.UUID, action, path string, status int, clientIP string) {
	entry := &Log{
		ActorID:  actorID,
		Action:   action,
		Path:     path,
		Status:   status,
		ClientIP: clientIP,
	}
	go func() {
		if err := s.repo.Create(context.Background(), entry); err != nil {
			s.logger.Error("Failed to write audit entry", "error", err.Error(), "path", path)
		}
	}()
}

func (s *service) List(ctx context.Context, query ListQuery) ([]Log, int64, error) {
	return s.repo.List(ctx, query)
}
