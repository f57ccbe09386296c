package routes

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrRouteNotFound = errors.New("route not found")

// Service interface defines the contract for route business logic
type Service interface {
	CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context, activeOnly bool) ([]Route, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, req UpdateRouteRequest) (*Route, error)

	// GetBaseFare is the fare lookup consumed by the hold and payment flows.
	GetBaseFare(ctx context.Context, id uuid.UUID) (float64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error) {
	route := &Route{
		Name:        req.Name,
		Origin:      req.Origin,
		Destination: req.Destination,
		BaseFare:    req.BaseFare,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *service) GetRoute(ctx context.Context, id uuid.UUID) (*Route, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListRoutes(ctx context.Context, activeOnly bool) ([]Route, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateRoute(ctx context.Context, id uuid.UUID, req UpdateRouteRequest) (*Route, error) {
	route, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.Origin != nil {
		route.Origin = *req.Origin
	}
	if req.Destination != nil {
		route.Destination = *req.Destination
	}
	if req.BaseFare != nil {
		route.BaseFare = *req.BaseFare
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *service) GetBaseFare(ctx context.Context, id uuid.UUID) (float64, error) {
	route, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !route.IsActive {
		return 0, ErrRouteNotFound
	}
	return route.BaseFare, nil
}
