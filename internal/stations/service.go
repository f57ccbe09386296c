package stations

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrStationNotFound = errors.New("station not found")

type Service interface {
	CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error)
	GetStation(ctx context.Context, id uuid.UUID) (*Station, error)
	ListStations(ctx context.Context, activeOnly bool) ([]Station, error)
	UpdateStation(ctx context.Context, id uuid.UUID, req UpdateStationRequest) (*Station, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error) {
	station := &Station{
		Name:     req.Name,
		City:     req.City,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}

func (s *service) GetStation(ctx context.Context, id uuid.UUID) (*Station, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListStations(ctx context.Context, activeOnly bool) ([]Station, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateStation(ctx context.Context, id uuid.UUID, req UpdateStationRequest) (*Station, error) {
	station, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.City != nil {
		station.City = *req.City
	}
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}
