package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the service layer.
var (
	ErrNotFound  = errors.New("progress not found")
	ErrForbidden = errors.New("a tenant session is required")
)

// Progress represents a playback position for one (tenant, video) pair.
type Progress struct {
	TenantID  uuid.UUID
	VideoID   uuid.UUID
	Position  float64
	UpdatedAt time.Time
}

// Repository abstracts persistence.
type Repository interface {
	Upsert(ctx context.Context, tenantID, videoID uuid.UUID, position float64) (Progress, error)
	Get(ctx context.Context, tenantID, videoID uuid.UUID) (Progress, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Progress, error)
	Delete(ctx context.Context, tenantID, videoID uuid.UUID) (bool, error)
}

// Service provides playback progress operations.
type Service struct {
	repo Repository
}

// New constructs a Service with required dependencies.
func New(repo Repository) *Service {
	if repo == nil {
		panic("progress repo is required")
	}
	return &Service{repo: repo}
}

// ParsePosition reads a client-reported position. Players emit junk during
// seeks and teardowns, so anything unparseable or negative collapses to 0
// instead of failing the report.
func ParsePosition(raw string) float64 {
	position, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if position < 0 {
		return 0
	}
	return position
}

// Report stores the playback position for (tenant, video), overwriting any
// previous value. Last write wins across devices.
func (s *Service) Report(ctx context.Context, tenantID, videoID uuid.UUID, position float64) (Progress, error) {
	if tenantID == uuid.Nil {
		return Progress{}, ErrForbidden
	}
	if position < 0 {
		position = 0
	}
	return s.repo.Upsert(ctx, tenantID, videoID, position)
}

// Reset removes the stored position. It reports whether a record existed.
func (s *Service) Reset(ctx context.Context, tenantID, videoID uuid.UUID) (bool, error) {
	if tenantID == uuid.Nil {
		return false, ErrForbidden
	}
	return s.repo.Delete(ctx, tenantID, videoID)
}

// ByTenant returns all stored positions for the tenant.
func (s *Service) ByTenant(ctx context.Context, tenantID uuid.UUID) ([]Progress, error) {
	if tenantID == uuid.Nil {
		return []Progress{}, nil
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// Position returns the stored position for one video, 0 when absent.
func (s *Service) Position(ctx context.Context, tenantID, videoID uuid.UUID) (float64, error) {
	if tenantID == uuid.Nil {
		return 0, nil
	}
	row, err := s.repo.Get(ctx, tenantID, videoID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Position, nil
}
