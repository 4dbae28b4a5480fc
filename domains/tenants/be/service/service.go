package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Errors returned by the service layer.
var (
	ErrNotFound     = errors.New("tenant not found")
	ErrConflictSlug = errors.New("tenant slug already exists")
	ErrInvalidKey   = errors.New("invalid access key")
)

const metadataAccessKeyHash = "access_key_hash"

// Tenant represents the domain model for a portal tenant.
type Tenant struct {
	ID           uuid.UUID
	Slug         string
	Active       bool
	AccessEndsAt *time.Time
	Metadata     map[string]string
	CreatedAt    time.Time
}

// SubscriptionActive reports whether the tenant's access window covers now.
// A nil AccessEndsAt means an open-ended subscription.
func (t Tenant) SubscriptionActive(now time.Time) bool {
	return t.AccessEndsAt == nil || !t.AccessEndsAt.Before(now)
}

// CreateInput represents the request to create a tenant.
type CreateInput struct {
	Name         string
	Slug         string
	AccessEndsAt *time.Time
	AccessKey    string
}

// Repository abstracts persistence.
type Repository interface {
	Create(ctx context.Context, t Tenant) (Tenant, error)
	FindBySlug(ctx context.Context, slug string) (Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListActive(ctx context.Context) ([]Tenant, error)
}

// Service provides tenant registry operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New constructs a Service with required dependencies.
func New(repo Repository) *Service {
	if repo == nil {
		panic("tenants repo is required")
	}
	return &Service{repo: repo, now: time.Now}
}

// Create registers a new tenant. The slug is taken from input when given,
// otherwise derived from the name with a numeric suffix to keep it unique.
// The returned string is the plaintext access key; only its hash is stored,
// so this is the single chance to read it.
func (s *Service) Create(ctx context.Context, input CreateInput) (Tenant, string, error) {
	slug, err := s.resolveSlug(ctx, input)
	if err != nil {
		return Tenant{}, "", err
	}

	key := input.AccessKey
	if key == "" {
		key, err = generateAccessKey()
		if err != nil {
			return Tenant{}, "", err
		}
	}

	t := Tenant{
		ID:           uuid.New(),
		Slug:         slug,
		Active:       true,
		AccessEndsAt: input.AccessEndsAt,
		Metadata:     map[string]string{metadataAccessKeyHash: hashAccessKey(key)},
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return Tenant{}, "", err
	}
	return created, key, nil
}

// ResolveActiveTenant returns the space for an active, unexpired tenant.
// Disabled and expired tenants resolve as not found so callers cannot tell
// a lapsed subscription apart from a tenant that never existed.
func (s *Service) ResolveActiveTenant(ctx context.Context, slug string) (tenant.Space, error) {
	t, err := s.lookupActive(ctx, slug)
	if err != nil {
		return tenant.Space{}, err
	}
	return tenant.Space{TenantID: t.ID, Slug: t.Slug}, nil
}

// Authenticate checks the access key for an active tenant.
func (s *Service) Authenticate(ctx context.Context, slug, accessKey string) (Tenant, error) {
	t, err := s.lookupActive(ctx, slug)
	if err != nil {
		return Tenant{}, err
	}

	stored := t.Metadata[metadataAccessKeyHash]
	if stored == "" {
		return Tenant{}, ErrInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashAccessKey(accessKey))) != 1 {
		return Tenant{}, ErrInvalidKey
	}
	return t, nil
}

// ListActive returns all active tenants.
func (s *Service) ListActive(ctx context.Context) ([]Tenant, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) lookupActive(ctx context.Context, slug string) (Tenant, error) {
	t, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return Tenant{}, err
	}
	if !t.Active || !t.SubscriptionActive(s.now().UTC()) {
		return Tenant{}, ErrNotFound
	}
	return t, nil
}

func (s *Service) resolveSlug(ctx context.Context, input CreateInput) (string, error) {
	if input.Slug != "" {
		slug, err := persistence.NormalizeSlug(input.Slug)
		if err != nil {
			return "", err
		}
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrConflictSlug
		}
		return slug, nil
	}
	return s.uniqueSlug(ctx, input.Name)
}

// uniqueSlug derives a slug from the display name and appends -1, -2, ...
// until the candidate is free.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := persistence.Slugify(name)
	if base == "" {
		return "", errors.New("tenant name is required")
	}

	candidate := base
	for n := 1; ; n++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func generateAccessKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashAccessKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
