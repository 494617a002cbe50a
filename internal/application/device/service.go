package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/pkg/id"
)

// Service is the device registry: the authoritative mapping of users to
// their push endpoints.
type Service interface {
	Register(ctx context.Context, userID string, req domain.RegisterDeviceRequest) (*domain.DeviceRegistration, domain.RegisterResult, error)
	// Unregister is idempotent: a token that no longer exists is not an error.
	Unregister(ctx context.Context, userID, token string) error
	UnregisterAll(ctx context.Context, userID string) (int, error)
	ListForUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error)
	// RemoveInvalid drops a registration regardless of owner. Used when a
	// provider reports the token as permanently unregistered.
	RemoveInvalid(ctx context.Context, token string) error
}

type deviceStore interface {
	GetByToken(ctx context.Context, token string) (*domain.DeviceRegistration, error)
	Put(ctx context.Context, d *domain.DeviceRegistration) error
	ListByUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error)
	// Delete removes the row for token. A non-empty ownerID makes the delete
	// conditional on ownership and yields domain.ErrForbidden on mismatch.
	Delete(ctx context.Context, token, ownerID string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo deviceStore
	now  func() time.Time
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Register(ctx context.Context, userID string, req domain.RegisterDeviceRequest) (*domain.DeviceRegistration, domain.RegisterResult, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, "", fmt.Errorf("token is required: %w", domain.ErrBadRequest)
	}
	if userID == "" {
		return nil, "", fmt.Errorf("user id is required: %w", domain.ErrBadRequest)
	}
	tokenType, err := domain.ParseTokenType(req.TokenType)
	if err != nil {
		return nil, "", err
	}
	if tokenType == domain.TokenTypeUnknown {
		tokenType = inferTokenType(token)
	}

	now := s.now()
	existing, err := s.repo.GetByToken(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	result := domain.RegisterCreated
	d := &domain.DeviceRegistration{
		DeviceID:  id.New(),
		Token:     token,
		CreatedAt: now,
	}
	if existing != nil {
		// Same token re-registered, possibly by a new owner after a reinstall
		// or resale: keep identity, move ownership.
		result = domain.RegisterUpdated
		d.DeviceID = existing.DeviceID
		d.CreatedAt = existing.CreatedAt
	}
	d.UserID = userID
	d.DeviceName = strings.TrimSpace(req.DeviceName)
	d.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	d.TokenType = tokenType
	d.UpdatedAt = now
	d.LastUsedAt = now

	if err := s.repo.Put(ctx, d); err != nil {
		return nil, "", err
	}
	return d, result, nil
}

func (s *service) Unregister(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required: %w", domain.ErrBadRequest)
	}
	existing, err := s.repo.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("device belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, token, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) UnregisterAll(ctx context.Context, userID string) (int, error) {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) RemoveInvalid(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token, ""); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func inferTokenType(token string) domain.TokenType {
	if domain.IsExpoPushToken(token) {
		return domain.TokenTypeExpo
	}
	return domain.TokenTypeFCM
}
