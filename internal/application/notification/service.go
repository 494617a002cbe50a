package notification

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/pkg/id"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service interface {
	// Create persists a notification immediately. It never depends on push delivery.
	Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error)
	Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	// MarkRead returns false when the notification was already read.
	MarkRead(ctx context.Context, notificationID, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, notificationID, userID string) error
	// DeleteAny is the administrative hard delete; it skips the ownership check.
	DeleteAny(ctx context.Context, notificationID string) error
	List(ctx context.Context, userID string, filter domain.NotificationFilter, page, pageSize int) (*domain.NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	// MarkRead flips is_read only if it is still false and reports whether it did.
	MarkRead(ctx context.Context, notificationID string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	Delete(ctx context.Context, notificationID string) error
	List(ctx context.Context, userID string, filter domain.NotificationFilter, offset, limit int) ([]domain.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo notificationStore
	now  func() time.Time
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("recipient is required: %w", domain.ErrBadRequest)
	}
	data := in.Data
	if data == nil {
		data = domain.Payload{}
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         in.UserID,
		SenderID:       nonEmpty(in.SenderID),
		Title:          in.Title,
		Body:           in.Body,
		Type:           in.Type,
		Data:           data,
		RelatedType:    nonEmpty(in.RelatedType),
		RelatedID:      nonEmpty(in.RelatedID),
		CreatedAt:      s.now(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	return s.owned(ctx, notificationID, userID)
}

func (s *service) MarkRead(ctx context.Context, notificationID, userID string) (bool, error) {
	n, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return false, err
	}
	if n.IsRead {
		return false, nil
	}
	return s.repo.MarkRead(ctx, notificationID, s.now())
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, notificationID)
}

func (s *service) DeleteAny(ctx context.Context, notificationID string) error {
	return s.repo.Delete(ctx, notificationID)
}

func (s *service) List(ctx context.Context, userID string, filter domain.NotificationFilter, page, pageSize int) (*domain.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	// Keeps (page-1)*pageSize from overflowing; such a page is empty anyway.
	if page > math.MaxInt/pageSize {
		page = math.MaxInt / pageSize
	}
	items, total, err := s.repo.List(ctx, userID, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return &domain.NotificationPage{
		Items:       items,
		UnreadCount: unread,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) owned(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return n, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
