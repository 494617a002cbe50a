package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uninotify/notification-api/internal/domain"
)

type NotificationRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Notification
	// FailPut makes Put return this error when set.
	FailPut error
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{rows: map[string]domain.Notification{}}
}

func (r *NotificationRepo) Put(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailPut != nil {
		return r.FailPut
	}
	r.rows[n.NotificationID] = *n
	return nil
}

func (r *NotificationRepo) Get(_ context.Context, notificationID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[notificationID]
	if !ok {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return &n, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, notificationID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[notificationID]
	if !ok {
		return false, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	if n.IsRead {
		return false, nil
	}
	n.IsRead = true
	n.ReadAt = &at
	r.rows[notificationID] = n
	return true, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for k, n := range r.rows {
		if n.UserID != userID || n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt = &at
		r.rows[k] = n
		count++
	}
	return count, nil
}

func (r *NotificationRepo) Delete(_ context.Context, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[notificationID]; !ok {
		return fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	delete(r.rows, notificationID)
	return nil
}

func (r *NotificationRepo) List(_ context.Context, userID string, f domain.NotificationFilter, offset, limit int) ([]domain.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Notification
	for _, n := range r.rows {
		if n.UserID != userID {
			continue
		}
		if f.UnreadOnly && n.IsRead {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		matched = append(matched, n)
	}
	// Newest first; ULIDs break ties within the same instant.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].NotificationID > matched[j].NotificationID
	})
	total := len(matched)
	if offset < 0 || offset >= total {
		return []domain.Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}
