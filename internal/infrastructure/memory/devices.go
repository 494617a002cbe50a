// Package memory holds process-local stores with the same contracts as the
// DynamoDB repos. They back STORAGE_DRIVER=memory for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/uninotify/notification-api/internal/domain"
)

type DeviceRepo struct {
	mu    sync.Mutex
	rows  map[string]domain.DeviceRegistration // by token
	order []string                             // tokens, first-insert order
	// FailList makes ListByUser return this error when set.
	FailList error
}

func NewDeviceRepo() *DeviceRepo {
	return &DeviceRepo{rows: map[string]domain.DeviceRegistration{}}
}

func (r *DeviceRepo) GetByToken(_ context.Context, token string) (*domain.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[token]
	if !ok {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	return &d, nil
}

func (r *DeviceRepo) Put(_ context.Context, d *domain.DeviceRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[d.Token]; !ok {
		r.order = append(r.order, d.Token)
	}
	r.rows[d.Token] = *d
	return nil
}

func (r *DeviceRepo) ListByUser(_ context.Context, userID string) ([]domain.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailList != nil {
		return nil, r.FailList
	}
	out := []domain.DeviceRegistration{}
	for _, tok := range r.order {
		if d := r.rows[tok]; d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DeviceRepo) Delete(_ context.Context, token, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[token]
	if !ok {
		return nil
	}
	if ownerID != "" && d.UserID != ownerID {
		return fmt.Errorf("device belongs to another user: %w", domain.ErrForbidden)
	}
	r.remove(token)
	return nil
}

func (r *DeviceRepo) DeleteByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tok := range append([]string(nil), r.order...) {
		if r.rows[tok].UserID == userID {
			r.remove(tok)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored registrations.
func (r *DeviceRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *DeviceRepo) remove(token string) {
	delete(r.rows, token)
	for i, t := range r.order {
		if t == token {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
