package http

import (
	"context"
	"time"

	"github.com/uninotify/notification-api/internal/domain"
	jwtinfra "github.com/uninotify/notification-api/internal/infrastructure/jwt"
)

// DeviceRepository is the minimal interface the router requires from a device
// store. Both dynamo.DeviceRepo and memory.DeviceRepo satisfy it.
type DeviceRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.DeviceRegistration, error)
	Put(ctx context.Context, d *domain.DeviceRegistration) error
	ListByUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error)
	Delete(ctx context.Context, token, ownerID string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	Delete(ctx context.Context, notificationID string) error
	List(ctx context.Context, userID string, filter domain.NotificationFilter, offset, limit int) ([]domain.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ExpoSender posts to the Expo push webhook.
type ExpoSender interface {
	Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome
}

// FCMSender wraps the Firebase messaging client, which may be unavailable.
type FCMSender interface {
	Available() bool
	Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome
}

// TokenVerifier validates bearer JWTs.
type TokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}
