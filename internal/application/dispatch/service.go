package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uninotify/notification-api/internal/domain"
)

// Service persists a notification and fans it out to every device the
// recipient has registered. Only a failed write aborts a dispatch.
type Service interface {
	Notify(ctx context.Context, in domain.CreateNotificationInput) (*domain.DispatchResult, error)
	// NotifyMany runs Notify once per recipient and collects every result.
	NotifyMany(ctx context.Context, userIDs []string, in domain.CreateNotificationInput) ([]domain.DispatchResult, error)
}

type notificationCreator interface {
	Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error)
}

type deviceRegistry interface {
	ListForUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error)
	RemoveInvalid(ctx context.Context, token string) error
}

type deliverer interface {
	Deliver(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) (domain.DeliveryOutcome, error)
}

type service struct {
	notifications notificationCreator
	devices       deviceRegistry
	delivery      deliverer
}

func NewService(notifications notificationCreator, devices deviceRegistry, delivery deliverer) Service {
	return &service{notifications: notifications, devices: devices, delivery: delivery}
}

func (s *service) Notify(ctx context.Context, in domain.CreateNotificationInput) (*domain.DispatchResult, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("recipient is required: %w", domain.ErrBadRequest)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrBadRequest)
	}

	n, err := s.notifications.Create(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	result := &domain.DispatchResult{
		UserID:         n.UserID,
		DBSuccess:      true,
		NotificationID: n.NotificationID,
		Outcomes:       []domain.DeliveryOutcome{},
	}

	devices, err := s.devices.ListForUser(ctx, n.UserID)
	if err != nil {
		slog.Error("device lookup failed after notification was stored",
			"notification_id", n.NotificationID, "user_id", n.UserID, "err", err)
		return result, nil
	}

	msg := domain.PushMessage{Title: n.Title, Body: n.Body, Data: pushData(n)}
	for _, d := range devices {
		out := s.deliverOne(ctx, d, msg)
		result.Outcomes = append(result.Outcomes, out)
		if out.Success {
			result.PushSuccess = true
			continue
		}
		slog.Warn("push delivery failed",
			"notification_id", n.NotificationID, "device_id", d.DeviceID, "kind", out.Kind, "err", out.Error)
		if out.Unregistered {
			if err := s.devices.RemoveInvalid(ctx, d.Token); err != nil {
				slog.Warn("failed to remove unregistered device", "device_id", d.DeviceID, "err", err)
			} else {
				slog.Info("removed unregistered device", "device_id", d.DeviceID, "user_id", d.UserID)
			}
		}
	}
	return result, nil
}

func (s *service) NotifyMany(ctx context.Context, userIDs []string, in domain.CreateNotificationInput) ([]domain.DispatchResult, error) {
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("at least one recipient is required: %w", domain.ErrBadRequest)
	}
	results := make([]domain.DispatchResult, 0, len(userIDs))
	for _, uid := range userIDs {
		one := in
		one.UserID = uid
		res, err := s.Notify(ctx, one)
		if err != nil {
			if errors.Is(err, domain.ErrBadRequest) {
				return nil, err
			}
			slog.Error("broadcast dispatch failed", "user_id", uid, "err", err)
			results = append(results, domain.DispatchResult{UserID: uid, Outcomes: []domain.DeliveryOutcome{}})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

// deliverOne isolates a single device attempt so that a failure, including a
// panic inside a provider client, never stops the loop.
func (s *service) deliverOne(ctx context.Context, d domain.DeviceRegistration, msg domain.PushMessage) (out domain.DeliveryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("push delivery panicked", "device_id", d.DeviceID, "panic", r)
			out = domain.DeliveryOutcome{
				DeviceID: d.DeviceID,
				Kind:     domain.OutcomeTransportError,
				Error:    fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	target := domain.PushTarget{DeviceID: d.DeviceID, Token: d.Token, TokenType: d.TokenType, Platform: d.Platform}
	out, err := s.delivery.Deliver(ctx, target, msg)
	if err != nil {
		return domain.DeliveryOutcome{DeviceID: d.DeviceID, Kind: domain.OutcomeTransportError, Error: err.Error()}
	}
	return out
}

// pushData is the caller payload plus routing keys the client app needs to
// open the right screen. Routing keys win on collision.
func pushData(n *domain.Notification) domain.Payload {
	data := n.Data.Clone()
	data["notification_id"] = n.NotificationID
	data["type"] = n.Type
	data["timestamp"] = n.CreatedAt.UTC().Format(time.RFC3339)
	if n.SenderID != nil {
		data["sender_id"] = *n.SenderID
	}
	if n.RelatedType != nil {
		data["related_type"] = *n.RelatedType
	}
	if n.RelatedID != nil {
		data["related_id"] = *n.RelatedID
	}
	return data
}
