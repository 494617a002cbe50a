// Package fcm delivers pushes through the Firebase Cloud Messaging SDK.
package fcm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/spf13/cast"
	"github.com/uninotify/notification-api/internal/config"
	"github.com/uninotify/notification-api/internal/domain"
	"google.golang.org/api/option"
)

const (
	androidIcon  = "ic_notification"
	androidColor = "#1E3A8A"
)

type messageSender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// Sender wraps the messaging client. A Sender whose client failed to
// initialize stays usable but reports Available() == false.
type Sender struct {
	client  messageSender
	timeout time.Duration
}

type credentialSource struct {
	name string
	opts []option.ClientOption
}

// NewSender initializes the Firebase app once. Credentials are tried in
// order: primary file, fallback file, application-default credentials.
func NewSender(ctx context.Context, cfg config.PushConfig) *Sender {
	var fbConf *firebase.Config
	if cfg.FCMProjectID != "" {
		fbConf = &firebase.Config{ProjectID: cfg.FCMProjectID}
	}

	var attempts []credentialSource
	for _, path := range []string{cfg.FCMCredentialsFile, cfg.FCMFallbackCredentialsFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			slog.Info("fcm credentials file not usable", "path", path, "err", err)
			continue
		}
		attempts = append(attempts, credentialSource{name: path, opts: []option.ClientOption{option.WithCredentialsFile(path)}})
	}
	attempts = append(attempts, credentialSource{name: "application-default"})

	for _, a := range attempts {
		app, err := firebase.NewApp(ctx, fbConf, a.opts...)
		if err != nil {
			slog.Warn("fcm init failed", "source", a.name, "err", err)
			continue
		}
		client, err := app.Messaging(ctx)
		if err != nil {
			slog.Warn("fcm messaging client init failed", "source", a.name, "err", err)
			continue
		}
		slog.Info("fcm client ready", "source", a.name)
		return &Sender{client: client, timeout: cfg.Timeout}
	}
	slog.Warn("fcm unavailable; token-based pushes will be reported as provider_unavailable")
	return &Sender{timeout: cfg.Timeout}
}

func (s *Sender) Available() bool { return s != nil && s.client != nil }

func (s *Sender) Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome {
	if !s.Available() {
		return domain.DeliveryOutcome{Kind: domain.OutcomeProviderUnavailable, Error: "fcm client is not initialized"}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id, err := s.client.Send(ctx, buildMessage(target.Token, msg))
	if err != nil {
		return domain.DeliveryOutcome{
			Kind:         domain.OutcomeProviderRejected,
			Error:        err.Error(),
			Unregistered: messaging.IsUnregistered(err),
		}
	}
	return domain.DeliveryOutcome{Success: true, Kind: domain.OutcomeOK, MessageID: id}
}

func buildMessage(token string, msg domain.PushMessage) *messaging.Message {
	badge := 1
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: stringifyData(msg.Data),
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Icon:  androidIcon,
				Color: androidColor,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert:            &messaging.ApsAlert{Title: msg.Title, Body: msg.Body},
					Badge:            &badge,
					Sound:            "default",
					ContentAvailable: true,
					MutableContent:   true,
				},
			},
		},
	}
}

// stringifyData coerces every value to a string; FCM data maps are
// string-to-string. Nil becomes "" and structured values become JSON.
func stringifyData(data domain.Payload) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		switch v.(type) {
		case nil:
			out[k] = ""
			continue
		case map[string]any, []any, domain.Payload:
			out[k] = toJSON(v)
			continue
		}
		if s, err := cast.ToStringE(v); err == nil {
			out[k] = s
			continue
		}
		out[k] = toJSON(v)
	}
	return out
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
