// Package expo delivers pushes through the Expo push webhook.
package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/uninotify/notification-api/internal/config"
	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/pkg/id"
)

const (
	sendPath = "/--/api/v2/push/send"

	errDeviceNotRegistered = "DeviceNotRegistered"
)

var errUpstream = errors.New("expo upstream error")

type pushRequest struct {
	To                  string         `json:"to"`
	Title               string         `json:"title"`
	Body                string         `json:"body"`
	Data                domain.Payload `json:"data"`
	Sound               string         `json:"sound"`
	Badge               *int           `json:"badge,omitempty"`
	Priority            string         `json:"priority,omitempty"`
	DisplayInForeground *bool          `json:"_displayInForeground,omitempty"`
}

// ticket is one entry of the push response. Expo has answered with both
// {"data": {...}} and {"data": [{...}]} over time.
type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type Sender struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func NewSender(cfg config.PushConfig) *Sender {
	client := resty.New().
		SetBaseURL(cfg.ExpoBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.ExpoAccessToken != "" {
		client.SetAuthToken(cfg.ExpoAccessToken)
	}
	return &Sender{client: client, breaker: newBreaker("expo-push")}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Send never returns an error; every failure is folded into the outcome.
func (s *Sender) Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome {
	req := pushRequest{
		To:    target.Token,
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
		Sound: "default",
	}
	if req.Data == nil {
		req.Data = domain.Payload{}
	}
	if strings.EqualFold(target.Platform, "ios") {
		badge, foreground := 1, true
		req.Badge = &badge
		req.Priority = "high"
		req.DisplayInForeground = &foreground
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.R().SetContext(ctx).SetBody(req).Post(sendPath)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errUpstream
		}
		return resp, nil
	})
	resp, _ := res.(*resty.Response)
	switch {
	case resp != nil && resp.StatusCode() != http.StatusOK:
		return transportError(fmt.Sprintf("status=%d body=%s", resp.StatusCode(), resp.String()))
	case err != nil:
		return transportError(err.Error())
	}
	return parseResponse(resp.Body())
}

func parseResponse(body []byte) domain.DeliveryOutcome {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	t, ok := ticket{}, false
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		raw := bytes.TrimSpace(envelope.Data)
		if len(raw) > 0 && raw[0] == '[' {
			var list []ticket
			if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
				t, ok = list[0], true
			}
		} else if json.Unmarshal(raw, &t) == nil {
			ok = true
		}
	}

	if ok && t.Status == "error" {
		detail := t.Message
		if t.Details.Error != "" {
			detail = fmt.Sprintf("%s (%s)", detail, t.Details.Error)
		}
		return domain.DeliveryOutcome{
			Kind:         domain.OutcomeProviderRejected,
			Error:        detail,
			Unregistered: t.Details.Error == errDeviceNotRegistered,
		}
	}
	// A 200 the parser does not understand is still treated as accepted.
	msgID := t.ID
	if msgID == "" {
		msgID = id.New()
	}
	return domain.DeliveryOutcome{Success: true, Kind: domain.OutcomeOK, MessageID: "expo_" + msgID}
}

func transportError(detail string) domain.DeliveryOutcome {
	return domain.DeliveryOutcome{Kind: domain.OutcomeTransportError, Error: detail}
}
