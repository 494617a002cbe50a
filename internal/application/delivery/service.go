package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/uninotify/notification-api/internal/domain"
)

// Channel is the routing decision for one token.
type Channel int

const (
	ChannelFCM Channel = iota
	ChannelExpo
	ChannelWrongKind
	ChannelUnsupported
)

func (c Channel) String() string {
	switch c {
	case ChannelExpo:
		return "expo"
	case ChannelWrongKind:
		return "wrong_token_kind"
	case ChannelUnsupported:
		return "unsupported"
	default:
		return "fcm"
	}
}

// Route picks the transport for a token. It performs no I/O. The first
// matching rule wins.
func Route(token string, tokenType domain.TokenType) Channel {
	switch {
	case tokenType == domain.TokenTypeExpo || domain.IsExpoPushToken(token):
		return ChannelExpo
	case domain.LooksLikeAuthToken(token):
		return ChannelWrongKind
	case tokenType == domain.TokenTypeAPNs:
		return ChannelUnsupported
	default:
		return ChannelFCM
	}
}

// Service turns one (target, message) pair into a DeliveryOutcome. Delivery
// failures are reported in the outcome, never as errors.
type Service interface {
	Deliver(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) (domain.DeliveryOutcome, error)
}

type webhookSender interface {
	Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome
}

type clientSender interface {
	// Available is false when the client could not be initialized.
	Available() bool
	Send(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) domain.DeliveryOutcome
}

type service struct {
	expo webhookSender
	fcm  clientSender
}

func NewService(expo webhookSender, fcm clientSender) Service {
	return &service{expo: expo, fcm: fcm}
}

func (s *service) Deliver(ctx context.Context, target domain.PushTarget, msg domain.PushMessage) (domain.DeliveryOutcome, error) {
	if strings.TrimSpace(target.Token) == "" {
		return domain.DeliveryOutcome{}, fmt.Errorf("push target has no token: %w", domain.ErrBadRequest)
	}
	if strings.TrimSpace(msg.Title) == "" {
		return domain.DeliveryOutcome{}, fmt.Errorf("push message has no title: %w", domain.ErrBadRequest)
	}

	var out domain.DeliveryOutcome
	switch Route(target.Token, target.TokenType) {
	case ChannelExpo:
		out = s.expo.Send(ctx, target, msg)
		out.Provider = domain.ProviderExpo
	case ChannelWrongKind:
		out = failed(domain.OutcomeWrongTokenKind, "token looks like an authentication token, not a push token")
	case ChannelUnsupported:
		out = failed(domain.OutcomeUnsupportedTokenType, "direct APNs tokens are not supported")
	default:
		if s.fcm == nil || !s.fcm.Available() {
			out = failed(domain.OutcomeProviderUnavailable, "fcm client is not initialized")
			out.Provider = domain.ProviderFCM
			break
		}
		out = s.fcm.Send(ctx, target, msg)
		out.Provider = domain.ProviderFCM
	}
	out.DeviceID = target.DeviceID
	return out, nil
}

func failed(kind domain.OutcomeKind, detail string) domain.DeliveryOutcome {
	return domain.DeliveryOutcome{Kind: kind, Error: detail}
}
