package domain

// OutcomeKind classifies the result of one delivery attempt.
type OutcomeKind string

const (
	OutcomeOK                   OutcomeKind = "ok"
	OutcomeWrongTokenKind       OutcomeKind = "wrong_token_kind"
	OutcomeUnsupportedTokenType OutcomeKind = "unsupported_token_type"
	OutcomeProviderUnavailable  OutcomeKind = "provider_unavailable"
	OutcomeTransportError       OutcomeKind = "transport_error"
	OutcomeProviderRejected     OutcomeKind = "provider_rejected"
)

// Provider names the transport a delivery was routed to.
type Provider string

const (
	ProviderNone Provider = ""
	ProviderExpo Provider = "expo"
	ProviderFCM  Provider = "fcm"
)

// DeliveryOutcome is the per-device result of a dispatch. It is returned
// inline and never persisted.
type DeliveryOutcome struct {
	DeviceID  string      `json:"device_id"`
	Provider  Provider    `json:"provider,omitempty"`
	Success   bool        `json:"success"`
	Kind      OutcomeKind `json:"kind"`
	Error     string      `json:"error,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
	// Unregistered is set when the provider reported the token as permanently invalid.
	Unregistered bool `json:"-"`
}

// DispatchResult aggregates the notification write and every device attempt.
type DispatchResult struct {
	UserID         string            `json:"user_id,omitempty"`
	DBSuccess      bool              `json:"db_success"`
	PushSuccess    bool              `json:"push_success"`
	NotificationID string            `json:"notification_id,omitempty"`
	Outcomes       []DeliveryOutcome `json:"per_device_outcomes"`
}

// Delivered counts successful device outcomes.
func (r DispatchResult) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// PushTarget is the device end of a delivery attempt.
type PushTarget struct {
	DeviceID  string
	Token     string
	TokenType TokenType
	Platform  string
}

// PushMessage is the provider-neutral content of a push.
type PushMessage struct {
	Title string
	Body  string
	Data  Payload
}
