package domain

import (
	"fmt"
	"strings"
	"time"
)

// TokenType identifies which push provider a registration's token belongs to.
type TokenType string

const (
	TokenTypeFCM     TokenType = "fcm"
	TokenTypeExpo    TokenType = "expo"
	TokenTypeAPNs    TokenType = "apns"
	TokenTypeUnknown TokenType = "unknown"
)

// ParseTokenType normalizes a declared token type. Empty input yields
// TokenTypeUnknown so the caller can infer it from the token itself.
func ParseTokenType(s string) (TokenType, error) {
	switch t := TokenType(strings.ToLower(strings.TrimSpace(s))); t {
	case TokenTypeFCM, TokenTypeExpo, TokenTypeAPNs, TokenTypeUnknown:
		return t, nil
	case "":
		return TokenTypeUnknown, nil
	default:
		return "", fmt.Errorf("unsupported token_type %q: %w", s, ErrBadRequest)
	}
}

// RegisterResult reports whether a registration row was inserted or reused.
type RegisterResult string

const (
	RegisterCreated RegisterResult = "created"
	RegisterUpdated RegisterResult = "updated"
)

// DeviceRegistration is one (user, push token) pair. Token is the natural key.
type DeviceRegistration struct {
	DeviceID   string    `json:"id" dynamodbav:"device_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Token      string    `json:"token" dynamodbav:"token"`
	DeviceName string    `json:"device_name" dynamodbav:"device_name"`
	Platform   string    `json:"platform" dynamodbav:"platform"`
	TokenType  TokenType `json:"token_type" dynamodbav:"token_type"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" dynamodbav:"updated_at"`
	LastUsedAt time.Time `json:"last_used_at" dynamodbav:"last_used_at"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceName string `json:"device_name" validate:"max=128"`
	Platform   string `json:"platform" validate:"omitempty,max=32"`
	TokenType  string `json:"token_type"` // checked case-insensitively by ParseTokenType
}

type UnregisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

var expoTokenPrefixes = []string{"ExponentPushToken[", "ExpoPushToken["}

// IsExpoPushToken reports whether token carries the Expo wrapper prefix.
func IsExpoPushToken(token string) bool {
	for _, p := range expoTokenPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

// LooksLikeAuthToken reports whether token has the three-segment shape of a
// JWT (base64 JSON header "eyJ..."). Such strings are bearer credentials that
// a client sent by mistake, never push tokens.
func LooksLikeAuthToken(token string) bool {
	if !strings.HasPrefix(token, "eyJ") {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
