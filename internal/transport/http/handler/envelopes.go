package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/pkg/validate"
	"github.com/uninotify/notification-api/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CountEnvelope wraps bulk operations that report how many rows they touched.
type CountEnvelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Count   int    `json:"count"`
}

// ChangedEnvelope wraps mark-read. Changed is false when the row was already read.
type ChangedEnvelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Changed bool   `json:"changed"`
}

type DeviceEnvelope struct {
	Message string                     `json:"message"`
	Success bool                       `json:"success"`
	Device  *domain.DeviceRegistration `json:"device"`
}

type DeviceListEnvelope struct {
	Success bool                        `json:"success"`
	Devices []domain.DeviceRegistration `json:"devices"`
}

type UnreadCountEnvelope struct {
	Success     bool `json:"success"`
	UnreadCount int  `json:"unread_count"`
}

// BroadcastEnvelope wraps one dispatch result per recipient.
type BroadcastEnvelope struct {
	Success    bool                    `json:"success"`
	Recipients int                     `json:"recipients"`
	Delivered  int                     `json:"delivered"`
	Results    []domain.DispatchResult `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg, Error: http.StatusText(status)})
}

// httpError maps a service error onto a status code. Unclassified errors are
// logged and hidden behind a generic 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// userID returns the authenticated caller, writing 401 when claims are missing.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}
