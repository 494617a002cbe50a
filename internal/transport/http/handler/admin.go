package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uninotify/notification-api/internal/application/dispatch"
	"github.com/uninotify/notification-api/internal/application/notification"
	"github.com/uninotify/notification-api/internal/domain"
)

// AdminHandler lets staff send notifications and remove any notification.
// Routes are guarded by RequireRole(domain.RoleAdmin). A dispatch is detached
// from the request context so a client hang-up cannot cut the fan-out short;
// the per-provider timeouts still bound it.
type AdminHandler struct {
	dispatch      dispatch.Service
	notifications notification.Service
}

func NewAdminHandler(d dispatch.Service, n notification.Service) *AdminHandler {
	return &AdminHandler{dispatch: d, notifications: n}
}

func (h *AdminHandler) Send(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userID(w, r)
	if !ok {
		return
	}
	var req domain.SendNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.dispatch.Notify(context.WithoutCancel(r.Context()), domain.CreateNotificationInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Body:        req.Body,
		Type:        req.Type,
		SenderID:    &adminID,
		Data:        req.Data,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	adminID, ok := userID(w, r)
	if !ok {
		return
	}
	var req domain.BroadcastNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	results, err := h.dispatch.NotifyMany(context.WithoutCancel(r.Context()), req.UserIDs, domain.CreateNotificationInput{
		Title:       req.Title,
		Body:        req.Body,
		Type:        req.Type,
		SenderID:    &adminID,
		Data:        req.Data,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	delivered := 0
	for _, res := range results {
		if res.PushSuccess {
			delivered++
		}
	}
	writeJSON(w, http.StatusOK, BroadcastEnvelope{
		Success:    true,
		Recipients: len(results),
		Delivered:  delivered,
		Results:    results,
	})
}

func (h *AdminHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.DeleteAny(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification deleted", Success: true})
}
