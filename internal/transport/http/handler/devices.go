package handler

import (
	"net/http"

	"github.com/uninotify/notification-api/internal/application/device"
	"github.com/uninotify/notification-api/internal/domain"
)

// DeviceHandler handles push-token registration for the calling user.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req domain.RegisterDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	d, result, err := h.svc.Register(r.Context(), uid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	if result == domain.RegisterCreated {
		writeJSON(w, http.StatusCreated, DeviceEnvelope{Message: "device registered", Success: true, Device: d})
		return
	}
	writeJSON(w, http.StatusOK, DeviceEnvelope{Message: "device updated", Success: true, Device: d})
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	devices, err := h.svc.ListForUser(r.Context(), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeviceListEnvelope{Success: true, Devices: devices})
}

func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req domain.UnregisterDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.Unregister(r.Context(), uid, req.Token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "device unregistered", Success: true})
}

func (h *DeviceHandler) UnregisterAll(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnregisterAll(r.Context(), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Message: "devices unregistered", Success: true, Count: n})
}
