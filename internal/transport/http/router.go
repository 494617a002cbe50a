package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uninotify/notification-api/internal/application/delivery"
	"github.com/uninotify/notification-api/internal/application/device"
	"github.com/uninotify/notification-api/internal/application/dispatch"
	"github.com/uninotify/notification-api/internal/application/notification"
	"github.com/uninotify/notification-api/internal/config"
	"github.com/uninotify/notification-api/internal/domain"
	"github.com/uninotify/notification-api/internal/transport/http/handler"
	appmiddleware "github.com/uninotify/notification-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	DeviceRepo       DeviceRepository
	NotificationRepo NotificationRepository
	Expo             ExpoSender
	FCM              FCMSender
	JWTProvider      TokenVerifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	deviceSvc := device.NewService(deps.DeviceRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	deliverySvc := delivery.NewService(deps.Expo, deps.FCM)
	dispatchSvc := dispatch.NewService(notifSvc, deviceSvc, deliverySvc)

	healthH := handler.NewHealthHandler()
	deviceH := handler.NewDeviceHandler(deviceSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	adminH := handler.NewAdminHandler(dispatchSvc, notifSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Post("/devices", deviceH.Register)
			r.Get("/devices", deviceH.List)
			r.Delete("/devices", deviceH.Unregister)
			r.Delete("/devices/all", deviceH.UnregisterAll)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/read-all", notifH.MarkAllRead)
			r.Get("/notifications/{id}", notifH.Get)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
			r.Delete("/notifications/{id}", notifH.Delete)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/notifications/send", adminH.Send)
				r.Post("/notifications/broadcast", adminH.Broadcast)
				r.Delete("/admin/notifications/{id}", adminH.DeleteNotification)
			})
		})
	})

	return r
}
