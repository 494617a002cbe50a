package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/uninotify/notification-api/internal/config"
	"github.com/uninotify/notification-api/internal/infrastructure/dynamo"
	"github.com/uninotify/notification-api/internal/infrastructure/expo"
	"github.com/uninotify/notification-api/internal/infrastructure/fcm"
	jwtinfra "github.com/uninotify/notification-api/internal/infrastructure/jwt"
	"github.com/uninotify/notification-api/internal/infrastructure/memory"
	transporthttp "github.com/uninotify/notification-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// FCM is optional. Without credentials, non-Expo devices report provider_unavailable.
	fcmSender := fcm.NewSender(ctx, cfg.Push)
	if !fcmSender.Available() {
		log.Println("WARN: FCM client not available, token-based pushes are disabled")
	}

	deps := &transporthttp.Deps{
		Expo:        expo.NewSender(cfg.Push),
		FCM:         fcmSender,
		JWTProvider: jwtProvider,
	}

	switch cfg.StorageDriver {
	case "memory":
		log.Println("WARN: using in-memory storage, data is lost on restart")
		deps.DeviceRepo = memory.NewDeviceRepo()
		deps.NotificationRepo = memory.NewNotificationRepo()
	case "dynamo":
		dynamoClient, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("dynamodb client: %v", err)
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
		deps.DeviceRepo = dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices)
		deps.NotificationRepo = dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, storage=%s)", cfg.AppPort, cfg.AppEnv, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
