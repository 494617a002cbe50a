package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort           string
	AppEnv            string
	AWSRegion         string
	AWSEndpointURL    string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID    string
	AWSSecretKey      string
	StorageDriver     string // "dynamo" or "memory"
	DynamoTables      DynamoTables
	JWTPublicKeyPath  string
	JWTPrivateKeyPath string // optional; only needed to mint tokens (tests, tooling)
	JWTExpiry         time.Duration
	Push              PushConfig
	AllowedOrigins    []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications string
	Devices       string
}

// PushConfig configures both push providers.
type PushConfig struct {
	Timeout time.Duration

	ExpoBaseURL     string
	ExpoAccessToken string

	// FCM credentials are tried in order: primary file, fallback file,
	// then application-default credentials from the environment.
	FCMCredentialsFile         string
	FCMFallbackCredentialsFile string
	FCMProjectID               string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", "dynamo")),
		DynamoTables: DynamoTables{
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "device_tokens"),
		},
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		Push: PushConfig{
			Timeout:                    getEnvDuration("PUSH_TIMEOUT", 10*time.Second),
			ExpoBaseURL:                strings.TrimRight(getEnv("EXPO_BASE_URL", "https://exp.host"), "/"),
			ExpoAccessToken:            getEnv("EXPO_ACCESS_TOKEN", ""),
			FCMCredentialsFile:         getEnv("FCM_CREDENTIALS_FILE", "./firebase-credentials.json"),
			FCMFallbackCredentialsFile: getEnv("FCM_FALLBACK_CREDENTIALS_FILE", ""),
			FCMProjectID:               getEnv("FCM_PROJECT_ID", ""),
		},
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n := getEnvInt(key, -1); n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
