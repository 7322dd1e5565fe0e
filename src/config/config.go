package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the sync client.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port     string
	LogLevel string

	// Backend (resource of record)
	APIBaseURL     string
	WSBaseURL      string
	UserID         int64
	AccessToken    string
	RequestTimeout time.Duration

	// Sync settings
	PollInterval         time.Duration
	PushEnabled          bool
	ReconnectMinInterval time.Duration
	ReconnectMaxInterval time.Duration

	// Local state
	SnapshotDBPath    string
	ScreenIdleTimeout time.Duration

	// Local dashboard origins allowed by CORS
	AllowedOrigins []string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading sync client configuration...")
	Cfg = fromEnv()

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, API=%s, WS=%s, PollInterval=%s, PushEnabled=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.APIBaseURL, Cfg.WSBaseURL, Cfg.PollInterval, Cfg.PushEnabled)
}

func fromEnv() *AppConfig {
	apiBaseURL := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/")

	wsBaseURL := getEnv("WS_BASE_URL", "")
	if wsBaseURL == "" {
		wsBaseURL = DeriveWebSocketURL(apiBaseURL)
	}

	minReconnect := getEnvAsDuration("RECONNECT_MIN_INTERVAL", time.Second)
	maxReconnect := getEnvAsDuration("RECONNECT_MAX_INTERVAL", time.Minute)
	if maxReconnect < minReconnect {
		log.Printf("RECONNECT_MAX_INTERVAL (%s) below RECONNECT_MIN_INTERVAL (%s), using the minimum for both", maxReconnect, minReconnect)
		maxReconnect = minReconnect
	}

	pollInterval := getEnvAsDuration("POLL_INTERVAL", 30*time.Second)
	if pollInterval <= 0 {
		log.Printf("Non-positive POLL_INTERVAL %s, using default 30s", pollInterval)
		pollInterval = 30 * time.Second
	}

	return &AppConfig{
		Port:     getEnv("PORT", "8090"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:     apiBaseURL,
		WSBaseURL:      strings.TrimRight(wsBaseURL, "/"),
		UserID:         int64(getEnvAsInt("USER_ID", 0)),
		AccessToken:    getEnv("ACCESS_TOKEN", ""),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),

		PollInterval:         pollInterval,
		PushEnabled:          getEnvAsBool("PUSH_ENABLED", true),
		ReconnectMinInterval: minReconnect,
		ReconnectMaxInterval: maxReconnect,

		SnapshotDBPath:    getEnv("SNAPSHOT_DB_PATH", "./finsync.db"),
		ScreenIdleTimeout: getEnvAsDuration("SCREEN_IDLE_TIMEOUT", 5*time.Minute),

		AllowedOrigins: getList("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// DeriveWebSocketURL turns an http(s) base URL into the matching ws(s) one.
func DeriveWebSocketURL(apiBaseURL string) string {
	u, err := url.Parse(apiBaseURL)
	if err != nil || u.Host == "" {
		return "ws://localhost:8000"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if fallback != "" {
		log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsBool retrieves an environment variable as a bool or returns a fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getList retrieves and parses a comma-separated list.
func getList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
