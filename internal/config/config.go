package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Port string

	// Store selects the backing store: "memory" or "mongo". An explicit
	// MONGO_URI implies mongo unless STORE says otherwise.
	Store    string
	MongoURI string
	MongoDB  string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	MQTTBroker      string
	MQTTTopicPrefix string

	LogLevel string
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded configuration from .env")
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Store:           getEnv("STORE", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "vehicare"),
		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTIssuer:       getEnv("JWT_ISSUER", "vehicare-api"),
		JWTAudience:     getEnv("JWT_AUDIENCE", "vehicare-clients"),
		JWTExpiry:       24 * time.Hour,
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "vehicare"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if expStr := os.Getenv("JWT_EXPIRY"); expStr != "" {
		if parsed, err := time.ParseDuration(expStr); err == nil {
			cfg.JWTExpiry = parsed
		} else {
			log.WithError(err).Warn("Invalid JWT_EXPIRY, using default")
		}
	}

	if cfg.Store == "" {
		if cfg.MongoURI != "" {
			cfg.Store = "mongo"
		} else {
			cfg.Store = "memory"
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
