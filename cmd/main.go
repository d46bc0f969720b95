package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/auth"
	"github.com/vehicare/vehicare-api/internal/config"
	"github.com/vehicare/vehicare-api/internal/db"
	"github.com/vehicare/vehicare-api/internal/events"
	"github.com/vehicare/vehicare-api/internal/handlers"
	"github.com/vehicare/vehicare-api/internal/middleware"
	"github.com/vehicare/vehicare-api/internal/users"
	"github.com/vehicare/vehicare-api/internal/vehicles"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	store := openStore(cfg)
	authService := auth.NewService(cfg)
	directory := users.NewDirectory(store, authService)
	registry := vehicles.NewRegistry(store, store)
	publisher := openPublisher(cfg)

	authHandler := handlers.NewAuthHandler(directory, authService)
	vehicleHandler := handlers.NewVehicleHandler(registry, publisher)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("GET /api/status", authHandler.Status)
	mux.HandleFunc("GET /api/vehicles", vehicleHandler.ListMyVehicles)
	mux.HandleFunc("GET /api/vehicles/{id}", vehicleHandler.GetVehicle)
	mux.HandleFunc("POST /api/vehicles", vehicleHandler.CreateVehicle)
	mux.HandleFunc("PUT /api/vehicles", vehicleHandler.UpdateVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", vehicleHandler.DeleteVehicle)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	handler := rateLimiter.RateLimit(100, 60)(authMiddleware.Authenticate(mux))

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
}

// openStore selects the backing store: MongoDB when configured, otherwise
// the in-memory store.
func openStore(cfg config.Config) db.Store {
	if cfg.Store != "mongo" {
		log.Info("Using in-memory store")
		return db.NewMemoryStore()
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	store := db.NewMongoStore(client, cfg.MongoDB)
	if err := store.EnsureIndexes(context.Background()); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return store
}

// openPublisher connects the MQTT event publisher when a broker is
// configured; events are otherwise discarded.
func openPublisher(cfg config.Config) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.NoopPublisher{}
	}

	publisher, err := events.NewMQTTPublisher(cfg.MQTTBroker, "vehicare-api", cfg.MQTTTopicPrefix)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to MQTT broker, events disabled")
		return events.NoopPublisher{}
	}

	log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
	return publisher
}
