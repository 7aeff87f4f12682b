package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/choreboard/choreboard/internal/api"
	"github.com/choreboard/choreboard/internal/config"
	"github.com/choreboard/choreboard/internal/db"
	"github.com/choreboard/choreboard/internal/notify"
	"github.com/choreboard/choreboard/internal/stats"
	"github.com/choreboard/choreboard/internal/tasks"
	"github.com/choreboard/choreboard/pkg/logger"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database connection
	database, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Redis client
	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Warnf("Failed to connect to Redis, avatar cache disabled: %v", err)
		redisClient = nil
	}

	// Initialize the family event hub
	hub := notify.NewHub()
	go hub.Run()

	// Initialize the statistics backend and, when the warehouse is
	// selected, the replication task that feeds it
	taskManager := tasks.NewManager(log)
	var statsProvider stats.Provider
	if cfg.Stats.Backend == stats.BackendClickHouse {
		warehouse, err := db.ConnectClickHouse(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		taskManager.RegisterTask(tasks.NewCompletionReplicationTask(
			database, warehouse, cfg.Stats.ReplicationInterval, log))
		statsProvider = stats.New(cfg.Stats, database, warehouse)
	} else {
		statsProvider = stats.New(cfg.Stats, database, nil)
	}
	taskManager.StartAll()
	defer taskManager.StopAll()

	// Initialize router
	router := api.SetupRouter(database, redisClient, hub, statsProvider, cfg)

	// Set up CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsMiddleware.Handler(router)

	log.Infof("Server starting on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, handler))
}
