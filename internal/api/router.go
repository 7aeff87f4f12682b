package api

import (
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/cache"
	"github.com/choreboard/choreboard/internal/config"
	"github.com/choreboard/choreboard/internal/handlers"
	"github.com/choreboard/choreboard/internal/middleware"
	"github.com/choreboard/choreboard/internal/notify"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/stats"
	"github.com/choreboard/choreboard/internal/utils"
)

// SetupRouter configures all routes and returns the router
func SetupRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	hub *notify.Hub,
	statsProvider stats.Provider,
	cfg *config.Config,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", HealthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Create services
	avatarCache := cache.NewAvatarCache(redisClient, time.Hour)
	authService := services.NewAuthService(db, cfg.JWT.SecretKey, cfg.JWT.TokenLifetime)
	userService := services.NewUserService(db, avatarCache)
	familyService := services.NewFamilyService(db, cfg.JWT.SecretKey, cfg.JWT.InviteLifetime)
	choreService := services.NewChoreService(db)
	completionService := services.NewCompletionService(db, hub)
	walletService := services.NewWalletService(db)
	productService := services.NewProductService(db, cfg.Economy.PurchaseRate, hub)

	// Create handlers using services
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	familyHandler := handlers.NewFamilyHandler(familyService)
	choreHandler := handlers.NewChoreHandler(choreService, completionService)
	walletHandler := handlers.NewWalletHandler(walletService, cfg.Economy.TransferRate)
	productHandler := handlers.NewProductHandler(productService)
	statsHandler := handlers.NewStatsHandler(statsProvider, userService)

	// Public endpoints (no authentication required)
	router.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/login", authHandler.Login).Methods("POST")

	apiRouter := router.PathPrefix("/api").Subrouter()

	// WebSocket event feed: authenticated, but outside the metrics
	// middleware because the recorder breaks connection hijacking
	wsRouter := apiRouter.PathPrefix("/ws").Subrouter()
	wsRouter.Use(middleware.AuthMiddleware(cfg.JWT.SecretKey))
	wsRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		userID, err := utils.GetUserIDFromContext(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := userService.GetUserByID(userID)
		if err != nil || user.FamilyID == nil {
			http.Error(w, "No family", http.StatusNotFound)
			return
		}
		hub.HandleWebSocket(w, r, *user.FamilyID)
	})

	// Authenticated endpoints
	authRouter := apiRouter.PathPrefix("").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg.JWT.SecretKey), middleware.Metrics)

	userHandler.RegisterRoutes(authRouter)
	familyHandler.RegisterRoutes(authRouter)
	choreHandler.RegisterRoutes(authRouter)
	walletHandler.RegisterRoutes(authRouter)
	productHandler.RegisterRoutes(authRouter)
	statsHandler.RegisterRoutes(authRouter)

	return router
}
