package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/daftari/backend/docs"
	"github.com/daftari/backend/internal/database"
	"github.com/daftari/backend/internal/handlers"
	"github.com/daftari/backend/internal/logger"
	mW "github.com/daftari/backend/internal/middleware"
	"github.com/daftari/backend/internal/services"
	"github.com/daftari/backend/internal/storages"
)

// @title Daftari Ledger API
// @version 1.0
// @description API for a multi-currency personal ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.base_url", "BASE_URL")
	viper.BindEnv("log.level", "LOG_LEVEL")

	viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	viper.BindEnv("sqlite.path", "SQLITE_PATH")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("gemini.model", "GEMINI_MODEL")

	viper.SetDefault("server.base_url", "http://localhost:8080")

	log := logger.New(viper.GetString("log.level"))

	docs.SwaggerInfo.Title = "Daftari Ledger API"
	docs.SwaggerInfo.Description = "API for a multi-currency personal ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	store, err := storages.New(viper.GetString("storage.backend"))
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}
	defer store.Close()

	redisClient := database.InitRedis(log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	authService := services.NewAuthService(store, redisClient, log)
	transactionService := services.NewTransactionService(store, log)
	ledgerService := services.NewLedgerService(store, log)
	rateService := services.NewRateService(store, log)
	insightsService := services.NewInsightsService(store, log)
	syncService := services.NewSyncService(store, redisClient, log)
	syncHandler := handlers.NewSyncHandler(syncService)

	mW.InitAuthMiddleware(redisClient)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Shareable link target, must stay public so a fresh device can import.
	r.Get("/sync", syncHandler.ImportFromLink)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetAccount)

			r.Get("/transactions", transactionService.ListTransactions)
			r.Post("/transactions", transactionService.CreateTransaction)
			r.Put("/transactions/{txId}", transactionService.UpdateTransaction)
			r.Delete("/transactions/{txId}", transactionService.DeleteTransaction)

			r.Get("/ledger/day", ledgerService.GetDay)
			r.Get("/ledger/month", ledgerService.GetMonth)

			r.Get("/rate", rateService.GetRate)
			r.Put("/rate", rateService.SetRate)

			r.Get("/sync/export", syncHandler.Export)
			r.Post("/sync/import", syncHandler.Import)
			r.Get("/sync/backup", syncHandler.Backup)
			r.Post("/sync/share", syncHandler.CreateShare)
			r.Post("/sync/share/{code}", syncHandler.RedeemShare)

			r.Post("/insights", insightsService.Generate)
		})
	})

	port := viper.GetString("server.port")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
