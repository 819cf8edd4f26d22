package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/openledger/finance-api/internal/database"
	mW "github.com/openledger/finance-api/internal/middleware"
	"github.com/openledger/finance-api/internal/services"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("admin.username", "ADMIN_USERNAME")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("cors.allowed_headers", "HEADERS_ALLOWED")

	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	viper.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})

	// Initialize storage
	db := database.InitDatabase()
	defer database.CloseDB()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize services
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	accountTypeService := services.NewAccountTypeService(db)
	transactionService := services.NewTransactionService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userService.Bootstrap(ctx); err != nil {
		log.Printf("Warning: admin bootstrap failed: %v", err)
	}
	cancel()

	stats := mW.NewStats()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(stats.Middleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   viper.GetStringSlice("cors.allowed_headers"),
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "healthy",
			"stats":  stats.Snapshot(),
		})
	})

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(mW.BasicAuth(userService))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountService.ListAccounts)
			r.Post("/", accountService.CreateAccount)
			r.Get("/{accountID}", accountService.GetAccount)
			r.Put("/{accountID}", accountService.UpdateAccount)
			r.Delete("/{accountID}", accountService.DeleteAccount)
			r.Get("/{accountID}/transactions", accountService.ListAccountTransactions)
		})

		r.Route("/account_types", func(r chi.Router) {
			r.Get("/", accountTypeService.ListAccountTypes)
			r.Post("/", accountTypeService.CreateAccountType)
			r.Get("/{accountTypeID}", accountTypeService.GetAccountType)
			r.Delete("/{accountTypeID}", accountTypeService.DeleteAccountType)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionService.ListTransactions)
			r.Post("/", transactionService.CreateTransaction)
			r.Get("/{transactionID}", transactionService.GetTransaction)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userService.ListUsers)
			r.Post("/", userService.Register)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
