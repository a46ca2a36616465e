// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/citizenslab/citizens-chat/internal/config"
	"github.com/citizenslab/citizens-chat/internal/domain"
	"github.com/citizenslab/citizens-chat/internal/handlers"
	"github.com/citizenslab/citizens-chat/internal/middleware"
	"github.com/citizenslab/citizens-chat/internal/ratelimit"
	conversationrepo "github.com/citizenslab/citizens-chat/internal/repository/conversation"
	messagerepo "github.com/citizenslab/citizens-chat/internal/repository/message"
	userrepo "github.com/citizenslab/citizens-chat/internal/repository/user"
	"github.com/citizenslab/citizens-chat/internal/services"
	"github.com/citizenslab/citizens-chat/internal/services/conversation"
	"github.com/citizenslab/citizens-chat/internal/services/llm"
	"github.com/citizenslab/citizens-chat/internal/services/turn"
	"github.com/citizenslab/citizens-chat/internal/services/user_services"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("citizens_chat")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	conversationRepo := conversationrepo.NewConversationRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)

	// --- Generation backend (selected once, shared by all turns) ---
	llmConfig := llm.DefaultConfig()
	llmConfig.Backend = cfg.LLMBackend
	llmConfig.Model = cfg.LLMModel
	llmConfig.APIKey = cfg.LLMAPIKey
	llmConfig.BaseURL = cfg.LLMBaseURL
	llmConfig.LocalCommand = cfg.LLMLocalCommand
	llmConfig.MaxTokens = cfg.LLMMaxTokens
	llmConfig.Temperature = float32(cfg.LLMTemperature)
	llmConfig.Timeout = time.Duration(cfg.GenerationTimeoutSeconds) * time.Second

	generator, err := llm.New(llmConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize generation backend: %v", err)
	}

	// --- Services ---
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)
	conversationService := conversation.NewService(conversationRepo, messageRepo, logger)

	turnConfig := turn.DefaultConfig()
	turnConfig.GenerationTimeout = time.Duration(cfg.GenerationTimeoutSeconds) * time.Second
	turnConfig.MaxTokens = cfg.LLMMaxTokens
	turnConfig.Temperature = float32(cfg.LLMTemperature)

	orchestrator, err := turn.NewOrchestrator(turnConfig, conversationRepo, messageRepo, generator, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize turn orchestrator: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(conversationService, orchestrator)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)
	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	messageLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.MessageConfig())
	defer authLimiter.Close()
	defer messageLimiter.Close()

	r.Use(middleware.NewCORSMiddleware(cfg.AllowedOrigin))
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")

	authRoutes := r.PathPrefix("/api").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authSuccess := middleware.AuthSuccessMiddleware(authLimiter, "login")
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.Handle("/login", authSuccess(http.HandlerFunc(authHandler.Login))).Methods("POST")
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/conversations", chatHandler.GetUserConversations).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetConversationMessages).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}", chatHandler.DeleteConversation).Methods("DELETE")

	sendRoute := r.PathPrefix("/api").Subrouter()
	sendRoute.Use(authMiddleware)
	sendRoute.Use(middleware.RateLimitMiddleware(messageLimiter, "message"))
	sendRoute.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.SendMessage).Methods("POST")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Citizens LLM Chat backend starting on port %s (backend: %s)", port, cfg.LLMBackend)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
