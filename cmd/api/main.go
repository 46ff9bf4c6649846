package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mentor-backend/cmd"
	"mentor-backend/internal/api"
	"mentor-backend/internal/auth"
	"mentor-backend/internal/chat"
	"mentor-backend/internal/database"
	"mentor-backend/internal/llm"
	"mentor-backend/internal/storage"
)

type APIConfig struct {
	OpenAIApiKey string `env:"OPENAI_API_KEY"`
	ChatModel    string `env:"CHAT_MODEL" envDefault:"gpt-4o"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"mentor.db"`
	// StorageQuotaBytes bounds history storage the way browser local
	// storage would; the degradation ladder kicks in past it.
	StorageQuotaBytes int64  `env:"STORAGE_QUOTA_BYTES" envDefault:"5242880"`
	MediaDir          string `env:"MEDIA_DIR" envDefault:"media"`
	APIPort           string `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	kv := database.NewStore(db, cfg.StorageQuotaBytes)

	blobs, err := storage.NewBlobStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("Failed to create media directory: %v", err)
	}

	// Without an API key the server still serves history; sending a
	// message fails with a configuration error.
	var model llm.ChatModel
	var media *chat.MediaAugmenter
	if cfg.OpenAIApiKey != "" {
		chatModel, err := llm.NewOpenAIChatModel(cfg.OpenAIApiKey, cfg.ChatModel)
		if err != nil {
			log.Fatalf("Failed to create chat model: %v", err)
		}
		model = chatModel

		mediaClient := llm.NewOpenAIMediaClient(cfg.OpenAIApiKey)
		media = chat.NewMediaAugmenter(mediaClient, mediaClient, storage.NewMediaFetcher(blobs), blobs)
	} else {
		log.Println("OPENAI_API_KEY not set, chat and media generation disabled")
	}

	store := chat.NewStore(kv)
	orchestrator := chat.NewOrchestrator(model, store, media)
	provider := auth.NewProvider(kv)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	chatService := api.NewChatService(orchestrator, store, media, provider)
	chatService.AddRoutes(r)

	// Generated media files are served directly.
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(blobs.Dir()))))

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
