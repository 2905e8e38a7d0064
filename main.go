package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/p-kowalski/audio-notes/controller"
	"github.com/p-kowalski/audio-notes/services"
)

const defaultSecretsFile = "/etc/audio-notes/secrets.env"

func main() {
	// Load .env from the current directory for local runs. A missing file
	// is fine; deployments provide real env or a secrets file.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	secretsFile := os.Getenv("SECRETS_FILE")
	if secretsFile == "" {
		secretsFile = defaultSecretsFile
	}
	resolver, err := services.NewSecretResolver(secretsFile)
	if err != nil {
		logger.Fatal("parse secrets file", zap.String("path", secretsFile), zap.Error(err))
	}

	// The vector store URL is required; a missing key halts startup.
	chromaURL, err := resolver.Get("CHROMA_URL")
	if err != nil {
		var missing *services.MissingSecretError
		if errors.As(err, &missing) {
			logger.Fatal("required secret missing", zap.String("key", missing.Key))
		}
		logger.Fatal("resolve vector store URL", zap.Error(err))
	}
	chromaKey := resolver.GetOptional("CHROMA_API_KEY")

	// The provider key may be absent at startup; sessions can then supply
	// their own when they are created.
	openAIKey := resolver.GetOptional("OPENAI_API_KEY")
	if openAIKey == "" {
		logger.Warn("no OPENAI_API_KEY configured; sessions must supply their own key")
	}

	chromaClient, err := newChromaClient(chromaURL, chromaKey)
	if err != nil {
		logger.Fatal("create chroma client", zap.Error(err))
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			logger.Warn("close chroma client", zap.Error(err))
		}
	}()

	ctx := context.Background()

	// Fails closed: without a reachable vector store the application is
	// unusable, so it does not start at all.
	collection, err := services.EnsureCollection(ctx, chromaClient, logger)
	if err != nil {
		logger.Fatal("ensure notes collection", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	store := services.NewChromaNoteStore(collection, logger)
	providers := &services.OpenAIFactory{HTTPClient: httpClient}
	sessions := services.NewSessionManager()
	noteService := services.NewNoteService(store, providers, openAIKey, logger)
	notesController := controller.NewNotesController(noteService, sessions, logger)

	// An optional audio inbox directory: dropped recordings are
	// transcribed and saved as notes automatically.
	if inboxDir := resolver.GetOptional("AUDIO_INBOX_DIR"); inboxDir != "" {
		watcher := services.NewInboxWatcher(inboxDir, noteService, logger)
		go func() {
			watcher.Scan(ctx)
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inbox watcher stopped", zap.Error(err))
			}
		}()
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "audio-notes",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/sessions", notesController.CreateSession)
		apiV1.POST("/sessions/:id/audio", notesController.UploadAudio)
		apiV1.POST("/sessions/:id/transcribe", notesController.TranscribeAudio)
		apiV1.PUT("/sessions/:id/note", notesController.UpdateNote)
		apiV1.POST("/sessions/:id/notes", notesController.SaveNote)
		apiV1.GET("/notes", notesController.ListOrSearchNotes)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newChromaClient(url, apiKey string) (chromago.Client, error) {
	opts := []chromago.ClientOption{chromago.WithBaseURL(url)}
	if apiKey != "" {
		opts = append(opts, chromago.WithAuth(chromago.NewTokenAuthCredentialsProvider(apiKey, chromago.AuthorizationTokenHeader)))
	}
	return chromago.NewHTTPClient(opts...)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
