package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auranotes/internal/config"
	"auranotes/internal/db"
	"auranotes/internal/notes"
	"auranotes/internal/transcribe"
	"auranotes/internal/uploads"
	"auranotes/internal/users"
	"auranotes/internal/web"
)

//go:embed static
var staticFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	userRepo := users.NewMongoRepo(database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure user indexes", "error", err)
	}
	noteRepo := notes.NewMongoRepo(database)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure note indexes", "error", err)
	}

	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}

	recognizer := transcribe.NewGoogleRecognizer(cfg.SpeechAPIURL, cfg.SpeechAPIKey, cfg.SpeechAPILang)
	transcriber := transcribe.New(recognizer, cfg.FFmpegPath, logger)

	handler := web.NewHandler(
		users.NewService(userRepo),
		notes.NewService(noteRepo),
		uploadStore,
		transcriber,
		web.NewSessionStore(cfg.SessionSecret),
		cfg.MaxUploadBytes,
		logger,
	)

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	handler.Register(mux)

	// Start server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if err := db.Disconnect(shutdownCtx, database); err != nil {
			logger.Error("mongo disconnect error", "error", err)
		}
	}()

	if cfg.TLSEnabled() {
		logger.Info("server starting with TLS", "addr", srv.Addr)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		logger.Info("server starting", "addr", srv.Addr)
		err = srv.ListenAndServe()
	}
	if err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}
