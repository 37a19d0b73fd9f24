package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"arbor/internal/config"
	"arbor/internal/handler"
	"arbor/internal/middleware"
	"arbor/internal/mirror"
	"arbor/internal/repository/postgres"
	"arbor/internal/service/export"
	"arbor/internal/service/folders"
	"arbor/internal/service/hierarchy"
)

func main() {
	// Missing .env is fine in containers; env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load()
	logger, cleanup := setupLogger(cfg)
	defer cleanup()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repoCfg := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoCfg)
	noteStore := postgres.NewNoteStore(repoCfg)
	workspaceReg := postgres.NewWorkspaceRegistry(repoCfg)
	txManager := postgres.NewTransactionManager(pool)

	fsMirror := mirror.New(cfg.DataDir, logger)
	resolver := hierarchy.NewResolver(folderRepo)
	mover := hierarchy.NewMoveCoordinator(folderRepo, resolver, workspaceReg, txManager, logger)
	reassigner := folders.NewNoteReassigner(noteStore, cfg.DefaultFolderName, logger)
	folderService := folders.NewService(folderRepo, workspaceReg, resolver, reassigner,
		txManager, fsMirror, cfg.DefaultFolderName, logger)
	exportService := export.NewService(folderRepo, noteStore, resolver, logger)

	folderHandler := handler.NewFolderHandler(folderService, mover, resolver, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("GET /api/folders", folderHandler.List)
	mux.HandleFunc("GET /api/folders/tree", folderHandler.Tree)
	mux.HandleFunc("GET /api/folders/resolve", folderHandler.Resolve)
	mux.HandleFunc("POST /api/folders/move", folderHandler.Move)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.Get)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.Update)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)
	mux.HandleFunc("POST /api/folders/{id}/empty", folderHandler.Empty)
	mux.HandleFunc("POST /api/folders/{id}/move-files", folderHandler.MoveFiles)
	mux.HandleFunc("GET /api/folders/{id}/count", folderHandler.Count)
	mux.HandleFunc("GET /api/folders/{id}/path", folderHandler.Path)
	mux.HandleFunc("GET /api/folders/{id}/export", exportHandler.Export)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Recovery(logger)(corsMiddleware.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// setupLogger builds the process logger: colorized for dev terminals, JSON
// otherwise, optionally teeing to a rotating file under LOG_DIR
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	cleanup := func() {}

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		file, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			slog.Warn("failed to open log file, logging to stdout only", "error", err)
		} else {
			out = io.MultiWriter(os.Stdout, file)
			cleanup = func() { file.Close() }
		}
	}

	if cfg.Environment == "dev" {
		return slog.New(tint.NewHandler(out, &tint.Options{Level: slog.LevelDebug})), cleanup
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})), cleanup
}
