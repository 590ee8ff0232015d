package main

import (
	"chat-store/api"
	"chat-store/dataset"
	"chat-store/domain/chat"
	"chat-store/infrastructure/index"
	"chat-store/infrastructure/storage"
	"chat-store/internal"
	"chat-store/moderation"
	"chat-store/observability"
	"chat-store/store"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the store and its projections, then serves HTTP until a signal arrives.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Datasets
	datasets, err := loadDatasets(log, config.DatasetPath)
	if err != nil {
		return exitConfig, err
	}

	// 3. Projections: search index and journal
	idx, err := index.NewCommentIndex(log, config.SearchLimit)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = idx.Close() }()
	if err = idx.IndexDatasets(datasets); err != nil {
		return exitRuntime, err
	}

	db, err := storage.OpenInMemory()
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing journal...")
		_ = db.Close()
	}()
	journal := storage.NewCommentRepository(db, log, config.HistoryPageSize)
	if err = journal.Seed(datasets); err != nil {
		return exitRuntime, fmt.Errorf("seeding journal: %w", err)
	}

	// 4. Store
	var guarded *store.Guarded
	monitor := observability.NewMonitoringManager(log, func() (int, int) { return guarded.Counts() })
	opts := []store.Option{
		store.WithSender(config.Sender),
		store.WithSinks(idx, journal, monitor),
	}
	if words := internal.Words(config.CensoredWords); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, charReplacement, log)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup: %w", err)
		}
		opts = append(opts, store.WithCensor(moderator))
	}
	guarded = store.NewGuarded(store.NewChatStore(log, datasets, opts...))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go monitor.Listen(ctx, config.MetricInterval)

	// 6. HTTP Server
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(log, guarded, idx, journal, monitor)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.NewRouter(handler, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		rooms, comments := guarded.Counts()
		log.Info("Starting HTTP server", "address", address, "rooms", rooms, "comments", comments)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("Program stopped cleanly")
	return exitOK, nil
}

func loadDatasets(log *slog.Logger, path string) ([]chat.Dataset, error) {
	if path == "" {
		return dataset.Bundled()
	}
	datasets, err := dataset.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	log.Debug("Dataset loaded", "path", path, "rooms", len(datasets))
	return datasets, nil
}
