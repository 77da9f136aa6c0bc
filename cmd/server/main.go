package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/tamecovita/reservations/internal/auth"
	"github.com/tamecovita/reservations/internal/booking"
	"github.com/tamecovita/reservations/internal/config"
	"github.com/tamecovita/reservations/internal/database"
	"github.com/tamecovita/reservations/internal/docgen"
	"github.com/tamecovita/reservations/internal/handlers"
	"github.com/tamecovita/reservations/internal/logging"
	"github.com/tamecovita/reservations/internal/notifier"
	"github.com/tamecovita/reservations/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	for _, key := range cfg.InsecureDefaults() {
		logger.Warn("Using insecure development default, set it before deploying", zap.String("key", key))
	}

	for _, dir := range []string{cfg.DataDir, cfg.RequestsDir, cfg.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("Failed to create data directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Connect to Database
	db := database.Connect(cfg, logger)
	reservations := store.New(db)

	// One-time migration from the spreadsheet the store used to live in
	imported, err := reservations.ImportWorkbook(context.Background(), cfg.WorkbookPath)
	if err != nil {
		logger.Fatal("Failed to import legacy workbook", zap.String("path", cfg.WorkbookPath), zap.Error(err))
	}
	if imported.Imported > 0 {
		logger.Info("Imported legacy workbook", zap.Int("rows", imported.Imported), zap.Any("renumbered", imported.Renumbered))
	}
	count, err := reservations.Count(context.Background())
	if err != nil {
		logger.Fatal("Failed to count reservations", zap.Error(err))
	}
	logger.Info("Reservation store ready", zap.Int64("reservations", count))

	discordNotifier, err := notifier.NewFromToken(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID)
	if err != nil {
		logger.Warn("Discord notifier not initialized", zap.Error(err))
	}

	exporter := &docgen.Exporter{
		RequestsDir:     cfg.RequestsDir,
		ExportsDir:      cfg.ExportsDir,
		ReceiptTemplate: cfg.ReceiptTemplate,
		InvoiceTemplate: cfg.InvoiceTemplate,
	}
	svc := booking.NewService(reservations, exporter, discordNotifier, cfg.WorkbookPath, logger)
	if err := svc.EnsureWorkbook(context.Background()); err != nil {
		logger.Fatal("Failed to write workbook", zap.String("path", cfg.WorkbookPath), zap.Error(err))
	}
	gate := auth.NewGate(cfg)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, handlers.NewHandler(svc, gate, handlers.Options{
		SiteName: cfg.SiteName,
		LogoPath: cfg.LogoPath,
	}, logger))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("site", cfg.SiteName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
