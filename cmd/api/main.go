package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/rfid-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/rfid-attendance-go/internal/service/attendance"
	historyService "github.com/cmlabs-hris/rfid-attendance-go/internal/service/history"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	ctx := context.Background()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("Database schema applied")
	}

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	exemptionRepo := postgresql.NewExemptionRepository(db)

	if dir := filepath.Dir(cfg.History.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	historyStore, err := sqlite.New(cfg.History.SQLitePath)
	if err != nil {
		return fmt.Errorf("open tap history: %w", err)
	}
	defer historyStore.Close()

	hub := sse.NewHub(32)
	historySvc := historyService.NewHistoryService(historyStore, hub, historyService.Config{})
	defer historySvc.Close()

	scanService := attendanceService.NewScanService(
		userRepo,
		attendanceRepo,
		holidayRepo,
		exemptionRepo,
		postgresql.NewTransactor(db),
		historySvc,
		attendanceService.Config{Location: loc},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceHandler := appHTTP.NewAttendanceHandler(scanService)
	historyHandler := appHTTP.NewHistoryHandler(historySvc, JWTService)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, attendanceHandler, historyHandler)

	scheduler := cron.NewScheduler()
	cron.NewHistoryJobs(historyStore, cfg.History.RetentionDays, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	// No WriteTimeout: the history stream is long-lived.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		slog.Info("Shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
