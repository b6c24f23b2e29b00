package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "net/http/pprof"

	"github.com/travelmeds/analogues-api/catalog"
	"github.com/travelmeds/analogues-api/config"
	"github.com/travelmeds/analogues-api/handlers"
	"github.com/travelmeds/analogues-api/health"
	"github.com/travelmeds/analogues-api/interfaces"
	"github.com/travelmeds/analogues-api/logging"
	"github.com/travelmeds/analogues-api/matcher"
	"github.com/travelmeds/analogues-api/resolver"
	"github.com/travelmeds/analogues-api/scheduler"
	"github.com/travelmeds/analogues-api/search"
	"github.com/travelmeds/analogues-api/server"
	"github.com/travelmeds/analogues-api/validation"
)

func init() {
	// Read the env variables, falling back to the executable directory
	if err := godotenv.Load(); err != nil {
		ex, err := os.Executable()
		if err != nil {
			logging.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		exPath := filepath.Dir(ex)
		if err := os.Chdir(exPath); err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logDir := "logs"
	if cfg.Env == "test" {
		logDir = ""
	}
	logging.InitLoggerWithOptions(logDir, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	validator := validation.NewDataValidator()
	store := catalog.NewStore()
	store.SetServerStartTime(time.Now())

	var remote interfaces.CatalogSearcher
	if cfg.CatalogBackend == config.BackendRemote {
		remote = catalog.NewRemoteCatalog(cfg.RemoteAPIURL, cfg.RemoteCountry, time.Duration(cfg.RemoteTimeout)*time.Second)
		logging.Info("Remote registry enabled", "url", cfg.RemoteAPIURL, "country", cfg.RemoteCountry)
	}

	// The pipeline holds a live view so daily refreshes reach it without
	// rewiring.
	liveCatalog := catalog.NewLiveCatalog(store)
	res := resolver.NewResolver(liveCatalog, remote, cfg.MaxAnalogues)
	m := matcher.NewMatcher(liveCatalog, remote, cfg.MaxAnalogues)
	orchestrator := search.NewOrchestrator(res, m, liveCatalog, cfg.MaxAnalogues)

	loader := catalog.NewSeedLoader(cfg.CatalogFile, validator)
	sched := scheduler.NewScheduler(store, loader, validator)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	healthChecker := health.NewHealthChecker(store)
	handler := handlers.NewHTTPHandler(store, orchestrator, validator, healthChecker)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
