package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gate-lite/apps/server/internal/common/clock"
	"gate-lite/apps/server/internal/common/uuid"
	"gate-lite/apps/server/internal/config"
	"gate-lite/apps/server/internal/gateway"
	"gate-lite/apps/server/internal/ledger"
	"gate-lite/apps/server/internal/lobby"
	"gate-lite/apps/server/internal/table"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	log := logger.WithField("component", "server")

	ledgerService, ledgerMode, err := ledger.NewService(ledger.Options{
		Mode:        cfg.LedgerMode,
		SQLitePath:  cfg.SQLitePath,
		DatabaseDSN: cfg.DatabaseDSN,
		RecentLimit: cfg.LedgerRecentLimit,
		Logger:      logger,
	})
	if err != nil {
		log.WithError(err).Fatal("init ledger service")
	}
	defer ledgerService.Close()

	tableCfg := table.Config{
		Game:              cfg.Game(),
		CountdownStep:     cfg.CountdownStep,
		BroadcastDebounce: cfg.BroadcastDebounce,
	}
	ids := uuid.New()
	clk := clock.New()
	lby := lobby.New(tableCfg, ledgerService, ids, clk, logger)
	gw := gateway.New(lby, ids, clk, logger, gateway.Options{
		IdleTimeout: cfg.IdleTimeout,
		IdleSweep:   cfg.IdleSweep,
		DefaultAnte: cfg.DefaultAnte,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", gw.HandleWebSocket)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	ledger.NewHTTPHandler(ledgerService, logger).RegisterRoutes(r)
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gw.RunIdleSweeper(ctx)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":   cfg.Addr,
			"ledger": ledgerMode,
			"static": cfg.StaticDir,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	gw.Close()
	lby.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
