package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unifiedpay/wallet-backend/internal/api"
	"github.com/unifiedpay/wallet-backend/internal/auth"
	"github.com/unifiedpay/wallet-backend/internal/config"
	"github.com/unifiedpay/wallet-backend/internal/db"
	"github.com/unifiedpay/wallet-backend/internal/logger"
	"github.com/unifiedpay/wallet-backend/internal/metrics"
	"github.com/unifiedpay/wallet-backend/internal/middleware"
	"github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/repository/memory"
	"github.com/unifiedpay/wallet-backend/internal/repository/postgres"
	"github.com/unifiedpay/wallet-backend/internal/services"
	"github.com/unifiedpay/wallet-backend/internal/upi"
	"github.com/unifiedpay/wallet-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DATABASE_URL=memory runs the whole wallet off process-local maps,
	// no Postgres needed. Demo only.
	var repos repository.Registry
	if cfg.DatabaseURL == "memory" {
		repos = memory.NewRepositories(memory.NewStore())
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos = postgres.NewRepositories(pool)
	}

	metrics.Init()
	wp := worker.NewPool(4)
	defer wp.Stop()
	sched := worker.NewScheduler(wp)
	defer sched.Stop()

	rnd := upi.NewSource(time.Now().UnixNano())
	tm := auth.NewTokenManager(cfg.JWTAccessKey, cfg.JWTRefreshKey, 15*time.Minute, 7*24*time.Hour)

	settingsSvc := services.NewSettingsService(repos.Settings)
	accountSvc := services.NewAccountService(repos.Profiles, repos.UPIAccounts, tm, rnd)
	txnSvc := services.NewTransactionService(repos.Transactions, repos.Profiles, settingsSvc, sched, rnd)
	directorySvc := services.NewDirectoryService(repos.Contacts, repos.UPIAccounts)
	seedSvc := services.NewSeedService(repos.Profiles, repos.UPIAccounts, repos.Contacts, repos.Transactions, rnd)

	r := api.NewRouter(api.Deps{
		Cfg:       cfg,
		Accounts:  accountSvc,
		Txns:      txnSvc,
		Settings:  settingsSvc,
		Directory: directorySvc,
		Seeder:    seedSvc,
		AuthMW:    middleware.NewAuthMiddleware(tm),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
