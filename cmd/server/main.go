package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "competition-voting/docs"
	"competition-voting/internal/config"
	"competition-voting/internal/domain/admin"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/payment"
	"competition-voting/internal/domain/stats"
	"competition-voting/internal/domain/vote"
	"competition-voting/internal/fixtures"
	api "competition-voting/internal/http"
	"competition-voting/internal/metrics"
	"competition-voting/internal/platform/database"
	jwtpkg "competition-voting/internal/platform/jwt"
	"competition-voting/internal/repository/memory"
	"competition-voting/internal/repository/postgres"
	"competition-voting/internal/worker"
	"competition-voting/pkg/logger"
)

type store interface {
	catalog.Repository
	ledger.Repository
	admin.Repository
}

// @title           Competition Voting API
// @version         1.0
// @description     Competitions, contestants, free and paid voting with admin reporting
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, db, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("storage init failed", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	catalogSvc := catalog.NewService(st, lg)
	voteSvc := vote.NewService(st, st, payment.NewSimulatedSettler(cfg.PaymentDelay), lg)
	projector := stats.NewProjector(st, st)
	adminSvc := admin.NewService(st, lg)

	if _, err := adminSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		lg.Fatal("admin bootstrap failed", zap.Error(err))
	}
	if cfg.SeedDemo {
		if _, err := fixtures.Seed(ctx, catalogSvc, lg); err != nil {
			lg.Fatal("demo seed failed", zap.Error(err))
		}
	}

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer)

	voteCh := make(chan worker.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, lg)

	router := api.NewRouter(api.Deps{
		Catalog:        catalogSvc,
		Votes:          voteSvc,
		Stats:          projector,
		Admins:         adminSvc,
		JWT:            jwtMgr,
		TokenTTL:       cfg.JWTTTL,
		VoteCh:         voteCh,
		DB:             db,
		Log:            lg,
		VoteRatePerMin: cfg.VoteRatePerMin,
		VoteRateBurst:  cfg.VoteRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go statsWorker.Run(workerCtx)

	go func() {
		lg.Info("server listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown error", zap.Error(err))
	}
	cancelWorker()

	lg.Info("server stopped")
}

// openStore returns the configured store. db is nil for in-memory storage.
func openStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (store, *sql.DB, error) {
	if cfg.Storage != config.StoragePostgres {
		return memory.NewStore(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DBDSN, lg)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db), db, nil
}
