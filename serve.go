package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	bidding "auction-service/internal/biddingService"
	"auction-service/internal/config"
	"auction-service/internal/identity"
	moderation "auction-service/internal/moderationService"
	"auction-service/internal/models"
	"auction-service/internal/repository"
	"auction-service/internal/server"
	"auction-service/internal/throttle"
	"auction-service/internal/tracing"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// initTracing is a seam for tests.
var initTracing = tracing.Init

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	// flushes spans on every exit path, including a failed listen
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			utils.Warn("tracing shutdown", map[string]any{"error": err.Error()})
		}
	}()

	repo, closeRepo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	verifier, err := identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	if err != nil {
		return err
	}

	biddingSvc := bidding.NewBiddingService(repo)
	deps := server.Dependencies{
		Bidding:     biddingSvc,
		Moderation:  moderation.NewModerationService(repo),
		Verifier:    verifier,
		ServiceName: cfg.ServiceName,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			utils.Warn("redis unreachable, bid throttle will fail open", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
		}
		deps.Throttle = throttle.New(rdb, cfg.BidRateLimit, cfg.BidRateWindow)
	}

	if cfg.SeedDemo {
		if err := seedDemoAuctions(ctx, biddingSvc); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.SetupRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": cfg.HTTPAddr, "store": cfg.Store})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	utils.Info("shutting down", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured AuctionDB and its cleanup
func openStore(ctx context.Context, cfg config.Config) (repository.AuctionDB, func(), error) {
	if cfg.Store != config.StorePostgres {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	db, err := repository.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewPostgresRepo(db), func() { _ = db.Close() }, nil
}

// seedDemoAuctions adds sample auctions that are open for the next day
func seedDemoAuctions(ctx context.Context, svc *bidding.BiddingService) error {
	now := svc.Now()
	demo := []models.AuctionInput{
		{Title: "Vintage camera", Description: "35mm rangefinder", StartingPrice: "100.00"},
		{Title: "Road bike", Description: "Carbon frame, 56cm", StartingPrice: "200.00"},
		{Title: "Desk lamp", Description: "Brass, 1960s", StartingPrice: "150.00"},
	}

	for _, in := range demo {
		in.StartTime = now
		in.EndTime = now.Add(24 * time.Hour)
		a, err := svc.CreateAuction(ctx, "demo", in)
		if err != nil {
			return fmt.Errorf("seed demo auction %q: %w", in.Title, err)
		}
		utils.Debug("seeded demo auction", map[string]any{"auction_id": a.ID})
	}
	return nil
}
