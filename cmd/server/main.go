package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylemart-be/internal/address"
	"stylemart-be/internal/auth"
	"stylemart-be/internal/cart"
	"stylemart-be/internal/catalog"
	"stylemart-be/internal/config"
	"stylemart-be/internal/db"
	"stylemart-be/internal/handler"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/metrics"
	"stylemart-be/internal/middleware"
	"stylemart-be/internal/order"
	"stylemart-be/internal/outbox"
	"stylemart-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newServer(cfg, database)
	defer app.Close()
	app.startWorkers(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// server holds the wired HTTP handler and the background workers that live
// alongside it.
type server struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	relay   *outbox.Relay
	redis   redis.UniversalClient
}

func newServer(cfg *config.Config, database *sql.DB) *server {
	m := metrics.New()
	tokens := auth.NewTokens(cfg.JWTSecret)

	rdb, cartCache := newCartCache(cfg.RedisAddr)

	userSvc := user.NewService(user.NewRepository(database), tokens)
	addressSvc := address.NewService(address.NewRepository(database))
	cartSvc := cart.NewService(cart.NewRepository(database), catalog.NewRepository(database), cartCache, m)
	orderSvc := order.NewService(
		order.NewRepository(database, cfg.OrderEventsTopic),
		cartSvc,
		m,
		order.Options{DeliveryDays: cfg.EstimatedDeliveryDays},
	)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	h := handler.New(userSvc, addressSvc, cartSvc, orderSvc)

	s := &server{
		handler: handler.NewRouter(h, handler.RouterConfig{
			Tokens:     tokens,
			Limiter:    limiter,
			Metrics:    m,
			CORSOrigin: cfg.CORSAllowedOrigin,
		}),
		limiter: limiter,
		redis:   rdb,
	}

	if brokers := outbox.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		s.relay = outbox.NewRelay(outbox.NewStore(database), outbox.NewWriter(brokers), cfg.OutboxPollInterval, m)
	} else {
		logger.L().Info("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	return s
}

// newCartCache connects to Redis when an address is configured. An
// unreachable Redis disables caching instead of failing startup.
func newCartCache(addr string) (redis.UniversalClient, cart.Cache) {
	if addr == "" {
		return nil, cart.NoopCache{}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis unavailable, cart cache disabled", zap.String("addr", addr), zap.Error(err))
		_ = rdb.Close()
		return nil, cart.NoopCache{}
	}
	return rdb, cart.NewRedisCache(rdb)
}

func (s *server) startWorkers(ctx context.Context) {
	go s.limiter.Run(ctx)
	if s.relay != nil {
		go s.relay.Run(ctx)
	}
}

func (s *server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.L().Warn("failed to close redis client", zap.Error(err))
		}
	}
}
