package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/throttlify/throttlify/internal/ratelimitserver"
)

const (
	storeMemory      = "memory"
	storeRedis       = "redis"
	storeTokenBucket = "token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP server protected by a rate limit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return runServe(ctx)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.Int("max", 2, "max requests allowed per window")
	f.Duration("duration", time.Second, "rate limit window duration")
	f.String("store", storeMemory, "rate limit store: memory, redis or token")
	f.String("redis-addr", "localhost:6379", "redis address for the redis store")
	f.String("redis-password", "", "redis password for the redis store")
	f.Int("redis-db", 0, "redis database for the redis store")
	f.String("redis-prefix", "ratelimit", "redis key prefix for the redis store")
	f.String("error-message", ratelimitserver.DefaultErrorMessage, "message returned when the limit is exceeded")
}

func newStore(ctx context.Context) (ratelimitserver.Store, func(), error) {
	max := viper.GetInt("max")
	duration := viper.GetDuration("duration")
	if max <= 0 || duration <= 0 {
		return nil, nil, fmt.Errorf("max and duration must be greater than 0")
	}

	switch kind := viper.GetString("store"); kind {
	case storeMemory:
		return ratelimitserver.NewMemoryStore(max, duration), func() {}, nil
	case storeTokenBucket:
		return ratelimitserver.NewTokenBucketStore(max, duration), func() {}, nil
	case storeRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis-addr"),
			Password: viper.GetString("redis-password"),
			DB:       viper.GetInt("redis-db"),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
		}
		closer := func() { _ = rdb.Close() }
		return ratelimitserver.NewRedisStore(rdb, max, duration, viper.GetString("redis-prefix")), closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}

func runServe(ctx context.Context) error {
	store, closeStore, err := newStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	handler, err := ratelimitserver.New(ratelimitserver.Config{
		Store:        store,
		ErrorMessage: viper.GetString("error-message"),
		Logger:       logger,
		Gatherer:     reg,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              viper.GetString("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("rate limited server listening",
		zap.String("addr", srv.Addr),
		zap.String("store", viper.GetString("store")),
		zap.Int("max", viper.GetInt("max")),
		zap.Duration("duration", viper.GetDuration("duration")),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")

	return nil
}
