package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marketpulse/internal/app"
	"marketpulse/internal/auth"
	"marketpulse/internal/cache"
	"marketpulse/internal/config"
	"marketpulse/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	obs := logging.Observer{L: logger}

	upstream := app.Upstream(cfg.Yahoo)
	agg := app.Aggregator(cfg, upstream, obs)
	snapshots := cache.New(agg.Build,
		cache.WithBuildTimeout(time.Duration(cfg.Aggregate.BuildTimeoutSec)*time.Second),
		cache.WithObserver(obs),
	)

	var gate auth.Gate = auth.NewBearerTokens(cfg.Auth.Tokens)
	if len(cfg.Auth.Tokens) == 0 {
		logger.Warn("auth.tokens is empty; market data endpoints are open")
		gate = auth.AllowAll
	}

	requestTimeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	a := &api{cache: snapshots, log: logger, timeout: requestTimeout}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.handler(gate),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("upstream", upstream.Name()),
			zap.Int("indices", len(cfg.WatchList.Indices)),
			zap.Int("sectors", len(cfg.WatchList.Sectors)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
