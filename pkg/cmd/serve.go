package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/cache"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/server"
)

const (
	ServeCmdName  = "serve"
	ServeCmdShort = "Serve TCO calculations over HTTP"
	ServeCmdLong  = `Start the HTTP service.

Routes:
  GET  /v1/tco        compute from query parameters (?years=7&evPrice=...)
  POST /v1/tco        compute from a JSON body; omitted fields keep their defaults
  POST /v1/validate   list every input violation
  GET  /v1/defaults   default scenario
  GET  /health        liveness
  GET  /metrics       Prometheus metrics`
)

var (
	ServeCmd = &cobra.Command{
		Use:   ServeCmdName,
		Short: ServeCmdShort,
		Long:  ServeCmdLong,
		RunE:  serveCmdFunc(),
	}
)

func init() {
	RootCmd.AddCommand(ServeCmd)

	defaults := server.DefaultConfig()
	flags := ServeCmd.Flags()
	flags.String("addr", defaults.Addr, "listen address")
	flags.Float64("rate-limit", defaults.RateLimit, "requests per second on /v1 routes, 0 disables")
	flags.Int("rate-burst", defaults.RateBurst, "rate limit burst size")
	flags.Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	flags.Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	flags.Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	flags.Duration("shutdown-timeout", 15*time.Second, "grace period for in-flight requests on shutdown")
	flags.String("cache", "memory", "result cache: memory, redis or none")
	flags.Int("cache-size", 1024, "entries kept by the memory cache")
	flags.Duration("cache-ttl", time.Hour, "expiry of redis cache entries, 0 keeps them")
	flags.String("redis-addr", "localhost:6379", "redis address for --cache=redis")
	viper.BindPFlags(flags)
}

func serveConfig(v *viper.Viper) server.Config {
	return server.Config{
		Addr:         v.GetString("addr"),
		RateLimit:    v.GetFloat64("rate-limit"),
		RateBurst:    v.GetInt("rate-burst"),
		ReadTimeout:  v.GetDuration("read-timeout"),
		WriteTimeout: v.GetDuration("write-timeout"),
		IdleTimeout:  v.GetDuration("idle-timeout"),
	}
}

// newCache builds the configured cache. The returned func releases its resources.
func newCache(ctx context.Context, v *viper.Viper) (cache.Cache, func(), error) {
	switch kind := v.GetString("cache"); kind {
	case "memory":
		return cache.NewMemory(v.GetInt("cache-size")), func() {}, nil
	case "none", "":
		return cache.Noop{}, func() {}, nil
	case "redis":
		r := cache.NewRedis(v.GetString("redis-addr"), v.GetDuration("cache-ttl"))
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", v.GetString("redis-addr"), err)
		}
		return r, func() { r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache %q", kind)
	}
}

func serveCmdFunc() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		logger := slog.Default()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results, closeCache, err := newCache(ctx, v)
		if err != nil {
			return err
		}
		defer closeCache()

		cfg := serveConfig(v)
		serve := server.NewHTTPServer(cfg, logger, results)

		serverErr := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.Addr, "cache", v.GetString("cache"))
			if err := serve.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down the server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), v.GetDuration("shutdown-timeout"))
		defer cancel()
		if err := serve.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server exited")
		return nil
	}
}
