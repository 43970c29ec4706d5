package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/kevinxiao27/lww-set/internal/config"
	"github.com/kevinxiao27/lww-set/internal/server"
	"github.com/kevinxiao27/lww-set/lww"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func newLogger(lvl, nodeID string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "node", nodeID, "caller", log.DefaultCaller)

	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

// serve runs srv until ctx is done, then gives it a few seconds to drain.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.NodeID)
	metrics := server.NewMetrics(cfg.MetricsAddr != "")
	srv := server.NewServer(logger, metrics, func() *lww.Set[string] {
		return lww.New[string](cfg.SetOptions()...)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		level.Info(logger).Log(
			"msg", "API server starting",
			"addr", cfg.HTTPAddr,
			"clock", cfg.Clock,
			"tie_policy", cfg.TiePolicy,
		)
		return serve(ctx, &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler()})
	})

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			level.Info(logger).Log("msg", "exposing prometheus metrics", "addr", cfg.MetricsAddr)
			return serve(ctx, &http.Server{Addr: cfg.MetricsAddr, Handler: mux})
		})
	} else {
		level.Debug(logger).Log("msg", "metrics addr is empty, not exposing prometheus metrics")
	}

	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "server stopped")
}
