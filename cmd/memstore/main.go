// Command memstore drives a concurrent transactional workload against an
// in-memory store, prints per-type statistics and optionally serves
// prometheus metrics and health checks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-memstore/pkg/config"
	"github.com/dd0wney/cluso-memstore/pkg/health"
	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/metrics"
	"github.com/dd0wney/cluso-memstore/pkg/store"
	"github.com/dd0wney/cluso-memstore/pkg/txn"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	workers := flag.Int("workers", 8, "Concurrent workers")
	ops := flag.Int("ops", 1000, "Transactions per worker")
	customers := flag.Int("customers", 50, "Customers created before the run")
	rollbackRate := flag.Float64("rollback-rate", 0.1, "Probability that a transaction is abandoned")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics on this address (overrides config)")
	hold := flag.Bool("hold", false, "Keep serving metrics and health after the run until interrupted")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logging.DefaultLogger().Error("failed to load config", logging.Error(err))
			os.Exit(1)
		}
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}

	logger := cfg.NewLogger(os.Stderr)
	logging.SetDefaultLogger(logger)

	if *workers < 1 || *ops < 0 || *customers < 1 || *rollbackRate < 0 || *rollbackRate > 1 {
		logger.Error("invalid flags",
			logging.Int("workers", *workers),
			logging.Int("ops", *ops),
			logging.Int("customers", *customers),
			logging.Any("rollback_rate", *rollbackRate))
		os.Exit(2)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.DefaultRegistry()
	}

	ms := store.NewMainStore(cfg.StoreOptions(logger, reg)...)
	ms.RegisterForeignKey(store.For[*Order](ms).Type(), "customer_email")
	ms.RegisterForeignKey(store.For[*Customer](ms).Type(), "region")
	manager := txn.NewManager(ms, cfg.ManagerOptions(logger, reg)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress runProgress
	checker := health.NewChecker()
	checker.RegisterCheck("main_store", health.StoreCheck(ms))
	checker.RegisterReadinessCheck("workload", health.ProgressCheck(progress.state))

	var srv *http.Server
	if reg != nil {
		srv = serveHTTP(cfg.Metrics.Addr, reg, checker, logger)
	}

	w := &workload{
		manager:      manager,
		logger:       logger.With(logging.Component("workload")),
		workers:      *workers,
		ops:          *ops,
		customers:    *customers,
		rollbackRate: *rollbackRate,
		seed:         *seed,
	}

	start := time.Now()
	sum, err := w.run(ctx)
	progress.finish(err)
	if err != nil {
		logger.Error("workload failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("workload finished",
		logging.Latency(time.Since(start)),
		logging.Any("committed", sum.Committed),
		logging.Any("rolled_back", sum.RolledBack))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		logger.Error("failed to write summary", logging.Error(err))
		os.Exit(1)
	}

	if srv == nil {
		return
	}
	if *hold {
		logger.Info("serving until interrupted", logging.String("addr", cfg.Metrics.Addr))
		<-ctx.Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", logging.Error(err))
	}
}

func serveHTTP(addr string, reg *metrics.Registry, checker *health.Checker, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	mux.Handle("/health", checker.Handler())
	mux.Handle("/ready", checker.ReadinessHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", logging.Error(err))
		}
	}()
	logger.Info("http server listening", logging.String("addr", addr))
	return srv
}

// runProgress feeds the readiness check.
type runProgress struct {
	mu   sync.Mutex
	done bool
	err  error
}

func (p *runProgress) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.err = true, err
}

func (p *runProgress) state() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.err
}
