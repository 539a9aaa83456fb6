package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triarb/internal/api/rest"
	"triarb/internal/backtest"
	"triarb/internal/config"
	"triarb/internal/detector"
	"triarb/internal/exchange/binance"
	"triarb/internal/exchange/common"
	"triarb/internal/exchange/kraken"
	"triarb/internal/exchange/paper"
	"triarb/internal/executor"
	"triarb/internal/hub"
	"triarb/internal/infra/health"
	"triarb/internal/infra/http/middleware"
	"triarb/internal/infra/log"
	"triarb/internal/infra/metrics"
	"triarb/internal/infra/netutil"
	"triarb/internal/infra/runner"
	"triarb/internal/infra/version"
	"triarb/internal/market"
	"triarb/internal/profit"
	"triarb/internal/tradelog"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := log.New(cfg)

	// Backtest mode replays a CSV through the pipeline and exits.
	if os.Getenv("TRIARB_BACKTEST_CSV") != "" {
		if _, err := backtest.RunCSV(cfg, logger); err != nil {
			logger.Error().Err(err).Msg("backtest failed")
			os.Exit(1)
		}
		return
	}

	registry := metrics.Init(logger)

	tlog, err := tradelog.Open(cfg.TradeLog.Path, cfg.TradeLog.Tail)
	if err != nil {
		logger.Error().Err(err).Msg("cannot open trade log")
		os.Exit(1)
	}
	defer tlog.Close()

	conns := buildConnectors(cfg)
	if len(conns) == 0 {
		logger.Error().Msg("no exchanges enabled")
		os.Exit(1)
	}

	store := rest.NewStore()
	wsHub := hub.New(logger)
	exec := executor.New(conns, cfg, logger, tlog)

	adminCIDRs, err := netutil.ParseCIDRs(cfg.Server.AdminAllowCIDRs)
	if err != nil {
		logger.Error().Err(err).Msg("bad admin allow list")
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	mux.Handle("/ws", wsHub)
	mux.Handle("/", rest.New(store, tlog).Handler())
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}
	handler := middleware.RequestID(middleware.Logger(logger)(mux))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()
	logger.Info().Str("addr", cfg.Server.Addr).Msg("triangular arbitrage scanner started")

	sink := fanout{store, wsHub, &autoTrader{exec: exec, enabled: cfg.Trading.Enabled}}

	g := &runner.Group{}
	dets := map[string]*detector.Detector{}
	for name, conn := range conns {
		d := detector.New(conn, cfg, logger)
		if err := d.Initialize(ctx); err != nil {
			logger.Warn().Err(err).Str("exchange", name).Msg("exchange excluded from scanning")
			continue
		}
		dets[name] = d
		g.Go(ctx, name, func(ctx context.Context) error { return d.Run(ctx, sink) })
	}
	if len(dets) == 0 {
		logger.Error().Msg("no exchange initialized")
		os.Exit(1)
	}
	if cfg.Scanner.CrossExchange && len(dets) >= 2 {
		g.Go(ctx, "cross", func(ctx context.Context) error {
			return runCrossScan(ctx, cfg, dets, sink)
		})
	}
	health.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case exit := <-g.Exits():
		if exit.Err != nil && exit.Err != context.Canceled {
			logger.Error().Err(exit.Err).Str("worker", exit.Name).Msg("worker error")
		}
	}

	health.SetReady(false)
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	g.Wait()
	logger.Info().Msg("shutdown complete")
}

func buildConnectors(cfg config.Config) map[string]common.Connector {
	conns := map[string]common.Connector{}
	if cfg.Exchanges.Binance.Enabled {
		conns["binance"] = binance.New(cfg)
	}
	if cfg.Exchanges.Kraken.Enabled {
		conns["kraken"] = kraken.New(cfg)
	}
	if cfg.Exchanges.Paper.Enabled {
		ex := paper.New("paper")
		seedPaperExchange(ex)
		conns["paper"] = ex
	}
	return conns
}

// seedPaperExchange gives the dry-run venue a small market so the loop has
// something to scan without network access.
func seedPaperExchange(ex *paper.Exchange) {
	ex.SetPairs([]string{"BTC/USDT", "ETH/BTC", "ETH/USDT"})
	ex.SetTicker("BTC/USDT", 49950, 50000, 10000)
	ex.SetTicker("ETH/BTC", 0.0599, 0.06, 10000)
	ex.SetTicker("ETH/USDT", 3100, 3103, 10000)
	ex.SetBalance("USDT", 1000)
}

// runCrossScan periodically compares the detectors' cached snapshots across
// venues. Snapshots older than three scan intervals are left out.
func runCrossScan(ctx context.Context, cfg config.Config, dets map[string]*detector.Detector, sink detector.Sink) error {
	interval := time.Duration(cfg.Scanner.ScanIntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = 2 * time.Second
	}
	scanner := detector.CrossScanner{
		Fees: profit.FeeModel{
			TakerFeePct:       cfg.Fees.TakerFeePct,
			DiscountPct:       cfg.Fees.DiscountPct,
			DiscountEnabled:   cfg.Fees.DiscountEnabled,
			SlippageBufferPct: cfg.Fees.SlippageBufferPct,
			DefaultFeePct:     cfg.Fees.DefaultFeePct,
		},
		MinProfitPct:    cfg.Scanner.MinProfitPercentage,
		TransferCostPct: cfg.Scanner.TransferCostPct,
		TradeAmount:     cfg.Scanner.MaxTradeAmount,
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		snaps := map[string]market.Snapshot{}
		cutoff := time.Now().Add(-3 * interval)
		for name, d := range dets {
			if snap, ok := d.LastSnapshot(); ok && snap.TakenAt.After(cutoff) {
				snaps[name] = snap
			}
		}
		if len(snaps) < 2 {
			continue
		}
		sink.Publish(detector.Result{
			Exchange:      "cross",
			Opportunities: scanner.Scan(snaps),
			TakenAt:       time.Now(),
		})
	}
}

// fanout delivers each tick to every sink in order.
type fanout []detector.Sink

func (f fanout) Publish(res detector.Result) {
	for _, s := range f {
		s.Publish(res)
	}
}

// autoTrader hands the best tradeable opportunity of a fresh tick to the
// executor. Stale ticks are display-only.
type autoTrader struct {
	exec    *executor.Executor
	enabled bool
}

func (a *autoTrader) Publish(res detector.Result) {
	if !a.enabled || res.Stale {
		return
	}
	for _, opp := range res.Opportunities {
		if opp.Tradeable {
			a.exec.Execute(context.Background(), opp)
			return
		}
	}
}
