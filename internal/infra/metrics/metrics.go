package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	TrianglesBuilt = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "triangles_built", Help: "Triangles built at init per exchange"},
		[]string{"exchange"})
	TrianglesCheckedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "triangles_checked_total", Help: "Triangles evaluated per exchange"},
		[]string{"exchange"})
	TrianglesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "triangles_skipped_total", Help: "Triangles skipped by reason"},
		[]string{"exchange", "reason"})
	ScanTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scan_ticks_total", Help: "Completed scan ticks per exchange"},
		[]string{"exchange"})
	StaleSnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stale_snapshots_total", Help: "Ticks served from the cached snapshot"},
		[]string{"exchange"})
	SnapshotFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "snapshot_fetch_errors_total", Help: "Ticker fetch failures per exchange"},
		[]string{"exchange"})
	OpportunitiesFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opportunities_found_total", Help: "Ranked opportunities emitted"},
		[]string{"exchange"})
	OpportunitiesTradeableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opportunities_tradeable_total", Help: "Opportunities passing the balance gate"},
		[]string{"exchange"})
	BestNetProfitPct = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "best_net_profit_pct", Help: "Best net profit percent per tick",
		Buckets: prometheus.LinearBuckets(-1, 0.1, 30)})
	ScanDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "scan_duration_ms", Help: "Full tick evaluation latency",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12)})

	OrdersSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total", Help: "Market orders submitted"})
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "executions_total", Help: "Opportunity executions by outcome"},
		[]string{"outcome"})
	PartialExecutionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "partial_executions_total", Help: "Executions that stopped after at least one filled leg"})
	OrderRateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_rate_limited_total", Help: "Executions skipped by the order rate limiter"})
	RealizedProfitUSD = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realized_profit_usd", Help: "Cumulative realized profit from the trade log"})

	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_clients", Help: "Connected websocket consumers"})
	WSBroadcastDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_broadcast_drops_total", Help: "Clients dropped during broadcast"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		TrianglesBuilt, TrianglesCheckedTotal, TrianglesSkippedTotal,
		ScanTicksTotal, StaleSnapshotsTotal, SnapshotFetchErrorsTotal,
		OpportunitiesFoundTotal, OpportunitiesTradeableTotal,
		BestNetProfitPct, ScanDurationMs,
		OrdersSubmittedTotal, ExecutionsTotal, PartialExecutionsTotal,
		OrderRateLimitedTotal, RealizedProfitUSD,
		WSClients, WSBroadcastDropsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
