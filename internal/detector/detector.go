// Package detector runs the per-exchange scan loop: one immutable snapshot
// per tick, every triangle evaluated against it, ranked results pushed to a
// sink.
package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"triarb/internal/config"
	"triarb/internal/exchange/common"
	"triarb/internal/infra/metrics"
	"triarb/internal/market"
	"triarb/internal/opportunity"
	"triarb/internal/profit"
	"triarb/internal/rank"
	"triarb/internal/rate"
	"triarb/internal/triangle"
)

// Result is one tick's output for one exchange. Stale means the tick was
// served from the last good snapshot after a fetch failure.
type Result struct {
	Exchange      string                    `json:"exchange"`
	Opportunities []opportunity.Opportunity `json:"opportunities"`
	Stale         bool                      `json:"stale"`
	TakenAt       time.Time                 `json:"taken_at"`
}

// Sink consumes tick results. Implementations must not block the scan loop.
type Sink interface {
	Publish(Result)
}

// ErrNotInitialized is returned by ScanTick before a successful Initialize.
var ErrNotInitialized = errors.New("detector: not initialized")

// Detector owns one exchange's triangle set and last-known-good snapshot.
// Single writer per exchange; the snapshot cache mutex only guards against
// overlapping ticks introduced by retries.
type Detector struct {
	conn     common.Connector
	cfg      config.Config
	log      zerolog.Logger
	resolver rate.Resolver
	calc     profit.Calculator
	ranker   rank.Ranker

	triangles []triangle.Triangle

	mu       sync.Mutex
	lastGood market.Snapshot
	hasLast  bool

	balance float64 // last seen anchor-currency balance
}

func New(conn common.Connector, cfg config.Config, logger zerolog.Logger) *Detector {
	model := rate.ModelBidAsk
	if cfg.Scanner.PriceModel == "mid" {
		model = rate.ModelMid
	}
	return &Detector{
		conn: conn,
		cfg:  cfg,
		log:  logger.With().Str("exchange", conn.Name()).Logger(),
		resolver: rate.Resolver{
			MaxSpreadPct:  cfg.Scanner.MaxSpreadPercentage,
			MinBaseVolume: cfg.Scanner.MinBaseVolume,
			Model:         model,
		},
		calc: profit.Calculator{
			Fees: profit.FeeModel{
				TakerFeePct:       cfg.Fees.TakerFeePct,
				DiscountPct:       cfg.Fees.DiscountPct,
				DiscountEnabled:   cfg.Fees.DiscountEnabled,
				SlippageBufferPct: cfg.Fees.SlippageBufferPct,
				DefaultFeePct:     cfg.Fees.DefaultFeePct,
			},
			SanityBandPct: cfg.Scanner.SanityBandPercentage,
		},
		ranker: rank.Ranker{
			MinProfitPct:  cfg.Scanner.MinProfitPercentage,
			VolumeNorm:    cfg.Scanner.VolumeNorm,
			MinConfidence: cfg.Scanner.MinConfidence,
		},
	}
}

// Initialize fetches the pair universe and builds the triangle set. An
// exchange yielding no triangles is excluded from scanning but does not
// abort the others; the caller decides what to do with the error.
func (d *Detector) Initialize(ctx context.Context) error {
	symbols, err := d.conn.GetTradingPairs(ctx)
	if err != nil {
		return fmt.Errorf("get trading pairs: %w", err)
	}
	pairs := make([]market.Pair, 0, len(symbols))
	for _, s := range symbols {
		p, ok := market.ParsePair(s)
		if !ok {
			d.log.Debug().Str("symbol", s).Msg("skipping malformed pair")
			continue
		}
		pairs = append(pairs, p)
	}
	anchor := ""
	if d.cfg.Scanner.RequireBaseAnchor {
		anchor = d.cfg.Scanner.BaseCurrency
	}
	d.triangles = triangle.Build(pairs, anchor, d.cfg.Scanner.MaxTriangles)
	if len(d.triangles) == 0 {
		return fmt.Errorf("no triangles from %d pairs", len(pairs))
	}
	metrics.TrianglesBuilt.WithLabelValues(d.conn.Name()).Set(float64(len(d.triangles)))
	d.log.Info().Int("pairs", len(pairs)).Int("triangles", len(d.triangles)).Msg("detector initialized")
	return nil
}

func (d *Detector) Triangles() []triangle.Triangle { return d.triangles }

// LastSnapshot returns the most recent good snapshot, if any. The cross
// exchange scanner reads these without touching the venue APIs again.
func (d *Detector) LastSnapshot() (market.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastGood, d.hasLast
}

// ScanTick evaluates every triangle against one fresh snapshot. On fetch
// failure the last good snapshot is reused and flagged stale; with no cache
// the tick errors and the caller moves on to the next tick.
func (d *Detector) ScanTick(ctx context.Context) (Result, error) {
	if len(d.triangles) == 0 {
		return Result{}, ErrNotInitialized
	}
	name := d.conn.Name()
	start := time.Now()

	snap, stale, err := d.snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	if stale {
		metrics.StaleSnapshotsTotal.WithLabelValues(name).Inc()
	}

	d.refreshBalance(ctx)
	opps := d.evaluate(snap)

	metrics.ScanTicksTotal.WithLabelValues(name).Inc()
	metrics.ScanDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	metrics.OpportunitiesFoundTotal.WithLabelValues(name).Add(float64(len(opps)))
	for _, o := range opps {
		if o.Tradeable {
			metrics.OpportunitiesTradeableTotal.WithLabelValues(name).Inc()
		}
	}
	if len(opps) > 0 {
		metrics.BestNetProfitPct.Observe(opps[0].ProfitPct)
	}

	return Result{Exchange: name, Opportunities: opps, Stale: stale, TakenAt: snap.TakenAt}, nil
}

// Run is the scan loop: tick, publish, sleep, until the context is done.
// Stops only between ticks so the current evaluation always completes.
func (d *Detector) Run(ctx context.Context, sink Sink) error {
	interval := time.Duration(d.cfg.Scanner.ScanIntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := d.ScanTick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.log.Warn().Err(err).Msg("tick skipped")
		} else if sink != nil {
			sink.Publish(res)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// snapshot fetches tickers with retries, falling back to the cached
// snapshot when every attempt fails.
func (d *Detector) snapshot(ctx context.Context) (market.Snapshot, bool, error) {
	name := d.conn.Name()
	retries := d.cfg.Scanner.FetchRetries
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return market.Snapshot{}, false, ctx.Err()
			case <-time.After(backoff):
			}
		}
		tickers, err := d.conn.FetchTickers(ctx)
		if err != nil {
			lastErr = err
			metrics.SnapshotFetchErrorsTotal.WithLabelValues(name).Inc()
			continue
		}
		snap := market.NewSnapshot(tickers, d.cfg.Scanner.MinBaseVolume, time.Now())
		if snap.Empty() {
			lastErr = fmt.Errorf("empty snapshot")
			continue
		}
		d.mu.Lock()
		d.lastGood = snap
		d.hasLast = true
		d.mu.Unlock()
		return snap, false, nil
	}

	d.mu.Lock()
	cached, ok := d.lastGood, d.hasLast
	d.mu.Unlock()
	if ok {
		d.log.Warn().Err(lastErr).Msg("serving cached snapshot")
		return cached.MarkStale(), true, nil
	}
	return market.Snapshot{}, false, fmt.Errorf("fetch tickers: %w", lastErr)
}

func (d *Detector) refreshBalance(ctx context.Context) {
	balances, err := d.conn.GetBalances(ctx)
	if err != nil {
		return // keep the last seen balance
	}
	d.balance = balances[d.cfg.Scanner.BaseCurrency]
}

// evaluate walks the triangle set against one snapshot. A triangle that
// fails resolution or the sanity band is skipped for this tick only.
func (d *Detector) evaluate(snap market.Snapshot) []opportunity.Opportunity {
	name := d.conn.Name()
	tradeAmount := d.cfg.Scanner.MaxTradeAmount
	cands := make([]rank.Candidate, 0, 16)
	now := time.Now()

	for _, tri := range d.triangles {
		metrics.TrianglesCheckedTotal.WithLabelValues(name).Inc()
		legs, st := d.resolver.Resolve(tri, snap)
		if st != rate.OK {
			metrics.TrianglesSkippedTotal.WithLabelValues(name, st.String()).Inc()
			continue
		}
		res, pst := d.calc.Compute(name, legs, tradeAmount)
		if pst != profit.OK {
			metrics.TrianglesSkippedTotal.WithLabelValues(name, "unrealistic").Inc()
			continue
		}
		cands = append(cands, rank.Candidate{
			Opp:         d.buildOpportunity(tri, legs, res, tradeAmount, now),
			TotalVolume: legs[0].BaseVolume + legs[1].BaseVolume + legs[2].BaseVolume,
			AvgSpread:   (legs[0].Spread + legs[1].Spread + legs[2].Spread) / 3,
		})
	}
	return d.ranker.Rank(cands, d.balance)
}

func (d *Detector) buildOpportunity(tri triangle.Triangle, legs [3]rate.LegRate, res profit.Result, tradeAmount float64, now time.Time) opportunity.Opportunity {
	steps := make([]opportunity.LegPlan, 3)
	in := tradeAmount
	for i, leg := range legs {
		steps[i] = opportunity.LegPlan{
			Symbol:         leg.Symbol,
			Side:           leg.Side,
			InputAmount:    in,
			Price:          leg.Price,
			ExpectedOutput: res.LegAmounts[i],
		}
		in = res.LegAmounts[i]
	}
	return opportunity.Opportunity{
		Exchange:     d.conn.Name(),
		Path:         tri.Path(),
		Pairs:        []string{legs[0].Symbol, legs[1].Symbol, legs[2].Symbol},
		ProfitPct:    res.NetPct,
		ProfitAmount: res.NetAmount,
		TradeAmount:  tradeAmount,
		Steps:        steps,
		DetectedAt:   now,
	}
}
