// Package executor turns a ranked opportunity into sequential market orders.
// Each leg's output funds the next; there is no rollback, so a failure after
// the first fill is reported as partially executed, never as plain failure.
package executor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"triarb/internal/config"
	"triarb/internal/exchange/common"
	"triarb/internal/infra/metrics"
	"triarb/internal/infra/network"
	"triarb/internal/market"
	"triarb/internal/opportunity"
	"triarb/internal/slippage"
	"triarb/internal/tradelog"
)

type Status string

const (
	Executed          Status = "executed"
	PartiallyExecuted Status = "partially_executed"
	Failed            Status = "failed"
	Skipped           Status = "skipped"
)

// Outcome reports what actually happened to one opportunity.
type Outcome struct {
	Status      Status
	Reason      string
	Legs        []tradelog.LegFill
	FinalAmount float64
	RealizedPnL float64
}

type Executor struct {
	conns   map[string]common.Connector
	cfg     config.Config
	log     zerolog.Logger
	limiter *network.TokenBucket
	tlog    *tradelog.Log
}

func New(conns map[string]common.Connector, cfg config.Config, logger zerolog.Logger, tlog *tradelog.Log) *Executor {
	return &Executor{
		conns:   conns,
		cfg:     cfg,
		log:     logger.With().Str("component", "executor").Logger(),
		limiter: network.NewOrdersPerMinute(cfg.Trading.MaxOrdersPerMin),
		tlog:    tlog,
	}
}

// Execute runs the opportunity's legs in order. Skips are cheap pre-trade
// decisions; Failed means leg one never filled; PartiallyExecuted means
// money moved and stopped mid-cycle.
func (e *Executor) Execute(ctx context.Context, opp opportunity.Opportunity) Outcome {
	if out, ok := e.preflight(ctx, opp); !ok {
		return e.finish(opp, out)
	}
	conn := e.conns[opp.Exchange]

	var (
		legs   []tradelog.LegFill
		amount = opp.TradeAmount
	)
	for i, step := range opp.Steps {
		qty := amount
		if step.Side == market.Buy {
			qty = amount / step.Price
		}
		metrics.OrdersSubmittedTotal.Inc()
		res, err := conn.PlaceMarketOrder(ctx, step.Symbol, step.Side, qty)
		fill := tradelog.LegFill{
			Symbol:    step.Symbol,
			Side:      step.Side,
			Requested: qty,
			Filled:    res.Filled,
			Price:     res.Average,
			Fee:       res.Fee,
			OrderID:   res.ID,
		}
		legs = append(legs, fill)
		if err != nil || !res.FullyFilled(qty) {
			e.log.Warn().Err(err).Str("symbol", step.Symbol).Int("leg", i+1).
				Str("status", res.Status).Msg("leg did not fill")
			if i == 0 && res.Filled <= 0 {
				return e.finish(opp, Outcome{Status: Failed, Reason: "first leg rejected", Legs: legs})
			}
			metrics.PartialExecutionsTotal.Inc()
			return e.finish(opp, Outcome{Status: PartiallyExecuted, Reason: "leg " + step.Symbol + " incomplete", Legs: legs})
		}
		if step.Side == market.Buy {
			amount = res.Filled
		} else {
			amount = res.Cost
		}
	}

	return e.finish(opp, Outcome{
		Status:      Executed,
		Legs:        legs,
		FinalAmount: amount,
		RealizedPnL: amount - opp.TradeAmount,
	})
}

// preflight covers every reason not to trade at all. ok=false means skip.
func (e *Executor) preflight(ctx context.Context, opp opportunity.Opportunity) (Outcome, bool) {
	skip := func(reason string) (Outcome, bool) {
		return Outcome{Status: Skipped, Reason: reason}, false
	}
	if !e.cfg.Trading.Enabled {
		return skip("trading disabled")
	}
	// without the live flag only the paper venue may receive orders
	if !e.cfg.Trading.Live && opp.Exchange != "paper" {
		return skip("live trading disabled")
	}
	if !opp.Tradeable {
		return skip("not tradeable")
	}
	conn, ok := e.conns[opp.Exchange]
	if !ok {
		return skip("no connector for " + opp.Exchange)
	}
	if allowed := e.cfg.Trading.AllowedSymbols; len(allowed) > 0 {
		permit := make(map[string]bool, len(allowed))
		for _, s := range allowed {
			permit[s] = true
		}
		for _, step := range opp.Steps {
			if !permit[step.Symbol] {
				return skip("symbol " + step.Symbol + " not allowed")
			}
		}
	}
	if !e.limiter.Allow(time.Now()) {
		metrics.OrderRateLimitedTotal.Inc()
		return skip("order rate limit")
	}
	if dp, ok := conn.(common.DepthProvider); ok && e.cfg.Trading.MaxLegSlippagePct > 0 {
		for _, step := range opp.Steps {
			book, ok := dp.GetOrderbookL2(ctx, step.Symbol, 10)
			if !ok {
				continue // no depth data is not a reason to refuse
			}
			qty := step.InputAmount
			if step.Side == market.Buy {
				qty = step.ExpectedOutput
			}
			if est := slippage.EstimatePct(book, qty, step.Side == market.Buy); est > e.cfg.Trading.MaxLegSlippagePct {
				return skip("slippage on " + step.Symbol)
			}
		}
	}
	return Outcome{}, true
}

func (e *Executor) finish(opp opportunity.Opportunity, out Outcome) Outcome {
	metrics.ExecutionsTotal.WithLabelValues(string(out.Status)).Inc()
	if out.Status != Skipped && e.tlog != nil {
		e.tlog.Append(tradelog.Record{
			Exchange:    opp.Exchange,
			Path:        opp.Path,
			Status:      string(out.Status),
			TradeAmount: opp.TradeAmount,
			FinalAmount: out.FinalAmount,
			RealizedPnL: out.RealizedPnL,
			Legs:        out.Legs,
		})
	}
	e.log.Info().Str("exchange", opp.Exchange).Str("status", string(out.Status)).
		Str("reason", out.Reason).Float64("pnl", out.RealizedPnL).Msg("execution finished")
	return out
}
