// Package backtest replays recorded quotes through the live scan pipeline.
// CSV rows are "ts,symbol,bid,ask,base_volume"; rows sharing a ts form one
// snapshot, evaluated exactly like a scan tick.
package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"triarb/internal/config"
	"triarb/internal/market"
	"triarb/internal/opportunity"
	"triarb/internal/profit"
	"triarb/internal/rank"
	"triarb/internal/rate"
	"triarb/internal/triangle"
)

type Summary struct {
	Ticks         int
	Opportunities int
	BestNetPct    float64
}

// RunCSV replays the file named by TRIARB_BACKTEST_CSV. An empty env var is
// a no-op so the binary can always call this at startup.
func RunCSV(cfg config.Config, logger zerolog.Logger) (Summary, error) {
	path := os.Getenv("TRIARB_BACKTEST_CSV")
	if path == "" {
		return Summary{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	sum, err := Replay(f, cfg)
	if err != nil {
		return sum, err
	}
	logger.Info().Int("ticks", sum.Ticks).Int("opportunities", sum.Opportunities).
		Float64("best_net_pct", sum.BestNetPct).Str("file", path).Msg("backtest complete")
	return sum, nil
}

// Replay reads the whole stream, builds the triangle set from every symbol
// seen, then evaluates each snapshot in order.
func Replay(r io.Reader, cfg config.Config) (Summary, error) {
	rows, err := readRows(r)
	if err != nil {
		return Summary{}, err
	}

	seen := map[string]market.Pair{}
	for _, row := range rows {
		if p, ok := market.ParsePair(row.symbol); ok {
			seen[p.Symbol] = p
		}
	}
	pairs := make([]market.Pair, 0, len(seen))
	for _, p := range seen {
		pairs = append(pairs, p)
	}
	anchor := ""
	if cfg.Scanner.RequireBaseAnchor {
		anchor = cfg.Scanner.BaseCurrency
	}
	triangles := triangle.Build(pairs, anchor, cfg.Scanner.MaxTriangles)
	if len(triangles) == 0 {
		return Summary{}, fmt.Errorf("no triangles from %d recorded symbols", len(pairs))
	}

	model := rate.ModelBidAsk
	if cfg.Scanner.PriceModel == "mid" {
		model = rate.ModelMid
	}
	resolver := rate.Resolver{
		MaxSpreadPct:  cfg.Scanner.MaxSpreadPercentage,
		MinBaseVolume: cfg.Scanner.MinBaseVolume,
		Model:         model,
	}
	calc := profit.Calculator{
		Fees: profit.FeeModel{
			TakerFeePct:       cfg.Fees.TakerFeePct,
			DiscountPct:       cfg.Fees.DiscountPct,
			DiscountEnabled:   cfg.Fees.DiscountEnabled,
			SlippageBufferPct: cfg.Fees.SlippageBufferPct,
			DefaultFeePct:     cfg.Fees.DefaultFeePct,
		},
		SanityBandPct: cfg.Scanner.SanityBandPercentage,
	}
	ranker := rank.Ranker{
		MinProfitPct:  cfg.Scanner.MinProfitPercentage,
		VolumeNorm:    cfg.Scanner.VolumeNorm,
		MinConfidence: cfg.Scanner.MinConfidence,
	}

	var sum Summary
	tick := map[string]market.Ticker{}
	currentTS := ""
	flush := func() {
		if len(tick) == 0 {
			return
		}
		snap := market.NewSnapshot(tick, cfg.Scanner.MinBaseVolume, time.Now())
		sum.Ticks++
		var cands []rank.Candidate
		for _, tri := range triangles {
			legs, st := resolver.Resolve(tri, snap)
			if st != rate.OK {
				continue
			}
			res, pst := calc.Compute("backtest", legs, cfg.Scanner.MaxTradeAmount)
			if pst != profit.OK {
				continue
			}
			cands = append(cands, rank.Candidate{
				Opp:         rankOpp(tri, res, cfg.Scanner.MaxTradeAmount),
				TotalVolume: legs[0].BaseVolume + legs[1].BaseVolume + legs[2].BaseVolume,
				AvgSpread:   (legs[0].Spread + legs[1].Spread + legs[2].Spread) / 3,
			})
		}
		opps := ranker.Rank(cands, 0)
		sum.Opportunities += len(opps)
		if len(opps) > 0 && opps[0].ProfitPct > sum.BestNetPct {
			sum.BestNetPct = opps[0].ProfitPct
		}
		tick = map[string]market.Ticker{}
	}

	for _, row := range rows {
		if row.ts != currentTS {
			flush()
			currentTS = row.ts
		}
		tick[row.symbol] = market.Ticker{
			Symbol:     row.symbol,
			Bid:        row.bid,
			Ask:        row.ask,
			BaseVolume: row.volume,
			Timestamp:  time.Now(),
		}
	}
	flush()
	return sum, nil
}

func rankOpp(tri triangle.Triangle, res profit.Result, tradeAmount float64) opportunity.Opportunity {
	return opportunity.Opportunity{
		Exchange:     "backtest",
		Path:         tri.Path(),
		ProfitPct:    res.NetPct,
		ProfitAmount: res.NetAmount,
		TradeAmount:  tradeAmount,
		DetectedAt:   time.Now(),
	}
}

type row struct {
	ts     string
	symbol string
	bid    float64
	ask    float64
	volume float64
}

func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 5 || rec[0] == "ts" {
			continue // header or short row
		}
		p := func(s string) float64 { v, _ := strconv.ParseFloat(s, 64); return v }
		rows = append(rows, row{ts: rec[0], symbol: rec[1], bid: p(rec[2]), ask: p(rec[3]), volume: p(rec[4])})
	}
	return rows, nil
}
