// Package opportunity holds the value objects handed outward to consumers.
// They are created fresh each scan tick and never mutated afterwards.
package opportunity

import (
	"fmt"
	"strings"
	"time"

	"triarb/internal/market"
)

// LegPlan is the execution plan for one leg of a cycle.
type LegPlan struct {
	Symbol         string      `json:"pair_symbol"`
	Side           market.Side `json:"side"`
	InputAmount    float64     `json:"input_amount"`
	Price          float64     `json:"price"`
	ExpectedOutput float64     `json:"expected_output_amount"`
}

// Opportunity is one ranked arbitrage candidate. No back-reference to the
// detector; consumers may hold it as long as they like.
type Opportunity struct {
	Exchange     string    `json:"exchange"`
	Path         []string  `json:"path"`
	Pairs        []string  `json:"pairs"`
	ProfitPct    float64   `json:"profit_pct"`
	ProfitAmount float64   `json:"profit_amount"`
	TradeAmount  float64   `json:"trade_amount"`
	Steps        []LegPlan `json:"steps"`
	Confidence   float64   `json:"confidence"`
	Tradeable    bool      `json:"is_tradeable"`
	DetectedAt   time.Time `json:"detected_at"`
}

func (o Opportunity) String() string {
	return fmt.Sprintf("%s: %s = %.4f%% ($%.4f)",
		o.Exchange, strings.Join(o.Path, "->"), o.ProfitPct, o.ProfitAmount)
}
