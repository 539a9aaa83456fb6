package profit

// FeeModel nets modeled costs out of a gross cycle rate. Per-trade taker
// fees vary by exchange; holding the exchange's fee token (BNB, KCS, GT, ...)
// discounts them when DiscountEnabled.
type FeeModel struct {
	// TakerFeePct is the undiscounted per-trade taker fee per exchange, in
	// percent (0.1 means 0.1% per trade).
	TakerFeePct map[string]float64
	// DiscountPct is the fee-token discount per exchange, in percent of the
	// fee (25 means the fee drops to 75% of list price).
	DiscountPct     map[string]float64
	DiscountEnabled bool
	// SlippageBufferPct is a fixed buffer added once per round trip.
	SlippageBufferPct float64
	// DefaultFeePct applies to exchanges missing from TakerFeePct.
	DefaultFeePct float64
}

// TradeFeePct returns the effective per-trade fee for one exchange.
func (m FeeModel) TradeFeePct(exchange string) float64 {
	fee := m.DefaultFeePct
	if v, ok := m.TakerFeePct[exchange]; ok {
		fee = v
	}
	if m.DiscountEnabled {
		if d, ok := m.DiscountPct[exchange]; ok && d > 0 {
			fee *= 1 - d/100
		}
	}
	return fee
}

// RoundTripCostPct is the total modeled cost of a three-leg cycle: three
// taker fees plus the slippage buffer.
func (m FeeModel) RoundTripCostPct(exchange string) float64 {
	return m.TradeFeePct(exchange)*3 + m.SlippageBufferPct
}
