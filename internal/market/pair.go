package market

import "strings"

// Pair is a tradable market. Both orientations of the same two currencies
// may exist on an exchange as distinct markets.
type Pair struct {
	Base   string
	Quote  string
	Symbol string
}

// ParsePair parses "BASE/QUOTE" strings. Entries without exactly one
// separator are reported as malformed.
func ParsePair(s string) (Pair, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, false
	}
	base := strings.ToUpper(parts[0])
	quote := strings.ToUpper(parts[1])
	return Pair{Base: base, Quote: quote, Symbol: base + "/" + quote}, true
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)
