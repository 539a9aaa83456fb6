package triangle

import (
	"sort"

	"triarb/internal/market"
)

// LegMarket names the market a hop trades on and its orientation: Inverse
// means the hop's source currency is the pair's quote, so the hop buys the
// pair's base.
type LegMarket struct {
	Symbol  string
	Inverse bool
}

// Triangle is one 3-currency cycle A→B→C→A. Built once per exchange per
// session and read-only during scanning.
type Triangle struct {
	A, B, C string
	Legs    [3]LegMarket
}

func (t Triangle) Path() []string { return []string{t.A, t.B, t.C, t.A} }

func (t Triangle) Key() string { return t.A + "->" + t.B + "->" + t.C }

// Build enumerates valid cycles from the pair universe. With an anchor every
// cycle starts and ends at the anchor and each unordered (X, Y) neighbor
// combination yields exactly one triangle. Without an anchor, rotations of
// one cycle are collapsed to the rotation starting at the smallest currency;
// reversed traversals remain distinct since they hit opposite book sides.
// Enumeration order is sorted and therefore deterministic; maxCount truncates
// in that order.
func Build(pairs []market.Pair, anchor string, maxCount int) []Triangle {
	adj := make(map[string]map[string]bool)
	bySymbol := make(map[string]bool, len(pairs))
	link := func(a, b string) {
		if adj[a] == nil {
			adj[a] = make(map[string]bool)
		}
		adj[a][b] = true
	}
	for _, p := range pairs {
		bySymbol[p.Symbol] = true
		link(p.Base, p.Quote)
		link(p.Quote, p.Base)
	}

	legFor := func(from, to string) LegMarket {
		if bySymbol[from+"/"+to] {
			return LegMarket{Symbol: from + "/" + to}
		}
		return LegMarket{Symbol: to + "/" + from, Inverse: true}
	}
	mk := func(a, b, c string) Triangle {
		return Triangle{A: a, B: b, C: c, Legs: [3]LegMarket{legFor(a, b), legFor(b, c), legFor(c, a)}}
	}

	var out []Triangle
	full := func() bool { return maxCount > 0 && len(out) >= maxCount }

	if anchor != "" {
		neighbors := sortedKeys(adj[anchor])
		for i := 0; i < len(neighbors) && !full(); i++ {
			for j := i + 1; j < len(neighbors) && !full(); j++ {
				x, y := neighbors[i], neighbors[j]
				if adj[x][y] {
					out = append(out, mk(anchor, x, y))
				}
			}
		}
		return out
	}

	currencies := sortedKeys(adj)
	for _, a := range currencies {
		if full() {
			break
		}
		for _, b := range sortedKeys(adj[a]) {
			if full() {
				break
			}
			if b <= a {
				continue // canonical rotation starts at the smallest currency
			}
			for _, c := range sortedKeys(adj[b]) {
				if full() {
					break
				}
				if c <= a || c == b || !adj[c][a] {
					continue
				}
				out = append(out, mk(a, b, c))
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
