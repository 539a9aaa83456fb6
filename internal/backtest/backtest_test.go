package backtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"triarb/internal/config"
)

func backtestConfig() config.Config {
	var c config.Config
	c.Scanner.MinProfitPercentage = 0.3
	c.Scanner.MaxTradeAmount = 100
	c.Scanner.MaxTriangles = 500
	c.Scanner.RequireBaseAnchor = true
	c.Scanner.BaseCurrency = "USDT"
	c.Scanner.MaxSpreadPercentage = 2.0
	c.Scanner.SanityBandPercentage = 10.0
	c.Scanner.VolumeNorm = 10000
	c.Scanner.MinConfidence = 0.5
	c.Scanner.PriceModel = "bidask"
	c.Fees.DefaultFeePct = 0.1
	c.Fees.SlippageBufferPct = 0.05
	return c
}

const sample = `ts,symbol,bid,ask,base_volume
1,BTC/USDT,49950,50000,10000
1,ETH/BTC,0.0599,0.06,10000
1,ETH/USDT,3100,3103,10000
2,BTC/USDT,49990,50000,10000
2,ETH/BTC,0.06207,0.0621,10000
2,ETH/USDT,3100,3103,10000
`

func TestReplayGroupsRowsIntoTicks(t *testing.T) {
	sum, err := Replay(strings.NewReader(sample), backtestConfig())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Ticks)
	// tick 1 carries the profitable cycle, tick 2 prices it away
	require.Equal(t, 1, sum.Opportunities)
	require.InDelta(t, 3.333333-0.35, sum.BestNetPct, 1e-6)
}

func TestReplayWithoutTrianglesErrors(t *testing.T) {
	_, err := Replay(strings.NewReader("1,BTC/USDT,49950,50000,10000\n"), backtestConfig())
	require.Error(t, err)
}
