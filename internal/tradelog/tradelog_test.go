package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"triarb/internal/market"
)

func TestAppendAssignsIdentityAndTracksPnL(t *testing.T) {
	l, err := Open("", 10)
	require.NoError(t, err)

	r1 := l.Append(Record{Exchange: "paper", Status: "executed", RealizedPnL: 0.42})
	r2 := l.Append(Record{Exchange: "paper", Status: "failed", RealizedPnL: -0.12})

	require.NotEmpty(t, r1.ID)
	require.NotEqual(t, r1.ID, r2.ID)
	require.False(t, r1.Time.IsZero())
	require.InDelta(t, 0.30, l.Realized(), 1e-9)
	require.Len(t, l.Tail(), 2)
}

func TestTailIsBounded(t *testing.T) {
	l, err := Open("", 3)
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		l.Append(Record{Exchange: "paper"})
	}
	tail := l.Tail()
	require.Len(t, tail, 3)
}

func TestFileIsAppendOnlyJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	l, err := Open(path, 10)
	require.NoError(t, err)

	l.Append(Record{
		Exchange: "paper",
		Path:     []string{"USDT", "BTC", "ETH", "USDT"},
		Status:   "executed",
		Legs:     []LegFill{{Symbol: "BTC/USDT", Side: market.Buy, Requested: 100, Filled: 100}},
	})
	l.Append(Record{Exchange: "paper", Status: "partially_executed"})
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		require.NotEmpty(t, r.ID)
		lines++
	}
	require.Equal(t, 2, lines)
}
