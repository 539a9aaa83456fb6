// Package tradelog persists completed executions as append-only JSON lines
// and keeps a bounded in-memory tail for the API.
package tradelog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"triarb/internal/infra/metrics"
	"triarb/internal/market"
)

type LegFill struct {
	Symbol    string      `json:"pair_symbol"`
	Side      market.Side `json:"side"`
	Requested float64     `json:"requested"`
	Filled    float64     `json:"filled"`
	Price     float64     `json:"price"`
	Fee       float64     `json:"fee"`
	OrderID   string      `json:"order_id"`
}

type Record struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Exchange    string    `json:"exchange"`
	Path        []string  `json:"path"`
	Status      string    `json:"status"`
	TradeAmount float64   `json:"trade_amount"`
	FinalAmount float64   `json:"final_amount"`
	RealizedPnL float64   `json:"realized_pnl"`
	Legs        []LegFill `json:"legs"`
}

// Log is safe for concurrent use. With an empty path it keeps the tail only,
// which is what tests and dry runs want.
type Log struct {
	mu       sync.Mutex
	f        *os.File
	tail     []Record
	tailCap  int
	realized float64
}

func Open(path string, tailCap int) (*Log, error) {
	if tailCap <= 0 {
		tailCap = 100
	}
	l := &Log{tailCap: tailCap}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		l.f = f
	}
	return l, nil
}

// Append assigns an id and timestamp if missing, writes one JSON line and
// folds the realized PnL into the running total.
func (l *Log) Append(r Record) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tail = append(l.tail, r)
	if len(l.tail) > l.tailCap {
		l.tail = l.tail[len(l.tail)-l.tailCap:]
	}
	l.realized += r.RealizedPnL
	metrics.RealizedProfitUSD.Set(l.realized)
	if l.f != nil {
		if b, err := json.Marshal(r); err == nil {
			_, _ = l.f.Write(append(b, '\n'))
		}
	}
	return r
}

// Tail returns the most recent records, oldest first.
func (l *Log) Tail() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.tail...)
}

func (l *Log) Realized() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
