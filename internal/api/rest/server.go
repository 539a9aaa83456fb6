// Package rest serves the read-only API: scan status, the latest ranked
// opportunities and the trade history tail.
package rest

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"triarb/internal/detector"
	"triarb/internal/opportunity"
	"triarb/internal/tradelog"
)

// Store keeps the most recent tick result per exchange. It implements
// detector.Sink so it can sit next to the websocket hub on the fan-out.
type Store struct {
	mu     sync.RWMutex
	latest map[string]detector.Result
}

func NewStore() *Store {
	return &Store{latest: map[string]detector.Result{}}
}

func (s *Store) Publish(res detector.Result) {
	s.mu.Lock()
	s.latest[res.Exchange] = res
	s.mu.Unlock()
}

// Snapshot returns the stored results keyed by exchange.
func (s *Store) Snapshot() map[string]detector.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]detector.Result, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}

type exchangeStatus struct {
	Exchange      string    `json:"exchange"`
	Stale         bool      `json:"stale"`
	Opportunities int       `json:"opportunities"`
	TakenAt       time.Time `json:"taken_at"`
}

type statusResponse struct {
	Exchanges   []exchangeStatus `json:"exchanges"`
	RealizedPnL float64          `json:"realized_pnl"`
}

type Server struct {
	mux   *http.ServeMux
	store *Store
	tlog  *tradelog.Log
}

func New(store *Store, tlog *tradelog.Log) *Server {
	s := &Server{mux: http.NewServeMux(), store: store, tlog: tlog}
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/opportunities", s.handleOpportunities)
	s.mux.HandleFunc("/trades", s.handleTrades)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	resp := statusResponse{Exchanges: make([]exchangeStatus, 0, len(snap))}
	for _, res := range snap {
		resp.Exchanges = append(resp.Exchanges, exchangeStatus{
			Exchange:      res.Exchange,
			Stale:         res.Stale,
			Opportunities: len(res.Opportunities),
			TakenAt:       res.TakenAt,
		})
	}
	sort.Slice(resp.Exchanges, func(i, j int) bool {
		return resp.Exchanges[i].Exchange < resp.Exchanges[j].Exchange
	})
	if s.tlog != nil {
		resp.RealizedPnL = s.tlog.Realized()
	}
	writeJSON(w, resp)
}

// handleOpportunities flattens the per-exchange results into one list,
// ordered by net profit descending.
func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	var out []opportunity.Opportunity
	for _, res := range s.store.Snapshot() {
		out = append(out, res.Opportunities...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProfitPct > out[j].ProfitPct })
	if out == nil {
		out = []opportunity.Opportunity{}
	}
	writeJSON(w, out)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if s.tlog == nil {
		writeJSON(w, []tradelog.Record{})
		return
	}
	tail := s.tlog.Tail()
	if tail == nil {
		tail = []tradelog.Record{}
	}
	writeJSON(w, tail)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
