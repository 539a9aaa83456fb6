package health

import (
	"net/http"
	"sync/atomic"
)

var ready atomic.Bool

// SetReady flips readiness; main marks ready once detectors are initialized
// and not-ready before shutdown.
func SetReady(v bool) { ready.Store(v) }

func Ready() bool { return ready.Load() }

// Healthz is the liveness probe.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz reflects readiness state.
func Readyz(w http.ResponseWriter, r *http.Request) {
	if Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	http.Error(w, "not ready", http.StatusServiceUnavailable)
}
