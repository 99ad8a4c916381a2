package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /health and /metrics. The monitor publishes into it, the
// HTTP side only reads.
type Server struct {
	srv            *http.Server
	running        atomic.Bool
	linkUp         atomic.Bool
	lastReportUnix atomic.Int64
	lastOutcome    atomic.Value // string
}

func New(addr string, reg prometheus.Gatherer) *Server {
	s := &Server{}
	s.lastOutcome.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) SetRunning(ok bool) { s.running.Store(ok) }

func (s *Server) SetLinkUp(ok bool) { s.linkUp.Store(ok) }

func (s *Server) SetLastReport(at time.Time, outcome string) {
	s.lastReportUnix.Store(at.Unix())
	s.lastOutcome.Store(outcome)
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"running":          s.running.Load(),
		"link_up":          s.linkUp.Load(),
		"last_report_unix": s.lastReportUnix.Load(),
		"last_outcome":     s.lastOutcome.Load().(string),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
