package collector

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bilal/solar-monitor/internal/logger"
	"github.com/bilal/solar-monitor/internal/metrics"
	"github.com/rs/zerolog"
)

const maxBody = 1 << 20

type Server struct {
	store   *Store
	metrics *metrics.Collector
	log     zerolog.Logger
}

func NewServer(store *Store, m *metrics.Collector) *Server {
	return &Server{store: store, metrics: m, log: logger.Component("collector")}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/solar-log", s.handleLog)
	mux.HandleFunc("/solar-log/status", s.handleStatus)
	mux.HandleFunc("/solar-log/files", s.handleFiles)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) observe(result string) {
	if s.metrics != nil {
		s.metrics.Received(result)
	}
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.observe("error")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var fields map[string]json.RawMessage
	var p Payload
	if json.Unmarshal(body, &fields) != nil || len(fields) == 0 || json.Unmarshal(body, &p) != nil {
		s.observe("bad_request")
		s.writeError(w, http.StatusBadRequest, "No data received")
		return
	}

	filename, entry, err := s.store.Append(p)
	if err != nil {
		s.log.Error().Err(err).Msg("error processing log")
		s.observe("error")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Str("entry", entry).Str("file", filename).Msg("log entry written")
	s.observe("success")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"message":  "Log received and saved",
		"filename": filename,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	st, err := s.store.Status()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	files, err := s.store.Files()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"files": files})
}
