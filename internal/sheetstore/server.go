package sheetstore

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/qcform/internal/form"
)

// maxRequestBytes bounds a POST /records body.
const maxRequestBytes = 8 << 20

// Server serves a Store with the payload shapes of the production scripts:
//
//	GET  /specs      JSON array of specification rows
//	POST /records    {"data": [records]} -> {"status": "success", "count": n}
//	GET  /records    JSON array of stored records
//	GET  /allowlist  {"success": true, "emails": [...]}
//	GET  /health     {"status": "ok"}
//	GET  /metrics    Prometheus exposition
type Server struct {
	store   *Store
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a server over store.
func NewServer(store *Store, metrics *Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, metrics: metrics, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/specs", s.handleSpecs).Methods("GET")
	r.HandleFunc("/records", s.handleAppend).Methods("POST")
	r.HandleFunc("/records", s.handleListRecords).Methods("GET")
	r.HandleFunc("/allowlist", s.handleAllowlist).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	body, err := s.store.SpecsJSON(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not read specifications", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

type appendRequest struct {
	Data []form.Record `json:"data"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "could not read request", err)
		return
	}
	var req appendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "request body is not valid JSON", err)
		return
	}
	if len(req.Data) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "no records in request"})
		return
	}

	n, err := s.store.AppendRecords(r.Context(), req.Data)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not append records", err)
		return
	}
	s.metrics.appended.Add(float64(n))
	s.metrics.duplicate.Add(float64(len(req.Data) - n))
	s.logger.Info("records appended",
		slog.Int("received", len(req.Data)),
		slog.Int("records", n),
	)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": n})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecords(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "could not read records", err)
		return
	}
	if records == nil {
		records = []form.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAllowlist(w http.ResponseWriter, r *http.Request) {
	emails, err := s.store.Allowlist(r.Context())
	if err != nil {
		s.logger.Error("allowlist read failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "could not read allowlist"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "emails": emails})
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	s.logger.Error(msg, slog.Int("status", status), slog.String("error", err.Error()))
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// instrument records request counts and latency per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.metrics.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", rec.status),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
