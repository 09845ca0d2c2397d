package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"FlowScope/internal/export"
	"FlowScope/internal/filter"
	"FlowScope/internal/metrics"
	"FlowScope/internal/model"
	"FlowScope/internal/query"
	"FlowScope/internal/search"
	"FlowScope/internal/session"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the session's filtering, statistics, search and export
// operations over HTTP. The querier is optional; the load endpoint is
// disabled when it is nil.
type Server struct {
	session *session.Session
	querier query.Querier
}

// NewServer creates an API server around a session.
func NewServer(sess *session.Session, querier query.Querier) *Server {
	return &Server{session: sess, querier: querier}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/v1/criteria", s.getCriteriaHandler).Methods("GET")
	r.HandleFunc("/api/v1/criteria", s.setCriteriaHandler).Methods("POST")
	r.HandleFunc("/api/v1/records", s.recordsHandler).Methods("GET")
	r.HandleFunc("/api/v1/topology", s.topologyHandler).Methods("GET")
	r.HandleFunc("/api/v1/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/api/v1/search", s.searchHandler).Methods("POST")
	r.HandleFunc("/api/v1/export", s.exportHandler).Methods("POST")
	r.HandleFunc("/api/v1/load", s.loadHandler).Methods("POST")

	r.HandleFunc("/api/v1/filters", s.listFiltersHandler).Methods("GET")
	r.HandleFunc("/api/v1/filters/{name}", s.getFilterHandler).Methods("GET")
	r.HandleFunc("/api/v1/filters/{name}", s.saveFilterHandler).Methods("PUT")
	r.HandleFunc("/api/v1/filters/{name}", s.deleteFilterHandler).Methods("DELETE")
	r.HandleFunc("/api/v1/filters/{name}/apply", s.applyFilterHandler).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

func (s *Server) getCriteriaHandler(w http.ResponseWriter, r *http.Request) {
	c := s.session.Criteria()
	writeJSON(w, &c)
}

// setCriteriaHandler replaces the active criteria wholesale. With
// ?strict=true, malformed CIDR rules and port ranges are rejected instead
// of silently never matching.
func (s *Server) setCriteriaHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	var c model.FilterCriteria
	if err := json.Unmarshal(body, &c); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode criteria: %v", err), http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("strict") == "true" {
		if err := filter.ValidateCriteria(&c); err != nil {
			http.Error(w, fmt.Sprintf("invalid criteria: %v", err), http.StatusBadRequest)
			return
		}
	}

	start := time.Now()
	s.session.SetCriteria(c)
	metrics.FilterDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, map[string]int{
		"total":    s.session.RecordCount(),
		"filtered": len(s.session.Filtered()),
	})
}

func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		writeJSON(w, s.session.Records())
		return
	}
	writeJSON(w, s.session.Filtered())
}

func (s *Server) topologyHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("full") == "true" {
		writeJSON(w, s.session.Topology())
		return
	}
	writeJSON(w, s.session.FilteredTopology())
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.Stats())
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var q search.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode search query: %v", err), http.StatusBadRequest)
		return
	}
	metrics.SearchesTotal.Inc()
	results := s.session.Search(q)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, results)
}

// exportRequest selects what to export and how.
type exportRequest struct {
	Format export.Format `json:"format"`
	Target string        `json:"target"` // "records" or "stats"
}

// exportHandler serializes the filtered view. Record exports run as a
// cancellable job tied to the request context; disconnecting the client
// aborts the encode.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode export request: %v", err), http.StatusBadRequest)
		return
	}

	var blob *export.Blob
	var err error
	switch req.Target {
	case "stats":
		blob, err = export.Stats(req.Format, s.session.Stats())
	case "", "records":
		job := export.NewJob(req.Format, s.session.Filtered())
		go func() {
			for range job.Events() {
				// Progress is surfaced through metrics and logs only; the
				// HTTP response is the finished blob.
			}
		}()
		blob, err = job.Run(r.Context())
	default:
		http.Error(w, fmt.Sprintf("unknown export target: %q", req.Target), http.StatusBadRequest)
		return
	}

	if err != nil {
		metrics.ExportsTotal.WithLabelValues(string(req.Format), "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrNoData) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, fmt.Sprintf("export failed: %v", err), status)
		return
	}

	metrics.ExportsTotal.WithLabelValues(string(req.Format), "ok").Inc()
	w.Header().Set("Content-Type", blob.MIME)
	w.WriteHeader(http.StatusOK)
	w.Write(blob.Data)
}

// loadHandler queries the durable record store and ingests the result
// into the session, replacing its current contents.
func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	if s.querier == nil {
		http.Error(w, "no record store configured", http.StatusServiceUnavailable)
		return
	}
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode load request: %v", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	records, err := s.querier.QueryRecords(ctx, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query records: %v", err), http.StatusInternalServerError)
		return
	}

	s.session.Reset()
	s.session.Ingest(records...)
	metrics.SessionRecords.Set(float64(s.session.RecordCount()))

	writeJSON(w, map[string]int{"loaded": len(records)})
}

func (s *Server) listFiltersHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.session.SavedFilters()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list filters: %v", err), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (s *Server) getFilterHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	c, err := s.session.SavedFilter(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, fmt.Sprintf("failed to load filter %q: %v", name, err), status)
		return
	}
	writeJSON(w, &c)
}

func (s *Server) saveFilterHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var c model.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode criteria: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.session.SaveFilter(name, c); err != nil {
		http.Error(w, fmt.Sprintf("failed to save filter %q: %v", name, err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteFilterHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.session.DeleteSavedFilter(name); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete filter %q: %v", name, err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyFilterHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	c, err := s.session.SavedFilter(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, fmt.Sprintf("failed to load filter %q: %v", name, err), status)
		return
	}

	start := time.Now()
	s.session.SetCriteria(c)
	metrics.FilterDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, map[string]int{
		"total":    s.session.RecordCount(),
		"filtered": len(s.session.Filtered()),
	})
}
