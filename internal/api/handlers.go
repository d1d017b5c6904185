package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayane-k/soracast/internal/corpus"
	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/models"
)

const maxBatchLocations = 50

type generateRequest struct {
	Location string `json:"location"`
}

type batchRequest struct {
	Locations []string `json:"locations"`
}

type batchResponse struct {
	Results   []models.GenerationResult `json:"results"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	loc, ok := s.gaz.Lookup(req.Location)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown location: " + req.Location})
		return
	}

	result := s.gen.Generate(r.Context(), loc)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Locations) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "locations required"})
		return
	}
	if len(req.Locations) > maxBatchLocations {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "too many locations"})
		return
	}

	// Unknown locations become failed results rather than failing the
	// batch; the UI renders them inline with the rest.
	locs := make([]gazetteer.Location, 0, len(req.Locations))
	var preFailed []models.GenerationResult
	for _, name := range req.Locations {
		if loc, ok := s.gaz.Lookup(name); ok {
			locs = append(locs, loc)
		} else {
			preFailed = append(preFailed, models.GenerationResult{
				Success:  false,
				Location: name,
				Error:    "unknown location",
			})
		}
	}

	results := s.gen.GenerateBatch(r.Context(), locs, s.batchConcurrency, s.batchTimeout)
	results = append(results, preFailed...)

	resp := batchResponse{Results: results}
	for _, res := range results {
		if res.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gaz.All())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	records, err := s.history.RecentGenerations(limit)
	if err != nil {
		s.log.Error("read history failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	if records == nil {
		records = []corpus.GenerationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger tags each request with an ID and logs completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
