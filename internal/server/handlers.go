package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/internal/search"
)

type retrieveRequest struct {
	Query   string                  `json:"query" validate:"required"`
	Options models.RetrievalOptions `json:"options"`
}

type searchRequest struct {
	WorkspaceID   string                 `json:"workspace_id" validate:"required"`
	Query         string                 `json:"query" validate:"required"`
	Limit         int                    `json:"limit,omitempty"`
	Threshold     float64                `json:"threshold,omitempty"`
	Filters       map[string]interface{} `json:"filters,omitempty"`
	KeywordWeight float64                `json:"keyword_weight,omitempty" validate:"gte=0,lte=1"`
	ExactMatch    bool                   `json:"exact_match,omitempty"`
}

type searchResponse struct {
	Results []*models.Fragment `json:"results"`
	Total   int                `json:"total"`
}

// applyDefaults fills unset request fields from the server's (hot-reloadable)
// retrieval defaults.
func (s *Server) applyDefaults(opts *models.RetrievalOptions) {
	rc := s.retrievalDefaults()
	if opts.Limit <= 0 {
		opts.Limit = rc.DefaultLimit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = rc.DefaultThreshold
	}
	if opts.KeywordWeight <= 0 {
		opts.KeywordWeight = rc.KeywordWeight
	}
	if opts.MaxContextLength <= 0 {
		opts.MaxContextLength = rc.MaxContextLength
	}
	if opts.UseHybridSearch == nil {
		enabled := rc.HybridEnabledOrDefault()
		opts.UseHybridSearch = &enabled
	}
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Options.WorkspaceID = firstNonEmpty(req.Options.WorkspaceID, r.URL.Query().Get("workspace_id"))
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyDefaults(&req.Options)
	s.logger.Debug("retrieve request",
		zap.String("workspace_id", req.Options.WorkspaceID),
		zap.Int("limit", req.Options.Limit),
	)
	result, err := s.engine.RetrieveKnowledge(r.Context(), req.Query, req.Options)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, false)
}

func (s *Server) handleHybridSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, true)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, hybrid bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rc := s.retrievalDefaults()
	if req.Limit <= 0 {
		req.Limit = rc.DefaultLimit
	}
	if req.Threshold <= 0 {
		req.Threshold = rc.DefaultThreshold
	}
	if req.KeywordWeight <= 0 {
		req.KeywordWeight = rc.KeywordWeight
	}
	p := search.Params{
		Query:         req.Query,
		WorkspaceID:   req.WorkspaceID,
		Limit:         req.Limit,
		Threshold:     req.Threshold,
		Filters:       req.Filters,
		KeywordWeight: req.KeywordWeight,
		ExactMatch:    req.ExactMatch,
	}
	var (
		frags []*models.Fragment
		err   error
	)
	if hybrid {
		frags, err = s.engine.HybridSearch(r.Context(), p)
	} else {
		frags, err = s.engine.SemanticSearch(r.Context(), p)
	}
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	if frags == nil {
		frags = []*models.Fragment{}
	}
	s.respondJSON(w, http.StatusOK, searchResponse{Results: frags, Total: len(frags)})
}

func (s *Server) handleUsageAnalytics(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("document_id")
	s.respondJSON(w, http.StatusOK, s.tracker.Summary(documentID))
}

func (s *Server) handleTopDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	workspaceID := r.URL.Query().Get("workspace_id")
	docs := s.tracker.TopDocuments(limit, workspaceID)
	if docs == nil {
		docs = []models.DocumentUsage{}
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondSearchError maps upstream index failures to 502 so callers can tell
// "search failed" apart from bad requests and empty results.
func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	var upstream *search.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("upstream search failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.logger.Error("search failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
