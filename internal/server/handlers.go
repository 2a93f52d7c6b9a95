package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleGetBars serves GET /api/series/{ticker}/bars?from=&to=
func (s *Server) handleGetBars(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := r.PathValue("ticker")

	from, err := parseDateParam(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bars, err := s.series.GetCachedBars(r.Context(), ticker, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"full_ticker": ticker,
		"count":       len(bars),
		"bars":        bars,
	})
}

// handleGetPrice serves GET /api/series/{ticker}/price
func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := s.series.GetCurrentPrice(r.Context(), r.PathValue("ticker"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// batchPricesRequest is the POST /api/prices/batch body
type batchPricesRequest struct {
	Tickers []string `json:"tickers"`
}

func (s *Server) handleBatchPrices(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req batchPricesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Tickers) == 0 {
		s.writeError(w, r, &models.ValidationError{Field: "tickers", Message: "at least one ticker is required"})
		return
	}

	results, err := s.series.GetBatchPrices(r.Context(), req.Tickers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

// mergeRequest is the POST /api/series/{ticker}/merge body
type mergeRequest struct {
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req mergeRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	from, err := parseDateField("from_date", req.FromDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDateField("to_date", req.ToDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.series.MergeHistoricalRange(r.Context(), r.PathValue("ticker"), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// refreshRequest is the POST /api/refresh body
type refreshRequest struct {
	Tickers  []string `json:"tickers,omitempty"`
	FromDate string   `json:"from_date,omitempty"`
	ToDate   string   `json:"to_date,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req refreshRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	from, err := parseDateField("from_date", req.FromDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDateField("to_date", req.ToDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.series.RefreshCache(r.Context(), models.RefreshSelectors{
		Tickers:  req.Tickers,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := s.series.GetCacheStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handleClearCache serves DELETE /api/cache (everything)
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodDelete) {
		return
	}

	count, err := s.series.ClearCache(r.Context(), "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": count})
}

// handleDeleteSeries serves DELETE /api/series/{ticker}
func (s *Server) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodDelete) {
		return
	}

	count, err := s.series.ClearCache(r.Context(), r.PathValue("ticker"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": count})
}

// handleSearch serves GET /api/search?q=&limit= as a passthrough to the
// provider's security search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, r, &models.ValidationError{Field: "q", Message: "query is required"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, &models.ValidationError{Field: "limit", Message: "expected a positive integer"})
			return
		}
		limit = n
	}

	results, err := s.client.SearchSecurities(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, r, &models.ProviderFetchError{Ticker: query, Endpoint: "search", Err: err})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// parseDateField parses an optional yyyy-mm-dd JSON field
func parseDateField(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: name, Message: "expected yyyy-mm-dd"}
	}
	return t, nil
}
