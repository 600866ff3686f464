package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/placeholder"
	"github.com/memora-solutions/snippetkit/internal/types"
	"github.com/memora-solutions/snippetkit/internal/version"
)

// MaxRenderBody limits the size of a render request body.
const MaxRenderBody = 1 << 20

// RenderRequest is the body of POST /api/snippets/{id}/render.
type RenderRequest struct {
	Values   map[string]string `json:"values"`
	Defaults map[string]string `json:"defaults"`
}

// RenderResponse reports the expanded code and whether every declared
// placeholder received a value from values or defaults.
type RenderResponse struct {
	ID      string   `json:"id"`
	Code    string   `json:"code"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// SnippetList is the body of GET /api/snippets and GET /api/popular.
type SnippetList struct {
	Version  string          `json:"version"`
	Count    int             `json:"count"`
	Snippets []types.Snippet `json:"snippets"`
}

// CategoryInfo is a category with its snippet count.
type CategoryInfo struct {
	types.Category
	Count int `json:"count"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Version    string                   `json:"version"`
	Total      int                      `json:"total"`
	ByCategory map[types.CategoryID]int `json:"by_category"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	current := s.store.Current()
	query := r.URL.Query()

	snippets := current.Search(query.Get("q"))

	if category := strings.TrimSpace(query.Get("category")); category != "" {
		id := types.CategoryID(category)
		if _, ok := current.CategoryByID(id); !ok {
			s.writeError(w, http.StatusNotFound, errors.ErrCategoryNotFound(category))
			return
		}
		filtered := make([]types.Snippet, 0, len(snippets))
		for _, snippet := range snippets {
			if snippet.Category == id {
				filtered = append(filtered, snippet)
			}
		}
		snippets = filtered
	}

	s.writeJSON(w, http.StatusOK, SnippetList{
		Version:  current.Version(),
		Count:    len(snippets),
		Snippets: snippets,
	})
}

func (s *Server) handleSnippet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snippet, ok := s.store.Current().ByID(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.ErrSnippetNotFound(id))
		return
	}
	s.writeJSON(w, http.StatusOK, snippet)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snippet, ok := s.store.Current().ByID(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.ErrSnippetNotFound(id))
		return
	}

	var req RenderRequest
	body := http.MaxBytesReader(w, r.Body, MaxRenderBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest,
			errors.WrapParse(err, errors.ErrCodeInvalidDocument, "invalid render request").WithSnippet(id))
		return
	}

	provided := make(map[string]string, len(req.Values)+len(req.Defaults))
	for name, value := range req.Defaults {
		provided[name] = value
	}
	for name, value := range req.Values {
		provided[name] = value
	}
	result := placeholder.Validate(snippet.Placeholders, provided)

	s.writeJSON(w, http.StatusOK, RenderResponse{
		ID:      snippet.ID,
		Code:    placeholder.ReplaceWithDefaults(snippet.Code, req.Values, req.Defaults),
		Valid:   result.Valid,
		Missing: result.Missing,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, categoryInfos(s.store.Current()))
}

func categoryInfos(c *catalog.Catalog) []CategoryInfo {
	stats := c.Stats()
	categories := c.Categories()
	infos := make([]CategoryInfo, len(categories))
	for i, category := range categories {
		infos[i] = CategoryInfo{Category: category, Count: stats[category.ID]}
	}
	return infos
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	current := s.store.Current()
	s.writeJSON(w, http.StatusOK, StatsResponse{
		Version:    current.Version(),
		Total:      current.Len(),
		ByCategory: current.Stats(),
	})
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := catalog.DefaultPopularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest,
				errors.NewValidationError(errors.ErrCodeValidationFailed, "limit must be an integer"))
			return
		}
		limit = n
	}

	current := s.store.Current()
	snippets := current.Popular(limit)
	s.writeJSON(w, http.StatusOK, SnippetList{
		Version:  current.Version(),
		Count:    len(snippets),
		Snippets: snippets,
	})
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	current := s.store.Current()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC(),
		"version":         version.GetShortVersion(),
		"catalog_version": current.Version(),
		"snippets":        current.Len(),
		"clients":         s.ClientCount(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), err, "Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *errors.Error) {
	s.errs.Handle(context.Background(), err)
	s.writeJSON(w, status, ErrorResponse{Error: err.Message, Code: err.Code})
}
