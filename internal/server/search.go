package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"voterroll/internal/metrics"
	"voterroll/internal/search"
	"voterroll/pkg/types"
)

type searchParams struct {
	Type       string `form:"type"`
	SearchType string `form:"searchType"`
	Query      string `form:"query"`
	Page       string `form:"page"`
	Limit      string `form:"limit"`

	Name       string `form:"name"`
	FirstName  string `form:"firstname"`
	MiddleName string `form:"middlename"`
	Surname    string `form:"surname"`
	Epic       string `form:"epic"`
	Mobile     string `form:"mobile"`
	Address    string `form:"address"`
}

type searchResponse struct {
	Success    bool             `json:"success"`
	Data       []*types.Voter   `json:"data"`
	Pagination types.Pagination `json:"pagination"`
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now()

	values, err := searchValues(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var params searchParams
	if err := decoder.Decode(&params, values); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := params.request()

	result, err := s.searcher.Search(ctx, req)
	if err != nil {
		var verr *types.SearchValidationError
		if errors.As(err, &verr) {
			metrics.RecordSearch(req.Mode, metrics.SearchInvalid, time.Since(started))
			s.writeError(w, http.StatusBadRequest, verr.Message)
			return
		}

		metrics.RecordSearch(req.Mode, metrics.SearchFailed, time.Since(started))
		s.logger.WithError(err).WithField("mode", req.Mode).Error("search failed")
		s.internalServerError(w)
		return
	}

	metrics.RecordSearch(req.Mode, metrics.SearchOK, time.Since(started))

	s.writeJSON(w, http.StatusOK, searchResponse{
		Success:    true,
		Data:       nonNilVoters(result.Voters),
		Pagination: paginationFor(result),
	})
}

// searchValues collects the request parameters from the query string and,
// for POST, from a JSON or form body. Body values win.
func searchValues(r *http.Request) (url.Values, error) {
	values := r.URL.Query()
	if r.Method != http.MethodPost {
		return values, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode search body: %w", err)
		}
		for key, value := range body {
			if value == nil {
				continue
			}
			values.Set(key, fmt.Sprint(value))
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse search form: %w", err)
	}
	for key, vs := range r.PostForm {
		values[key] = vs
	}

	return values, nil
}

func (p searchParams) request() types.SearchRequest {
	modeName := p.Type
	if modeName == "" {
		modeName = p.SearchType
	}
	mode := search.ParseMode(modeName)

	req := types.SearchRequest{
		Mode:     mode,
		Query:    p.query(mode),
		Page:     pagingValue(p.Page, search.DefaultPage),
		PageSize: pagingValue(p.Limit, search.DefaultLimit),
	}

	// the older name form sends each part separately; each must match
	if req.Query == "" && mode == types.SearchModeName {
		req.Terms = []string{p.FirstName, p.MiddleName, p.Surname}
	}

	return req
}

// query prefers the generic query field and falls back to the field the
// older search form sends for each mode.
func (p searchParams) query(mode types.SearchMode) string {
	if q := strings.TrimSpace(p.Query); q != "" {
		return q
	}

	switch mode {
	case types.SearchModeName:
		return strings.TrimSpace(p.Name)
	case types.SearchModeIdentifier:
		return strings.TrimSpace(p.Epic)
	case types.SearchModePhone:
		return strings.TrimSpace(p.Mobile)
	case types.SearchModeAddress:
		return strings.TrimSpace(p.Address)
	}

	return ""
}

// pagingValue returns def for a missing value and 0 for one that is not an
// integer, which validation then rejects.
func pagingValue(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
