package server

import (
	"net/http"
	"strconv"

	"voterroll/internal/search"
	"voterroll/pkg/types"
)

type listParams struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

type votersResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       []*types.Voter   `json:"data"`
	Pagination types.Pagination `json:"pagination"`
}

func (s *Service) handleGetVoters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params listParams
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		s.logger.WithError(err).Debug("failed to decode listing params")
	}

	page := intOrDefault(params.Page, search.DefaultPage)
	limit := intOrDefault(params.Limit, search.DefaultLimit)

	result, err := s.searcher.List(ctx, page, limit)
	if err != nil {
		s.logger.WithError(err).Error("failed to list voters")
		s.writeJSON(w, http.StatusInternalServerError, uploadErrorResponse{
			Message: "Failed to get voter data",
			Error:   err.Error(),
		})
		return
	}

	message := "Data retrieved successfully"
	if len(result.Voters) == 0 {
		message = "No data found"
	}

	recordsOnPage := len(result.Voters)
	pagination := paginationFor(result)
	pagination.RecordsOnPage = &recordsOnPage

	s.writeJSON(w, http.StatusOK, votersResponse{
		Success:    true,
		Message:    message,
		Data:       nonNilVoters(result.Voters),
		Pagination: pagination,
	})
}

func paginationFor(result *types.SearchResult) types.Pagination {
	return types.Pagination{
		CurrentPage:  result.CurrentPage,
		TotalPages:   result.TotalPages,
		TotalRecords: result.TotalRecords,
		Limit:        result.PageSize,
		HasNext:      result.HasNext,
		HasPrev:      result.HasPrev,
	}
}

func nonNilVoters(voters []*types.Voter) []*types.Voter {
	if voters == nil {
		return []*types.Voter{}
	}
	return voters
}

// intOrDefault parses s, falling back to def when s is empty or not a number.
func intOrDefault(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return n
}
