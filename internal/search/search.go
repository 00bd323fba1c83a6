// Package search turns a search mode and query into a voter filter and
// serves it one page at a time.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voterroll/pkg/types"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type VoterFinder interface {
	SearchVoters(ctx context.Context, filter types.VoterFilter, limit, offset uint64) ([]*types.Voter, error)
	CountVoters(ctx context.Context, filter types.VoterFilter) (int, error)
}

type Service struct {
	voters VoterFinder
}

func New(voters VoterFinder) *Service {
	return &Service{voters: voters}
}

var modeColumns = map[types.SearchMode][]string{
	types.SearchModeName:       {"full_name"},
	types.SearchModeIdentifier: {"epic_no"},
	types.SearchModePhone:      {"mobile"},
	types.SearchModeAddress:    {"new_address", "society_name", "municipality"},
}

// ParseMode resolves a mode name, accepting the older epic and mobile names.
func ParseMode(s string) types.SearchMode {
	mode := types.SearchMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case "epic":
		return types.SearchModeIdentifier
	case "mobile":
		return types.SearchModePhone
	}
	return mode
}

// Filter returns the filter for a valid mode. Every term must match.
func Filter(mode types.SearchMode, terms ...string) types.VoterFilter {
	return types.VoterFilter{
		Columns: modeColumns[mode],
		Terms:   terms,
	}
}

// Terms returns the trimmed, non-blank terms of req: its Terms when any are
// set, otherwise its Query.
func Terms(req types.SearchRequest) []string {
	raw := req.Terms
	if len(raw) == 0 {
		raw = []string{req.Query}
	}

	var terms []string
	for _, term := range raw {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Search validates req and returns the requested page of matches ordered by
// id.
func (s *Service) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	return s.page(ctx, Filter(req.Mode, Terms(req)...), req.Page, req.PageSize)
}

// List pages through every voter. Out of range page and limit values are
// clamped rather than rejected.
func (s *Service) List(ctx context.Context, page, limit int) (*types.SearchResult, error) {
	if page < 1 {
		page = DefaultPage
	}
	limit = min(max(limit, 1), MaxLimit)

	return s.page(ctx, types.VoterFilter{}, page, limit)
}

func (s *Service) page(ctx context.Context, filter types.VoterFilter, page, limit int) (*types.SearchResult, error) {
	total, err := s.voters.CountVoters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}

	totalPages, hasNext, hasPrev := Paginate(total, page, limit)

	// pages past the end are empty; page <= totalPages keeps the offset
	// within total
	voters := []*types.Voter{}
	if page <= totalPages {
		offset := uint64(page-1) * uint64(limit)

		voters, err = s.voters.SearchVoters(ctx, filter, uint64(limit), offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
	}

	return &types.SearchResult{
		Voters:       voters,
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
		PageSize:     limit,
		HasNext:      hasNext,
		HasPrev:      hasPrev,
	}, nil
}

// Paginate derives page metadata from a total match count.
func Paginate(total, page, limit int) (totalPages int, hasNext, hasPrev bool) {
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return totalPages, page < totalPages, page > 1
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type searchInput struct {
	Page  int    `validate:"min=1"`
	Limit int    `validate:"min=1,max=100"`
	Mode  string `validate:"oneof=name identifier phone address"`
	Query string `validate:"required"`
}

// checked in this order; the first failing field is reported
var inputErrors = []struct {
	field string
	err   *types.SearchValidationError
}{
	{"Page", &types.SearchValidationError{Kind: types.SearchErrorInvalidPage, Message: "Page must be a positive integer"}},
	{"Limit", &types.SearchValidationError{Kind: types.SearchErrorInvalidLimit, Message: "Limit must be between 1 and 100"}},
	{"Mode", &types.SearchValidationError{Kind: types.SearchErrorInvalidMode, Message: "Invalid search type"}},
	{"Query", &types.SearchValidationError{Kind: types.SearchErrorQueryRequired, Message: "Search query is required"}},
}

// Validate returns a *types.SearchValidationError for the first problem with
// req, or nil.
func Validate(req types.SearchRequest) error {
	err := validate.Struct(searchInput{
		Page:  req.Page,
		Limit: req.PageSize,
		Mode:  string(req.Mode),
		Query: strings.Join(Terms(req), " "),
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate search request: %w", err)
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}

	for _, ie := range inputErrors {
		if failed[ie.field] {
			return &types.SearchValidationError{Kind: ie.err.Kind, Message: ie.err.Message}
		}
	}

	return fmt.Errorf("failed to validate search request: %w", err)
}
