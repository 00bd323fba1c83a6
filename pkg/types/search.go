package types

type SearchMode string

const (
	SearchModeName       SearchMode = "name"
	SearchModeIdentifier SearchMode = "identifier"
	SearchModePhone      SearchMode = "phone"
	SearchModeAddress    SearchMode = "address"
)

type SearchRequest struct {
	Mode  SearchMode
	Query string
	// Terms, when set, replaces Query. Each term must match on its own.
	Terms    []string
	Page     int
	PageSize int
}

type SearchResult struct {
	Voters       []*Voter
	TotalRecords int
	TotalPages   int
	CurrentPage  int
	PageSize     int
	HasNext      bool
	HasPrev      bool
}

type SearchErrorKind string

const (
	SearchErrorInvalidMode   SearchErrorKind = "invalid_mode"
	SearchErrorQueryRequired SearchErrorKind = "query_required"
	SearchErrorInvalidPage   SearchErrorKind = "invalid_page"
	SearchErrorInvalidLimit  SearchErrorKind = "invalid_limit"
)

// SearchValidationError is a client error on a search request. Message is
// safe to return to the caller as-is.
type SearchValidationError struct {
	Kind    SearchErrorKind
	Message string
}

func (e *SearchValidationError) Error() string {
	return e.Message
}

// Pagination is the page metadata returned by list and search endpoints.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalRecords  int  `json:"totalRecords"`
	Limit         int  `json:"limit"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
	RecordsOnPage *int `json:"recordsOnPage,omitempty"`
}

// VoterFilter matches voters where every one of Terms is contained, ignoring
// case, in at least one of Columns. A filter with no columns or no terms
// matches every voter.
type VoterFilter struct {
	Columns []string
	Terms   []string
}
