package types

import (
	"fmt"
	"strings"
)

// UploadOutcome is the result of one CSV ingestion run.
type UploadOutcome struct {
	RunID          string `json:"-"`
	TotalRowsInCSV int    `json:"total_rows_in_csv"`
	TotalProcessed int    `json:"total_processed"`
	Inserted       int    `json:"inserted"`
	Updated        int    `json:"updated"`
	Unchanged      int    `json:"-"`
	Errors         int    `json:"errors"`
	Skipped        int    `json:"skipped"`
	Summary        string `json:"summary"`
}

type HeaderErrorKind string

const (
	HeaderErrorUnknown         HeaderErrorKind = "INVALID_CSV_HEADERS"
	HeaderErrorMissingRequired HeaderErrorKind = "MISSING_REQUIRED_HEADERS"
)

// HeaderError rejects a whole file because its header row breaks the column
// contract. Offending lists the exact header names at fault.
type HeaderError struct {
	Kind      HeaderErrorKind
	Offending []string
	Allowed   []string
	Required  []string
}

func (e *HeaderError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case HeaderErrorUnknown:
		fmt.Fprintf(&b, "Invalid CSV headers found: %s\n", strings.Join(e.Offending, ", "))
		fmt.Fprintf(&b, "Allowed headers are: %s\n", strings.Join(e.Allowed, ", "))
		fmt.Fprintf(&b, "Required headers are: %s", strings.Join(e.Required, ", "))
	case HeaderErrorMissingRequired:
		fmt.Fprintf(&b, "Missing required CSV headers: %s\n", strings.Join(e.Offending, ", "))
		fmt.Fprintf(&b, "Required headers are: %s\n", strings.Join(e.Required, ", "))
		fmt.Fprintf(&b, "Allowed headers are: %s", strings.Join(e.Allowed, ", "))
	default:
		fmt.Fprintf(&b, "invalid CSV headers: %s", strings.Join(e.Offending, ", "))
	}
	return b.String()
}

// Details is the remediation hint shown next to the message.
func (e *HeaderError) Details() string {
	switch e.Kind {
	case HeaderErrorUnknown:
		return "Rename or remove the invalid columns so every header matches an allowed name exactly, then upload again."
	case HeaderErrorMissingRequired:
		return "Add the missing columns to the first row of the file, then upload again."
	}
	return "Fix the CSV header row and upload again."
}
