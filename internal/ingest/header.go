package ingest

import "voterroll/pkg/types"

// ValidateHeaders enforces the column contract. Unknown headers are reported
// before missing required ones.
func ValidateHeaders(headers []string) error {
	present := toSet(headers)

	var invalid []string
	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if _, ok := allowedSet[h]; ok {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		invalid = append(invalid, h)
	}

	if len(invalid) > 0 {
		return headerError(types.HeaderErrorUnknown, invalid)
	}

	var missing []string
	for _, req := range RequiredFields {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}

	if len(missing) > 0 {
		return headerError(types.HeaderErrorMissingRequired, missing)
	}

	return nil
}

func headerError(kind types.HeaderErrorKind, offending []string) *types.HeaderError {
	return &types.HeaderError{
		Kind:      kind,
		Offending: offending,
		Allowed:   append([]string(nil), AllowedFields...),
		Required:  append([]string(nil), RequiredFields...),
	}
}
