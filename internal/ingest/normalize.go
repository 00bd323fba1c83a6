package ingest

import (
	"strings"

	"voterroll/pkg/types"
)

// Normalize projects a raw row onto AllowedFields. Values are trimmed; empty
// and whitespace-only values are omitted so that later stages can tell
// "nothing supplied" apart from a real value.
func Normalize(raw map[string]string) map[string]string {
	out := make(map[string]string, len(AllowedFields))
	for _, name := range AllowedFields {
		v, ok := raw[name]
		if !ok {
			continue
		}

		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		out[name] = v
	}
	return out
}

// Record is a validated row in typed form.
type Record struct {
	EpicNo string
	Fields types.VoterFields
}

// RecordFromRow converts a normalized row. Absent keys become nil fields.
func RecordFromRow(row map[string]string) Record {
	opt := func(name string) *string {
		v, ok := row[name]
		if !ok {
			return nil
		}
		return &v
	}

	return Record{
		EpicNo: row[FieldEpicNo],
		Fields: types.VoterFields{
			Municipality: opt(FieldMunicipality),
			WardNo:       opt(FieldWardNo),
			BoothNo:      opt(FieldBoothNo),
			SerialNo:     opt(FieldSerialNo),
			FullName:     opt(FieldFullName),
			Gender:       opt(FieldGender),
			Age:          opt(FieldAge),
			AssemblyNo:   opt(FieldAssemblyNo),
			Mobile:       opt(FieldMobile),
			DOB:          opt(FieldDOB),
			Demands:      opt(FieldDemands),
			WorkerName:   opt(FieldWorkerName),
			NewAddress:   opt(FieldNewAddress),
			SocietyName:  opt(FieldSocietyName),
			FlatNo:       opt(FieldFlatNo),
		},
	}
}
