// Package ingest turns an uploaded voter roll CSV into inserts and partial
// updates against the voters table.
//
// The column contract is strict: every header must be one of AllowedFields
// and every RequiredFields name must be present. A file that breaks the
// contract is rejected before a single row is read.
package ingest

const (
	FieldMunicipality = "municipality"
	FieldWardNo       = "ward_no"
	FieldBoothNo      = "booth_no"
	FieldSerialNo     = "serial_no"
	FieldFullName     = "full_name"
	FieldGender       = "gender"
	FieldAge          = "age"
	FieldEpicNo       = "epic_no"
	FieldAssemblyNo   = "assembly_no"
	FieldMobile       = "mobile"
	FieldDOB          = "dob"
	FieldDemands      = "demands"
	FieldWorkerName   = "worker_name"
	FieldNewAddress   = "new_address"
	FieldSocietyName  = "society_name"
	FieldFlatNo       = "flat_no"
)

// AllowedFields is the exhaustive, ordered set of CSV headers.
var AllowedFields = []string{
	FieldMunicipality,
	FieldWardNo,
	FieldBoothNo,
	FieldSerialNo,
	FieldFullName,
	FieldGender,
	FieldAge,
	FieldEpicNo,
	FieldAssemblyNo,
	FieldMobile,
	FieldDOB,
	FieldDemands,
	FieldWorkerName,
	FieldNewAddress,
	FieldSocietyName,
	FieldFlatNo,
}

// RequiredFields must appear in the header row and carry a value in every
// accepted row.
var RequiredFields = []string{
	FieldEpicNo,
	FieldFullName,
	FieldAge,
	FieldGender,
}

const (
	MinAge = 18
	MaxAge = 120

	MinEpicLength = 3
	MaxEpicLength = 20
)

var allowedSet = toSet(AllowedFields)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
