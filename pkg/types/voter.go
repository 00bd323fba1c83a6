package types

import (
	"errors"
	"time"
)

var (
	ErrVoterNotFound = errors.New("voter not found")
	ErrVoterExists   = errors.New("voter with this epic_no already exists")
)

// Voter is one row of the voters table. EpicNo is the natural key and is
// never changed after insert.
type Voter struct {
	ID     int64  `db:"id" json:"id"`
	EpicNo string `db:"epic_no" json:"epic_no"`

	VoterFields

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VoterFields holds the optional descriptive columns. A nil pointer is a NULL
// column; stored values are always trimmed and non-empty.
type VoterFields struct {
	Municipality *string `db:"municipality" json:"municipality"`
	WardNo       *string `db:"ward_no" json:"ward_no"`
	BoothNo      *string `db:"booth_no" json:"booth_no"`
	SerialNo     *string `db:"serial_no" json:"serial_no"`
	FullName     *string `db:"full_name" json:"full_name"`
	Gender       *string `db:"gender" json:"gender"`
	Age          *string `db:"age" json:"age"`
	AssemblyNo   *string `db:"assembly_no" json:"assembly_no"`
	Mobile       *string `db:"mobile" json:"mobile"`
	DOB          *string `db:"dob" json:"dob"`
	Demands      *string `db:"demands" json:"demands"`
	WorkerName   *string `db:"worker_name" json:"worker_name"`
	NewAddress   *string `db:"new_address" json:"new_address"`
	SocietyName  *string `db:"society_name" json:"society_name"`
	FlatNo       *string `db:"flat_no" json:"flat_no"`
}
