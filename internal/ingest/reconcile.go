package ingest

import (
	"context"
	"errors"
	"fmt"

	"voterroll/pkg/types"
)

// VoterStore is the storage the reconciler needs. CreateVoter must return
// types.ErrVoterExists when the epic_no unique constraint fires.
type VoterStore interface {
	VoterByEpicNo(ctx context.Context, epicNo string) (*types.Voter, error)
	CreateVoter(ctx context.Context, voter *types.Voter) error
	UpdateVoterFields(ctx context.Context, epicNo string, changes map[string]any) error
}

type Result int

const (
	ResultUnchanged Result = iota
	ResultInserted
	ResultUpdated
)

func (r Result) String() string {
	switch r {
	case ResultInserted:
		return "inserted"
	case ResultUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

type Reconciler struct {
	store VoterStore
}

func NewReconciler(store VoterStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile inserts rec when no voter has its epic_no, otherwise writes only
// the supplied fields that differ from what is stored. If the insert loses a
// race on the unique epic_no, the voter is fetched again and the update path
// runs once.
func (r *Reconciler) Reconcile(ctx context.Context, rec Record) (Result, error) {
	existing, err := r.store.VoterByEpicNo(ctx, rec.EpicNo)
	switch {
	case errors.Is(err, types.ErrVoterNotFound):
		voter := &types.Voter{
			EpicNo:      rec.EpicNo,
			VoterFields: rec.Fields,
		}

		err = r.store.CreateVoter(ctx, voter)
		if err == nil {
			return ResultInserted, nil
		}
		if !errors.Is(err, types.ErrVoterExists) {
			return ResultUnchanged, fmt.Errorf("failed to insert voter %s: %w", rec.EpicNo, err)
		}

		existing, err = r.store.VoterByEpicNo(ctx, rec.EpicNo)
		if err != nil {
			return ResultUnchanged, fmt.Errorf("failed to re-fetch voter %s after insert conflict: %w", rec.EpicNo, err)
		}
	case err != nil:
		return ResultUnchanged, fmt.Errorf("failed to look up voter %s: %w", rec.EpicNo, err)
	}

	changes := diffFields(existing.VoterFields, rec.Fields)
	if len(changes) == 0 {
		return ResultUnchanged, nil
	}

	err = r.store.UpdateVoterFields(ctx, rec.EpicNo, changes)
	if err != nil {
		return ResultUnchanged, fmt.Errorf("failed to update voter %s: %w", rec.EpicNo, err)
	}

	return ResultUpdated, nil
}

// diffFields stages every supplied, non-empty field whose value differs from
// the stored one. A stored NULL always differs from a supplied value.
func diffFields(stored, supplied types.VoterFields) map[string]any {
	changes := make(map[string]any)

	stage(changes, FieldMunicipality, stored.Municipality, supplied.Municipality)
	stage(changes, FieldWardNo, stored.WardNo, supplied.WardNo)
	stage(changes, FieldBoothNo, stored.BoothNo, supplied.BoothNo)
	stage(changes, FieldSerialNo, stored.SerialNo, supplied.SerialNo)
	stage(changes, FieldFullName, stored.FullName, supplied.FullName)
	stage(changes, FieldGender, stored.Gender, supplied.Gender)
	stage(changes, FieldAge, stored.Age, supplied.Age)
	stage(changes, FieldAssemblyNo, stored.AssemblyNo, supplied.AssemblyNo)
	stage(changes, FieldMobile, stored.Mobile, supplied.Mobile)
	stage(changes, FieldDOB, stored.DOB, supplied.DOB)
	stage(changes, FieldDemands, stored.Demands, supplied.Demands)
	stage(changes, FieldWorkerName, stored.WorkerName, supplied.WorkerName)
	stage(changes, FieldNewAddress, stored.NewAddress, supplied.NewAddress)
	stage(changes, FieldSocietyName, stored.SocietyName, supplied.SocietyName)
	stage(changes, FieldFlatNo, stored.FlatNo, supplied.FlatNo)

	return changes
}

func stage(changes map[string]any, column string, stored, supplied *string) {
	if supplied == nil || *supplied == "" {
		return
	}
	if stored != nil && *stored == *supplied {
		return
	}
	changes[column] = *supplied
}
