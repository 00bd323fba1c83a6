package ingest

import (
	"context"
	"errors"
	"testing"

	"voterroll/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileInsertsNewVoter(t *testing.T) {
	store := newMemStore()
	rec := Record{EpicNo: "ZZT4871471", Fields: types.VoterFields{FullName: strp("Ravi Kulkarni"), Mobile: strp("111")}}

	res, err := NewReconciler(store).Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ResultInserted, res)

	stored := store.voters["ZZT4871471"]
	require.NotNil(t, stored)
	assert.Equal(t, "Ravi Kulkarni", *stored.FullName)
	assert.Nil(t, stored.Age)
}

func TestReconcileUpdatesOnlyChangedFields(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	rec := NewReconciler(store)

	_, err := rec.Reconcile(ctx, Record{EpicNo: "ZZT4871471", Fields: types.VoterFields{
		FullName: strp("Ravi Kulkarni"),
		Mobile:   strp("111"),
		Age:      strp("40"),
	}})
	require.NoError(t, err)

	res, err := rec.Reconcile(ctx, Record{EpicNo: "ZZT4871471", Fields: types.VoterFields{
		FullName: strp("Ravi Kulkarni"),
		Mobile:   strp("222"),
		Age:      strp("40"),
	}})
	require.NoError(t, err)
	assert.Equal(t, ResultUpdated, res)

	require.Len(t, store.updates, 1)
	assert.Equal(t, map[string]any{"mobile": "222"}, store.updates[0])
	assert.Equal(t, "Ravi Kulkarni", *store.voters["ZZT4871471"].FullName)
}

func TestReconcileUnchangedPerformsNoWrite(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	rec := NewReconciler(store)
	row := Record{EpicNo: "ABC1234", Fields: types.VoterFields{FullName: strp("Asha"), Gender: strp("F")}}

	_, err := rec.Reconcile(ctx, row)
	require.NoError(t, err)

	res, err := rec.Reconcile(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, res)
	assert.Empty(t, store.updates)
}

func TestReconcileAbsentFieldsDoNotClearStoredValues(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	rec := NewReconciler(store)

	_, err := rec.Reconcile(ctx, Record{EpicNo: "ABC1234", Fields: types.VoterFields{FullName: strp("Asha"), Demands: strp("water")}})
	require.NoError(t, err)

	res, err := rec.Reconcile(ctx, Record{EpicNo: "ABC1234", Fields: types.VoterFields{FullName: strp("Asha")}})
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, res)
	assert.Equal(t, "water", *store.voters["ABC1234"].Demands)
}

func TestReconcileInsertConflictFallsBackToUpdate(t *testing.T) {
	store := newMemStore()
	store.beforeCreate = func(s *memStore, v *types.Voter) {
		// a concurrent upload lands the same epic_no first
		s.nextID++
		s.voters[v.EpicNo] = &types.Voter{ID: s.nextID, EpicNo: v.EpicNo, VoterFields: types.VoterFields{FullName: strp("Old Name")}}
	}

	res, err := NewReconciler(store).Reconcile(context.Background(), Record{
		EpicNo: "ABC1234",
		Fields: types.VoterFields{FullName: strp("New Name")},
	})
	require.NoError(t, err)
	assert.Equal(t, ResultUpdated, res)
	assert.Equal(t, "New Name", *store.voters["ABC1234"].FullName)
	assert.Len(t, store.voters, 1)
}

func TestReconcileLookupFailure(t *testing.T) {
	store := newMemStore()
	store.failOn["ABC1234"] = errors.New("connection reset")

	_, err := NewReconciler(store).Reconcile(context.Background(), Record{EpicNo: "ABC1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDiffFields(t *testing.T) {
	stored := types.VoterFields{
		FullName: strp("Asha"),
		Mobile:   strp("111"),
	}

	tests := []struct {
		name     string
		supplied types.VoterFields
		want     map[string]any
	}{
		{name: "nothing supplied", supplied: types.VoterFields{}, want: map[string]any{}},
		{name: "same value", supplied: types.VoterFields{FullName: strp("Asha")}, want: map[string]any{}},
		{name: "case differs", supplied: types.VoterFields{FullName: strp("ASHA")}, want: map[string]any{"full_name": "ASHA"}},
		{name: "stored null", supplied: types.VoterFields{WardNo: strp("7")}, want: map[string]any{"ward_no": "7"}},
		{name: "empty never staged", supplied: types.VoterFields{Mobile: strp("")}, want: map[string]any{}},
		{
			name:     "several",
			supplied: types.VoterFields{Mobile: strp("222"), FlatNo: strp("4A"), SocietyName: strp("Shanti")},
			want:     map[string]any{"mobile": "222", "flat_no": "4A", "society_name": "Shanti"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diffFields(stored, tt.supplied))
		})
	}
}
