package ingest

import (
	"context"
	"errors"
	"io"
	"sync"

	"voterroll/pkg/types"

	"github.com/sirupsen/logrus"
)

// memStore is an in-memory VoterStore with a unique epic_no.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	voters map[string]*types.Voter

	inserts int
	updates []map[string]any

	// failOn makes every call for that epic_no fail
	failOn map[string]error
	// beforeCreate runs inside CreateVoter before the uniqueness check
	beforeCreate func(s *memStore, v *types.Voter)
}

func newMemStore() *memStore {
	return &memStore{
		voters: make(map[string]*types.Voter),
		failOn: make(map[string]error),
	}
}

func (s *memStore) VoterByEpicNo(_ context.Context, epicNo string) (*types.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failOn[epicNo]; err != nil {
		return nil, err
	}

	v, ok := s.voters[epicNo]
	if !ok {
		return nil, types.ErrVoterNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) CreateVoter(_ context.Context, voter *types.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beforeCreate != nil {
		hook := s.beforeCreate
		s.beforeCreate = nil
		hook(s, voter)
	}

	if _, ok := s.voters[voter.EpicNo]; ok {
		return types.ErrVoterExists
	}

	s.nextID++
	voter.ID = s.nextID
	cp := *voter
	s.voters[voter.EpicNo] = &cp
	s.inserts++
	return nil
}

func (s *memStore) UpdateVoterFields(_ context.Context, epicNo string, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.voters[epicNo]
	if !ok {
		return errors.New("no such voter")
	}

	for column, value := range changes {
		val := value.(string)
		switch column {
		case FieldMunicipality:
			v.Municipality = &val
		case FieldWardNo:
			v.WardNo = &val
		case FieldBoothNo:
			v.BoothNo = &val
		case FieldSerialNo:
			v.SerialNo = &val
		case FieldFullName:
			v.FullName = &val
		case FieldGender:
			v.Gender = &val
		case FieldAge:
			v.Age = &val
		case FieldAssemblyNo:
			v.AssemblyNo = &val
		case FieldMobile:
			v.Mobile = &val
		case FieldDOB:
			v.DOB = &val
		case FieldDemands:
			v.Demands = &val
		case FieldWorkerName:
			v.WorkerName = &val
		case FieldNewAddress:
			v.NewAddress = &val
		case FieldSocietyName:
			v.SocietyName = &val
		case FieldFlatNo:
			v.FlatNo = &val
		default:
			return errors.New("unexpected column " + column)
		}
	}

	s.updates = append(s.updates, changes)
	return nil
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts + len(s.updates)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strp(s string) *string {
	return &s
}
