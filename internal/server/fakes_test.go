package server

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"voterroll/internal/auth"
	"voterroll/internal/ingest"
	"voterroll/internal/search"
	"voterroll/internal/utils"
	"voterroll/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testSecret = "server-test-secret-server-test-secret"

// memVoters backs every store interface the server needs with one map.
type memVoters struct {
	mu      sync.Mutex
	nextID  int64
	byEpic  map[string]*types.Voter
	writes  int
	pingErr error

	// createDelay slows every insert, standing in for a large roll.
	createDelay time.Duration
}

func newMemVoters() *memVoters {
	return &memVoters{byEpic: make(map[string]*types.Voter)}
}

func (m *memVoters) add(epicNo, name string) *types.Voter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	v := &types.Voter{ID: m.nextID, EpicNo: epicNo, VoterFields: types.VoterFields{FullName: utils.StringPtr(name)}}
	m.byEpic[epicNo] = v
	return v
}

func (m *memVoters) VoterByEpicNo(_ context.Context, epicNo string) (*types.Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byEpic[epicNo]
	if !ok {
		return nil, types.ErrVoterNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVoters) VoterByID(_ context.Context, id int64) (*types.Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byEpic {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, types.ErrVoterNotFound
}

func (m *memVoters) CreateVoter(_ context.Context, voter *types.Voter) error {
	time.Sleep(m.createDelay)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEpic[voter.EpicNo]; ok {
		return types.ErrVoterExists
	}
	m.nextID++
	voter.ID = m.nextID
	cp := *voter
	m.byEpic[voter.EpicNo] = &cp
	m.writes++
	return nil
}

func (m *memVoters) UpdateVoterFields(_ context.Context, epicNo string, changes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byEpic[epicNo]
	if !ok {
		return errors.New("no such voter")
	}
	if name, ok := changes["full_name"].(string); ok {
		v.FullName = &name
	}
	if mobile, ok := changes["mobile"].(string); ok {
		v.Mobile = &mobile
	}
	m.writes++
	return nil
}

func (m *memVoters) column(v *types.Voter, name string) string {
	switch name {
	case "epic_no":
		return v.EpicNo
	case "full_name":
		return utils.PtrString(v.FullName)
	case "mobile":
		return utils.PtrString(v.Mobile)
	case "new_address":
		return utils.PtrString(v.NewAddress)
	case "society_name":
		return utils.PtrString(v.SocietyName)
	case "municipality":
		return utils.PtrString(v.Municipality)
	}
	return ""
}

func (m *memVoters) match(filter types.VoterFilter) []*types.Voter {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*types.Voter
	for _, v := range m.byEpic {
		if len(filter.Columns) == 0 || m.matchesEvery(v, filter) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memVoters) matchesEvery(v *types.Voter, filter types.VoterFilter) bool {
	for _, term := range filter.Terms {
		found := false
		for _, c := range filter.Columns {
			if strings.Contains(strings.ToLower(m.column(v, c)), strings.ToLower(term)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memVoters) SearchVoters(_ context.Context, filter types.VoterFilter, limit, offset uint64) ([]*types.Voter, error) {
	all := m.match(filter)
	if offset >= uint64(len(all)) {
		return nil, nil
	}
	return all[offset:min(offset+limit, uint64(len(all)))], nil
}

func (m *memVoters) CountVoters(_ context.Context, filter types.VoterFilter) (int, error) {
	return len(m.match(filter)), nil
}

func (m *memVoters) Ping(context.Context) error {
	return m.pingErr
}

func (m *memVoters) VoterTableExists(context.Context) (bool, error) {
	return true, nil
}

func (m *memVoters) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type staticGate bool

func (g staticGate) IsEnabled(context.Context) bool {
	return bool(g)
}

type testEnv struct {
	svc     *Service
	store   *memVoters
	tempDir string
	token   string
}

type envOption func(*types.Config, *staticGate)

func withMaxBytes(n int64) envOption {
	return func(c *types.Config, _ *staticGate) { c.UploadMaxBytes = n }
}

func withPoster(path string) envOption {
	return func(c *types.Config, _ *staticGate) { c.PosterPath = path }
}

func withUploadTimeout(sec uint) envOption {
	return func(c *types.Config, _ *staticGate) { c.UploadTimeoutSec = sec }
}

func withGate(enabled bool) envOption {
	return func(_ *types.Config, g *staticGate) { *g = staticGate(enabled) }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &types.Config{
		Environment:      "test",
		Version:          "1.0.0",
		UploadMaxBytes:   1 << 20,
		UploadTempDir:    t.TempDir(),
		CORSOrigin:       "*",
		SearchRateLimit:  "1000-M",
		AuthIssuer:       "voterroll",
		UploadTimeoutSec: 60,
	}
	gate := staticGate(true)
	for _, opt := range opts {
		opt(cfg, &gate)
	}

	store := newMemVoters()
	uploader := ingest.NewUploader(logger, store, ingest.WithTempDir(cfg.UploadTempDir))

	svc, err := New(cfg, logger, uploader, search.New(store), store, store, gate, auth.NewHMACVerifier(testSecret, cfg.AuthIssuer))
	require.NoError(t, err)

	token, err := auth.Mint(testSecret, cfg.AuthIssuer, "admin", time.Hour)
	require.NoError(t, err)

	return &testEnv{svc: svc, store: store, tempDir: cfg.UploadTempDir, token: token}
}
