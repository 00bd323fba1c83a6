// Package gate asks a remote switch whether the admin endpoints should serve
// traffic.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type status struct {
	Enabled bool `json:"enabled"`
}

// Poller caches the remote answer for ttl. When the remote cannot be reached
// or answers with anything but 200 the system is treated as disabled until
// the next successful poll. Concurrent callers share one poll and the cache
// lock is never held across it.
type Poller struct {
	logger *logrus.Logger
	url    string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	polls singleflight.Group

	mu        sync.Mutex
	enabled   bool
	checkedAt time.Time
}

// NewPoller returns a Poller for url. An empty url disables the gate, and
// IsEnabled always reports true.
func NewPoller(logger *logrus.Logger, url string, ttl time.Duration) *Poller {
	return &Poller{
		logger: logger,
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: 5 * time.Second},
		now:    time.Now,
	}
}

func (p *Poller) IsEnabled(ctx context.Context) bool {
	if p.url == "" {
		return true
	}

	if enabled, ok := p.cached(); ok {
		return enabled
	}

	// the poll outlives any single caller; the client timeout bounds it
	pollCtx := context.WithoutCancel(ctx)
	result := p.polls.DoChan(p.url, func() (any, error) {
		started := p.now()

		enabled, err := p.fetch(pollCtx)
		if err != nil {
			p.logger.WithError(err).WithField("url", p.url).Warn("system gate check failed, treating system as disabled")
		}

		p.mu.Lock()
		p.enabled = enabled
		p.checkedAt = started
		p.mu.Unlock()

		return enabled, nil
	})

	select {
	case res := <-result:
		return res.Val.(bool)
	case <-ctx.Done():
		return false
	}
}

func (p *Poller) cached() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.checkedAt.IsZero() || p.now().Sub(p.checkedAt) >= p.ttl {
		return false, false
	}
	return p.enabled, true
}

func (p *Poller) fetch(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create gate request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach gate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("gate returned status %d", resp.StatusCode)
	}

	var s status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return false, fmt.Errorf("failed to decode gate response: %w", err)
	}

	return s.Enabled, nil
}
