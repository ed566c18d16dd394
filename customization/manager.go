package customization

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/pricing"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 2 * time.Hour

// Options are the buyer choices a session is opened with
type Options struct {
	Color     string   `json:"color"`
	Quantity  int      `json:"quantity" validate:"gte=0,lte=1000"`
	Lotteries []string `json:"lotteries" validate:"max=50"`
}

// Manager owns the open customization sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	fetcher   AssetFetcher
	pricebook *pricing.Engine
	ttl       time.Duration
	now       func() time.Time
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithTTL overrides DefaultSessionTTL
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithPricebook fills mockups that arrive without prices from a pricebook
func WithPricebook(engine *pricing.Engine) ManagerOption {
	return func(m *Manager) {
		m.pricebook = engine
	}
}

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager
func NewManager(fetcher AssetFetcher, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		fetcher:  fetcher,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a customization session for mockup
func (m *Manager) Open(mockup models.Mockup, opts Options) (*Session, error) {
	if mockup.ProductID == "" {
		return nil, fmt.Errorf("open session: product id is required")
	}
	if m.pricebook != nil {
		m.pricebook.ResolveMockup(&mockup)
	}

	s := newSession(uuid.NewString(), mockup, opts, m.fetcher, m.now)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	zap.L().Info("✅ Customization session opened", zap.String("session", s.id), zap.String("productId", mockup.ProductID))
	return s, nil
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.Closed() {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close tears a session down and forgets it
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	return nil
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions that were not touched within the TTL and returns how many
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastTouched().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		zap.L().Info("🧹 Expired customization sessions removed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunJanitor sweeps expired sessions every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
