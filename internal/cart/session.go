package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certdesk/course-storefront/internal/domain"
)

// Session is the server-side state of one browser session: its cart and
// where it stands in checkout.
type Session struct {
	ID   string
	Cart *Cart

	mu       sync.Mutex
	state    domain.CheckoutState
	lastSeen time.Time
}

// State returns the current checkout state.
func (s *Session) State() domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves from one checkout state to another. It fails when the
// session is not in from, which keeps two submits of the same cart apart.
func (s *Session) Transition(from, to domain.CheckoutState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// Reset puts the session back to IDLE whatever its state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.CheckoutStateIdle
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Manager holds sessions in memory. Nothing is persisted: a restart or an
// idle timeout loses the cart.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	idleTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a manager. idleTTL <= 0 disables eviction.
func NewManager(idleTTL time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// GetOrCreate returns the session for id, creating an empty one when missing.
func (m *Manager) GetOrCreate(id string) *Session {
	now := m.now()

	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		session.touch(now)
		return session
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[id]; ok {
		session.touch(now)
		return session
	}
	session = &Session{ID: id, Cart: New(), state: domain.CheckoutStateIdle, lastSeen: now}
	m.sessions[id] = session
	m.logger.Debug("created cart session", zap.String("sessionID", id))
	return session
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Drop forgets a session and its cart.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Debug("dropped cart session", zap.String("sessionID", id))
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many went.
// A session in the middle of a checkout submit is never evicted.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, session := range m.sessions {
		if session.State() == domain.CheckoutStateSubmitting {
			continue
		}
		if session.idleSince(now) > m.idleTTL {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted idle cart sessions", zap.Int("count", evicted))
	}
	return evicted
}
