package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrExists     = errors.New("session already exists")
	ErrFinalizing = errors.New("session is being finalized")
)

// Session is one interview awaiting its end-of-call report.
type Session struct {
	ID            string    `json:"session_id"`
	RoleID        string    `json:"role"`
	RoleTitle     string    `json:"role_title"`
	CandidateName string    `json:"candidate"`
	Criteria      []string  `json:"criteria"`
	AssistantID   string    `json:"assistant_id"`
	UserEmail     string    `json:"user_email"`
	CreatedAt     time.Time `json:"started"`
}

type entry struct {
	session    *Session
	seq        uint64
	finalizing bool
}

// Store owns every open session plus the assistant and call indexes.
// All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	byAssistant map[string]string
	byCall      map[string]string
	nextSeq     uint64
	ttl         time.Duration
	onExpire    func(*Session)
	now         func() time.Time
}

// NewStore creates an empty store. A ttl of zero disables expiry.
func NewStore(ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		sessions:    make(map[string]*entry),
		byAssistant: make(map[string]string),
		byCall:      make(map[string]string),
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (m *Store) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create inserts s and points its assistant at it, replacing whichever
// session previously held that assistant.
func (m *Store) Create(s Session) (*Session, error) {
	if s.ID == "" {
		return nil, errors.New("session id must not be empty")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	c := clone(&s)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[c.ID]; ok {
		return nil, ErrExists
	}
	m.nextSeq++
	m.sessions[c.ID] = &entry{session: c, seq: m.nextSeq}
	if c.AssistantID != "" {
		m.byAssistant[c.AssistantID] = c.ID
	}
	return clone(c), nil
}

func (m *Store) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e.session), nil
}

// SessionForAssistant returns the session id most recently bound to assistantID.
func (m *Store) SessionForAssistant(assistantID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byAssistant[assistantID]
	if !ok {
		return "", false
	}
	if _, live := m.sessions[id]; !live {
		return "", false
	}
	return id, true
}

// LinkCall binds callID to an open session. A call maps to at most one
// session; relinking overwrites.
func (m *Store) LinkCall(callID, sessionID string) error {
	if callID == "" {
		return errors.New("call id must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	m.byCall[callID] = sessionID
	return nil
}

// SessionForCall resolves a call id. Links pointing at retired sessions are
// reported as missing.
func (m *Store) SessionForCall(callID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byCall[callID]
	if !ok {
		return "", false
	}
	if _, live := m.sessions[id]; !live {
		return "", false
	}
	return id, true
}

// Latest returns the most recently created session not already being finalized.
func (m *Store) Latest() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *entry
	for _, e := range m.sessions {
		if e.finalizing {
			continue
		}
		if best == nil || e.seq > best.seq {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return clone(best.session), true
}

// Finalize claims sessionID, runs fn with a copy of it outside the lock, and
// on success removes the session together with every index entry pointing at
// it. When fn fails the claim is released and the session stays in place.
// Concurrent finalizers of the same session get ErrFinalizing.
func (m *Store) Finalize(sessionID string, fn func(*Session) error) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if e.finalizing {
		m.mu.Unlock()
		return ErrFinalizing
	}
	e.finalizing = true
	snapshot := clone(e.session)
	m.mu.Unlock()

	committed := false
	defer func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if committed {
			m.removeLocked(sessionID)
			return
		}
		e.finalizing = false
	}()

	if err := fn(snapshot); err != nil {
		return err
	}
	committed = true
	return nil
}

func (m *Store) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartJanitor expires sessions older than the store ttl until ctx ends.
// It is a no-op when expiry is disabled.
func (m *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireStale()
			}
		}
	}()
}

func (m *Store) expireStale() {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, e := range m.sessions {
		if e.finalizing {
			continue
		}
		if now.Sub(e.session.CreatedAt) < m.ttl {
			continue
		}
		expired = append(expired, clone(e.session))
		m.removeLocked(id)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func (m *Store) removeLocked(sessionID string) {
	e, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	delete(m.sessions, sessionID)
	if m.byAssistant[e.session.AssistantID] == sessionID {
		delete(m.byAssistant, e.session.AssistantID)
	}
	for callID, sid := range m.byCall {
		if sid == sessionID {
			delete(m.byCall, callID)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	c.Criteria = append([]string(nil), s.Criteria...)
	return &c
}
