package states

import "sync"

// Manager keeps sessions in memory, keyed by actor id. Sessions have no
// expiry; they are replaced whenever the actor returns to the main menu and
// are lost on restart.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
	}
}

// Begin replaces the actor's session with an empty one.
func (m *Manager) Begin(actorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[actorID] = newSession()
}

// Get returns a copy of the actor's session. A missing session reads as
// StepNone with no fields.
func (m *Manager) Get(actorID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[actorID]
	if !ok {
		return *newSession()
	}
	return *s
}

func (m *Manager) SetStep(actorID int64, step Step) {
	m.Update(actorID, func(s *Session) {
		s.Step = step
	})
}

// Update applies fn to the actor's session, creating it if needed.
func (m *Manager) Update(actorID int64, fn func(s *Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[actorID]
	if !ok {
		s = newSession()
		m.sessions[actorID] = s
	}
	fn(s)
}

func (m *Manager) Clear(actorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, actorID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
