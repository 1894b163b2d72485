package game

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/messages"
)

// Registry owns the set of live sessions.
type Registry struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates an empty in-memory session registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger,
	}
}

// Add registers a session.
func (r *Registry) Add(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session

	r.logger.Info("session registered", zap.String("session_id", session.ID.String()))
}

// Get returns a session by id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	return session, ok
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		r.logger.Info("session removed", zap.String("session_id", id.String()))
	}
}

// List returns every registered session.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}

	return sessions
}

// ListPlaying returns the sessions still in the playing state.
func (r *Registry) ListPlaying() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var playing []*Session
	for _, session := range r.sessions {
		if session.Status() == StatusPlaying {
			playing = append(playing, session)
		}
	}

	return playing
}

// Summaries returns the lobby listing of all registered sessions.
func (r *Registry) Summaries() []messages.SessionSummary {
	sessions := r.List()

	summaries := make([]messages.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}

	return summaries
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
