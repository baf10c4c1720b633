package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maumlab/counselbot/backend/internal/model/chat"
	"github.com/maumlab/counselbot/backend/internal/model/persona"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("a turn is already in flight for this session")
)

// Service owns per-session conversation state: the ordered turn log, the
// sticky risk flag and the in-flight turn guard. Turns are append-only;
// nothing is edited or deleted for the lifetime of a session.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	session     chat.Session
	turns       []chat.Turn
	riskFlagged bool
	inFlight    bool
}

// NewService bootstraps the in-memory conversation service.
func NewService() *Service {
	return &Service{sessions: make(map[string]*sessionState)}
}

// CreateSession provisions an anonymous session bound to a persona and seeds
// the greeting turn, so the greeting appears exactly once and always before
// any user turn.
func (s *Service) CreateSession(_ context.Context, p persona.Persona) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: p.ID,
		CreatedAt: time.Now().UTC(),
	}

	greeting := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleAssistant,
		Content:   p.Greeting,
		CreatedAt: session.CreatedAt,
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session: session,
		turns:   append(make([]chat.Turn, 0, 16), greeting),
	}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return state.session, nil
}

// Transcript returns a copy of the stored turns. A positive limit returns
// only the most recent turns; limit <= 0 returns everything.
func (s *Service) Transcript(_ context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	turns := state.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// CommitExchange appends a user turn and the assistant reply as one unit.
// Callers invoke it only after the reply fully streamed, so a failed model
// call never leaves a dangling user turn in the transcript.
func (s *Service) CommitExchange(_ context.Context, sessionID, userText, assistantText string) (chat.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Turn{}, ErrSessionNotFound
	}

	now := time.Now().UTC()
	userTurn := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   userText,
		CreatedAt: now,
	}
	assistantTurn := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   assistantText,
		CreatedAt: now,
	}

	state.turns = append(state.turns, userTurn, assistantTurn)
	return assistantTurn, nil
}

// MarkRisk records a positive risk detection. The flag is sticky: it never
// returns to false within a session.
func (s *Service) MarkRisk(_ context.Context, sessionID string, detected bool) error {
	if !detected {
		s.mu.RLock()
		_, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if !ok {
			return ErrSessionNotFound
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	state.riskFlagged = true
	return nil
}

// RiskFlagged reports whether any user message in the session tripped the
// risk scanner.
func (s *Service) RiskFlagged(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return false, ErrSessionNotFound
	}
	return state.riskFlagged, nil
}

// BeginTurn claims the session for one request/response cycle. Overlapping
// submits are a usage error and are rejected with ErrTurnInFlight.
func (s *Service) BeginTurn(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if state.inFlight {
		return ErrTurnInFlight
	}
	state.inFlight = true
	return nil
}

// EndTurn releases the claim taken by BeginTurn.
func (s *Service) EndTurn(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[sessionID]; ok {
		state.inFlight = false
	}
}
