package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps interview sessions in memory. Each session has its own
// lock; uuid.Nil always resolves to the most recently submitted session.
// A new session is only created for an id the store has not seen.
type SessionStore interface {
	SetDocuments(id uuid.UUID, resume, jobDescription string) *models.Session
	Get(id uuid.UUID) (*models.Session, error)
	Update(id uuid.UUID, fn func(s *models.Session) error) error
}

type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
	latest   uuid.UUID
	now      func() time.Time
}

func NewSessionStore() SessionStore {
	s := &sessionStore{
		sessions: make(map[uuid.UUID]*sessionEntry),
		now:      time.Now,
	}

	// An empty session exists before any upload, as the interview can be
	// started without documents.
	initial := &models.Session{
		ID:         uuid.New(),
		Transcript: models.Transcript{},
		Phase:      models.PhaseIdle,
		UpdatedAt:  s.now(),
	}
	s.sessions[initial.ID] = &sessionEntry{session: initial}
	s.latest = initial.ID

	return s
}

// SetDocuments implements SessionStore. The transcript is cleared
// unconditionally, discarding any interview in progress. Without an id the
// latest session is overwritten in place, so id-less clients only ever hold
// one session.
func (s *sessionStore) SetDocuments(id uuid.UUID, resume, jobDescription string) *models.Session {
	s.mu.Lock()
	if id == uuid.Nil {
		id = s.latest
	}
	s.latest = id

	fresh := &models.Session{
		ID:             id,
		Resume:         resume,
		JobDescription: jobDescription,
		Transcript:     models.Transcript{},
		Phase:          models.PhaseDocumentsLoaded,
		UpdatedAt:      s.now(),
	}

	entry, ok := s.sessions[id]
	if !ok {
		s.sessions[id] = &sessionEntry{session: fresh}
		s.mu.Unlock()
		return fresh.Clone()
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session = fresh

	return entry.session.Clone()
}

// Get implements SessionStore.
func (s *sessionStore) Get(id uuid.UUID) (*models.Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.session.Clone(), nil
}

// Update implements SessionStore. fn receives a working copy; it replaces the
// stored session only when fn returns nil.
func (s *sessionStore) Update(id uuid.UUID, fn func(sess *models.Session) error) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.session.Clone()
	if err := fn(working); err != nil {
		return err
	}

	working.ID = entry.session.ID
	working.UpdatedAt = s.now()
	entry.session = working

	return nil
}

func (s *sessionStore) entry(id uuid.UUID) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == uuid.Nil {
		id = s.latest
	}

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return entry, nil
}
