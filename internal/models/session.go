package models

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseDocumentsLoaded Phase = "documents_loaded"
	PhaseInProgress      Phase = "in_progress"
	PhaseCompleted       Phase = "completed"
)

// Session holds the documents and transcript of one interview.
type Session struct {
	ID             uuid.UUID  `json:"session_id"`
	Resume         string     `json:"resume"`
	JobDescription string     `json:"job_description"`
	Transcript     Transcript `json:"transcript"`
	Phase          Phase      `json:"phase"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Transcript = s.Transcript.Clone()
	return &c
}
