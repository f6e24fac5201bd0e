package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/models"
)

var (
	ErrInvalidHistory = errors.New("invalid interview history")
	ErrPersistFailed  = errors.New("failed to persist interview")
)

// InterviewRecorder stores the final record of a completed interview.
type InterviewRecorder interface {
	Create(interview *models.Interview) error
}

// ArchiveQueue receives completed interviews for background indexing.
type ArchiveQueue interface {
	EnqueueJob(interviewID uuid.UUID)
}

type InterviewService interface {
	SubmitDocuments(ctx context.Context, sessionID uuid.UUID, resume, jobDescription string) (*models.Session, error)
	StartInterview(ctx context.Context, sessionID uuid.UUID) (*TurnResult, error)
	ContinueInterview(ctx context.Context, sessionID uuid.UUID, question string, history models.Transcript) (*TurnResult, error)
	EndInterview(ctx context.Context, sessionID uuid.UUID, history models.Transcript) (*FeedbackResult, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

type TurnResult struct {
	SessionID uuid.UUID
	Text      string
}

type FeedbackResult struct {
	SessionID   uuid.UUID
	InterviewID uuid.UUID
	Feedback    string
}

type interviewService struct {
	sessions      SessionStore
	promptBuilder *PromptBuilder
	gateway       ModelGateway
	recorder      InterviewRecorder
	archive       ArchiveQueue
}

// NewInterviewService wires the interview state machine. archive may be nil.
func NewInterviewService(
	sessions SessionStore,
	promptBuilder *PromptBuilder,
	gateway ModelGateway,
	recorder InterviewRecorder,
	archive ArchiveQueue,
) InterviewService {
	if promptBuilder == nil {
		promptBuilder = NewPromptBuilder()
	}
	return &interviewService{
		sessions:      sessions,
		promptBuilder: promptBuilder,
		gateway:       gateway,
		recorder:      recorder,
		archive:       archive,
	}
}

// SubmitDocuments implements InterviewService.
func (s *interviewService) SubmitDocuments(ctx context.Context, sessionID uuid.UUID, resume, jobDescription string) (*models.Session, error) {
	session := s.sessions.SetDocuments(sessionID, resume, jobDescription)
	log.Printf("📄 Documents loaded for session %s (resume %d chars, job description %d chars)",
		session.ID, len(resume), len(jobDescription))
	return session, nil
}

// StartInterview implements InterviewService.
func (s *interviewService) StartInterview(ctx context.Context, sessionID uuid.UUID) (*TurnResult, error) {
	var result *TurnResult

	err := s.sessions.Update(sessionID, func(sess *models.Session) error {
		messages := s.promptBuilder.BuildOpeningPrompt(sess.Resume, sess.JobDescription)

		question, err := s.gateway.Complete(ctx, messages)
		if err != nil {
			return fmt.Errorf("failed to generate opening question: %w", err)
		}

		sess.Transcript = sess.Transcript.Append(models.AssistantTurn(question))
		sess.Phase = models.PhaseInProgress
		result = &TurnResult{SessionID: sess.ID, Text: question}
		return nil
	})
	if err != nil {
		log.Printf("❌ Failed to start interview: %v", err)
		return nil, err
	}

	log.Printf("🎤 Interview started for session %s", result.SessionID)
	return result, nil
}

// ContinueInterview implements InterviewService. The caller's history
// replaces the stored transcript before the question is appended.
func (s *interviewService) ContinueInterview(ctx context.Context, sessionID uuid.UUID, question string, history models.Transcript) (*TurnResult, error) {
	if err := history.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}

	var result *TurnResult

	err := s.sessions.Update(sessionID, func(sess *models.Session) error {
		transcript := history.Append(models.UserTurn(question))
		messages := s.promptBuilder.BuildContinuationPrompt(transcript)

		reply, err := s.gateway.Complete(ctx, messages)
		if err != nil {
			return fmt.Errorf("failed to generate reply: %w", err)
		}

		sess.Transcript = transcript.Append(models.AssistantTurn(reply))
		sess.Phase = models.PhaseInProgress
		result = &TurnResult{SessionID: sess.ID, Text: reply}
		return nil
	})
	if err != nil {
		log.Printf("❌ Failed to continue interview: %v", err)
		return nil, err
	}

	log.Printf("💬 Interview turn completed for session %s (%d turns in history)", result.SessionID, len(history))
	return result, nil
}

// EndInterview implements InterviewService. When the record cannot be saved
// the generated feedback is still returned alongside ErrPersistFailed.
func (s *interviewService) EndInterview(ctx context.Context, sessionID uuid.UUID, history models.Transcript) (*FeedbackResult, error) {
	if err := history.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}

	var (
		result     *FeedbackResult
		persistErr error
	)

	err := s.sessions.Update(sessionID, func(sess *models.Session) error {
		transcript := history.Clone()
		messages := s.promptBuilder.BuildFeedbackPrompt(sess.Resume, sess.JobDescription, transcript)

		feedback, err := s.gateway.Complete(ctx, messages)
		if err != nil {
			return fmt.Errorf("failed to generate feedback: %w", err)
		}

		sess.Transcript = transcript
		sess.Phase = models.PhaseCompleted
		result = &FeedbackResult{SessionID: sess.ID, Feedback: feedback}

		record := &models.Interview{
			ID:             uuid.New(),
			SessionID:      sess.ID,
			Transcript:     transcript.JSON(),
			Resume:         sess.Resume,
			JobDescription: sess.JobDescription,
			Feedback:       feedback,
			IndexStatus:    models.IndexPending,
		}
		if err := s.recorder.Create(record); err != nil {
			persistErr = fmt.Errorf("%w: %v", ErrPersistFailed, err)
			return nil
		}

		result.InterviewID = record.ID
		return nil
	})
	if err != nil {
		log.Printf("❌ Failed to end interview: %v", err)
		return nil, err
	}

	if persistErr != nil {
		log.Printf("❌ Feedback generated but not saved for session %s: %v", result.SessionID, persistErr)
		return result, persistErr
	}

	log.Printf("✅ Interview %s saved for session %s", result.InterviewID, result.SessionID)

	if s.archive != nil {
		s.archive.EnqueueJob(result.InterviewID)
	}

	return result, nil
}

// GetSession implements InterviewService.
func (s *interviewService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	return s.sessions.Get(sessionID)
}
