package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/models"
)

type fakeGateway struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]models.Turn
}

func (f *fakeGateway) Complete(_ context.Context, messages []models.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]models.Turn(nil), messages...))
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "next question", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeGateway) lastCall(t *testing.T) []models.Turn {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("gateway was not called")
	}
	return f.calls[len(f.calls)-1]
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.Interview
	err     error
}

func (f *fakeRecorder) Create(interview *models.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, interview)
	return nil
}

type fakeQueue struct {
	ids []uuid.UUID
}

func (f *fakeQueue) EnqueueJob(id uuid.UUID) {
	f.ids = append(f.ids, id)
}

type interviewFixture struct {
	svc      InterviewService
	store    SessionStore
	gateway  *fakeGateway
	recorder *fakeRecorder
	queue    *fakeQueue
}

func newInterviewFixture() *interviewFixture {
	f := &interviewFixture{
		store:    NewSessionStore(),
		gateway:  &fakeGateway{},
		recorder: &fakeRecorder{},
		queue:    &fakeQueue{},
	}
	f.svc = NewInterviewService(f.store, NewPromptBuilder(), f.gateway, f.recorder, f.queue)
	return f
}

func TestSubmitDocumentsResetsTranscript(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()

	sess, _ := f.svc.SubmitDocuments(ctx, uuid.Nil, "r", "j")
	if _, err := f.svc.StartInterview(ctx, sess.ID); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}

	again, err := f.svc.SubmitDocuments(ctx, sess.ID, "r2", "j2")
	if err != nil {
		t.Fatalf("SubmitDocuments: %v", err)
	}
	if len(again.Transcript) != 0 {
		t.Fatalf("transcript not empty after submission: %+v", again.Transcript)
	}
	if len(f.gateway.calls) != 1 {
		t.Fatalf("document submission must not call the model, calls = %d", len(f.gateway.calls))
	}
}

func TestStartInterviewScenario(t *testing.T) {
	f := newInterviewFixture()
	f.gateway.replies = []string{"Tell me about a distributed-systems outage you handled."}
	ctx := context.Background()

	resume := "5 years backend Go experience"
	job := "Senior backend engineer, distributed systems"
	sess, _ := f.svc.SubmitDocuments(ctx, uuid.Nil, resume, job)

	result, err := f.svc.StartInterview(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	if result.Text != "Tell me about a distributed-systems outage you handled." {
		t.Errorf("question = %q", result.Text)
	}
	if result.SessionID != sess.ID {
		t.Errorf("session id = %s, want %s", result.SessionID, sess.ID)
	}

	prompt := f.gateway.lastCall(t)
	if len(prompt) != 1 || prompt[0].Role != models.RoleSystem {
		t.Fatalf("opening prompt = %+v", prompt)
	}
	if !strings.Contains(prompt[0].Content, resume) || !strings.Contains(prompt[0].Content, job) {
		t.Errorf("opening prompt does not embed documents:\n%s", prompt[0].Content)
	}

	stored, _ := f.svc.GetSession(ctx, sess.ID)
	want := models.Transcript{models.AssistantTurn(result.Text)}
	if len(stored.Transcript) != 1 || stored.Transcript[0] != want[0] {
		t.Errorf("transcript = %+v, want %+v", stored.Transcript, want)
	}
	if stored.Phase != models.PhaseInProgress {
		t.Errorf("phase = %s", stored.Phase)
	}
}

func TestStartInterviewWithoutDocuments(t *testing.T) {
	f := newInterviewFixture()

	if _, err := f.svc.StartInterview(context.Background(), uuid.Nil); err != nil {
		t.Fatalf("StartInterview with empty documents: %v", err)
	}
	if !strings.Contains(f.gateway.lastCall(t)[0].Content, "Resume:") {
		t.Error("expected opening prompt even with empty documents")
	}
}

func TestContinueInterviewReplacesTranscript(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()
	sess, _ := f.svc.SubmitDocuments(ctx, uuid.Nil, "r", "j")

	if _, err := f.svc.StartInterview(ctx, sess.ID); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}

	history := models.Transcript{models.AssistantTurn("edited question")}
	f.gateway.replies = []string{"follow-up"}

	result, err := f.svc.ContinueInterview(ctx, sess.ID, "my answer", history)
	if err != nil {
		t.Fatalf("ContinueInterview: %v", err)
	}
	if result.Text != "follow-up" {
		t.Errorf("reply = %q", result.Text)
	}

	prompt := f.gateway.lastCall(t)
	wantPrompt := []models.Turn{
		models.SystemTurn("Continue the interview. Ask one follow-up question or new question."),
		models.AssistantTurn("edited question"),
		models.UserTurn("my answer"),
	}
	if len(prompt) != len(wantPrompt) {
		t.Fatalf("prompt = %+v, want %+v", prompt, wantPrompt)
	}
	for i := range wantPrompt {
		if prompt[i] != wantPrompt[i] {
			t.Errorf("prompt[%d] = %+v, want %+v", i, prompt[i], wantPrompt[i])
		}
	}

	stored, _ := f.svc.GetSession(ctx, sess.ID)
	wantTranscript := models.Transcript{
		models.AssistantTurn("edited question"),
		models.UserTurn("my answer"),
		models.AssistantTurn("follow-up"),
	}
	if stored.Transcript.JSON() != wantTranscript.JSON() {
		t.Errorf("transcript = %s, want %s", stored.Transcript.JSON(), wantTranscript.JSON())
	}
	if len(history) != 1 {
		t.Errorf("caller history mutated: %+v", history)
	}
}

func TestContinueInterviewMalformedResponseReturnsSentinel(t *testing.T) {
	f := newInterviewFixture()
	f.gateway.replies = []string{SentinelReply}

	result, err := f.svc.ContinueInterview(context.Background(), uuid.Nil, "q", nil)
	if err != nil {
		t.Fatalf("expected success with sentinel, got %v", err)
	}
	if result.Text != SentinelReply {
		t.Errorf("reply = %q", result.Text)
	}
}

func TestTransportFailureLeavesSessionUntouched(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()
	sess, _ := f.svc.SubmitDocuments(ctx, uuid.Nil, "r", "j")
	f.gateway.replies = []string{"q1"}
	if _, err := f.svc.StartInterview(ctx, sess.ID); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	before, _ := f.svc.GetSession(ctx, sess.ID)

	f.gateway.err = transportError(503, errors.New("unavailable"))

	if _, err := f.svc.ContinueInterview(ctx, sess.ID, "answer", models.Transcript{models.AssistantTurn("q1")}); !errors.Is(err, ErrTransportFailure) {
		t.Fatalf("ContinueInterview error = %v, want ErrTransportFailure", err)
	}
	if _, err := f.svc.EndInterview(ctx, sess.ID, models.Transcript{models.UserTurn("x")}); !errors.Is(err, ErrTransportFailure) {
		t.Fatalf("EndInterview error = %v, want ErrTransportFailure", err)
	}
	if _, err := f.svc.StartInterview(ctx, sess.ID); !errors.Is(err, ErrTransportFailure) {
		t.Fatalf("StartInterview error = %v, want ErrTransportFailure", err)
	}

	after, _ := f.svc.GetSession(ctx, sess.ID)
	if after.Transcript.JSON() != before.Transcript.JSON() || after.Phase != before.Phase {
		t.Errorf("session changed after transport failure: before %+v after %+v", before, after)
	}
	if len(f.recorder.records) != 0 {
		t.Errorf("records written after transport failure: %d", len(f.recorder.records))
	}
	if len(f.queue.ids) != 0 {
		t.Errorf("archive jobs enqueued after transport failure: %v", f.queue.ids)
	}
}

func TestEndInterviewScenario(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()
	sess, _ := f.svc.SubmitDocuments(ctx, uuid.Nil, "resume text", "job text")

	history := models.Transcript{
		models.UserTurn("I scaled to 1M users"),
		models.AssistantTurn("Good, tell me more"),
	}
	f.gateway.replies = []string{"Solid technical depth."}

	result, err := f.svc.EndInterview(ctx, sess.ID, history)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if result.Feedback != "Solid technical depth." {
		t.Errorf("feedback = %q", result.Feedback)
	}

	if len(f.recorder.records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(f.recorder.records))
	}
	record := f.recorder.records[0]
	if record.Feedback != "Solid technical depth." {
		t.Errorf("record feedback = %q", record.Feedback)
	}
	if record.Transcript != history.JSON() {
		t.Errorf("record transcript = %s, want %s", record.Transcript, history.JSON())
	}
	if record.Resume != "resume text" || record.JobDescription != "job text" {
		t.Errorf("record documents = %q / %q", record.Resume, record.JobDescription)
	}
	if record.ID != result.InterviewID || record.SessionID != sess.ID {
		t.Errorf("record ids = %s / %s", record.ID, record.SessionID)
	}

	prompt := f.gateway.lastCall(t)
	if len(prompt) != 1 || !strings.Contains(prompt[0].Content, history.String()) {
		t.Errorf("feedback prompt does not embed the transcript:\n%+v", prompt)
	}

	stored, _ := f.svc.GetSession(ctx, sess.ID)
	if stored.Phase != models.PhaseCompleted || stored.Transcript.JSON() != history.JSON() {
		t.Errorf("session after end = %+v", stored)
	}
	if stored.Resume != "resume text" {
		t.Error("session must not be reset by EndInterview")
	}

	if len(f.queue.ids) != 1 || f.queue.ids[0] != result.InterviewID {
		t.Errorf("archive queue = %v", f.queue.ids)
	}
}

func TestStartThenEndWithEmptyHistoryKeepsLatestDocuments(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()
	f.svc.SubmitDocuments(ctx, uuid.Nil, "first resume", "first job")
	f.svc.SubmitDocuments(ctx, uuid.Nil, "latest resume", "latest job")

	if _, err := f.svc.StartInterview(ctx, uuid.Nil); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	if _, err := f.svc.EndInterview(ctx, uuid.Nil, models.Transcript{}); err != nil {
		t.Fatalf("EndInterview: %v", err)
	}

	record := f.recorder.records[0]
	if record.Resume != "latest resume" || record.JobDescription != "latest job" {
		t.Errorf("record documents = %q / %q", record.Resume, record.JobDescription)
	}
	if record.Transcript != "[]" {
		t.Errorf("record transcript = %s, want []", record.Transcript)
	}
}

func TestEndInterviewMalformedResponseIsStillPersisted(t *testing.T) {
	f := newInterviewFixture()
	f.gateway.replies = []string{SentinelReply}

	result, err := f.svc.EndInterview(context.Background(), uuid.Nil, nil)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if result.Feedback != SentinelReply || f.recorder.records[0].Feedback != SentinelReply {
		t.Errorf("sentinel not propagated: %q", result.Feedback)
	}
}

func TestEndInterviewPersistenceFailureReturnsFeedback(t *testing.T) {
	f := newInterviewFixture()
	f.recorder.err = errors.New("connection reset")
	f.gateway.replies = []string{"Good answers."}

	result, err := f.svc.EndInterview(context.Background(), uuid.Nil, models.Transcript{models.UserTurn("a")})
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	if result == nil || result.Feedback != "Good answers." {
		t.Fatalf("feedback lost: %+v", result)
	}
	if result.InterviewID != uuid.Nil {
		t.Errorf("interview id set although nothing was saved: %s", result.InterviewID)
	}
	if len(f.queue.ids) != 0 {
		t.Errorf("unsaved interview enqueued: %v", f.queue.ids)
	}
}

func TestInvalidHistoryIsRejectedBeforeModelCall(t *testing.T) {
	f := newInterviewFixture()
	bad := models.Transcript{{Role: "robot", Content: "beep"}}

	if _, err := f.svc.ContinueInterview(context.Background(), uuid.Nil, "q", bad); !errors.Is(err, ErrInvalidHistory) {
		t.Fatalf("ContinueInterview error = %v", err)
	}
	if _, err := f.svc.EndInterview(context.Background(), uuid.Nil, bad); !errors.Is(err, ErrInvalidHistory) {
		t.Fatalf("EndInterview error = %v", err)
	}
	if len(f.gateway.calls) != 0 {
		t.Errorf("gateway called %d times", len(f.gateway.calls))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newInterviewFixture()
	ctx := context.Background()
	a, _ := f.svc.SubmitDocuments(ctx, uuid.New(), "resume A", "job A")
	b, _ := f.svc.SubmitDocuments(ctx, uuid.New(), "resume B", "job B")

	f.gateway.replies = []string{"question for A"}
	if _, err := f.svc.StartInterview(ctx, a.ID); err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	if !strings.Contains(f.gateway.lastCall(t)[0].Content, "resume A") {
		t.Error("session A prompt built from the wrong documents")
	}

	gotB, _ := f.svc.GetSession(ctx, b.ID)
	if len(gotB.Transcript) != 0 {
		t.Errorf("session B transcript changed: %+v", gotB.Transcript)
	}
}
