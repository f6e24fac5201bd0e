package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/services"
)

type scriptedGateway struct {
	reply string
	err   error
}

func (g *scriptedGateway) Complete(context.Context, []models.Turn) (string, error) {
	return g.reply, g.err
}

type memoryRecorder struct {
	records []*models.Interview
	err     error
}

func (r *memoryRecorder) Create(interview *models.Interview) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, interview)
	return nil
}

func newTestApp(gateway services.ModelGateway, recorder services.InterviewRecorder) *fiber.App {
	svc := services.NewInterviewService(services.NewSessionStore(), nil, gateway, recorder, nil)

	app := fiber.New()
	RegisterRoutes(app.Group("/api/v1"),
		NewUploadHandler(svc, services.NewDocumentParser(nil), 1<<20),
		NewInterviewHandler(svc),
		nil,
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("invalid JSON response %q: %v", raw, err)
		}
	}
	return resp, out
}

func uploadRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, content := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+field+`.txt"`)
		h.Set("Content-Type", "text/plain")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFullInterviewOverHTTP(t *testing.T) {
	recorder := &memoryRecorder{}
	app := newTestApp(services.NewMockGateway(), recorder)

	resp, err := app.Test(uploadRequest(t, map[string]string{
		"resume":          "5 years backend Go experience",
		"job_description": "Senior backend engineer, distributed systems",
	}), -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var uploaded models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatal(err)
	}
	if !uploaded.Success || uploaded.SessionID == "" {
		t.Fatalf("upload response = %+v", uploaded)
	}
	header := map[string]string{SessionHeader: uploaded.SessionID}

	resp, start := doJSON(t, app, http.MethodPost, "/api/v1/start_interview", nil, header)
	if resp.StatusCode != fiber.StatusOK || start["question"] == "" {
		t.Fatalf("start = %d %v", resp.StatusCode, start)
	}
	question := start["question"].(string)

	history := []models.Turn{models.AssistantTurn(question)}
	resp, chat := doJSON(t, app, http.MethodPost, "/api/v1/interview", models.ChatRequest{
		Question: "I scaled to 1M users",
		History:  history,
	}, header)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("interview = %d %v", resp.StatusCode, chat)
	}
	if !strings.Contains(chat["reply"].(string), "I scaled to 1M users") {
		t.Errorf("reply = %v", chat["reply"])
	}

	history = append(history, models.UserTurn("I scaled to 1M users"), models.AssistantTurn(chat["reply"].(string)))
	resp, feedback := doJSON(t, app, http.MethodPost, "/api/v1/end_interview", models.FeedbackRequest{History: history}, header)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("end = %d %v", resp.StatusCode, feedback)
	}
	if feedback["feedback"] == "" || feedback["interview_id"] == "" {
		t.Errorf("feedback response = %v", feedback)
	}
	if len(recorder.records) != 1 || recorder.records[0].Resume != "5 years backend Go experience" {
		t.Errorf("records = %+v", recorder.records)
	}

	resp, session := doJSON(t, app, http.MethodGet, "/api/v1/sessions/"+uploaded.SessionID, nil, nil)
	if resp.StatusCode != fiber.StatusOK || session["phase"] != string(models.PhaseCompleted) {
		t.Errorf("session = %d %v", resp.StatusCode, session)
	}
}

func TestUploadRequiresBothDocuments(t *testing.T) {
	app := newTestApp(services.NewMockGateway(), &memoryRecorder{})

	resp, err := app.Test(uploadRequest(t, map[string]string{"resume": "r"}), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStartWithoutUploadUsesEmptyDocuments(t *testing.T) {
	app := newTestApp(services.NewMockGateway(), &memoryRecorder{})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/start_interview", nil, nil)
	if resp.StatusCode != fiber.StatusOK || body["question"] == "" {
		t.Errorf("start = %d %v", resp.StatusCode, body)
	}
}

func TestTransportFailureIsBadGateway(t *testing.T) {
	gateway := &scriptedGateway{err: &services.GatewayError{
		Kind: services.TransportFailure,
		Err:  errors.New("connection refused"),
	}}
	app := newTestApp(gateway, &memoryRecorder{})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/interview", models.ChatRequest{Question: "hi"}, nil)
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("status = %d, want 502 (%v)", resp.StatusCode, body)
	}
	if body["error"] == nil {
		t.Error("missing error message")
	}
}

func TestMalformedResponseReturnsSentinel(t *testing.T) {
	app := newTestApp(&scriptedGateway{reply: services.SentinelReply}, &memoryRecorder{})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/interview", models.ChatRequest{Question: "hi"}, nil)
	if resp.StatusCode != fiber.StatusOK || body["reply"] != services.SentinelReply {
		t.Errorf("response = %d %v", resp.StatusCode, body)
	}
}

func TestInvalidHistoryIsBadRequest(t *testing.T) {
	app := newTestApp(services.NewMockGateway(), &memoryRecorder{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/end_interview", models.FeedbackRequest{
		History: []models.Turn{{Role: "robot", Content: "beep"}},
	}, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEndInterviewPersistFailureStillReturnsFeedback(t *testing.T) {
	app := newTestApp(&scriptedGateway{reply: "Solid technical depth."}, &memoryRecorder{err: errors.New("db down")})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/end_interview", models.FeedbackRequest{}, nil)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["feedback"] != "Solid technical depth." || body["error"] == nil {
		t.Errorf("body = %v", body)
	}
}

func TestUnknownSession(t *testing.T) {
	app := newTestApp(services.NewMockGateway(), &memoryRecorder{})
	header := map[string]string{SessionHeader: "6f1c2b7e-4a0e-4d1b-9a51-2f8c4f9d3e10"}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/start_interview", nil, header)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/start_interview", nil, map[string]string{SessionHeader: "not-a-uuid"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
