package models

type UploadResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

type StartInterviewRequest struct {
	SessionID string `json:"session_id"`
}

type StartInterviewResponse struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	History   []Turn `json:"history"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	History   []Turn `json:"history"`
}

type FeedbackResponse struct {
	Feedback    string  `json:"feedback"`
	InterviewID string  `json:"interview_id,omitempty"`
	SessionID   string  `json:"session_id"`
	Error       *string `json:"error,omitempty"`
}

type SessionResponse struct {
	SessionID      string     `json:"session_id"`
	Phase          string     `json:"phase"`
	Resume         string     `json:"resume"`
	JobDescription string     `json:"job_description"`
	Transcript     Transcript `json:"transcript"`
}
