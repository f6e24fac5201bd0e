package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/mock-interviewer/internal/models"
)

type mockGateway struct{}

// NewMockGateway returns canned replies so the service can run without a
// model provider.
func NewMockGateway() ModelGateway {
	return &mockGateway{}
}

func (m *mockGateway) Complete(_ context.Context, messages []models.Turn) (string, error) {
	if len(messages) == 0 {
		return SentinelReply, nil
	}

	last := messages[len(messages)-1]
	switch {
	case len(messages) == 1 && strings.Contains(strings.ToLower(last.Content), "feedback"):
		return "Clear answers with concrete examples. Quantify impact more often and state trade-offs explicitly.", nil
	case len(messages) == 1 && last.Role == models.RoleSystem:
		return "Tell me about a project from your resume that best matches this role.", nil
	case last.Role == models.RoleUser:
		return fmt.Sprintf("Thanks. You said %q. What was the hardest trade-off you made there?", last.Content), nil
	default:
		return "Can you walk me through how you would approach that differently today?", nil
	}
}
