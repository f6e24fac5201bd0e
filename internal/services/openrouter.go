package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"alfredoptarigan/mock-interviewer/internal/models"
)

type openRouterGateway struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenRouterGateway talks to an OpenAI-compatible chat completions endpoint
// authenticated with a bearer key.
func NewOpenRouterGateway(baseURL, apiKey, model string, timeout time.Duration) ModelGateway {
	return &openRouterGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []models.Turn `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements ModelGateway.
func (g *openRouterGateway) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{Model: g.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ OpenRouter request failed: %v", err)
		return "", transportError(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	log.Printf("📊 OpenRouter status code: %d", resp.StatusCode)
	log.Printf("📄 OpenRouter raw response: %s", respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", transportError(resp.StatusCode, fmt.Errorf("unexpected response: %s", respBody))
	}

	text, err := parseChatCompletion(respBody)
	if err != nil {
		log.Printf("⚠️ %v", &GatewayError{Kind: MalformedResponse, StatusCode: resp.StatusCode, Err: err})
		return SentinelReply, nil
	}

	return text, nil
}

func parseChatCompletion(body []byte) (string, error) {
	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	if result.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("no message content in first choice")
	}
	return *result.Choices[0].Message.Content, nil
}
