package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"alfredoptarigan/mock-interviewer/internal/models"
)

// Embedder turns text into a vector for the interview archive.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	ModelGateway
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

// maxEmbeddingBytes keeps embedding input under the model's token limit.
const maxEmbeddingBytes = 40000

func NewGeminiService(ctx context.Context, apiKey, modelName string) (GeminiService, error) {
	return newGeminiService(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, modelName)
}

func newGeminiService(ctx context.Context, cfg *genai.ClientConfig, modelName string) (GeminiService, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbeddingBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Complete implements ModelGateway. System turns become the system
// instruction; assistant turns are sent with the model role.
func (g *geminiService) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	contents, system := toGeminiContents(messages)

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: 4096,
	}
	if system != "" {
		if len(contents) == 0 {
			// Gemini rejects requests without contents; a system-only prompt is sent as the user turn.
			contents = genai.Text(system)
		} else {
			config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		if tErr := geminiTransportError(ctx, err); tErr != nil {
			log.Printf("❌ Gemini API error: %v", err)
			return "", tErr
		}
		// The call completed with a 2xx status but the body could not be decoded.
		log.Printf("⚠️ %v", &GatewayError{Kind: MalformedResponse, Err: err})
		return SentinelReply, nil
	}

	if resp == nil {
		log.Printf("⚠️ %v", &GatewayError{Kind: MalformedResponse, Err: fmt.Errorf("nil response")})
		return SentinelReply, nil
	}

	log.Printf("📊 Gemini response received: %d candidates", len(resp.Candidates))

	text := resp.Text()
	if text == "" {
		log.Printf("⚠️ %v", &GatewayError{Kind: MalformedResponse, Err: fmt.Errorf("no text content in response")})
		return SentinelReply, nil
	}

	return text, nil
}

func toGeminiContents(messages []models.Turn) ([]*genai.Content, string) {
	var contents []*genai.Content
	var system []string

	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	return contents, strings.Join(system, "\n\n")
}

// geminiTransportError returns a transport failure for non-2xx statuses,
// network errors and cancellation, and nil for any other error.
func geminiTransportError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return transportError(apiErr.Code, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case ctx.Err() != nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &urlErr),
		errors.As(err, &netErr):
		return transportError(0, err)
	}
	return nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
