package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/repositories"
)

// ArchiveService indexes completed interviews for semantic search. It never
// runs on the request path of an interview.
type ArchiveService interface {
	IndexInterview(ctx context.Context, interviewID uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type archiveService struct {
	repo      repositories.InterviewRepository
	embedder  Embedder
	index     InterviewIndex
	chunker   TextChunker
	chunkSize int
	overlap   int
}

func NewArchiveService(
	repo repositories.InterviewRepository,
	embedder Embedder,
	index InterviewIndex,
) ArchiveService {
	return &archiveService{
		repo:      repo,
		embedder:  embedder,
		index:     index,
		chunker:   NewTextChunker(),
		chunkSize: 1000,
		overlap:   200,
	}
}

// IndexInterview implements ArchiveService.
func (a *archiveService) IndexInterview(ctx context.Context, interviewID uuid.UUID) error {
	if err := a.repo.UpdateIndexStatus(interviewID, models.IndexProcessing); err != nil {
		return fmt.Errorf("failed to update index status: %w", err)
	}

	log.Printf("🔄 Indexing interview %s", interviewID)

	interview, err := a.repo.FindByID(interviewID)
	if err != nil {
		a.markFailed(interviewID, err)
		return fmt.Errorf("failed to get interview: %w", err)
	}

	// Drop chunks from an earlier run; the new text may split differently.
	if err := a.index.DeleteInterview(ctx, interviewID); err != nil {
		a.markFailed(interviewID, err)
		return fmt.Errorf("failed to clear previous chunks: %w", err)
	}

	chunks := a.chunker.ChunkText(archiveText(interview), a.chunkSize, a.overlap)
	if len(chunks) == 0 {
		log.Printf("⚠️ Interview %s has no text to index", interviewID)
	}

	for i, chunk := range chunks {
		embedding, err := a.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			a.markFailed(interviewID, err)
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		if err := a.index.UpsertChunk(ctx, interviewID, i, chunk, embedding); err != nil {
			a.markFailed(interviewID, err)
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}

	if err := a.repo.UpdateIndexStatus(interviewID, models.IndexIndexed); err != nil {
		return fmt.Errorf("failed to update index status: %w", err)
	}

	log.Printf("✅ Interview %s indexed (%d chunks)", interviewID, len(chunks))
	return nil
}

// Search implements ArchiveService.
func (a *archiveService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	embedding, err := a.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	return a.index.Search(ctx, embedding, limit)
}

func (a *archiveService) markFailed(interviewID uuid.UUID, cause error) {
	if err := a.repo.MarkIndexFailed(interviewID, cause.Error()); err != nil {
		log.Printf("⚠️ Failed to record index error for %s: %v", interviewID, err)
	}
}

func archiveText(interview *models.Interview) string {
	transcript := interview.Transcript
	if parsed, err := models.ParseTranscript(interview.Transcript); err == nil {
		transcript = parsed.String()
	}

	var sb strings.Builder
	sb.WriteString("Feedback:\n")
	sb.WriteString(strings.TrimSpace(interview.Feedback))
	sb.WriteString("\n\nJob Description:\n")
	sb.WriteString(strings.TrimSpace(interview.JobDescription))
	sb.WriteString("\n\nInterview Transcript:\n")
	sb.WriteString(strings.TrimSpace(transcript))
	return sb.String()
}

