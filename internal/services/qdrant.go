package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// InterviewIndex stores embedded chunks of completed interviews.
type InterviewIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunk(ctx context.Context, interviewID uuid.UUID, chunk int, text string, embedding []float32) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteInterview(ctx context.Context, interviewID uuid.UUID) error
}

type SearchResult struct {
	InterviewID string
	Chunk       int
	Score       float32
	Text        string
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string) (InterviewIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

// InitCollection implements InterviewIndex.
func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Collection '%s' already exists", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunk implements InterviewIndex. Point ids derive from the interview
// id and chunk number, so re-indexing overwrites instead of duplicating.
func (q *qdrantIndex) UpsertChunk(ctx context.Context, interviewID uuid.UUID, chunk int, text string, embedding []float32) error {
	pointID := uuid.NewSHA1(interviewID, []byte(strconv.Itoa(chunk)))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"interview_id": interviewID.String(),
			"chunk":        int64(chunk),
			"text":         text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search implements InterviewIndex.
func (q *qdrantIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		result := SearchResult{Score: point.Score}

		if v, ok := payload["interview_id"]; ok {
			result.InterviewID = v.GetStringValue()
		}
		if v, ok := payload["chunk"]; ok {
			result.Chunk = int(v.GetIntegerValue())
		}
		if v, ok := payload["text"]; ok {
			result.Text = v.GetStringValue()
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteInterview implements InterviewIndex.
func (q *qdrantIndex) DeleteInterview(ctx context.Context, interviewID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("interview_id", interviewID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete interview points: %w", err)
	}

	return nil
}
