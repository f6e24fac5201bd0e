package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/mock-interviewer/internal/config"
	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find archived interviews similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		archive, err := newArchive(ctx, nil)
		if err != nil {
			return err
		}

		results, err := archive.Search(ctx, strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No matching interviews.")
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d. interview %s (chunk %d, score %.3f)\n%s\n\n",
				i+1, r.InterviewID, r.Chunk, r.Score, strings.TrimSpace(r.Text))
		}
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Index every stored interview that is not in the archive yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := config.InitDatabase(cfg)
		if err != nil {
			return err
		}
		repo := repositories.NewInterviewRepository(db)

		archive, err := newArchive(ctx, repo)
		if err != nil {
			return err
		}

		reset, err := repo.ResetIndexStatus()
		if err != nil {
			return err
		}
		log.Printf("🔄 %d failed or stuck interviews moved back to pending", reset)

		indexed, failed, err := reindexPending(ctx, repo, archive)
		if err != nil {
			return err
		}

		log.Println(strings.Repeat("=", 60))
		log.Printf("📊 Reindex summary: %d indexed, %d failed", indexed, failed)
		log.Println(strings.Repeat("=", 60))

		if failed > 0 {
			return fmt.Errorf("%d interviews failed to index", failed)
		}
		return nil
	},
}

// reindexPending indexes every pending interview once. Interviews that stay
// pending after a run are excluded from later pages so the loop always ends.
func reindexPending(ctx context.Context, repo repositories.InterviewRepository, archive services.ArchiveService) (indexed, failed int, err error) {
	var seen []uuid.UUID
	for {
		pending, err := repo.FindPendingIndexExcluding(50, seen)
		if err != nil {
			return indexed, failed, err
		}
		if len(pending) == 0 {
			return indexed, failed, nil
		}

		for _, interview := range pending {
			seen = append(seen, interview.ID)

			if err := archive.IndexInterview(ctx, interview.ID); err != nil {
				log.Printf("❌ %v", err)
				failed++
				continue
			}
			indexed++
		}
	}
}

func newArchive(ctx context.Context, repo repositories.InterviewRepository) (services.ArchiveService, error) {
	embedder, err := services.NewGeminiService(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("initializing embeddings: %w", err)
	}

	index, err := services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		return nil, fmt.Errorf("initializing qdrant: %w", err)
	}
	if err := index.InitCollection(ctx); err != nil {
		return nil, err
	}

	return services.NewArchiveService(repo, embedder, index), nil
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
}
