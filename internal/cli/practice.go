package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/mock-interviewer/internal/config"
	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

const endCommand = "/end"

var (
	resumePath string
	jobPath    string
	provider   string
	save       bool
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal",
	Long: `Loads a resume and a job description, asks the first question and then
alternates between your answers and the interviewer's follow-ups.
Type /end on its own line to finish and receive feedback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		llmCfg := cfg.LLM
		if provider != "" {
			llmCfg.Provider = provider
		}

		ctx := cmd.Context()
		gateway, err := services.NewModelGateway(ctx, llmCfg)
		if err != nil {
			return fmt.Errorf("initializing model gateway: %w", err)
		}
		promptBuilder, err := services.NewPromptBuilderFromConfig(llmCfg)
		if err != nil {
			return fmt.Errorf("loading prompts: %w", err)
		}

		var recorder services.InterviewRecorder = discardRecorder{}
		if save {
			db, err := config.InitDatabase(cfg)
			if err != nil {
				return err
			}
			recorder = repositories.NewInterviewRepository(db)
		}

		parser := services.NewDocumentParser(nil)
		svc := services.NewInterviewService(services.NewSessionStore(), promptBuilder, gateway, recorder, nil)

		return runPractice(ctx, svc,
			parser.ParseFile(resumePath),
			parser.ParseFile(jobPath),
			cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runPractice plays the part of the web client: it owns the history and sends
// it with every turn.
func runPractice(ctx context.Context, svc services.InterviewService, resume, jobDescription string, in io.Reader, out io.Writer) error {
	session, err := svc.SubmitDocuments(ctx, uuid.Nil, resume, jobDescription)
	if err != nil {
		return err
	}

	start, err := svc.StartInterview(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("starting interview: %w", err)
	}
	fmt.Fprintf(out, "Interviewer: %s\n\n", start.Text)

	history := models.Transcript{models.AssistantTurn(start.Text)}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if answer == endCommand {
			break
		}

		reply, err := svc.ContinueInterview(ctx, session.ID, answer, history)
		if err != nil {
			return fmt.Errorf("continuing interview: %w", err)
		}
		history = history.Append(models.UserTurn(answer), models.AssistantTurn(reply.Text))
		fmt.Fprintf(out, "\nInterviewer: %s\n\n", reply.Text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}

	result, err := svc.EndInterview(ctx, session.ID, history)
	if result != nil {
		fmt.Fprintf(out, "\n=== Feedback ===\n%s\n", result.Feedback)
	}
	if err != nil {
		if errors.Is(err, services.ErrPersistFailed) {
			log.Printf("⚠️ %v", err)
			return nil
		}
		return fmt.Errorf("ending interview: %w", err)
	}

	return nil
}

type discardRecorder struct{}

func (discardRecorder) Create(*models.Interview) error {
	return nil
}

func init() {
	practiceCmd.Flags().StringVar(&resumePath, "resume", "", "Path to the resume (.txt or .pdf)")
	practiceCmd.Flags().StringVar(&jobPath, "job", "", "Path to the job description (.txt or .pdf)")
	practiceCmd.Flags().StringVar(&provider, "provider", "", "Override LLM_PROVIDER (openrouter, gemini, mock)")
	practiceCmd.Flags().BoolVar(&save, "save", false, "Store the finished interview in the database")
	_ = practiceCmd.MarkFlagRequired("resume")
	_ = practiceCmd.MarkFlagRequired("job")
}
