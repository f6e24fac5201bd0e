package services

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/mock-interviewer/internal/models"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

type PromptTemplates struct {
	Opening      string `yaml:"opening"`
	Continuation string `yaml:"continuation"`
	Feedback     string `yaml:"feedback"`
}

// PromptBuilder renders session state into the message sequence sent to the
// model gateway. Rendering is deterministic for a given input.
type PromptBuilder struct {
	opening      *template.Template
	continuation string
	feedback     *template.Template
}

type promptData struct {
	Resume         string
	JobDescription string
	Transcript     string
}

func NewPromptBuilder() *PromptBuilder {
	pb, err := ParsePromptBuilder(defaultPromptsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml is invalid: %v", err))
	}
	return pb
}

// LoadPromptBuilder reads templates from a YAML file. Missing keys fall back to
// the embedded defaults.
func LoadPromptBuilder(path string) (*PromptBuilder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return ParsePromptBuilder(data)
}

func ParsePromptBuilder(data []byte) (*PromptBuilder, error) {
	var defaults PromptTemplates
	if err := yaml.Unmarshal(defaultPromptsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse default prompts: %w", err)
	}

	var tpl PromptTemplates
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if strings.TrimSpace(tpl.Opening) == "" {
		tpl.Opening = defaults.Opening
	}
	if strings.TrimSpace(tpl.Continuation) == "" {
		tpl.Continuation = defaults.Continuation
	}
	if strings.TrimSpace(tpl.Feedback) == "" {
		tpl.Feedback = defaults.Feedback
	}

	opening, err := template.New("opening").Option("missingkey=error").Parse(tpl.Opening)
	if err != nil {
		return nil, fmt.Errorf("failed to parse opening template: %w", err)
	}
	feedback, err := template.New("feedback").Option("missingkey=error").Parse(tpl.Feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feedback template: %w", err)
	}

	for _, t := range []*template.Template{opening, feedback} {
		if err := t.Execute(io.Discard, promptData{}); err != nil {
			return nil, fmt.Errorf("invalid %s template: %w", t.Name(), err)
		}
	}

	return &PromptBuilder{
		opening:      opening,
		continuation: strings.TrimSpace(tpl.Continuation),
		feedback:     feedback,
	}, nil
}

// BuildOpeningPrompt asks the model for the first interview question.
func (pb *PromptBuilder) BuildOpeningPrompt(resume, jobDescription string) []models.Turn {
	text := render(pb.opening, promptData{Resume: resume, JobDescription: jobDescription})
	return []models.Turn{models.SystemTurn(text)}
}

// BuildContinuationPrompt places the fixed continuation instruction ahead of
// the transcript, which is replayed unmodified.
func (pb *PromptBuilder) BuildContinuationPrompt(transcript models.Transcript) []models.Turn {
	messages := make([]models.Turn, 0, len(transcript)+1)
	messages = append(messages, models.SystemTurn(pb.continuation))
	return append(messages, transcript...)
}

// BuildFeedbackPrompt asks for constructive feedback on the whole interview.
func (pb *PromptBuilder) BuildFeedbackPrompt(resume, jobDescription string, transcript models.Transcript) []models.Turn {
	text := render(pb.feedback, promptData{
		Resume:         resume,
		JobDescription: jobDescription,
		Transcript:     transcript.String(),
	})
	return []models.Turn{models.SystemTurn(text)}
}

func render(t *template.Template, data promptData) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		// ParsePromptBuilder already executed every template once.
		panic(fmt.Sprintf("failed to render %s prompt: %v", t.Name(), err))
	}
	return sb.String()
}
