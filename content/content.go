package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tldreel-pipeline/llm"
	"tldreel-pipeline/types"
)

// ErrMalformedContent is returned when the generation backend's response
// does not parse as the requested JSON structure.
var ErrMalformedContent = errors.New("malformed generated content")

// Service generates topic lists, quizzes and learning roadmaps with
// single-shot prompt-to-JSON calls. No orchestration, no retries.
type Service struct {
	completer   llm.Completer
	maxInputLen int
}

func NewService(completer llm.Completer, maxInputLen int) *Service {
	if maxInputLen <= 0 {
		maxInputLen = 300
	}
	return &Service{completer: completer, maxInputLen: maxInputLen}
}

// Summarize condenses text while keeping the essential details
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.completer.Complete(ctx,
		fmt.Sprintf("Summarize the following text in brief, keeping only the essential details: %s", text))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// GenerateTopics produces study topics grouped by difficulty. Inputs
// longer than the configured threshold are summarized first so the
// downstream prompt stays bounded.
func (s *Service) GenerateTopics(ctx context.Context, userInput string) (*types.GeneratedTopics, error) {
	if len(userInput) > s.maxInputLen {
		summarized, err := s.Summarize(ctx, userInput)
		if err != nil {
			return nil, err
		}
		userInput = summarized
	}

	prompt := fmt.Sprintf(
		"Generate a JSON object with keys 'difficult', 'medium', and 'easy', each containing an array of 5 topics, related to: %s. Return only valid JSON.",
		userInput)

	raw, err := s.completer.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	var topics types.GeneratedTopics
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &topics); err != nil {
		return nil, fmt.Errorf("%w: parse topics: %v", ErrMalformedContent, err)
	}
	if len(topics.Difficult) == 0 && len(topics.Medium) == 0 && len(topics.Easy) == 0 {
		return nil, fmt.Errorf("%w: no topics in response", ErrMalformedContent)
	}
	return &topics, nil
}

var quizFormat = types.QuizQuestion{
	ID:   1,
	Text: "What is the capital of France?",
	Options: []types.QuizOption{
		{ID: "A", Text: "London", Correct: false},
		{ID: "B", Text: "Paris", Correct: true},
		{ID: "C", Text: "Berlin", Correct: false},
		{ID: "D", Text: "Madrid", Correct: false},
	},
}

// GenerateQuiz produces five quiz questions over the given topics
func (s *Service) GenerateQuiz(ctx context.Context, questionTopics []string) ([]types.QuizQuestion, error) {
	formatJSON, _ := json.Marshal(quizFormat)
	prompt := fmt.Sprintf(
		"Generate a JSON object with a single key 'questions' holding an array of 5 quiz questions on the topics: %s. Each question should follow this format: %s",
		strings.Join(questionTopics, ", "), formatJSON)

	raw, err := s.completer.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	cleaned := llm.CleanJSON(raw)
	var wrapped struct {
		Questions []types.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped.Questions) > 0 {
		return wrapped.Questions, nil
	}

	// Some models answer with the bare array despite the prompt.
	var questions []types.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("%w: parse quiz: %v", ErrMalformedContent, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", ErrMalformedContent)
	}
	return questions, nil
}

// GenerateRoadmap produces a hierarchical learning roadmap for the given
// topics. The structure is model-defined, so the payload stays opaque
// JSON; only well-formedness is enforced.
func (s *Service) GenerateRoadmap(ctx context.Context, userInput []string) (json.RawMessage, error) {
	topicsJSON, _ := json.Marshal(userInput)
	prompt := fmt.Sprintf(
		"Generate a JSON object with a roadmap for the following topics: %s. "+
			"The roadmap should be in a hierarchical format where every parent node has child nodes, "+
			"and each child node has sub-child nodes. Return only valid JSON.",
		topicsJSON)

	raw, err := s.completer.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	cleaned := llm.CleanJSON(raw)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("%w: roadmap response is not valid JSON", ErrMalformedContent)
	}
	return json.RawMessage(cleaned), nil
}
