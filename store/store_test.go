package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"tldreel-pipeline/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTopicRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTopic(ctx, "Algebra", "teach me algebra")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	generated := &types.GeneratedTopics{
		Difficult: []string{"galois theory"},
		Medium:    []string{"polynomials"},
		Easy:      []string{"variables"},
	}
	if err := s.SaveGeneratedTopics(ctx, id, generated); err != nil {
		t.Fatalf("SaveGeneratedTopics: %v", err)
	}

	topics, err := s.GetTopics(ctx)
	if err != nil {
		t.Fatalf("GetTopics: %v", err)
	}
	if len(topics) != 1 || topics[0].ID != id || topics[0].Name != "Algebra" {
		t.Errorf("topics = %+v", topics)
	}

	got, err := s.GetGeneratedTopics(ctx, id)
	if err != nil {
		t.Fatalf("GetGeneratedTopics: %v", err)
	}
	if got.Difficult[0] != "galois theory" || got.Easy[0] != "variables" {
		t.Errorf("generated = %+v", got)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	topicID, err := s.CreateTopic(ctx, "Geography", "capitals")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	questions := []types.QuizQuestion{{
		ID:   1,
		Text: "Capital of France?",
		Options: []types.QuizOption{
			{ID: "A", Text: "Paris", Correct: true},
			{ID: "B", Text: "London", Correct: false},
		},
	}}
	quizID, err := s.CreateQuiz(ctx, topicID, questions)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	quizzes, err := s.GetQuizzes(ctx, topicID)
	if err != nil {
		t.Fatalf("GetQuizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != quizID {
		t.Fatalf("quizzes = %+v", quizzes)
	}
	if len(quizzes[0].Questions) != 1 || !quizzes[0].Questions[0].Options[0].Correct {
		t.Errorf("questions = %+v", quizzes[0].Questions)
	}

	// Quizzes are keyed by topic.
	other, err := s.GetQuizzes(ctx, "no-such-topic")
	if err != nil {
		t.Fatalf("GetQuizzes: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no quizzes for unknown topic, got %d", len(other))
	}
}

func TestRoadmapRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	topicID, err := s.CreateTopic(ctx, "Web", "web dev")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	payload := json.RawMessage(`{"Frontend": {"HTML": ["basics"]}}`)
	if _, err := s.CreateRoadmap(ctx, topicID, payload); err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}

	roadmaps, err := s.GetRoadmaps(ctx)
	if err != nil {
		t.Fatalf("GetRoadmaps: %v", err)
	}
	if len(roadmaps) != 1 || roadmaps[0].TopicID != topicID {
		t.Fatalf("roadmaps = %+v", roadmaps)
	}
	if string(roadmaps[0].Payload) != string(payload) {
		t.Errorf("payload = %s, want %s", roadmaps[0].Payload, payload)
	}
}
