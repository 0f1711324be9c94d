package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tldreel-pipeline/types"
)

// Store persists topics, generated topic sets, quizzes and roadmaps in
// SQLite. Simple keyed storage; all generation happens elsewhere.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database and applies migrations
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			user_input TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generated_topics (
			topic_id   TEXT PRIMARY KEY REFERENCES topics(id) ON DELETE CASCADE,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id         TEXT PRIMARY KEY,
			topic_id   TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roadmaps (
			id         TEXT PRIMARY KEY,
			topic_id   TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_topic ON quizzes(topic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_roadmaps_topic ON roadmaps(topic_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateTopic inserts a user topic and returns its id
func (s *Store) CreateTopic(ctx context.Context, name, userInput string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id, name, user_input, created_at) VALUES (?, ?, ?, ?)`,
		id, name, userInput, now())
	if err != nil {
		return "", fmt.Errorf("create topic: %w", err)
	}
	return id, nil
}

// SaveGeneratedTopics stores the difficulty-grouped topic set for a topic
func (s *Store) SaveGeneratedTopics(ctx context.Context, topicID string, topics *types.GeneratedTopics) error {
	payload, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("save generated topics: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generated_topics (topic_id, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(topic_id) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		topicID, string(payload), now())
	if err != nil {
		return fmt.Errorf("save generated topics: %w", err)
	}
	return nil
}

// GetGeneratedTopics loads the stored topic set for a topic
func (s *Store) GetGeneratedTopics(ctx context.Context, topicID string) (*types.GeneratedTopics, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM generated_topics WHERE topic_id = ?`, topicID).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("get generated topics: %w", err)
	}
	var topics types.GeneratedTopics
	if err := json.Unmarshal([]byte(payload), &topics); err != nil {
		return nil, fmt.Errorf("get generated topics: %w", err)
	}
	return &topics, nil
}

// GetTopics lists all stored topics, newest first
func (s *Store) GetTopics(ctx context.Context) ([]types.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, user_input, created_at FROM topics ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get topics: %w", err)
	}
	defer rows.Close()

	var topics []types.Topic
	for rows.Next() {
		var t types.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.UserInput, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("get topics: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// CreateQuiz stores generated quiz questions under a topic
func (s *Store) CreateQuiz(ctx context.Context, topicID string, questions []types.QuizQuestion) (string, error) {
	payload, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, topic_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		id, topicID, string(payload), now())
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	return id, nil
}

// GetQuizzes lists stored quizzes for a topic
func (s *Store) GetQuizzes(ctx context.Context, topicID string) ([]types.QuizRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic_id, payload, created_at FROM quizzes WHERE topic_id = ? ORDER BY created_at DESC`,
		topicID)
	if err != nil {
		return nil, fmt.Errorf("get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []types.QuizRecord
	for rows.Next() {
		var rec types.QuizRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.TopicID, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("get quizzes: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Questions); err != nil {
			return nil, fmt.Errorf("get quizzes: %w", err)
		}
		quizzes = append(quizzes, rec)
	}
	return quizzes, rows.Err()
}

// CreateRoadmap stores a generated roadmap under a topic
func (s *Store) CreateRoadmap(ctx context.Context, topicID string, payload json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO roadmaps (id, topic_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		id, topicID, string(payload), now())
	if err != nil {
		return "", fmt.Errorf("create roadmap: %w", err)
	}
	return id, nil
}

// GetRoadmaps lists all stored roadmaps, newest first
func (s *Store) GetRoadmaps(ctx context.Context) ([]types.RoadmapRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic_id, payload, created_at FROM roadmaps ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get roadmaps: %w", err)
	}
	defer rows.Close()

	var roadmaps []types.RoadmapRecord
	for rows.Next() {
		var rec types.RoadmapRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.TopicID, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("get roadmaps: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		roadmaps = append(roadmaps, rec)
	}
	return roadmaps, rows.Err()
}
