package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tldreel-pipeline/pipeline"
	"tldreel-pipeline/storage"
	"tldreel-pipeline/store"
	"tldreel-pipeline/types"
)

// ContentGenerator is the prompt-to-JSON side of the backend
type ContentGenerator interface {
	GenerateTopics(ctx context.Context, userInput string) (*types.GeneratedTopics, error)
	GenerateQuiz(ctx context.Context, questionTopics []string) ([]types.QuizQuestion, error)
	GenerateRoadmap(ctx context.Context, userInput []string) (json.RawMessage, error)
}

// ReelCreator runs the media pipeline for a topic
type ReelCreator interface {
	CreateFinalReel(ctx context.Context, topic string) (string, error)
}

// Server exposes content generation, persistence and reel creation over HTTP
type Server struct {
	content ContentGenerator
	reels   ReelCreator
	store   *store.Store
	storage storage.Store
}

func New(content ContentGenerator, reels ReelCreator, st *store.Store, storageStore storage.Store) *Server {
	return &Server{content: content, reels: reels, store: st, storage: storageStore}
}

// Router builds the chi router for all endpoints
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/topics", func(r chi.Router) {
		r.Post("/", s.handleCreateTopic)
		r.Get("/", s.handleGetTopics)
	})
	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", s.handleCreateQuiz)
		r.Get("/{topicID}", s.handleGetQuizzes)
	})
	r.Route("/roadmaps", func(r chi.Router) {
		r.Post("/", s.handleCreateRoadmap)
		r.Get("/", s.handleGetRoadmaps)
	})
	r.Post("/reels", s.handleCreateReel)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type topicRequest struct {
	Name      string `json:"name"`
	UserInput string `json:"user_input"`
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "name and user_input are required")
		return
	}

	topics, err := s.content.GenerateTopics(r.Context(), req.UserInput)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	topicID, err := s.store.CreateTopic(r.Context(), req.Name, req.UserInput)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.SaveGeneratedTopics(r.Context(), topicID, topics); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"topic_id": topicID,
		"topics":   topics,
	})
}

func (s *Server) handleGetTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.store.GetTopics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

type quizRequest struct {
	TopicID      string   `json:"topic_id"`
	QuestionData []string `json:"question_data"`
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicID == "" || len(req.QuestionData) == 0 {
		writeError(w, http.StatusBadRequest, "topic_id and question_data are required")
		return
	}

	questions, err := s.content.GenerateQuiz(r.Context(), req.QuestionData)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	quizID, err := s.store.CreateQuiz(r.Context(), req.TopicID, questions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"quiz_id":   quizID,
		"questions": questions,
	})
}

func (s *Server) handleGetQuizzes(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")
	quizzes, err := s.store.GetQuizzes(r.Context(), topicID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

type roadmapRequest struct {
	TopicID   string   `json:"topic_id"`
	UserInput []string `json:"user_input"`
}

func (s *Server) handleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	var req roadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicID == "" || len(req.UserInput) == 0 {
		writeError(w, http.StatusBadRequest, "topic_id and user_input are required")
		return
	}

	payload, err := s.content.GenerateRoadmap(r.Context(), req.UserInput)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	roadmapID, err := s.store.CreateRoadmap(r.Context(), req.TopicID, payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"roadmap_id": roadmapID,
		"roadmap":    payload,
	})
}

func (s *Server) handleGetRoadmaps(w http.ResponseWriter, r *http.Request) {
	roadmaps, err := s.store.GetRoadmaps(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, roadmaps)
}

type reelRequest struct {
	Topic string `json:"topic"`
}

func (s *Server) handleCreateReel(w http.ResponseWriter, r *http.Request) {
	var req reelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	reelPath, err := s.reels.CreateFinalReel(r.Context(), req.Topic)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":    stageErr.Error(),
				"stage":    string(stageErr.Stage),
				"scene_id": stageErr.SceneID,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	location, err := s.storage.Save(r.Context(), reelPath, filepath.Base(reelPath))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"reel": location})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
