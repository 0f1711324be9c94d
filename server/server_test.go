package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tldreel-pipeline/avatar"
	"tldreel-pipeline/pipeline"
	"tldreel-pipeline/storage"
	"tldreel-pipeline/store"
	"tldreel-pipeline/types"
)

type fakeContent struct{}

func (fakeContent) GenerateTopics(context.Context, string) (*types.GeneratedTopics, error) {
	return &types.GeneratedTopics{Easy: []string{"basics"}}, nil
}

func (fakeContent) GenerateQuiz(context.Context, []string) ([]types.QuizQuestion, error) {
	return []types.QuizQuestion{{ID: 1, Text: "Q?"}}, nil
}

func (fakeContent) GenerateRoadmap(context.Context, []string) (json.RawMessage, error) {
	return json.RawMessage(`{"root": {}}`), nil
}

type fakeReels struct {
	reelPath string
	err      error
}

func (f *fakeReels) CreateFinalReel(context.Context, string) (string, error) {
	return f.reelPath, f.err
}

func newTestServer(t *testing.T, reels ReelCreator) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := New(fakeContent{}, reels, st, storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads")))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeReels{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateAndListTopics(t *testing.T) {
	ts := newTestServer(t, &fakeReels{})

	resp := postJSON(t, ts.URL+"/topics", map[string]string{
		"name":       "Algebra",
		"user_input": "teach me algebra",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var created struct {
		TopicID string                 `json:"topic_id"`
		Topics  *types.GeneratedTopics `json:"topics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.TopicID == "" || len(created.Topics.Easy) != 1 {
		t.Errorf("created = %+v", created)
	}

	listResp, err := http.Get(ts.URL + "/topics")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	var topics []types.Topic
	if err := json.NewDecoder(listResp.Body).Decode(&topics); err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].ID != created.TopicID {
		t.Errorf("topics = %+v", topics)
	}
}

func TestCreateTopicValidation(t *testing.T) {
	ts := newTestServer(t, &fakeReels{})
	resp := postJSON(t, ts.URL+"/topics", map[string]string{"name": "x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateReel(t *testing.T) {
	reel := filepath.Join(t.TempDir(), "reel_abc.mp4")
	if err := os.WriteFile(reel, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, &fakeReels{reelPath: reel})

	resp := postJSON(t, ts.URL+"/reels", map[string]string{"topic": "Photosynthesis"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["reel"] == "" {
		t.Errorf("response = %v", out)
	}
	if _, err := os.Stat(out["reel"]); err != nil {
		t.Errorf("stored reel missing: %v", err)
	}
}

func TestCreateReelStageFailure(t *testing.T) {
	stageErr := &pipeline.StageError{
		Stage:   pipeline.StageAvatar,
		SceneID: "scene2",
		Err:     avatar.ErrRender,
	}
	ts := newTestServer(t, &fakeReels{err: stageErr})

	resp := postJSON(t, ts.URL+"/reels", map[string]string{"topic": "Photosynthesis"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["stage"] != "avatar" || out["scene_id"] != "scene2" {
		t.Errorf("error payload = %v", out)
	}
	if out["error"] == "" {
		t.Errorf("error payload missing message: %v", out)
	}
}
