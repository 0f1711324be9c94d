package explainer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func TestLocalRendererCodeGenFailure(t *testing.T) {
	r := NewLocalRenderer(&fakeCompleter{err: errors.New("backend down")}, "-ql")
	err := r.Render(context.Background(), "explain gravity", filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, ErrCodeGen) {
		t.Fatalf("err = %v, want ErrCodeGen", err)
	}
}

func TestLocalRendererEmptySource(t *testing.T) {
	r := NewLocalRenderer(&fakeCompleter{response: "```python\n```"}, "-ql")
	err := r.Render(context.Background(), "explain gravity", filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, ErrCodeGen) {
		t.Fatalf("err = %v, want ErrCodeGen", err)
	}
}

func TestRenderArgs(t *testing.T) {
	args := RenderArgs("-ql", "/tmp/anim.py", "/tmp/out.mp4")
	want := []string{"-ql", "/tmp/anim.py", "Scene", "-o", "/tmp/out.mp4"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args = %v, want %v", args, want)
		}
	}
}

func TestRemoteRenderer(t *testing.T) {
	video := []byte("rendered-video")
	var gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotPrompt = body["prompt"]
		w.Write(video)
	}))
	defer srv.Close()

	r := NewRemoteRenderer(srv.URL, 5*time.Second)
	outPath := filepath.Join(t.TempDir(), "out.mp4")
	if err := r.Render(context.Background(), "animate photosynthesis", outPath); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if gotPrompt != "animate photosynthesis" {
		t.Errorf("prompt = %q", gotPrompt)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != string(video) {
		t.Errorf("output = %q, want %q", data, video)
	}
}

func TestRemoteRendererFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewRemoteRenderer(srv.URL, 5*time.Second)
	err := r.Render(context.Background(), "animate", filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, ErrRemoteRender) {
		t.Fatalf("err = %v, want ErrRemoteRender", err)
	}
	if !strings.Contains(err.Error(), "render queue full") {
		t.Errorf("error should carry upstream body, got %v", err)
	}
}
