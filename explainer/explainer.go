package explainer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tldreel-pipeline/llm"
)

var (
	// ErrCodeGen is returned when generating animation source code fails
	ErrCodeGen = errors.New("animation code generation failed")
	// ErrRender is returned when the local rendering toolchain fails
	ErrRender = errors.New("animation render failed")
	// ErrRemoteRender is returned when the remote rendering endpoint fails
	ErrRemoteRender = errors.New("remote animation render failed")
)

// Renderer produces an animated explainer video from a visual prompt.
// The orchestrator never cares which strategy is behind it.
type Renderer interface {
	Render(ctx context.Context, prompt, outPath string) error
}

// LocalRenderer generates manim source via a text-generation backend and
// renders it with the manim CLI.
type LocalRenderer struct {
	completer llm.Completer
	quality   string
}

func NewLocalRenderer(completer llm.Completer, quality string) *LocalRenderer {
	if quality == "" {
		quality = "-ql"
	}
	return &LocalRenderer{completer: completer, quality: quality}
}

const codeGenPrompt = `Generate manim code that produces an animation visualizing: %s

The code must define exactly one scene class named "Scene".
Respond with ONLY the Python source, no markdown, no explanation.`

func (r *LocalRenderer) Render(ctx context.Context, prompt, outPath string) error {
	raw, err := r.completer.Complete(ctx, fmt.Sprintf(codeGenPrompt, prompt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodeGen, err)
	}
	code := llm.CleanCode(raw)
	if code == "" {
		return fmt.Errorf("%w: backend returned empty source", ErrCodeGen)
	}

	codeFile := filepath.Join(os.TempDir(), uuid.NewString()+"_animation.py")
	if err := os.WriteFile(codeFile, []byte(code), 0644); err != nil {
		return fmt.Errorf("%w: write source: %v", ErrRender, err)
	}
	defer os.Remove(codeFile)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "manim", RenderArgs(r.quality, codeFile, outPath)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrRender, err, stderr.String())
	}
	return nil
}

// RenderArgs builds the manim CLI invocation. The generated source is
// expected to define a scene class named "Scene".
func RenderArgs(quality, codeFile, outPath string) []string {
	return []string{quality, codeFile, "Scene", "-o", outPath}
}

// RemoteRenderer delegates the whole prompt-to-video step to a remote
// animation endpoint. Rendering is slow, so the timeout is long.
type RemoteRenderer struct {
	endpoint   string
	httpClient *http.Client
}

func NewRemoteRenderer(endpoint string, timeout time.Duration) *RemoteRenderer {
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &RemoteRenderer{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *RemoteRenderer) Render(ctx context.Context, prompt, outPath string) error {
	bodyBytes, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: HTTP %d: %s", ErrRemoteRender, resp.StatusCode, detail)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("%w: write video: %v", ErrRemoteRender, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}
	return nil
}

var (
	_ Renderer = (*LocalRenderer)(nil)
	_ Renderer = (*RemoteRenderer)(nil)
)
