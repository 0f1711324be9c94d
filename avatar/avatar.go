package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"tldreel-pipeline/config"
)

var (
	// ErrRender is returned when the lip-sync backend fails to produce a video
	ErrRender = errors.New("avatar render failed")
	// ErrTimeout is returned when polling ran out of time with no usable result
	ErrTimeout = errors.New("avatar render timed out")
)

// Renderer produces a lip-synced avatar video from a narration audio file.
// Both backend protocols satisfy the same contract.
type Renderer interface {
	Render(ctx context.Context, audioPath, outPath string) error
}

// SyncRenderer posts the audio as a base64 data URI to a blocking predict
// endpoint and writes the response video to disk.
type SyncRenderer struct {
	cfg        config.AvatarConfig
	httpClient *http.Client
}

func NewSyncRenderer(cfg config.AvatarConfig) *SyncRenderer {
	return &SyncRenderer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.SubmitTimeout()},
	}
}

type predictRequest struct {
	Reference     string `json:"reference"`
	Audio         string `json:"audio"`
	AnimationMode string `json:"animation_mode"`
}

func (r *SyncRenderer) Render(ctx context.Context, audioPath, outPath string) error {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return fmt.Errorf("%w: read audio: %v", ErrRender, err)
	}

	payload := predictRequest{
		Reference:     r.cfg.ReferenceImageURL,
		Audio:         "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(audioData),
		AnimationMode: r.cfg.AnimationMode,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.cfg.PredictEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: HTTP %d: %s", ErrRender, resp.StatusCode, detail)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("%w: write video: %v", ErrRender, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

var _ Renderer = (*SyncRenderer)(nil)
