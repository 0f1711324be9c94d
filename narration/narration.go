package narration

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
	"time"

	"tldreel-pipeline/config"
)

var (
	// ErrSynthesis is returned when the speech-synthesis backend fails
	ErrSynthesis = errors.New("speech synthesis failed")
	// ErrTranscode is returned when local audio transcoding fails
	ErrTranscode = errors.New("audio transcode failed")
)

// Synthesizer turns narration text into audio via the ElevenLabs streaming
// endpoint and transcodes audio containers locally with ffmpeg.
type Synthesizer struct {
	cfg        config.NarrationConfig
	apiKey     string
	httpClient *http.Client
}

// New creates a Synthesizer. The API key is a read-only input; no global
// client state is touched.
func New(cfg config.NarrationConfig, apiKey string) *Synthesizer {
	return &Synthesizer{
		cfg:    cfg,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	OutputFormat  string        `json:"output_format"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize speaks text into an audio file at outPath. The streamed
// response is written directly to disk; nothing is buffered whole.
// The text is expected to be pre-bounded by the caller.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	if text == "" {
		return fmt.Errorf("%w: empty narration text", ErrSynthesis)
	}

	reqBody := synthesisRequest{
		Text:         text,
		ModelID:      s.cfg.ModelID,
		OutputFormat: s.cfg.OutputFormat,
		VoiceSettings: voiceSettings{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.SimilarityBoost,
			Style:           s.cfg.Style,
			UseSpeakerBoost: s.cfg.SpeakerBoost,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", ErrSynthesis, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", s.cfg.Endpoint, s.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: HTTP %d: %s", ErrSynthesis, resp.StatusCode, detail)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("%w: stream audio: %v", ErrSynthesis, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	return nil
}

// Transcode converts one audio container to another locally, e.g. the
// compressed mp3 narration into the wav the lip-sync backend wants.
// Pure and deterministic for the same input bytes.
func (s *Synthesizer) Transcode(ctx context.Context, inPath, outPath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", inPath, outPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrTranscode, err, stderr.String())
	}
	return nil
}
