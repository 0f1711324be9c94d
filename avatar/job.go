package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// JobState is the lifecycle of an asynchronous lip-sync job
type JobState int

const (
	JobPending JobState = iota
	JobRunning
	JobSucceeded
	JobFailed
)

// JobStatus is the structured status contract the async renderer polls
// against. If the real backend only exposes a log stream, the JobClient
// implementation owns the heuristic that maps logs onto this struct.
type JobStatus struct {
	State     JobState
	ResultURL string
}

// JobClient is the asynchronous lip-sync backend: upload audio, submit a
// job against a fixed source video, poll it, and resolve the result URL.
type JobClient interface {
	Upload(ctx context.Context, audioPath string) (string, error)
	Submit(ctx context.Context, audioURL string) (string, error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
	Result(ctx context.Context, jobID string) (string, error)
}

// QueueClient talks to a fal-style queue API over HTTP
type QueueClient struct {
	base           string
	sourceVideoURL string
	httpClient     *http.Client
}

func NewQueueClient(base, sourceVideoURL string, submitTimeout time.Duration) *QueueClient {
	return &QueueClient{
		base:           strings.TrimRight(base, "/"),
		sourceVideoURL: sourceVideoURL,
		httpClient:     &http.Client{Timeout: submitTimeout},
	}
}

// Upload sends the audio file as multipart form data and returns the URL
// the backend assigned to it.
func (c *QueueClient) Upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.base+"/files/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload audio: backend returned no url")
	}
	return out.URL, nil
}

// Submit queues a lip-sync job against the configured source video
func (c *QueueClient) Submit(ctx context.Context, audioURL string) (string, error) {
	payload := map[string]string{
		"source_video_url": c.sourceVideoURL,
		"audio_url":        audioURL,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.base+"/submit", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		RequestID string `json:"request_id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("submit job: backend returned no request id")
	}
	return out.RequestID, nil
}

type statusResponse struct {
	Status string `json:"status"`
	Logs   []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

// Status fetches the job status with logs. The backend's status field is
// unreliable mid-run, so a terminal marker in the log stream also counts
// as success; that heuristic lives here and nowhere else.
func (c *QueueClient) Status(ctx context.Context, jobID string) (JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+"/requests/"+jobID+"/status?logs=1", nil)
	if err != nil {
		return JobStatus{}, err
	}

	var out statusResponse
	if err := c.do(req, &out); err != nil {
		return JobStatus{}, fmt.Errorf("job status: %w", err)
	}

	status := JobStatus{State: mapState(out.Status)}
	if status.State != JobSucceeded && status.State != JobFailed {
		for _, entry := range out.Logs {
			if strings.Contains(entry.Message, "100.00%") {
				status.State = JobSucceeded
				break
			}
		}
	}
	return status, nil
}

// Result resolves the URL of the finished video
func (c *QueueClient) Result(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+"/requests/"+jobID, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		Video struct {
			URL string `json:"url"`
		} `json:"video"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("job result: %w", err)
	}
	if out.Video.URL == "" {
		return "", fmt.Errorf("job result: no video url in response")
	}
	return out.Video.URL, nil
}

func (c *QueueClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mapState(s string) JobState {
	switch strings.ToUpper(s) {
	case "IN_QUEUE", "PENDING":
		return JobPending
	case "IN_PROGRESS", "RUNNING":
		return JobRunning
	case "COMPLETED", "SUCCEEDED", "OK":
		return JobSucceeded
	case "FAILED", "ERROR":
		return JobFailed
	default:
		return JobRunning
	}
}

var _ JobClient = (*QueueClient)(nil)
