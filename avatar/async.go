package avatar

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// AsyncRenderer drives the asynchronous job protocol: upload, submit,
// poll with a fixed interval under a wall-clock bound, then fetch the
// result. When the bound elapses without a completion signal it still
// attempts result retrieval exactly once before giving up.
type AsyncRenderer struct {
	jobs         JobClient
	maxWait      time.Duration
	pollInterval time.Duration
	httpClient   *http.Client
}

func NewAsyncRenderer(jobs JobClient, maxWait, pollInterval time.Duration) *AsyncRenderer {
	return &AsyncRenderer{
		jobs:         jobs,
		maxWait:      maxWait,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
	}
}

func (r *AsyncRenderer) Render(ctx context.Context, audioPath, outPath string) error {
	audioURL, err := r.jobs.Upload(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	jobID, err := r.jobs.Submit(ctx, audioURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	log.Printf("[avatar] job %s submitted", jobID)

	timedOut, err := r.waitForJob(ctx, jobID)
	if err != nil {
		return err
	}
	if timedOut {
		log.Printf("[avatar] job %s: wait bound elapsed, fetching result anyway", jobID)
	}

	// One result fetch regardless of how the wait ended.
	videoURL, err := r.jobs.Result(ctx, jobID)
	if err != nil {
		if timedOut {
			return fmt.Errorf("%w: no result after %s: %v", ErrTimeout, r.maxWait, err)
		}
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := r.download(ctx, videoURL, outPath); err != nil {
		if timedOut {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// waitForJob polls until the job reaches a terminal state or maxWait
// elapses. Returns timedOut=true when the bound expired first.
func (r *AsyncRenderer) waitForJob(ctx context.Context, jobID string) (bool, error) {
	deadline := time.Now().Add(r.maxWait)
	for {
		status, err := r.jobs.Status(ctx, jobID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrRender, err)
		}
		switch status.State {
		case JobSucceeded:
			return false, nil
		case JobFailed:
			return false, fmt.Errorf("%w: job %s failed", ErrRender, jobID)
		}

		if time.Now().After(deadline) {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("%w: %v", ErrRender, ctx.Err())
		case <-time.After(r.pollInterval):
		}
	}
}

func (r *AsyncRenderer) download(ctx context.Context, url, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download video: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outPath)
		return err
	}
	return out.Close()
}

var _ Renderer = (*AsyncRenderer)(nil)
