// Package fetchqueue implements the page-fetch job queue collaborator over
// its HTTP API.
package fetchqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"search-orchestrator/internal/common/config"
	apperrors "search-orchestrator/internal/common/errors"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/retrieval"
)

// timeoutError wraps the job timeout sentinel with its structured code so the
// dispatcher's errors.Is check and the job error surface both hold.
func timeoutError(jobID string) error {
	err := apperrors.NewFetchJobTimeoutError(jobID)
	err.Err = retrieval.ErrJobTimeout
	return err
}

// Client talks to the external fetch queue. Submit enqueues a render job,
// Await long-polls its completion, Remove discards an abandoned job.
type Client struct {
	config config.FetchQueueConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.FetchQueueConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		// Per-call deadlines come from the caller's context and the job
		// timeout; no flat client timeout on top.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": "fetch-queue"}),
	}
}

type submitRequest struct {
	URL            string `json:"url"`
	RequestID      string `json:"requestId"`
	TeamID         string `json:"teamId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type submitResponse struct {
	JobID string `json:"jobId"`
}

func (c *Client) Submit(ctx context.Context, spec retrieval.FetchSpec) (string, error) {
	body, _ := json.Marshal(submitRequest{
		URL:            spec.URL,
		RequestID:      spec.RequestID,
		TeamID:         spec.TeamID,
		IdempotencyKey: uuid.NewString(),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch job submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("fetch queue returned %d on submit", resp.StatusCode)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("fetch job submit decode failed: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("fetch queue returned empty job id")
	}
	return out.JobID, nil
}

// Await long-polls the job until it completes or timeout elapses. A job still
// pending at the deadline fails with retrieval.ErrJobTimeout.
func (c *Client) Await(ctx context.Context, jobID string, timeout time.Duration) (*retrieval.Document, error) {
	if timeout <= 0 {
		timeout = c.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("%s/jobs/%s?wait=%s", c.config.BaseURL, jobID, strconv.FormatInt(timeout.Milliseconds(), 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, timeoutError(jobID)
		}
		return nil, fmt.Errorf("fetch job await failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusAccepted, http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return nil, timeoutError(jobID)
	default:
		return nil, fmt.Errorf("fetch queue returned %d on await", resp.StatusCode)
	}

	var doc retrieval.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("fetch job await decode failed: %w", err)
	}
	return &doc, nil
}

// Remove discards a job that will no longer be awaited. Best effort: the
// queue may have already completed or expired it.
func (c *Client) Remove(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.BaseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch job remove failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("fetch queue returned %d on remove", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}
