package runsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"search-orchestrator/internal/common/camunda"
	apperrors "search-orchestrator/internal/common/errors"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/common/validation"
	"search-orchestrator/internal/retrieval"
)

const (
	TaskType = "run-search"
)

type Handler struct {
	config     *Config
	controller *retrieval.Controller
	logger     logger.Logger
}

func NewHandler(config *Config, controller *retrieval.Controller, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		controller: controller,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	raw := []byte(job.Variables)

	// Malformed requests are rejected with field detail before any work starts.
	if err := validation.ValidateRequest(raw); err != nil {
		h.failJob(client, job, err, 0)
		return nil
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.RequestDeadline)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Retryable {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return nil
	}

	h.completeJob(client, job, output)
	return nil
}

// Execute runs the orchestration for one validated input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	req := h.buildRequest(input)

	result, err := h.controller.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("retrieval completed", map[string]interface{}{
		"requestId":  req.RequestID,
		"iterations": result.Iterations,
		"converged":  result.Converged,
		"credits":    result.Credits,
	})

	return &Output{Result: result}, nil
}

func (h *Handler) buildRequest(input *Input) retrieval.Request {
	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	limits := retrieval.Limits{
		Web:   h.config.DefaultWebLimit,
		Image: h.config.DefaultImageLimit,
		News:  h.config.DefaultNewsLimit,
	}
	if input.Limits.Web != nil {
		limits.Web = *input.Limits.Web
	}
	if input.Limits.Image != nil {
		limits.Image = *input.Limits.Image
	}
	if input.Limits.News != nil {
		limits.News = *input.Limits.News
	}

	mode := retrieval.ScrapeModeSync
	if input.Scrape.Mode == string(retrieval.ScrapeModeAsync) {
		mode = retrieval.ScrapeModeAsync
	}

	fetchTimeout := h.config.DefaultFetchTimeout
	if input.Scrape.TimeoutMs > 0 {
		fetchTimeout = time.Duration(input.Scrape.TimeoutMs) * time.Millisecond
	}

	enrichment := true
	if input.Scrape.Enrichment != nil {
		enrichment = *input.Scrape.Enrichment
	}

	flags := retrieval.TeamFlags{}
	if v, ok := input.TeamFlags["teamId"].(string); ok {
		flags.TeamID = v
	}
	if v, ok := input.TeamFlags["blocklistEnabled"].(bool); ok {
		flags.BlocklistEnabled = v
	}

	return retrieval.Request{
		RequestID: requestID,
		Query:     input.Query,
		Limits:    limits,
		Scrape: retrieval.ScrapeOptions{
			Mode:       mode,
			Timeout:    fetchTimeout,
			Enrichment: enrichment,
		},
		TeamFlags: flags,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, sendErr := camunda.ExecuteWithRetry(context.Background(), nil, func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	}, "complete-job")
	if sendErr != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

// failMessage flattens field-level validation detail into the job error
// message; ValidationError.Error alone would surface only the first field.
func failMessage(err error) string {
	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		return apperrors.NewRequestInvalidError(valErr.Fields).Error()
	}
	return err.Error()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := string(apperrors.ErrCodeInternal)
	var valErr *apperrors.ValidationError
	var stdErr *apperrors.StandardError
	if errors.As(err, &valErr) {
		errorCode = string(apperrors.ErrCodeRequestInvalid)
	} else if errors.As(err, &stdErr) {
		errorCode = string(stdErr.Code)
	}

	message := failMessage(err)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     message,
		"errorCode": errorCode,
		"retries":   retries,
	})

	_, _ = camunda.ExecuteWithRetry(context.Background(), nil, func(ctx context.Context) (interface{}, error) {
		return client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(message).
			Send(ctx)
	}, "fail-job")
}
