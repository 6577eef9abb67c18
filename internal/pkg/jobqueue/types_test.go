package jobqueue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukasBrandt/PaperFig/internal/pkg/diagram"
)

func TestFigureGenerationJobPayloadRoundTrip(t *testing.T) {
	payload := FigureGenerationJobPayload{
		FigureUUID:  "fig-123",
		SourceText:  "Unsere TLIF-Technik umfasst drei Schritte.",
		Caption:     "TLIF L5/S1 Übersicht",
		Title:       "Methodik",
		DiagramType: "methodology",
		OwnerEmail:  "a@b.ch",
		Plan:        "pro",
	}

	restored, err := FigureGenerationJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestS3ArchiveJobPayloadRoundTrip(t *testing.T) {
	payload := S3ArchiveJobPayload{
		FigureUUID: "fig-123",
		FilePath:   "figures/fig-123.png",
	}

	restored, err := S3ArchiveJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "job-1",
		Type:       JobTypeFigureGeneration,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("pipeline down")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "pipeline down", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestJobIsRetryableExhausted(t *testing.T) {
	job := &Job{Status: JobStatusFailed, RetryCount: DefaultMaxRetries, MaxRetries: DefaultMaxRetries}
	assert.False(t, job.IsRetryable())

	job = &Job{Status: JobStatusCompleted, RetryCount: 0, MaxRetries: DefaultMaxRetries}
	assert.False(t, job.IsRetryable())
}

func TestUserFacingGenerationError(t *testing.T) {
	invalid := userFacingGenerationError(diagram.ErrInvalidInput)
	timeout := userFacingGenerationError(diagram.ErrTimeout)
	pipeline := userFacingGenerationError(fmt.Errorf("%w: status=500", diagram.ErrPipeline))
	unknown := userFacingGenerationError(assert.AnError)

	// Distinct user-facing messages per error class, never the raw error.
	assert.NotEqual(t, invalid, timeout)
	assert.NotEqual(t, timeout, pipeline)
	for _, msg := range []string{invalid, timeout, pipeline, unknown} {
		assert.NotEmpty(t, msg)
		assert.NotContains(t, msg, "status=500")
	}
}

func TestNewQueueDefaults(t *testing.T) {
	queue := NewQueue(0, nil)
	assert.Equal(t, 3, queue.workers)
	assert.Equal(t, 3, cap(queue.workerPool))

	queue = NewQueue(7, nil)
	assert.Equal(t, 7, queue.workers)
}

func TestQueueConstants(t *testing.T) {
	assert.Equal(t, "job:", JobKeyPrefix)
	assert.Equal(t, "job_queue", JobQueueKey)
	assert.Equal(t, "job_processing", JobProcessingKey)
	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}
