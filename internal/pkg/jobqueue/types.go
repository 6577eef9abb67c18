package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeFigureGeneration JobType = "figure_generation"
	JobTypeS3Archive        JobType = "s3_archive"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// FigureGenerationJobPayload contains the payload for figure generation jobs
type FigureGenerationJobPayload struct {
	FigureUUID  string `json:"figure_uuid"`
	SourceText  string `json:"source_text"`
	Caption     string `json:"caption"`
	Title       string `json:"title"`
	DiagramType string `json:"diagram_type"`
	OwnerEmail  string `json:"owner_email"`
	Plan        string `json:"plan"`
}

// ToMap converts the payload to a map for storage
func (p FigureGenerationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"figure_uuid":  p.FigureUUID,
		"source_text":  p.SourceText,
		"caption":      p.Caption,
		"title":        p.Title,
		"diagram_type": p.DiagramType,
		"owner_email":  p.OwnerEmail,
		"plan":         p.Plan,
	}
}

// FigureGenerationJobPayloadFromMap creates a payload from a map
func FigureGenerationJobPayloadFromMap(data map[string]interface{}) (*FigureGenerationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload FigureGenerationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// S3ArchiveJobPayload contains the payload for S3 archive jobs
type S3ArchiveJobPayload struct {
	FigureUUID string `json:"figure_uuid"`
	FilePath   string `json:"file_path"`
}

// ToMap converts the payload to a map for storage
func (p S3ArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"figure_uuid": p.FigureUUID,
		"file_path":   p.FilePath,
	}
}

// S3ArchiveJobPayloadFromMap creates a payload from a map
func S3ArchiveJobPayloadFromMap(data map[string]interface{}) (*S3ArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload S3ArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
