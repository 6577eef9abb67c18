package jobqueue

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/LukasBrandt/PaperFig/internal/pkg/s3archive"
)

// processS3ArchiveJob uploads one generated figure to the archive bucket.
// Archive failures return an error so the queue's retry path kicks in.
func (q *Queue) processS3ArchiveJob(ctx context.Context, job *Job) error {
	payload, err := S3ArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid s3 archive payload: %w", err)
	}

	cfg, err := s3archive.LoadConfig()
	if err != nil {
		return fmt.Errorf("s3 archive config: %w", err)
	}
	if !cfg.IsEnabled() {
		// Archive was disabled after the job was enqueued; nothing to do.
		log.Warnf("[JobQueue] Skipping archive for figure %s: S3 archive disabled", payload.FigureUUID)
		return nil
	}

	if _, err := os.Stat(payload.FilePath); err != nil {
		return fmt.Errorf("figure file missing for archive: %w", err)
	}

	client, err := s3archive.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("s3 archive client: %w", err)
	}

	now := time.Now()
	objectKey := cfg.GetObjectKey(payload.FigureUUID, now.Year(), int(now.Month()))

	result, err := client.ArchiveFigure(ctx, payload.FilePath, objectKey)
	if err != nil {
		return fmt.Errorf("failed to archive figure %s: %w", payload.FigureUUID, err)
	}

	log.Infof("[JobQueue] Figure %s archived to s3://%s/%s (%d bytes)",
		payload.FigureUUID, result.BucketName, result.ObjectKey, result.Size)
	return nil
}
