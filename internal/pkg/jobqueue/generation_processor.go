package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/LukasBrandt/PaperFig/internal/pkg/diagram"
	metrics "github.com/LukasBrandt/PaperFig/internal/pkg/metrics/counter"
	"github.com/LukasBrandt/PaperFig/internal/pkg/preview"
	"github.com/LukasBrandt/PaperFig/internal/pkg/s3archive"
)

// processFigureGenerationJob runs one pipeline call for a queued figure.
//
// Semantic failures (bad input, pipeline error, timeout) mark the figure
// failed and complete the job: a retry would hit the same wall, so a new
// attempt always needs a fresh user action. Only infrastructure errors
// propagate and trigger the queue's retry path.
func (q *Queue) processFigureGenerationJob(ctx context.Context, job *Job) error {
	payload, err := FigureGenerationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid figure generation payload: %w", err)
	}

	if err := diagram.SetFigureStatus(payload.FigureUUID, diagram.STATUS_PROCESSING); err != nil {
		return fmt.Errorf("failed to set figure status: %w", err)
	}

	req := diagram.GenerationRequest{
		SourceText:  payload.SourceText,
		Caption:     payload.Caption,
		Title:       payload.Title,
		DiagramType: diagram.DiagramType(payload.DiagramType),
	}

	imagePath, err := q.diagramClient.Generate(ctx, payload.FigureUUID, req)
	if err != nil {
		msg := userFacingGenerationError(err)
		log.Errorf("[JobQueue] Figure %s generation failed: %v", payload.FigureUUID, err)
		if serr := diagram.SetFigureStatus(payload.FigureUUID, diagram.STATUS_FAILED); serr != nil {
			log.Errorf("[JobQueue] Failed to mark figure %s failed: %v", payload.FigureUUID, serr)
		}
		if serr := diagram.SetFigureError(payload.FigureUUID, msg); serr != nil {
			log.Errorf("[JobQueue] Failed to store figure %s error: %v", payload.FigureUUID, serr)
		}
		return nil
	}

	// Preview is best effort; the full-resolution figure is already stored.
	if _, perr := preview.Render(imagePath); perr != nil {
		log.Warnf("[JobQueue] Preview for figure %s failed: %v", payload.FigureUUID, perr)
	}

	if err := diagram.SetFigureStatus(payload.FigureUUID, diagram.STATUS_COMPLETED); err != nil {
		return fmt.Errorf("failed to set figure status: %w", err)
	}

	if err := metrics.AddGeneration(payload.Plan); err != nil {
		log.Warnf("[JobQueue] Failed to count generation for plan %s: %v", payload.Plan, err)
	}

	q.enqueueArchiveIfEnabled(payload.FigureUUID, imagePath)

	log.Infof("[JobQueue] Figure %s generated: %s", payload.FigureUUID, imagePath)
	return nil
}

// enqueueArchiveIfEnabled schedules an S3 archive job for the figure when
// the archive is configured.
func (q *Queue) enqueueArchiveIfEnabled(figureUUID, imagePath string) {
	cfg, err := s3archive.LoadConfig()
	if err != nil {
		log.Errorf("[JobQueue] S3 archive config invalid: %v", err)
		return
	}
	if !cfg.IsEnabled() {
		return
	}

	payload := S3ArchiveJobPayload{
		FigureUUID: figureUUID,
		FilePath:   imagePath,
	}
	if _, err := q.EnqueueJob(JobTypeS3Archive, payload.ToMap()); err != nil {
		log.Errorf("[JobQueue] Failed to enqueue archive job for figure %s: %v", figureUUID, err)
	}
}

// userFacingGenerationError maps generation errors to the message shown on
// the figure page.
func userFacingGenerationError(err error) string {
	switch {
	case errors.Is(err, diagram.ErrInvalidInput):
		return "Methodentext und Caption dürfen nicht leer sein."
	case errors.Is(err, diagram.ErrTimeout):
		return "Die Diagramm-Generierung hat zu lange gedauert. Bitte versuche es erneut."
	case errors.Is(err, diagram.ErrPipeline):
		return "Die Diagramm-Pipeline hat einen Fehler gemeldet. Bitte versuche es erneut."
	default:
		return "Diagramm konnte nicht erstellt werden. Bitte versuche es erneut."
	}
}
