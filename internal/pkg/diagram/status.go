package diagram

import (
	"fmt"
	"time"

	"github.com/LukasBrandt/PaperFig/internal/pkg/cache"
)

// Cache key formats for figure generation status
const (
	FigureStatusKeyFormat          = "figure:status:%s"           // figure:status:<uuid>
	FigureStatusTimestampKeyFormat = "figure:status:timestamp:%s" // figure:status:timestamp:<uuid>
	FigureErrorKeyFormat           = "figure:error:%s"            // figure:error:<uuid>
)

// Status constants for figure generation
const (
	STATUS_PENDING    = "pending"    // Figure is queued for generation
	STATUS_PROCESSING = "processing" // Pipeline call is in flight
	STATUS_COMPLETED  = "completed"  // Figure is ready
	STATUS_FAILED     = "failed"     // Generation failed
)

const statusTTL = 24 * time.Hour

// SetFigureStatus sets the generation status of a figure in the cache
func SetFigureStatus(figureUUID string, status string) error {
	key := fmt.Sprintf(FigureStatusKeyFormat, figureUUID)
	SetFigureStatusTimestamp(figureUUID, time.Now())
	return cache.Set(key, status, statusTTL)
}

// SetFigureStatusTimestamp sets the timestamp when the status was set
func SetFigureStatusTimestamp(figureUUID string, timestamp time.Time) error {
	cacheKey := fmt.Sprintf(FigureStatusTimestampKeyFormat, figureUUID)
	return cache.Set(cacheKey, timestamp.Format(time.RFC3339), statusTTL)
}

// GetFigureStatus retrieves the generation status of a figure from the cache.
// An unknown figure returns the empty string.
func GetFigureStatus(figureUUID string) string {
	key := fmt.Sprintf(FigureStatusKeyFormat, figureUUID)
	status, err := cache.Get(key)
	if err != nil {
		return ""
	}
	return status
}

// GetFigureStatusTimestamp gets the timestamp when the status was set
func GetFigureStatusTimestamp(figureUUID string) (time.Time, error) {
	cacheKey := fmt.Sprintf(FigureStatusTimestampKeyFormat, figureUUID)
	timestampStr, err := cache.Get(cacheKey)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, timestampStr)
}

// SetFigureError stores the user-facing failure message for a figure
func SetFigureError(figureUUID string, message string) error {
	key := fmt.Sprintf(FigureErrorKeyFormat, figureUUID)
	return cache.Set(key, message, statusTTL)
}

// GetFigureError retrieves the failure message for a figure, if any
func GetFigureError(figureUUID string) string {
	key := fmt.Sprintf(FigureErrorKeyFormat, figureUUID)
	msg, err := cache.Get(key)
	if err != nil {
		return ""
	}
	return msg
}
