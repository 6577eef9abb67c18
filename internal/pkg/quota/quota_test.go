package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
)

func TestMonthlyKey(t *testing.T) {
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "quota:figures:u-123:2026-03", monthlyKey("u-123", now))

	// The key changes with the month, which is what resets the quota.
	next := now.AddDate(0, 1, 0)
	assert.NotEqual(t, monthlyKey("u-123", now), monthlyKey("u-123", next))
}

func TestConsumeFigureNoPlan(t *testing.T) {
	// Plans without a figure quota are rejected before any counter is
	// touched.
	assert.ErrorIs(t, ConsumeFigure("u-123", entitlements.PlanNone), ErrExhausted)
	assert.ErrorIs(t, ConsumeFigure("u-123", entitlements.Normalize("platinum")), ErrExhausted)
}
