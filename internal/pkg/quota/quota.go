package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LukasBrandt/PaperFig/internal/pkg/cache"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
)

// ErrExhausted is returned when a user has used up their plan's monthly
// figure quota.
var ErrExhausted = errors.New("monthly figure quota exhausted")

const keyFormat = "quota:figures:%s:%s" // quota:figures:<user id>:<YYYY-MM>

// Counters outlive their month by a margin; a new month starts a new key.
const keyTTL = 40 * 24 * time.Hour

func monthlyKey(userID string, now time.Time) string {
	return fmt.Sprintf(keyFormat, userID, now.Format("2006-01"))
}

// ConsumeFigure reserves one generation against the user's monthly quota.
// The increment happens first; when it pushes the counter past the plan's
// limit the reservation is rolled back and ErrExhausted is returned, so two
// concurrent requests cannot both slip through on the last slot.
func ConsumeFigure(userID string, plan entitlements.Plan) error {
	limit := entitlements.MonthlyFigureLimit(plan)
	if limit <= 0 {
		return ErrExhausted
	}

	ctx := context.Background()
	key := monthlyKey(userID, time.Now())

	used, err := cache.GetClient().Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if used == 1 {
		_ = cache.GetClient().Expire(ctx, key, keyTTL).Err()
	}
	if used > int64(limit) {
		_ = cache.GetClient().Decr(ctx, key).Err()
		return ErrExhausted
	}
	return nil
}

// RefundFigure returns one reserved generation. Used when enqueueing fails
// after the quota was already consumed.
func RefundFigure(userID string) {
	_ = cache.GetClient().Decr(context.Background(), monthlyKey(userID, time.Now())).Err()
}

// UsedFigures returns how many figures the user generated this month.
func UsedFigures(userID string) (int, error) {
	used, err := cache.GetInt(monthlyKey(userID, time.Now()))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return used, err
}
