package counter

import (
	"context"
	"strconv"

	"github.com/LukasBrandt/PaperFig/internal/pkg/cache"
)

const (
	generationsKey = "figure:counters:generations"
	downloadsKey   = "figure:counters:downloads"
)

// AddGeneration increments the generation counter for a plan in Redis
func AddGeneration(plan string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, generationsKey, plan, 1).Err()
}

// AddDownload increments the download counter for a plan in Redis
func AddDownload(plan string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, downloadsKey, plan, 1).Err()
}

// Snapshot returns the current per-plan counters. There is no database to
// flush into; the Redis hashes are the record for usage stats.
func Snapshot() (generations, downloads map[string]int64, err error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	rawGenerations, err := rdb.HGetAll(ctx, generationsKey).Result()
	if err != nil {
		return nil, nil, err
	}
	rawDownloads, err := rdb.HGetAll(ctx, downloadsKey).Result()
	if err != nil {
		return nil, nil, err
	}
	return parseCounts(rawGenerations), parseCounts(rawDownloads), nil
}

func parseCounts(raw map[string]string) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out
}
