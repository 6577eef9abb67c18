package billing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LukasBrandt/PaperFig/internal/pkg/cache"
)

// Cache key format for webhook-fed entitlement hints
const entitlementKeyFormat = "billing:entitlement:%s" // billing:entitlement:<email>

const entitlementTTL = 24 * time.Hour

type cachedEntitlement struct {
	Plan       string     `json:"plan"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// CacheEntitlement stores a webhook-confirmed entitlement for an email.
// It is a hint that lets the post-checkout page flip to the workspace
// without waiting for a provider round trip; the session still re-verifies.
func CacheEntitlement(email, plan string, validUntil *time.Time) error {
	key := fmt.Sprintf(entitlementKeyFormat, normalizeEmail(email))
	data, err := json.Marshal(cachedEntitlement{Plan: plan, ValidUntil: validUntil})
	if err != nil {
		return err
	}
	return cache.Set(key, data, entitlementTTL)
}

// CachedEntitlement returns the webhook-confirmed entitlement for an email,
// or ok=false when none is stored.
func CachedEntitlement(email string) (plan string, validUntil *time.Time, ok bool) {
	key := fmt.Sprintf(entitlementKeyFormat, normalizeEmail(email))
	raw, err := cache.Get(key)
	if err != nil {
		return "", nil, false
	}
	var ent cachedEntitlement
	if err := json.Unmarshal([]byte(raw), &ent); err != nil {
		return "", nil, false
	}
	return ent.Plan, ent.ValidUntil, true
}

// ClearEntitlement drops the cached entitlement, used when the provider
// reports a deleted subscription.
func ClearEntitlement(email string) error {
	key := fmt.Sprintf(entitlementKeyFormat, normalizeEmail(email))
	return cache.Delete(key)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
