package billing

import "time"

// Subscription is the provider-agnostic result of a subscription lookup.
// Active is true only when the provider reports status "active"; Plan and
// ValidUntil are set alongside it.
type Subscription struct {
	Active     bool
	Plan       string
	ValidUntil *time.Time
}

// CheckoutSession exposes the provider-hosted checkout the caller must
// redirect the user to.
type CheckoutSession struct {
	ID  string
	URL string
}
