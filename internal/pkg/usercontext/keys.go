package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUserEmail     = "user_email"
	KeyIsSubscribed  = "is_subscribed"
	KeyPlan          = "plan"
	KeyValidUntil    = "valid_until"
	KeyPendingPlan   = "pending_checkout_plan"
	KeyLastFigure    = "last_figure_uuid"
	KeyFromProtected = "from_protected"
)
