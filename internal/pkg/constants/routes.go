package constants

// Static route constants
const (
	StartRoute   = "/"
	LoginRoute   = "/login"
	LogoutRoute  = "/logout"
	PricingRoute = "/pricing"

	SubscribeRoute      = "/subscribe/:plan"
	BillingSuccessRoute = "/billing/success"
	BillingCancelRoute  = "/billing/cancel"
	StripeWebhookRoute  = "/webhooks/stripe"

	GenerateRoute       = "/generate"
	FigureStatusRoute   = "/figures/:uuid/status"
	FigureViewRoute     = "/figure/:uuid"
	FigureDownloadRoute = "/figure/:uuid/download"

	// Figure file path without leading slash for URL construction
	FiguresPath = "figures"
)
