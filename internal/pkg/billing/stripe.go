package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
)

// Client wraps the Stripe API for checkout creation and subscription
// lookups. The plan catalog and credentials are fixed at construction.
type Client struct {
	catalog       *Catalog
	publicDomain  string
	webhookSecret string
	demoMode      bool
}

// NewClient wires the Stripe API key and returns a billing client.
func NewClient(cfg *config.AppConfig, catalog *Catalog) *Client {
	stripe.Key = cfg.StripeSecretKey

	if cfg.DemoMode {
		log.Warn("[Billing] DEMO_MODE is enabled: subscription checks are skipped and every login is treated as subscribed. Do not run this in production.")
	}

	return &Client{
		catalog:       catalog,
		publicDomain:  strings.TrimRight(cfg.PublicDomain, "/"),
		webhookSecret: cfg.StripeWebhookSecret,
		demoMode:      cfg.DemoMode,
	}
}

// Catalog returns the plan catalog the client was built with.
func (c *Client) Catalog() *Catalog {
	return c.catalog
}

// CreateCheckoutSession starts a Stripe Checkout Session for the given plan
// and returns the hosted checkout URL the user must be redirected to.
func (c *Client) CreateCheckoutSession(ctx context.Context, planID, customerEmail string) (*CheckoutSession, error) {
	plan, ok := c.catalog.FindByID(planID)
	if !ok || strings.TrimSpace(plan.StripePriceID) == "" {
		return nil, ErrPlanNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.publicDomain + "/billing/success?plan=" + string(plan.ID)),
		CancelURL:  stripe.String(c.publicDomain + "/billing/cancel"),
	}
	if email := strings.TrimSpace(customerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CheckSubscription looks up the customer by email and inspects their most
// recent subscription. Lookup failures report an inactive subscription;
// access is never granted on a provider error.
func (c *Client) CheckSubscription(ctx context.Context, email string) Subscription {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Subscription{}
	}

	if c.demoMode {
		validUntil := time.Now().Add(30 * 24 * time.Hour)
		return Subscription{Active: true, Plan: string(c.catalog.Plans()[0].ID), ValidUntil: &validUntil}
	}

	custID, err := c.findCustomerID(ctx, email)
	if err != nil {
		log.Errorf("[Billing] Customer lookup for %s failed: %v", email, err)
		return Subscription{}
	}
	if custID == "" {
		return Subscription{}
	}

	sub, err := c.newestSubscription(ctx, custID)
	if err != nil {
		log.Errorf("[Billing] Subscription lookup for customer %s failed: %v", custID, err)
		return Subscription{}
	}
	if sub == nil {
		return Subscription{}
	}

	if !isEntitlingStatus(string(sub.Status)) {
		return Subscription{}
	}

	planID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		if plan, ok := c.catalog.FindByPriceID(sub.Items.Data[0].Price.ID); ok {
			planID = string(plan.ID)
		}
	}
	if planID == "" {
		// An active subscription on a price we do not sell grants nothing.
		log.Warnf("[Billing] Active subscription %s has no catalog plan, treating as inactive", sub.ID)
		return Subscription{}
	}

	if sub.CurrentPeriodEnd <= 0 {
		// Every subscribed session carries an expiry; without a period end
		// that contract cannot be met, so the subscription grants nothing.
		log.Warnf("[Billing] Active subscription %s has no period end, treating as inactive", sub.ID)
		return Subscription{}
	}

	validUntil := time.Unix(sub.CurrentPeriodEnd, 0)
	return Subscription{Active: true, Plan: planID, ValidUntil: &validUntil}
}

// VerifyWebhook checks the Stripe signature and parses the event.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
}

// CustomerEmail resolves a Stripe customer id to its email address.
// Webhook events carry only the customer id.
func (c *Client) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return cust.Email, nil
}

func (c *Client) findCustomerID(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", mapStripeError(err)
	}
	return "", nil
}

func (c *Client) newestSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	var subs []*stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError(err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].Created > subs[j].Created })
	return subs[0], nil
}

// mapStripeError translates Stripe errors into the local taxonomy.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			msg := stripeErr.Msg
			if msg == "" {
				msg = "Die Zahlungsmethode wurde abgelehnt."
			}
			return &PaymentDeclinedError{Message: msg}
		}
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
