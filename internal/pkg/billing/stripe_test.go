package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	cfg := &config.AppConfig{
		PublicDomain:          "https://paperfig.test",
		StripeSecretKey:       "sk_test_123",
		StripeWebhookSecret:   "whsec_123",
		StripePricePro:        "price_pro_123",
		StripePriceEnterprise: "price_ent_456",
	}
	client := NewClient(cfg, NewCatalog(cfg))

	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)

		prev := stripe.GetBackend(stripe.APIBackend)
		stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:           stripe.String(srv.URL),
			HTTPClient:    srv.Client(),
			LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
		}))
		t.Cleanup(func() { stripe.SetBackend(stripe.APIBackend, prev) })
	}

	return client
}

func TestCreateCheckoutSessionUnknownPlan(t *testing.T) {
	client := testClient(t, nil)

	_, err := client.CreateCheckoutSession(context.Background(), "platinum", "a@b.ch")
	assert.ErrorIs(t, err, ErrPlanNotConfigured)
}

func TestCreateCheckoutSessionReturnsURL(t *testing.T) {
	var gotPrice string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotPrice = r.PostForm.Get("line_items[0][price]")
		fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/pay/cs_test_1"}`)
	}))

	sess, err := client.CreateCheckoutSession(context.Background(), "pro", "a@b.ch")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.test/pay/cs_test_1", sess.URL)
	assert.Equal(t, "price_pro_123", gotPrice)
}

func TestCheckSubscriptionActivePro(t *testing.T) {
	periodEnd := time.Now().Add(20 * 24 * time.Hour).Unix()
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/customers":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"cus_1","object":"customer","email":"a@b.ch"}],"has_more":false,"url":"/v1/customers"}`)
		case "/v1/subscriptions":
			fmt.Fprintf(w, `{"object":"list","data":[{"id":"sub_1","object":"subscription","status":"active","created":100,"current_period_end":%d,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro_123","object":"price"}}]}}],"has_more":false,"url":"/v1/subscriptions"}`, periodEnd)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	sub := client.CheckSubscription(context.Background(), "A@B.ch")
	assert.True(t, sub.Active)
	assert.Equal(t, "pro", sub.Plan)
	require.NotNil(t, sub.ValidUntil)
	assert.True(t, sub.ValidUntil.After(time.Now()))
}

func TestCheckSubscriptionPicksNewest(t *testing.T) {
	periodEnd := time.Now().Add(20 * 24 * time.Hour).Unix()
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/customers":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"cus_1","object":"customer"}],"has_more":false,"url":"/v1/customers"}`)
		case "/v1/subscriptions":
			// Older canceled pro sub plus newer active enterprise sub.
			fmt.Fprintf(w, `{"object":"list","data":[
				{"id":"sub_old","object":"subscription","status":"canceled","created":100,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro_123","object":"price"}}]}},
				{"id":"sub_new","object":"subscription","status":"active","created":200,"current_period_end":%d,"items":{"object":"list","data":[{"id":"si_2","object":"subscription_item","price":{"id":"price_ent_456","object":"price"}}]}}
			],"has_more":false,"url":"/v1/subscriptions"}`, periodEnd)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	sub := client.CheckSubscription(context.Background(), "a@b.ch")
	assert.True(t, sub.Active)
	assert.Equal(t, "enterprise", sub.Plan)
}

func TestCheckSubscriptionInactiveStates(t *testing.T) {
	for _, status := range []string{"canceled", "past_due", "trialing", "unpaid"} {
		t.Run(status, func(t *testing.T) {
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/v1/customers":
					fmt.Fprint(w, `{"object":"list","data":[{"id":"cus_1","object":"customer"}],"has_more":false,"url":"/v1/customers"}`)
				case "/v1/subscriptions":
					fmt.Fprintf(w, `{"object":"list","data":[{"id":"sub_1","object":"subscription","status":"%s","created":100,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro_123","object":"price"}}]}}],"has_more":false,"url":"/v1/subscriptions"}`, status)
				default:
					t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
			}))

			sub := client.CheckSubscription(context.Background(), "a@b.ch")
			assert.False(t, sub.Active)
			assert.Empty(t, sub.Plan)
		})
	}
}

// An active subscription without a period end cannot produce the expiry
// the session contract requires, so it must not entitle.
func TestCheckSubscriptionMissingPeriodEnd(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/customers":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"cus_1","object":"customer"}],"has_more":false,"url":"/v1/customers"}`)
		case "/v1/subscriptions":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"sub_1","object":"subscription","status":"active","created":100,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro_123","object":"price"}}]}}],"has_more":false,"url":"/v1/subscriptions"}`)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	sub := client.CheckSubscription(context.Background(), "a@b.ch")
	assert.False(t, sub.Active)
	assert.Empty(t, sub.Plan)
	assert.Nil(t, sub.ValidUntil)
}

func TestCheckSubscriptionUnknownCustomer(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object":"list","data":[],"has_more":false,"url":"/v1/customers"}`)
	}))

	sub := client.CheckSubscription(context.Background(), "nobody@b.ch")
	assert.False(t, sub.Active)
}

// A provider failure must never be converted into granted access.
func TestCheckSubscriptionFailsClosedOnProviderError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"type":"api_error","message":"boom"}}`)
	}))

	sub := client.CheckSubscription(context.Background(), "a@b.ch")
	assert.False(t, sub.Active)
	assert.Empty(t, sub.Plan)
	assert.Nil(t, sub.ValidUntil)
}

func TestMapStripeErrorCardDeclined(t *testing.T) {
	err := mapStripeError(&stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."})

	msg, declined := IsPaymentDeclined(err)
	require.True(t, declined)
	assert.Equal(t, "Your card was declined.", msg)
}

func TestMapStripeErrorProvider(t *testing.T) {
	err := mapStripeError(&stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "boom"})
	assert.ErrorIs(t, err, ErrProvider)

	err = mapStripeError(errors.New("network down"))
	assert.ErrorIs(t, err, ErrProvider)
}
