package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"github.com/01moynul/finmanager-golang/internal/models"
)

func TestSimulatedProvider_CheckoutUpgradesServerSide(t *testing.T) {
	m, _ := newTestMachine(t)
	p := NewSimulatedProvider("http://localhost:3000/", time.Millisecond, m, nil)
	ctx := context.Background()

	url, err := p.CreateCheckoutSession(ctx, "acct", models.ProPlan)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/#/subscription?success=true", url)

	sub, err := m.Current(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, sub.Tier)

	url, err = p.CreatePortalSession(ctx, "acct", sub)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/#/subscription?portal=true", url)

	sub, err = m.Current(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, sub.Tier)
}

func TestSimulatedProvider_HonoursContext(t *testing.T) {
	m, _ := newTestMachine(t)
	p := NewSimulatedProvider("http://localhost:3000", time.Hour, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.CreateCheckoutSession(ctx, "acct", models.ProPlan)
	assert.ErrorIs(t, err, context.Canceled)

	sub, err := m.Current(context.Background(), "acct")
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, sub.Tier, "an abandoned checkout changes nothing")
}

func TestService_CheckoutAndPortalRules(t *testing.T) {
	m, _ := newTestMachine(t)
	svc := NewService(m, NewSimulatedProvider("http://app", 0, m, nil), nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, "acct", "price_gold")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, err = svc.Checkout(ctx, "acct", models.FreePlan.ID)
	assert.ErrorIs(t, err, ErrFreePlan)
	_, err = svc.Portal(ctx, "acct")
	assert.ErrorIs(t, err, ErrNotSubscribed)

	url, err := svc.Checkout(ctx, "acct", models.ProPlan.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "success=true")

	_, err = svc.Checkout(ctx, "acct", models.ProPlan.ID)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = svc.Portal(ctx, "acct")
	require.NoError(t, err)
	sub, err := svc.Subscription(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, sub.Tier)
}

func newStripeTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	backends := &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	return NewStripeProvider(StripeConfig{SecretKey: "sk_test_123", ProPriceID: "price_123", BaseURL: "https://app.example"}, backends, nil)
}

func TestStripeProvider_CreateCheckoutSession(t *testing.T) {
	p := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_123", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "acct-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "acct-1", r.PostForm.Get("subscription_data[metadata][account_id]"))
		assert.Equal(t, "https://app.example/#/subscription?success=true", r.PostForm.Get("success_url"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	})

	url, err := p.CreateCheckoutSession(context.Background(), "acct-1", models.ProPlan)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", url)
}

func TestStripeProvider_CreatePortalSession(t *testing.T) {
	p := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/billing_portal/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"bps_1","object":"billing_portal.session","url":"https://billing.stripe.com/p/session/bps_1"}`)
	})

	_, err := p.CreatePortalSession(context.Background(), "acct-1", models.Subscription{Tier: models.TierPro})
	assert.ErrorIs(t, err, ErrNoCustomer)

	url, err := p.CreatePortalSession(context.Background(), "acct-1", models.Subscription{Tier: models.TierPro, CustomerID: "cus_1"})
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/p/session/bps_1", url)
}

func TestStripeProvider_APIError(t *testing.T) {
	p := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"No such price: 'price_123'"}}`)
	})

	_, err := p.CreateCheckoutSession(context.Background(), "acct-1", models.ProPlan)
	assert.ErrorContains(t, err, "No such price")
}

const testWebhookSecret = "whsec_test"

func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func stripeEvent(eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object))
}

func TestParseStripeEvent(t *testing.T) {
	periodEnd := time.Date(2024, 11, 21, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		typ    string
		object string
		want   Event
		ok     bool
	}{
		{
			name:   "checkout completed",
			typ:    "checkout.session.completed",
			object: `{"id":"cs_1","object":"checkout.session","mode":"subscription","client_reference_id":"acct-1","customer":"cus_1","subscription":"sub_1"}`,
			want:   Event{Type: EventCheckoutCompleted, AccountID: "acct-1", CustomerID: "cus_1", SubscriptionID: "sub_1"},
			ok:     true,
		},
		{
			name:   "checkout with expanded customer",
			typ:    "checkout.session.completed",
			object: `{"id":"cs_1","object":"checkout.session","metadata":{"account_id":"acct-2"},"customer":{"id":"cus_2","object":"customer"},"subscription":null}`,
			want:   Event{Type: EventCheckoutCompleted, AccountID: "acct-2", CustomerID: "cus_2"},
			ok:     true,
		},
		{
			name:   "one-off payment checkout ignored",
			typ:    "checkout.session.completed",
			object: `{"id":"cs_1","object":"checkout.session","mode":"payment"}`,
		},
		{
			name:   "subscription past due",
			typ:    "customer.subscription.updated",
			object: fmt.Sprintf(`{"id":"sub_1","object":"subscription","status":"past_due","customer":"cus_1","current_period_end":%d,"metadata":{"account_id":"acct-1"}}`, periodEnd.Unix()),
			want: Event{Type: EventSubscriptionUpdated, AccountID: "acct-1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				Status: models.StatusPastDue, PeriodEnd: periodEnd},
			ok: true,
		},
		{
			name:   "subscription deleted",
			typ:    "customer.subscription.deleted",
			object: `{"id":"sub_1","object":"subscription","status":"canceled","customer":"cus_1","metadata":{"account_id":"acct-1"}}`,
			want: Event{Type: EventSubscriptionCanceled, AccountID: "acct-1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				Status: models.StatusCanceled},
			ok: true,
		},
		{
			name:   "unrelated event",
			typ:    "invoice.paid",
			object: `{"id":"in_1","object":"invoice"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := stripeEvent(tt.typ, tt.object)
			ev, ok, err := ParseStripeEvent(payload, signStripePayload(payload, testWebhookSecret), testWebhookSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestParseStripeEvent_BadSignature(t *testing.T) {
	payload := stripeEvent("checkout.session.completed", `{"id":"cs_1"}`)

	_, _, err := ParseStripeEvent(payload, signStripePayload(payload, "whsec_other"), testWebhookSecret)
	assert.Error(t, err)

	_, _, err = ParseStripeEvent(payload, "", testWebhookSecret)
	assert.Error(t, err)
}

func TestParseStripeEvent_DrivesMachine(t *testing.T) {
	m, _ := newTestMachine(t)
	svc := NewService(m, nil, nil)
	ctx := context.Background()

	payload := stripeEvent("checkout.session.completed",
		`{"id":"cs_1","object":"checkout.session","mode":"subscription","client_reference_id":"acct-1","customer":"cus_1","subscription":"sub_1"}`)
	ev, ok, err := ParseStripeEvent(payload, signStripePayload(payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)
	require.True(t, ok)

	sub, err := svc.HandleEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, sub.IsPro())
	assert.Equal(t, "cus_1", sub.CustomerID)
}
