package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

type fakePayPal struct {
	tokenStatus  int
	verifyStatus string
	createStatus int
	createBody   string

	tokenCalls  int
	lastVerify  map[string]json.RawMessage
	lastCreate  map[string]any
	lastRequest http.Header
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"A21","token_type":"Bearer"}`))
	})
	mux.HandleFunc(verifyPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A21", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastVerify))
		_, _ = w.Write([]byte(`{"verification_status":"` + f.verifyStatus + `"}`))
	})
	mux.HandleFunc(subscriptionPath, func(w http.ResponseWriter, r *http.Request) {
		f.lastRequest = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastCreate))
		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(f.createBody))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakePayPal) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(config.PayPalConfig{
		BaseURL:      srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		WebhookID:    "WH-1",
		BrandName:    "ContApp Peru",
		Locale:       "es-PE",
	})
}

func testHeaders() SignatureHeaders {
	return SignatureHeaders{
		AuthAlgo:         "SHA256withRSA",
		CertURL:          "https://api.paypal.com/cert.pem",
		TransmissionID:   "tx-1",
		TransmissionSig:  "sig",
		TransmissionTime: "2024-01-01T00:00:00Z",
	}
}

func TestVerifyWebhookSignatureSuccess(t *testing.T) {
	f := &fakePayPal{verifyStatus: "SUCCESS"}
	c := newTestClient(t, f)

	event := json.RawMessage(`{"id":"WH-EVT","event_type":"BILLING.SUBSCRIPTION.ACTIVATED"}`)
	ok, err := c.VerifyWebhookSignature(context.Background(), testHeaders(), event)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.tokenCalls)

	assert.JSONEq(t, `"WH-1"`, string(f.lastVerify["webhook_id"]))
	assert.JSONEq(t, `"tx-1"`, string(f.lastVerify["transmission_id"]))
	assert.JSONEq(t, `"SHA256withRSA"`, string(f.lastVerify["auth_algo"]))
	assert.JSONEq(t, string(event), string(f.lastVerify["webhook_event"]))
}

func TestVerifyWebhookSignatureFailureIsFalse(t *testing.T) {
	f := &fakePayPal{verifyStatus: "FAILURE"}
	c := newTestClient(t, f)

	ok, err := c.VerifyWebhookSignature(context.Background(), testHeaders(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyWebhookSignatureTokenFailure(t *testing.T) {
	f := &fakePayPal{tokenStatus: http.StatusUnauthorized}
	c := newTestClient(t, f)

	ok, err := c.VerifyWebhookSignature(context.Background(), testHeaders(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Client Authentication failed")
	assert.Nil(t, f.lastVerify)
}

func TestTokenIsFetchedPerCall(t *testing.T) {
	f := &fakePayPal{verifyStatus: "SUCCESS"}
	c := newTestClient(t, f)

	for i := 0; i < 2; i++ {
		_, err := c.VerifyWebhookSignature(context.Background(), testHeaders(), json.RawMessage(`{}`))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.tokenCalls)
}

func TestCreateSubscription(t *testing.T) {
	f := &fakePayPal{createBody: `{
		"id": "I-NEW",
		"status": "APPROVAL_PENDING",
		"links": [
			{"href": "https://api.paypal.com/v1/billing/subscriptions/I-NEW", "rel": "self", "method": "GET"},
			{"href": "https://www.paypal.com/webapps/billing/subscriptions?ba_token=BA-1", "rel": "approve", "method": "GET"}
		]
	}`}
	c := newTestClient(t, f)

	sub, err := c.CreateSubscription(context.Background(), CreateSubscriptionRequest{
		PlanID:    "P-PLUS",
		CustomID:  "u1:PLUS",
		ReturnURL: "https://app.example/dashboard/plan?paypal=success",
		CancelURL: "https://app.example/dashboard/plan?paypal=cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "I-NEW", sub.ID)
	assert.Equal(t, "https://www.paypal.com/webapps/billing/subscriptions?ba_token=BA-1", sub.ApprovalURL())

	assert.Equal(t, "P-PLUS", f.lastCreate["plan_id"])
	assert.Equal(t, "u1:PLUS", f.lastCreate["custom_id"])
	appCtx, ok := f.lastCreate["application_context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ContApp Peru", appCtx["brand_name"])
	assert.Equal(t, "es-PE", appCtx["locale"])
	assert.Equal(t, "SUBSCRIBE_NOW", appCtx["user_action"])
	assert.Equal(t, "https://app.example/dashboard/plan?paypal=cancel", appCtx["cancel_url"])
	assert.NotEmpty(t, f.lastRequest.Get("PayPal-Request-Id"))
}

func TestCreateSubscriptionAPIError(t *testing.T) {
	f := &fakePayPal{createStatus: http.StatusUnprocessableEntity, createBody: `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed."}`}
	c := newTestClient(t, f)

	_, err := c.CreateSubscription(context.Background(), CreateSubscriptionRequest{PlanID: "P-PLUS"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "The requested action could not be performed.", apiErr.Message)

	f.createBody = `not json`
	_, err = c.CreateSubscription(context.Background(), CreateSubscriptionRequest{PlanID: "P-PLUS"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "PayPal error", apiErr.Message)
}

func TestApprovalURLMissing(t *testing.T) {
	sub := &Subscription{Links: []Link{{Rel: "self", Href: "https://x"}}}
	assert.Empty(t, sub.ApprovalURL())
}

func TestSignatureHeadersFrom(t *testing.T) {
	h := http.Header{}
	h.Set("Paypal-Auth-Algo", "SHA256withRSA")
	h.Set("Paypal-Transmission-Id", "tx-9")

	got := SignatureHeadersFrom(h.Get)
	assert.Equal(t, "SHA256withRSA", got.AuthAlgo)
	assert.Equal(t, "tx-9", got.TransmissionID)
	assert.Empty(t, got.CertURL)
}

func TestAPIBaseURLSelection(t *testing.T) {
	assert.Equal(t, "https://api-m.sandbox.paypal.com", NewClient(config.PayPalConfig{Env: config.PayPalSandbox}).BaseURL)
	assert.Equal(t, "https://api-m.paypal.com", NewClient(config.PayPalConfig{Env: config.PayPalLive}).BaseURL)
}
