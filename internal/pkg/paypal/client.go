package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

const (
	tokenPath        = "/v1/oauth2/token"
	subscriptionPath = "/v1/billing/subscriptions"
	verifyPath       = "/v1/notifications/verify-webhook-signature"

	verificationSuccess = "SUCCESS"
	userActionSubscribe = "SUBSCRIBE_NOW"
)

// Client talks to the PayPal REST API. A fresh access token is fetched for
// every call.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
	BrandName    string
	Locale       string

	HTTPClient *http.Client
}

// APIError is a non-2xx answer from PayPal.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal: status=%d: %s", e.StatusCode, e.Message)
}

// SignatureHeaders are the transmission headers PayPal sends with a webhook.
type SignatureHeaders struct {
	AuthAlgo         string
	CertURL          string
	TransmissionID   string
	TransmissionSig  string
	TransmissionTime string
}

// SignatureHeadersFrom reads the paypal-* headers through get, for example
// http.Header.Get. fiber.Ctx.Get takes an optional default and needs a
// closure.
func SignatureHeadersFrom(get func(key string) string) SignatureHeaders {
	return SignatureHeaders{
		AuthAlgo:         get("paypal-auth-algo"),
		CertURL:          get("paypal-cert-url"),
		TransmissionID:   get("paypal-transmission-id"),
		TransmissionSig:  get("paypal-transmission-sig"),
		TransmissionTime: get("paypal-transmission-time"),
	}
}

type CreateSubscriptionRequest struct {
	PlanID    string
	CustomID  string
	ReturnURL string
	CancelURL string
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type Subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

// ApprovalURL returns the link the buyer follows to approve the subscription.
func (s *Subscription) ApprovalURL() string {
	for _, l := range s.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

func NewClient(cfg config.PayPalConfig) *Client {
	return &Client{
		BaseURL:      cfg.APIBaseURL(),
		ClientID:     strings.TrimSpace(cfg.ClientID),
		ClientSecret: strings.TrimSpace(cfg.ClientSecret),
		WebhookID:    strings.TrimSpace(cfg.WebhookID),
		BrandName:    cfg.BrandName,
		Locale:       cfg.Locale,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AccessToken obtains an OAuth2 token with the client credentials grant.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return "", errors.New("PAYPAL_CLIENT_ID/PAYPAL_CLIENT_SECRET are not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(tokenPath), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out struct {
		AccessToken      string `json:"access_token"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(out.ErrorDescription)
		if msg == "" {
			msg = "PayPal auth error"
		}
		return "", fmt.Errorf("paypal token request failed: status=%d: %s", resp.StatusCode, msg)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", errors.New("paypal token request returned empty access_token")
	}
	return out.AccessToken, nil
}

// CreateSubscription creates a subscription awaiting buyer approval.
func (c *Client) CreateSubscription(ctx context.Context, in CreateSubscriptionRequest) (*Subscription, error) {
	if strings.TrimSpace(in.PlanID) == "" {
		return nil, errors.New("plan id is required")
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"plan_id":   in.PlanID,
		"custom_id": in.CustomID,
		"application_context": map[string]any{
			"brand_name":  c.BrandName,
			"locale":      c.Locale,
			"user_action": userActionSubscribe,
			"return_url":  in.ReturnURL,
			"cancel_url":  in.CancelURL,
		},
	}

	var out Subscription
	headers := map[string]string{"PayPal-Request-Id": uuid.NewString()}
	if err := c.postJSON(ctx, token, subscriptionPath, payload, headers, &out, "PayPal error"); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyWebhookSignature asks PayPal whether the delivery carrying headers and
// rawEvent was signed for the configured webhook. Only a SUCCESS verdict
// returns true.
func (c *Client) VerifyWebhookSignature(ctx context.Context, headers SignatureHeaders, rawEvent json.RawMessage) (bool, error) {
	if c.WebhookID == "" {
		return false, errors.New("PAYPAL_WEBHOOK_ID is not configured")
	}
	if len(bytes.TrimSpace(rawEvent)) == 0 {
		return false, errors.New("webhook event body is empty")
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return false, err
	}

	payload := map[string]any{
		"auth_algo":         headers.AuthAlgo,
		"cert_url":          headers.CertURL,
		"transmission_id":   headers.TransmissionID,
		"transmission_sig":  headers.TransmissionSig,
		"transmission_time": headers.TransmissionTime,
		"webhook_id":        c.WebhookID,
		"webhook_event":     rawEvent,
	}

	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := c.postJSON(ctx, token, verifyPath, payload, nil, &out, "PayPal webhook verify error"); err != nil {
		return false, err
	}
	return out.VerificationStatus == verificationSuccess, nil
}

func (c *Client) postJSON(ctx context.Context, token, path string, payload any, headers map[string]string, out any, fallback string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, fallback)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fallback
}
