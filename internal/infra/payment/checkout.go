package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/calabriando/api/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// CheckoutClient drives the redirect-based card processor: the server
// creates a checkout session with amount, reference and return URLs, then
// the browser is redirected to the session URL. Payment capture happens
// entirely on the processor's side.
type CheckoutClient struct {
	BaseURL    string
	SecretKey  string
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewCheckoutClient(cfg *config.Config, log *zap.Logger) *CheckoutClient {
	return &CheckoutClient{
		BaseURL:    cfg.Payments.CheckoutBaseURL,
		SecretKey:  cfg.Payments.CheckoutSecretKey,
		SuccessURL: cfg.Payments.SuccessURL,
		CancelURL:  cfg.Payments.CancelURL,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type CheckoutSessionRequest struct {
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	BookingType string `json:"booking_type"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateSession registers a pending payment with the processor and returns
// the session the browser must be redirected to.
func (c *CheckoutClient) CreateSession(ctx context.Context, amountCents int64, reference, bookingType string) (*CheckoutSession, error) {
	endpoint := fmt.Sprintf("%s/v1/checkout/sessions", c.BaseURL)

	body, err := sonic.Marshal(CheckoutSessionRequest{
		AmountCents: amountCents,
		Currency:    "eur",
		Reference:   reference,
		BookingType: bookingType,
		SuccessURL:  c.SuccessURL,
		CancelURL:   c.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.Logger.Error("checkout session request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("checkout session failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var session CheckoutSession
	if err := sonic.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
