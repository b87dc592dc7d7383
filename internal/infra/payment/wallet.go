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

// WalletClient drives the wallet processor: an order is created up front,
// the visitor approves it in the wallet UI, and the processor calls our
// webhook with the order id once the approval completes.
type WalletClient struct {
	BaseURL    string
	ClientID   string
	Secret     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewWalletClient(cfg *config.Config, log *zap.Logger) *WalletClient {
	return &WalletClient{
		BaseURL:  cfg.Payments.WalletBaseURL,
		ClientID: cfg.Payments.WalletClientID,
		Secret:   cfg.Payments.WalletSecret,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type WalletOrderRequest struct {
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type WalletOrder struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
	Status      string `json:"status"`
}

func (c *WalletClient) CreateOrder(ctx context.Context, amountCents int64, reference string) (*WalletOrder, error) {
	return c.post(ctx, fmt.Sprintf("%s/v2/orders", c.BaseURL), WalletOrderRequest{
		AmountCents: amountCents,
		Currency:    "EUR",
		Reference:   reference,
	})
}

// CaptureOrder finalizes an approved order. Called from the webhook handler
// once the processor reports approval.
func (c *WalletClient) CaptureOrder(ctx context.Context, orderID string) (*WalletOrder, error) {
	return c.post(ctx, fmt.Sprintf("%s/v2/orders/%s/capture", c.BaseURL, orderID), struct{}{})
}

func (c *WalletClient) post(ctx context.Context, endpoint string, payload any) (*WalletOrder, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.ClientID, c.Secret)

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
		c.Logger.Error("wallet order request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("wallet order failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var order WalletOrder
	if err := sonic.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &order, nil
}
