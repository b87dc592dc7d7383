package httpclient

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

// MailerClient calls the hosted mail-sending function that delivers booking
// confirmations. Delivery failures are reported to the caller but never roll
// back a persisted booking.
type MailerClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewMailerClient(cfg *config.Config, log *zap.Logger) *MailerClient {
	return &MailerClient{
		BaseURL: cfg.Mailer.BaseURL,
		APIKey:  cfg.Mailer.APIKey,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

// BookingMailRequest is the payload the mail function expects: a booking
// reference plus a type discriminator selecting the template.
type BookingMailRequest struct {
	BookingRef  string `json:"booking_ref"`
	BookingType string `json:"booking_type"`
}

type mailResponse struct {
	Success bool   `json:"success"`
	Errmsg  string `json:"errmsg"`
}

func (c *MailerClient) SendBookingConfirmation(ctx context.Context, bookingRef, bookingType string) error {
	endpoint := fmt.Sprintf("%s/functions/v1/send-booking-email", c.BaseURL)

	body, err := sonic.Marshal(BookingMailRequest{BookingRef: bookingRef, BookingType: bookingType})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("booking mail request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("mail request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result mailResponse
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("mail function reported failure: %s", result.Errmsg)
	}
	return nil
}
