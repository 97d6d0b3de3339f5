package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// Client — HTTP-клиент платежного провайдера (checkout-сессии).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Compile-time check
var _ interfaces.PaymentProvider = (*Client)(nil)

// NewClient создает клиент платежного провайдера.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("PaymentClient"),
	}
}

type checkoutRequest struct {
	ClientReferenceID string `json:"client_reference_id"` // Наш purchase ID
	Name              string `json:"name"`
	AmountCents       int    `json:"amount_cents"`
	Currency          string `json:"currency"`
	SuccessURL        string `json:"success_url"`
	CancelURL         string `json:"cancel_url"`
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession создает сессию оплаты у провайдера.
func (c *Client) CreateCheckoutSession(ctx context.Context, params interfaces.CheckoutParams) (*models.CheckoutSession, error) {
	body, err := json.Marshal(checkoutRequest{
		ClientReferenceID: params.PurchaseID,
		Name:              params.PackageName,
		AmountCents:       params.AmountCents,
		Currency:          params.Currency,
		SuccessURL:        params.SuccessURL,
		CancelURL:         params.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Checkout session request failed", zap.Error(err))
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Checkout session rejected by provider",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var session checkoutResponse
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("payment provider returned incomplete session")
	}

	c.logger.Info("Checkout session created", zap.String("sessionID", session.ID))
	return &models.CheckoutSession{SessionID: session.ID, CheckoutURL: session.URL}, nil
}
