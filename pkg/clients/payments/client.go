package payments

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/landregistry/internal/config"
	"github.com/mamadbah2/landregistry/internal/domain/models"
)

// APIClient settles sale payments through an external payment gateway.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a gateway client using the provided configuration values.
func NewClient(cfg config.SettlementConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.APIKey != "" {
		restyClient.SetAuthToken(cfg.APIKey)
	}

	return &APIClient{httpClient: restyClient}
}

type settlementRequest struct {
	ID       string `json:"id"`
	ParcelID string `json:"parcel_id"`
	Payer    string `json:"payer"`
	Payee    string `json:"payee"`
	Amount   string `json:"amount"`
}

type settlementResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Settle asks the gateway to move the amount from payer to payee. The
// settlement id doubles as the idempotency key.
func (c *APIClient) Settle(ctx context.Context, s models.Settlement) error {
	body := settlementRequest{
		ID:       s.ID,
		ParcelID: s.ParcelID,
		Payer:    string(s.Payer),
		Payee:    string(s.Payee),
		Amount:   s.Amount.String(),
	}
	return c.post(ctx, s.ID, "/settlements", body)
}

// Reverse asks the gateway to refund a completed settlement.
func (c *APIClient) Reverse(ctx context.Context, s models.Settlement) error {
	return c.post(ctx, s.ID+"-reversal", fmt.Sprintf("/settlements/%s/reversal", s.ID), nil)
}

func (c *APIClient) post(ctx context.Context, idempotencyKey, path string, body any) error {
	result := new(settlementResponse)
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("payment gateway %s: %w", path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("payment gateway error: status=%d, code=%s, message=%s", resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	if result.Status != "" && result.Status != "settled" && result.Status != "reversed" {
		return fmt.Errorf("payment gateway returned status %q for %s", result.Status, path)
	}

	return nil
}
