package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garment-studio/models"
)

// HTTPCartClient posts line items as JSON to the cart service
type HTTPCartClient struct {
	endpoint string
	client   *http.Client
}

var _ CartClient = (*HTTPCartClient)(nil)

// NewHTTPCartClient creates a client posting to endpoint
func NewHTTPCartClient(endpoint string, timeout time.Duration) *HTTPCartClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCartClient{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

type cartItemResponse struct {
	CartItemID string `json:"cartItemId"`
	ID         string `json:"id"`
}

// AddLineItem posts item and returns the cart item id assigned by the cart
func (c *HTTPCartClient) AddLineItem(ctx context.Context, item models.CartLineItem) (string, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("failed to encode line item: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cart request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read cart response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("cart returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out cartItemResponse
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return "", fmt.Errorf("failed to decode cart response: %w", err)
		}
	}
	if out.CartItemID == "" {
		out.CartItemID = out.ID
	}
	return out.CartItemID, nil
}

// LoggingCartClient logs line items instead of posting them, for local development
type LoggingCartClient struct{}

var _ CartClient = LoggingCartClient{}

// AddLineItem logs item and returns a generated id
func (LoggingCartClient) AddLineItem(ctx context.Context, item models.CartLineItem) (string, error) {
	id := uuid.NewString()
	zap.L().Info("🛒 Line item ready for cart",
		zap.String("cartItemId", id),
		zap.String("productId", item.ProductID),
		zap.Int("quantity", item.Quantity),
		zap.Float64("total", item.Total),
	)
	return id, nil
}

// NewCartClient returns an HTTP client when endpoint is set and a logging client otherwise
func NewCartClient(endpoint string, timeout time.Duration) CartClient {
	if strings.TrimSpace(endpoint) == "" {
		return LoggingCartClient{}
	}
	return NewHTTPCartClient(endpoint, timeout)
}
