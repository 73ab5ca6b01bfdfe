package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/config"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

const (
	requestTimeout = 15 * time.Second
	maxAttempts    = 3
	baseBackoff    = 500 * time.Millisecond
)

// Client talks to the PayMongo API to create and query GCash payment
// sources. Requests carry a bounded timeout and transient failures are
// retried with backoff, so a hung or flaky gateway cannot hang the caller
// indefinitely.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new PayMongo client
func NewClient(cfg config.PayMongoConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// Source is a PayMongo payment source
type Source struct {
	ID          string
	Status      string
	CheckoutURL string
}

type sourceEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status   string `json:"status"`
			Redirect struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateGCashSource creates a GCash payment source. Amount is in pesos and
// converted to centavos on the wire.
func (c *Client) CreateGCashSource(ctx context.Context, amount float64, billingName, billingEmail, successURL, failedURL string) (*Source, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"type":     "gcash",
				"amount":   int64(math.Round(amount * 100)),
				"currency": "PHP",
				"redirect": map[string]string{
					"success": successURL,
					"failed":  failedURL,
				},
				"billing": map[string]string{
					"name":  billingName,
					"email": billingEmail,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodPost, "/sources", body)
	if err != nil {
		return nil, err
	}

	return parseSource(respBody)
}

// GetSource fetches the current status of a payment source
func (c *Client) GetSource(ctx context.Context, sourceID string) (*Source, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/sources/"+sourceID, nil)
	if err != nil {
		return nil, err
	}

	return parseSource(respBody)
}

func parseSource(body []byte) (*Source, error) {
	var envelope sourceEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &errors.ErrUpstream{Service: "paymongo", Message: "invalid response"}
	}
	return &Source{
		ID:          envelope.Data.ID,
		Status:      envelope.Data.Attributes.Status,
		CheckoutURL: envelope.Data.Attributes.Redirect.CheckoutURL,
	}, nil
}

// do runs one request with retries on network errors and 5xx responses.
// 4xx responses are not retried: the request itself is bad.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(c.secretKey+":"))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := baseBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", auth)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("PayMongo request failed",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("paymongo returned %d", resp.StatusCode)
			c.logger.Warn("PayMongo server error",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			continue
		}

		if resp.StatusCode >= 400 {
			c.logger.Warn("PayMongo request rejected",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
			return nil, &errors.ErrUpstream{
				Service: "paymongo",
				Message: fmt.Sprintf("request rejected with status %d", resp.StatusCode),
			}
		}

		return respBody, nil
	}

	return nil, &errors.ErrUpstream{Service: "paymongo", Message: lastErr.Error()}
}
