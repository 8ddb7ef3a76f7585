/**
 * @description
 * This package provides a client for the external payment gateway. It creates
 * checkout preferences for one-off orders and subscription purchases; the
 * gateway later reports the outcome asynchronously through the webhook
 * endpoint, correlated by the payment identifier returned here.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the client has no API key or base URL.
var ErrNotConfigured = errors.New("payment gateway client is not configured")

// Client is a client for the payment gateway API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new payment gateway client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PreferenceMetadata is echoed back by the gateway in webhook notifications.
// The camelCase keys match the gateway's payload format.
type PreferenceMetadata struct {
	UserID string `json:"userId,omitempty"`
	Plan   string `json:"plan,omitempty"`
}

// PreferenceRequest is the payload for creating a checkout preference.
type PreferenceRequest struct {
	Title             string              `json:"title"`
	Quantity          int                 `json:"quantity"`
	UnitPriceCents    int64               `json:"unit_price_cents"`
	ExternalReference string              `json:"external_reference"`
	Metadata          *PreferenceMetadata `json:"metadata,omitempty"`
}

// Preference is the gateway's response: the payment identifier used for
// webhook correlation plus the URL the buyer is redirected to.
type Preference struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// ErrorResponse represents an error from the payment gateway API.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment gateway error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway error (%d)", e.StatusCode)
}

// CreatePreference asks the gateway for a new checkout preference.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	if c.BaseURL == "" || c.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &ErrorResponse{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return nil, apiErr
	}

	var pref Preference
	if err := json.Unmarshal(respBody, &pref); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}
	if strings.TrimSpace(pref.ID) == "" {
		return nil, errors.New("payment gateway returned an empty preference id")
	}
	return &pref, nil
}
