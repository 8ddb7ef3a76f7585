/**
 * @description
 * This package provides a client for the external AI generation API used for
 * logo name suggestions and design image generation. It encapsulates the logic
 * for making authenticated HTTP requests, handling request body construction,
 * and parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package genai

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
var ErrNotConfigured = errors.New("generation api client is not configured")

// Client is a client for the AI generation API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new generation API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NameSuggestionRequest is the payload for the name suggestion endpoint.
type NameSuggestionRequest struct {
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Count        int    `json:"count"`
}

// NameSuggestionResponse is the expected response from the name suggestion endpoint.
type NameSuggestionResponse struct {
	Names []string `json:"names"`
}

// ImageRequest is the payload for the image generation endpoint.
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

// ImageResponse is the expected response from the image generation endpoint.
type ImageResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents an error returned by the generation API.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation api error (%d)", e.StatusCode)
}

// SuggestLogoNames asks the generation API for brand name suggestions.
func (c *Client) SuggestLogoNames(ctx context.Context, businessName, industry string, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}
	var out NameSuggestionResponse
	err := c.post(ctx, "/v1/names", NameSuggestionRequest{
		BusinessName: businessName,
		Industry:     industry,
		Count:        count,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Names, nil
}

// GenerateDesignImage asks the generation API for a design image and returns
// its hosted URL.
func (c *Client) GenerateDesignImage(ctx context.Context, prompt, style string) (string, error) {
	var out ImageResponse
	err := c.post(ctx, "/v1/images", ImageRequest{Prompt: prompt, Style: style}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	if c.BaseURL == "" || c.APIKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation api request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &ErrorResponse{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
