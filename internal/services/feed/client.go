package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

// tokenProvider abstracts TokenSource so tests can inject a static token.
type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client issues authenticated product input calls against the merchant feed
// API.
type Client struct {
	baseURL    string
	tokens     tokenProvider
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL string, tokens tokenProvider, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// InsertProductInput upserts one product input into the given data source.
// The API replaces any existing input with the same id, so create and update
// collapse into a single call.
func (c *Client) InsertProductInput(ctx context.Context, merchantID, dataSourceID string, input *models.ProductInput) error {
	endpoint := fmt.Sprintf("%s/products/v1beta/accounts/%s/productInputs:insert?dataSource=%s",
		c.baseURL, merchantID, url.QueryEscape(dataSourceName(merchantID, dataSourceID)))

	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal product input: %w", err)
	}

	return c.do(ctx, "POST", endpoint, body)
}

// DeleteProductInput removes the product input with the given resource name.
func (c *Client) DeleteProductInput(ctx context.Context, merchantID, dataSourceID, name string) error {
	endpoint := fmt.Sprintf("%s/products/v1beta/%s?dataSource=%s",
		c.baseURL, name, url.QueryEscape(dataSourceName(merchantID, dataSourceID)))

	return c.do(ctx, "DELETE", endpoint, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire access token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("feed request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func dataSourceName(merchantID, dataSourceID string) string {
	return fmt.Sprintf("accounts/%s/dataSources/%s", merchantID, dataSourceID)
}
