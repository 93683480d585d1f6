package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

// Client talks to the commerce catalog service.
type Client struct {
	baseURL    string
	tenantID   string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, tenantID string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		tenantID: tenantID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchProducts fetches full catalog records for the given SKUs within one
// catalog view. Callers bound the SKU list size; this issues a single call.
func (c *Client) FetchProducts(ctx context.Context, viewID, priceBookID string, skus []string) ([]models.CatalogRecord, error) {
	payload := ProductsRequest{
		ViewID:      viewID,
		PriceBookID: priceBookID,
		SKUs:        skus,
	}

	var resp ProductsResponse
	if err := c.post(ctx, "/v1/catalog/products", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// FetchVariantsPage fetches one page of a complex product's variants. An
// empty cursor in the response means the last page.
func (c *Client) FetchVariantsPage(ctx context.Context, viewID, priceBookID, parentSKU string, pageSize int, cursor string) (*VariantsResponse, error) {
	payload := VariantsRequest{
		ViewID:      viewID,
		PriceBookID: priceBookID,
		ParentSKU:   parentSKU,
		PageSize:    pageSize,
		Cursor:      cursor,
	}

	var resp VariantsResponse
	if err := c.post(ctx, "/v1/catalog/variants", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("AC-Tenant-Id", c.tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("catalog request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
