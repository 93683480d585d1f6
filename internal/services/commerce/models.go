package commerce

import "feedsync/internal/models"

// ProductsRequest is the query-style product fetch payload.
type ProductsRequest struct {
	ViewID      string   `json:"viewId"`
	PriceBookID string   `json:"priceBookId,omitempty"`
	SKUs        []string `json:"skus"`
}

type ProductsResponse struct {
	Products []models.CatalogRecord `json:"products"`
}

// VariantsRequest is the paginated per-parent variants fetch payload.
type VariantsRequest struct {
	ViewID      string `json:"viewId"`
	PriceBookID string `json:"priceBookId,omitempty"`
	ParentSKU   string `json:"sku"`
	PageSize    int    `json:"pageSize"`
	Cursor      string `json:"cursor,omitempty"`
}

type VariantEntry struct {
	Selections []string             `json:"selections,omitempty"`
	Product    models.CatalogRecord `json:"product"`
}

type VariantsResponse struct {
	Variants []VariantEntry `json:"variants"`
	Cursor   string         `json:"cursor,omitempty"`
}
