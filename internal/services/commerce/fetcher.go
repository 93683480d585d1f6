package commerce

import (
	"context"
	"fmt"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

const (
	// fetchBatchSize bounds the SKU count per products call.
	fetchBatchSize = 25
	// variantPageSize is the cursor page size for per-parent variant fetches.
	variantPageSize = 100
)

// catalogAPI is the slice of Client the fetcher needs. Tests substitute it.
type catalogAPI interface {
	FetchProducts(ctx context.Context, viewID, priceBookID string, skus []string) ([]models.CatalogRecord, error)
	FetchVariantsPage(ctx context.Context, viewID, priceBookID, parentSKU string, pageSize int, cursor string) (*VariantsResponse, error)
}

// Fetcher retrieves catalog records in bounded-size batches.
type Fetcher struct {
	api    catalogAPI
	logger *logger.Logger
}

func NewFetcher(api catalogAPI, logger *logger.Logger) *Fetcher {
	return &Fetcher{api: api, logger: logger}
}

// FetchSimple retrieves the records for the given SKUs, keyed by SKU.
// SKUs the catalog does not return are simply absent from the map.
func (f *Fetcher) FetchSimple(ctx context.Context, viewID, priceBookID string, skus []string) (map[string]*models.CatalogRecord, error) {
	records := make(map[string]*models.CatalogRecord, len(skus))

	for _, chunk := range chunkSKUs(skus, fetchBatchSize) {
		fetched, err := f.api.FetchProducts(ctx, viewID, priceBookID, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products: %w", err)
		}
		for i := range fetched {
			rec := &fetched[i]
			records[rec.SKU] = rec
		}
	}

	return records, nil
}

// FetchVariants retrieves each parent record and its full variant list,
// keyed by child SKU. A parent the catalog does not return is logged and
// skipped; its variants surface later as per-item transform errors.
func (f *Fetcher) FetchVariants(ctx context.Context, viewID, priceBookID string, parentSKUs []string) (map[string]models.Variant, error) {
	parents, err := f.FetchSimple(ctx, viewID, priceBookID, parentSKUs)
	if err != nil {
		return nil, err
	}

	variants := make(map[string]models.Variant)
	for _, parentSKU := range parentSKUs {
		parent, ok := parents[parentSKU]
		if !ok {
			f.logger.Warn("parent product %s not found in catalog, skipping", parentSKU)
			continue
		}
		if !parent.IsComplex() {
			f.logger.Warn("parent product %s is not a complex product, skipping", parentSKU)
			continue
		}

		entries, err := f.fetchAllVariants(ctx, viewID, priceBookID, parentSKU)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			child := entries[i].Product
			variants[child.SKU] = models.Variant{
				Parent:     parent,
				Product:    &entries[i].Product,
				Selections: entries[i].Selections,
			}
		}
	}

	return variants, nil
}

func (f *Fetcher) fetchAllVariants(ctx context.Context, viewID, priceBookID, parentSKU string) ([]VariantEntry, error) {
	var entries []VariantEntry
	cursor := ""
	for {
		page, err := f.api.FetchVariantsPage(ctx, viewID, priceBookID, parentSKU, variantPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch variants for %s: %w", parentSKU, err)
		}
		entries = append(entries, page.Variants...)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	return entries, nil
}

func chunkSKUs(skus []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(skus); start += size {
		end := start + size
		if end > len(skus) {
			end = len(skus)
		}
		chunks = append(chunks, skus[start:end])
	}
	return chunks
}
