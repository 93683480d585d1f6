package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"feedsync/internal/logger"
	"feedsync/internal/markets"
	"feedsync/internal/models"
	"feedsync/internal/services/feed"
	"feedsync/internal/transform"
)

var (
	// ErrUnknownEventType rejects envelopes with an unrecognized type.
	ErrUnknownEventType = errors.New("unrecognized event type")
	// ErrTenantMismatch rejects events for a tenant this process is not
	// configured to serve.
	ErrTenantMismatch = errors.New("event tenant does not match configured tenant")
)

// IsClientError reports whether the failure is the caller's fault and maps
// to a 400-equivalent response.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownEventType) || errors.Is(err, ErrTenantMismatch)
}

// CatalogFetcher retrieves catalog records per market view.
type CatalogFetcher interface {
	FetchSimple(ctx context.Context, viewID, priceBookID string, skus []string) (map[string]*models.CatalogRecord, error)
	FetchVariants(ctx context.Context, viewID, priceBookID string, parentSKUs []string) (map[string]models.Variant, error)
}

// FeedDispatcher pushes transformed records to the feed provider.
type FeedDispatcher interface {
	Upsert(ctx context.Context, target feed.Target, inputs []*models.ProductInput) error
	Delete(ctx context.Context, target feed.Target, skus []string) error
}

// RunRecorder persists the per-invocation audit row. May be nil.
type RunRecorder interface {
	RecordRun(run *models.SyncRun) error
}

// Summary aggregates one invocation's outcome.
type Summary struct {
	TenantID    string `json:"tenantId"`
	ItemCount   int    `json:"itemCount"`
	MarketCount int    `json:"marketCount"`
	Message     string `json:"message"`
}

// Processor routes a change event to its markets and runs the
// classify/fetch/transform/dispatch pipeline for each, sequentially, so the
// worst-case concurrent load on the catalog and feed services stays bounded.
type Processor struct {
	tenantID    string
	registry    *markets.Registry
	transformer *transform.Transformer
	fetcher     CatalogFetcher
	dispatcher  FeedDispatcher
	runs        RunRecorder
	logger      *logger.Logger
}

func New(tenantID string, registry *markets.Registry, transformer *transform.Transformer, fetcher CatalogFetcher, dispatcher FeedDispatcher, runs RunRecorder, logger *logger.Logger) *Processor {
	return &Processor{
		tenantID:    tenantID,
		registry:    registry,
		transformer: transformer,
		fetcher:     fetcher,
		dispatcher:  dispatcher,
		runs:        runs,
		logger:      logger,
	}
}

// Process handles one change event end to end. The first market failure
// aborts the remaining markets; there are no partial-commit semantics.
func (p *Processor) Process(ctx context.Context, event *models.ChangeEvent) (*Summary, error) {
	if event.Type != models.EventTypeProductChange && event.Type != models.EventTypePriceChange {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
	if event.Data.InstanceID != p.tenantID {
		return nil, fmt.Errorf("%w: got %q", ErrTenantMismatch, event.Data.InstanceID)
	}

	buckets := p.registry.Route(event.Data.Items)
	if len(buckets) == 0 {
		summary := &Summary{
			TenantID: p.tenantID,
			Message:  "no items matched any configured market",
		}
		p.recordRun(event, summary, models.RunStatusNoMatch, nil)
		p.logger.Info("no items matched any configured market for tenant %s", p.tenantID)
		return summary, nil
	}

	marketIDs := make([]string, 0, len(buckets))
	for id := range buckets {
		marketIDs = append(marketIDs, id)
	}
	sort.Strings(marketIDs)

	total := 0
	for _, id := range marketIDs {
		bucket := buckets[id]
		count, err := p.processMarket(ctx, event.Type, bucket.Market, bucket.Items)
		if err != nil {
			err = fmt.Errorf("market %s: %w", id, err)
			p.recordRun(event, &Summary{TenantID: p.tenantID}, models.RunStatusFailed, err)
			return nil, err
		}
		total += count
	}

	summary := &Summary{
		TenantID:    p.tenantID,
		ItemCount:   total,
		MarketCount: len(buckets),
		Message:     fmt.Sprintf("Processed %d items across %d markets for tenant: %s", total, len(buckets), p.tenantID),
	}
	p.recordRun(event, summary, models.RunStatusSuccess, nil)
	return summary, nil
}

func (p *Processor) processMarket(ctx context.Context, eventType models.EventType, market *markets.MarketConfig, items []models.ChangeItem) (int, error) {
	if eventType == models.EventTypePriceChange {
		items = markets.FilterByPriceBook(items, market)
		if len(items) == 0 {
			return 0, nil
		}
	}

	var upsertItems []models.ChangeItem
	var deleteSKUs []string
	for _, item := range items {
		if item.Operation == models.OperationDelete {
			deleteSKUs = append(deleteSKUs, item.SKU)
			continue
		}
		upsertItems = append(upsertItems, item)
	}

	inputs, err := p.transformItems(ctx, market, upsertItems)
	if err != nil {
		return 0, err
	}

	target := feed.Target{
		MerchantID:      market.Feed.MerchantID,
		DataSourceID:    market.Feed.DataSourceID,
		ContentLanguage: market.Feed.ContentLanguage,
		FeedLabel:       market.Feed.FeedLabel,
	}
	if err := p.dispatcher.Upsert(ctx, target, inputs); err != nil {
		return 0, err
	}
	if err := p.dispatcher.Delete(ctx, target, deleteSKUs); err != nil {
		return 0, err
	}

	p.logger.Info("market %s: %d upserts, %d deletes", market.ID, len(inputs), len(deleteSKUs))
	return len(items), nil
}

func (p *Processor) transformItems(ctx context.Context, market *markets.MarketConfig, items []models.ChangeItem) ([]*models.ProductInput, error) {
	c := Classify(items)

	language := market.Feed.ContentLanguage
	feedLabel := market.Feed.FeedLabel
	country := market.Feed.TargetCountry
	urlTemplate := market.Store.URLTemplate

	var inputs []*models.ProductInput

	if len(c.SimpleItems) > 0 {
		records, err := p.fetcher.FetchSimple(ctx, market.ACO.ViewID, market.ACO.PriceBookID, itemSKUs(c.SimpleItems))
		if err != nil {
			return nil, err
		}
		for _, item := range c.SimpleItems {
			rec, ok := records[item.SKU]
			if !ok {
				p.logger.Warn("product %s not found in catalog, skipping", item.SKU)
				continue
			}
			if !rec.IsSimple() {
				p.logger.Warn("product %s is not a simple product, skipping", item.SKU)
				continue
			}
			input, err := p.transformer.Transform(rec, language, feedLabel, country, urlTemplate)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input)
		}
	}

	if len(c.ParentSKUs) > 0 {
		variants, err := p.fetcher.FetchVariants(ctx, market.ACO.ViewID, market.ACO.PriceBookID, c.ParentSKUs)
		if err != nil {
			return nil, err
		}
		for _, item := range c.VariantItems {
			v, ok := variants[item.SKU]
			if !ok {
				return nil, fmt.Errorf("variant data not found for sku %s", item.SKU)
			}
			input, err := p.transformer.TransformVariant(v, language, feedLabel, country, urlTemplate)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input)
		}
	}

	return inputs, nil
}

func (p *Processor) recordRun(event *models.ChangeEvent, summary *Summary, status models.RunStatus, runErr error) {
	if p.runs == nil {
		return
	}

	run := &models.SyncRun{
		TenantID:    p.tenantID,
		EventType:   string(event.Type),
		Status:      status,
		ItemCount:   summary.ItemCount,
		MarketCount: summary.MarketCount,
		Message:     summary.Message,
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}

	if err := p.runs.RecordRun(run); err != nil {
		p.logger.Error("failed to record sync run: %v", err)
	}
}

func itemSKUs(items []models.ChangeItem) []string {
	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}
	return skus
}
