package processor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/logger"
	"feedsync/internal/mapping"
	"feedsync/internal/markets"
	"feedsync/internal/models"
	"feedsync/internal/services/feed"
	"feedsync/internal/transform"
)

const testTenant = "tenant-1"

type fakeFetcher struct {
	records  map[string]*models.CatalogRecord
	variants map[string]models.Variant

	simpleCalls  int
	variantCalls int
	err          error
}

func (f *fakeFetcher) FetchSimple(ctx context.Context, viewID, priceBookID string, skus []string) (map[string]*models.CatalogRecord, error) {
	f.simpleCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.CatalogRecord)
	for _, sku := range skus {
		if rec, ok := f.records[sku]; ok {
			out[sku] = rec
		}
	}
	return out, nil
}

func (f *fakeFetcher) FetchVariants(ctx context.Context, viewID, priceBookID string, parentSKUs []string) (map[string]models.Variant, error) {
	f.variantCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.variants, nil
}

type dispatchCall struct {
	target feed.Target
	inputs []*models.ProductInput
	skus   []string
}

type fakeDispatcher struct {
	upserts []dispatchCall
	deletes []dispatchCall
}

func (d *fakeDispatcher) Upsert(ctx context.Context, target feed.Target, inputs []*models.ProductInput) error {
	if len(inputs) == 0 {
		return nil
	}
	d.upserts = append(d.upserts, dispatchCall{target: target, inputs: inputs})
	return nil
}

func (d *fakeDispatcher) Delete(ctx context.Context, target feed.Target, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	d.deletes = append(d.deletes, dispatchCall{target: target, skus: skus})
	return nil
}

type fakeRecorder struct {
	runs []*models.SyncRun
}

func (r *fakeRecorder) RecordRun(run *models.SyncRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func usMarket() markets.MarketConfig {
	return markets.MarketConfig{
		ID: "us-en",
		ACO: markets.ACOConfig{
			ViewID:      "view-us",
			PriceBookID: "pricebook-usd",
			Source:      markets.SourceConfig{Locale: "en-US"},
		},
		Feed: markets.FeedConfig{
			MerchantID:      "555",
			DataSourceID:    "1001",
			FeedLabel:       "US",
			ContentLanguage: "en",
			TargetCountry:   "US",
		},
		Store: markets.StoreConfig{URLTemplate: "https://store.example.com/en-us/p/{urlKey}"},
	}
}

func caMarket() markets.MarketConfig {
	m := usMarket()
	m.ID = "ca-en"
	m.ACO.ViewID = "view-ca"
	m.ACO.PriceBookID = "pricebook-cad"
	m.Feed.DataSourceID = "1002"
	m.Feed.FeedLabel = "CA"
	m.Feed.TargetCountry = "CA"
	return m
}

func newTestProcessor(t *testing.T, configs []markets.MarketConfig, fetcher *fakeFetcher, dispatcher *fakeDispatcher, runs RunRecorder) *Processor {
	t.Helper()

	registry, err := markets.NewRegistry(configs)
	require.NoError(t, err)

	resolver, err := mapping.NewResolver(mapping.Config{})
	require.NoError(t, err)

	return New(testTenant, registry, transform.New(resolver), fetcher, dispatcher, runs, logger.NewNop())
}

func simpleEvent(items ...models.ChangeItem) *models.ChangeEvent {
	return &models.ChangeEvent{
		Type: models.EventTypeProductChange,
		Data: models.EventData{InstanceID: testTenant, Items: items},
	}
}

func catalogRecord(sku string, amount float64) *models.CatalogRecord {
	return &models.CatalogRecord{
		Type:    models.RecordTypeSimple,
		SKU:     sku,
		Name:    "Product " + sku,
		InStock: true,
		URLKey:  "product-" + sku,
		Price:   &models.Money{Amount: amount, Currency: "USD"},
	}
}

func TestProcessSimpleCreate(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]*models.CatalogRecord{
		"A": catalogRecord("A", 10),
	}}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, nil)

	summary, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationCreate, Sources: []models.ItemSource{{Locale: "en-US"}}},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, 1, summary.MarketCount)
	assert.Equal(t, "Processed 1 items across 1 markets for tenant: tenant-1", summary.Message)

	require.Len(t, dispatcher.upserts, 1)
	require.Len(t, dispatcher.upserts[0].inputs, 1)

	input := dispatcher.upserts[0].inputs[0]
	assert.Equal(t, "A", input.OfferID)
	assert.Equal(t, int64(10000000), input.Attributes.Price.AmountMicros)
	assert.Equal(t, "USD", input.Attributes.Price.CurrencyCode)
	assert.Empty(t, dispatcher.deletes)
}

func TestProcessFansOutAcrossMarkets(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]*models.CatalogRecord{
		"A": catalogRecord("A", 10),
	}}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket(), caMarket()}, fetcher, dispatcher, nil)

	summary, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationUpdate, Sources: []models.ItemSource{{Locale: "en-US"}}},
	))
	require.NoError(t, err)

	// Both markets share the locale; the item is processed once per market.
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, 2, summary.MarketCount)
	require.Len(t, dispatcher.upserts, 2)

	labels := []string{dispatcher.upserts[0].target.FeedLabel, dispatcher.upserts[1].target.FeedLabel}
	assert.ElementsMatch(t, []string{"US", "CA"}, labels)
}

func TestProcessMissingVariantIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{variants: map[string]models.Variant{}}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, nil)

	_, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{
			SKU:       "V1",
			Operation: models.OperationUpdate,
			Sources:   []models.ItemSource{{Locale: "en-US"}},
			Links:     []models.ItemLink{{Type: models.LinkTypeVariantOf, SKU: "P"}},
		},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant data not found")
	assert.Empty(t, dispatcher.upserts)
}

func TestProcessUnroutedIsSuccessNoOp(t *testing.T) {
	fetcher := &fakeFetcher{}
	dispatcher := &fakeDispatcher{}
	recorder := &fakeRecorder{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, recorder)

	summary, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationCreate, Sources: []models.ItemSource{{Locale: "fr-FR"}}},
	))
	require.NoError(t, err)

	assert.Equal(t, "no items matched any configured market", summary.Message)
	assert.Zero(t, fetcher.simpleCalls)
	assert.Empty(t, dispatcher.upserts)
	assert.Empty(t, dispatcher.deletes)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, models.RunStatusNoMatch, recorder.runs[0].Status)
}

func TestProcessTenantMismatch(t *testing.T) {
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, &fakeFetcher{}, &fakeDispatcher{}, nil)

	event := simpleEvent()
	event.Data.InstanceID = "other-tenant"

	_, err := p.Process(context.Background(), event)
	require.ErrorIs(t, err, ErrTenantMismatch)
	assert.True(t, IsClientError(err))
}

func TestProcessUnknownEventType(t *testing.T) {
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, &fakeFetcher{}, &fakeDispatcher{}, nil)

	event := simpleEvent()
	event.Type = "inventory-change"

	_, err := p.Process(context.Background(), event)
	require.ErrorIs(t, err, ErrUnknownEventType)
	assert.True(t, IsClientError(err))
}

func TestProcessPriceChangeFiltersByPriceBook(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]*models.CatalogRecord{
		"A": catalogRecord("A", 12.5),
	}}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket(), caMarket()}, fetcher, dispatcher, nil)

	event := &models.ChangeEvent{
		Type: models.EventTypePriceChange,
		Data: models.EventData{
			InstanceID: testTenant,
			Items: []models.ChangeItem{{
				SKU:       "A",
				Operation: models.OperationUpdate,
				Sources:   []models.ItemSource{{Locale: "en-US", PriceBookID: "pricebook-usd"}},
			}},
		},
	}

	summary, err := p.Process(context.Background(), event)
	require.NoError(t, err)

	// Locale matches both markets, but price-book identity keeps only US.
	assert.Equal(t, 1, summary.ItemCount)
	require.Len(t, dispatcher.upserts, 1)
	assert.Equal(t, "US", dispatcher.upserts[0].target.FeedLabel)
}

func TestProcessDelete(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, &fakeFetcher{}, dispatcher, nil)

	summary, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationDelete, Sources: []models.ItemSource{{Locale: "en-US"}}},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemCount)
	assert.Empty(t, dispatcher.upserts)
	require.Len(t, dispatcher.deletes, 1)
	assert.Equal(t, []string{"A"}, dispatcher.deletes[0].skus)
}

func TestProcessSkipsUnfetchedSimpleRecords(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]*models.CatalogRecord{
		"A": catalogRecord("A", 10),
	}}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, nil)

	_, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationUpdate, Sources: []models.ItemSource{{Locale: "en-US"}}},
		models.ChangeItem{SKU: "GONE", Operation: models.OperationUpdate, Sources: []models.ItemSource{{Locale: "en-US"}}},
	))
	require.NoError(t, err)

	require.Len(t, dispatcher.upserts, 1)
	require.Len(t, dispatcher.upserts[0].inputs, 1)
	assert.Equal(t, "A", dispatcher.upserts[0].inputs[0].OfferID)
}

func TestProcessVariantUpsert(t *testing.T) {
	parent := &models.CatalogRecord{
		Type:    models.RecordTypeComplex,
		SKU:     "P",
		Name:    "Parent",
		InStock: true,
		URLKey:  "parent",
		PriceRange: &models.PriceRange{
			Minimum: models.Money{Amount: 10, Currency: "USD"},
			Maximum: models.Money{Amount: 20, Currency: "USD"},
		},
	}
	fetcher := &fakeFetcher{
		variants: map[string]models.Variant{
			"V1": {Parent: parent, Product: catalogRecord("V1", 15)},
		},
	}
	dispatcher := &fakeDispatcher{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, nil)

	_, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{
			SKU:       "V1",
			Operation: models.OperationUpdate,
			Sources:   []models.ItemSource{{Locale: "en-US"}},
			Links:     []models.ItemLink{{Type: models.LinkTypeVariantOf, SKU: "P"}},
		},
	))
	require.NoError(t, err)

	require.Len(t, dispatcher.upserts, 1)
	input := dispatcher.upserts[0].inputs[0]
	assert.Equal(t, "V1", input.OfferID)
	assert.Equal(t, "P", input.Attributes.ItemGroupID)
	assert.Equal(t, "https://store.example.com/en-us/p/parent", input.Attributes.Link)
}

func TestProcessFetchErrorAbortsAndRecordsFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("catalog unreachable")}
	dispatcher := &fakeDispatcher{}
	recorder := &fakeRecorder{}
	p := newTestProcessor(t, []markets.MarketConfig{usMarket()}, fetcher, dispatcher, recorder)

	_, err := p.Process(context.Background(), simpleEvent(
		models.ChangeItem{SKU: "A", Operation: models.OperationUpdate, Sources: []models.ItemSource{{Locale: "en-US"}}},
	))
	require.Error(t, err)
	assert.False(t, IsClientError(err))
	assert.Empty(t, dispatcher.upserts)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, models.RunStatusFailed, recorder.runs[0].Status)
	require.NotNil(t, recorder.runs[0].Error)
}
