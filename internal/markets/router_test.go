package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/models"
)

func testMarkets() []MarketConfig {
	return []MarketConfig{
		{
			ID: "us-en",
			ACO: ACOConfig{
				ViewID:      "view-us",
				PriceBookID: "pricebook-usd",
				Source:      SourceConfig{Locale: "en-US"},
			},
			Feed: FeedConfig{
				MerchantID:      "111",
				DataSourceID:    "1001",
				FeedLabel:       "US",
				ContentLanguage: "en",
				TargetCountry:   "US",
			},
			Store: StoreConfig{URLTemplate: "https://store.example.com/en-us/p/{urlKey}"},
		},
		{
			ID: "ca-en",
			ACO: ACOConfig{
				ViewID:      "view-ca",
				PriceBookID: "pricebook-cad",
				Source:      SourceConfig{Locale: "en-US"},
			},
			Feed: FeedConfig{
				MerchantID:      "111",
				DataSourceID:    "1002",
				FeedLabel:       "CA",
				ContentLanguage: "en",
				TargetCountry:   "CA",
			},
			Store: StoreConfig{URLTemplate: "https://store.example.com/en-ca/p/{urlKey}"},
		},
		{
			ID: "de-de",
			ACO: ACOConfig{
				ViewID:      "view-de",
				PriceBookID: "pricebook-eur",
				Source:      SourceConfig{Locale: "de-DE"},
			},
			Feed: FeedConfig{
				MerchantID:      "111",
				DataSourceID:    "1003",
				FeedLabel:       "DE",
				ContentLanguage: "de",
				TargetCountry:   "DE",
			},
			Store: StoreConfig{URLTemplate: "https://store.example.com/de-de/p/{urlKey}"},
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(testMarkets())
	require.NoError(t, err)
	return reg
}

func TestNewRegistryRejectsDuplicateIDs(t *testing.T) {
	configs := testMarkets()
	configs[1].ID = configs[0].ID

	_, err := NewRegistry(configs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate market id")
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)
}

func TestByLocaleIsCaseInsensitive(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Len(t, reg.ByLocale("EN-us"), 2)
	assert.Len(t, reg.ByLocale("de-de"), 1)
	assert.Empty(t, reg.ByLocale("fr-FR"))
}

func TestRouteFansOutToAllMatchingMarkets(t *testing.T) {
	reg := newTestRegistry(t)

	items := []models.ChangeItem{
		{SKU: "A", Operation: models.OperationCreate, Sources: []models.ItemSource{{Locale: "en-US"}}},
		{SKU: "B", Operation: models.OperationUpdate, Sources: []models.ItemSource{{Locale: "de-DE"}}},
	}

	buckets := reg.Route(items)
	require.Len(t, buckets, 3)

	// en-US matches two markets, so item A lands in both.
	assert.Equal(t, []models.ChangeItem{items[0]}, buckets["us-en"].Items)
	assert.Equal(t, []models.ChangeItem{items[0]}, buckets["ca-en"].Items)
	assert.Equal(t, []models.ChangeItem{items[1]}, buckets["de-de"].Items)
}

func TestRouteDropsUnmatchedItems(t *testing.T) {
	reg := newTestRegistry(t)

	items := []models.ChangeItem{
		{SKU: "A", Sources: []models.ItemSource{{Locale: "fr-FR"}}},
	}

	assert.Empty(t, reg.Route(items))
}

func TestRouteAddsItemOncePerMarket(t *testing.T) {
	reg := newTestRegistry(t)

	// Two sources resolving to the same market must not duplicate the item.
	items := []models.ChangeItem{
		{SKU: "A", Sources: []models.ItemSource{
			{Locale: "en-US", PriceBookID: "pricebook-usd"},
			{Locale: "en-US", PriceBookID: "pricebook-cad"},
		}},
	}

	buckets := reg.Route(items)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets["us-en"].Items, 1)
	assert.Len(t, buckets["ca-en"].Items, 1)
}

func TestRouteEmptyBatch(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Empty(t, reg.Route(nil))
}

func TestRouteIsPure(t *testing.T) {
	reg := newTestRegistry(t)

	items := []models.ChangeItem{
		{SKU: "A", Sources: []models.ItemSource{{Locale: "en-US"}}},
		{SKU: "B", Sources: []models.ItemSource{{Locale: "de-DE"}}},
	}

	first := reg.Route(items)
	second := reg.Route(items)
	assert.Equal(t, first, second)
}

func TestFilterByPriceBook(t *testing.T) {
	reg := newTestRegistry(t)
	usMarket := reg.ByLocale("en-US")[0]

	items := []models.ChangeItem{
		{SKU: "A", Sources: []models.ItemSource{{Locale: "en-US", PriceBookID: "pricebook-usd"}}},
		{SKU: "B", Sources: []models.ItemSource{{Locale: "en-US", PriceBookID: "pricebook-cad"}}},
		{SKU: "C", Sources: []models.ItemSource{{Locale: "en-US"}}},
	}

	kept := FilterByPriceBook(items, usMarket)
	require.Len(t, kept, 1)
	assert.Equal(t, "A", kept[0].SKU)
}
