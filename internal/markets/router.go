package markets

import (
	"feedsync/internal/models"
)

// Bucket collects the items routed to one market.
type Bucket struct {
	Market *MarketConfig
	Items  []models.ChangeItem
}

// Route groups items by configured market. Every source locale of an item is
// looked up in the locale index; an item whose sources match k markets lands
// in k buckets. Items matching no configured locale are dropped from the
// result so one upstream stream can serve a subset of locales.
func (r *Registry) Route(items []models.ChangeItem) map[string]*Bucket {
	buckets := make(map[string]*Bucket)

	for _, item := range items {
		matched := make(map[string]bool)
		for _, source := range item.Sources {
			if source.Locale == "" {
				continue
			}
			for _, market := range r.ByLocale(source.Locale) {
				if matched[market.ID] {
					continue
				}
				matched[market.ID] = true

				bucket, ok := buckets[market.ID]
				if !ok {
					bucket = &Bucket{Market: market}
					buckets[market.ID] = bucket
				}
				bucket.Items = append(bucket.Items, item)
			}
		}
	}

	return buckets
}

// FilterByPriceBook keeps only the items carrying a source whose price book
// matches the market's. Price-book identity, not locale, is authoritative for
// price routing; the orchestrator applies this second stage to price events.
func FilterByPriceBook(items []models.ChangeItem, market *MarketConfig) []models.ChangeItem {
	var kept []models.ChangeItem
	for _, item := range items {
		for _, source := range item.Sources {
			if source.PriceBookID != "" && source.PriceBookID == market.ACO.PriceBookID {
				kept = append(kept, item)
				break
			}
		}
	}
	return kept
}
