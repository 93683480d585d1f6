package processor

import (
	"feedsync/internal/models"
)

// Classification partitions a batch into simple products, variants, and the
// parent SKUs that must be fetched for variant resolution. SimpleItems and
// ParentSKUs are disjoint by construction.
type Classification struct {
	SimpleItems  []models.ChangeItem
	VariantItems []models.ChangeItem
	ParentSKUs   []string
}

// Classify partitions change items by declared parent/child linkage. An item
// carrying a variantOf link is a variant and its linked SKU joins the
// parent-fetch set. An item whose own SKU some other item declares as parent
// is the complex parent's own change event; it must never reach the feed, so
// it is dropped from the simple set even without a link of its own.
func Classify(items []models.ChangeItem) Classification {
	parentSet := make(map[string]bool)
	var parentSKUs []string
	for _, item := range items {
		parentSKU, ok := item.ParentSKU()
		if !ok {
			continue
		}
		if !parentSet[parentSKU] {
			parentSet[parentSKU] = true
			parentSKUs = append(parentSKUs, parentSKU)
		}
	}

	var c Classification
	c.ParentSKUs = parentSKUs
	for _, item := range items {
		if _, ok := item.ParentSKU(); ok {
			c.VariantItems = append(c.VariantItems, item)
			continue
		}
		if parentSet[item.SKU] {
			continue
		}
		c.SimpleItems = append(c.SimpleItems, item)
	}

	return c
}
