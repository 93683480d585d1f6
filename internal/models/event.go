package models

type EventType string

const (
	EventTypeProductChange EventType = "product-change"
	EventTypePriceChange   EventType = "price-change"
)

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// LinkTypeVariantOf marks the link from a variant item to its parent product.
const LinkTypeVariantOf = "variantOf"

// ChangeEvent is the inbound notification envelope.
type ChangeEvent struct {
	Type EventType `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	InstanceID string       `json:"instanceId"`
	Items      []ChangeItem `json:"items"`
}

// ChangeItem is one notification unit. Constructed by the upstream payload,
// consumed read-only by the pipeline.
type ChangeItem struct {
	SKU       string       `json:"sku"`
	Operation Operation    `json:"operation"`
	Sources   []ItemSource `json:"sources"`
	Links     []ItemLink   `json:"links,omitempty"`
}

type ItemSource struct {
	Locale      string `json:"locale,omitempty"`
	PriceBookID string `json:"priceBookId,omitempty"`
}

type ItemLink struct {
	Type string `json:"type"`
	SKU  string `json:"sku"`
}

// ParentSKU returns the SKU of the parent product when the item carries a
// variantOf link.
func (i ChangeItem) ParentSKU() (string, bool) {
	for _, link := range i.Links {
		if link.Type == LinkTypeVariantOf && link.SKU != "" {
			return link.SKU, true
		}
	}
	return "", false
}
