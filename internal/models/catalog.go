package models

// Catalog record discriminators. Every consumption site switches on these
// explicitly; a complex record is never sent to the feed directly.
const (
	RecordTypeSimple  = "SimpleProductView"
	RecordTypeComplex = "ComplexProductView"
)

// Attribute and image role flags used by the commerce catalog.
const (
	RoleImage   = "image"
	RoleVisible = "visible_in_pdp"
)

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type PriceRange struct {
	Minimum Money `json:"minimum"`
	Maximum Money `json:"maximum"`
}

type CatalogImage struct {
	URL   string   `json:"url"`
	Roles []string `json:"roles,omitempty"`
}

func (img CatalogImage) HasRole(role string) bool {
	for _, r := range img.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type CatalogAttribute struct {
	Name  string   `json:"name"`
	Value string   `json:"value"`
	Roles []string `json:"roles,omitempty"`
}

type ProductOption struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Values []OptionValue `json:"values,omitempty"`
}

type OptionValue struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CatalogRecord is a fetched product. Type discriminates simple records
// (direct price) from complex ones (price range plus options).
type CatalogRecord struct {
	Type             string             `json:"__typename"`
	SKU              string             `json:"sku"`
	Name             string             `json:"name"`
	ShortDescription string             `json:"shortDescription,omitempty"`
	Description      string             `json:"description,omitempty"`
	InStock          bool               `json:"inStock"`
	URL              string             `json:"url,omitempty"`
	URLKey           string             `json:"urlKey,omitempty"`
	Images           []CatalogImage     `json:"images,omitempty"`
	Attributes       []CatalogAttribute `json:"attributes,omitempty"`

	// Simple records only.
	Price *Money `json:"price,omitempty"`

	// Complex records only.
	PriceRange *PriceRange     `json:"priceRange,omitempty"`
	Options    []ProductOption `json:"options,omitempty"`
}

func (r *CatalogRecord) IsSimple() bool {
	return r.Type == RecordTypeSimple
}

func (r *CatalogRecord) IsComplex() bool {
	return r.Type == RecordTypeComplex
}

// Variant pairs a complex parent with one of its directly-priced children.
// The child SKU is the feed identity; the parent SKU becomes the grouping key.
type Variant struct {
	Parent     *CatalogRecord `json:"-"`
	Product    *CatalogRecord `json:"product"`
	Selections []string       `json:"selections,omitempty"`
}
