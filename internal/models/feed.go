package models

// Feed-side availability and condition enums. The merchant schema expects
// lowercase identifiers.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"

	ConditionNew = "new"
)

// ProductInput is the destination-schema record ready for dispatch.
// Constructed fresh per catalog record, never mutated after construction.
type ProductInput struct {
	ContentLanguage  string            `json:"contentLanguage"`
	FeedLabel        string            `json:"feedLabel"`
	OfferID          string            `json:"offerId"`
	Attributes       FeedAttributes    `json:"attributes"`
	CustomAttributes []CustomAttribute `json:"customAttributes,omitempty"`
}

type FeedAttributes struct {
	Title                string         `json:"title,omitempty"`
	Description          string         `json:"description,omitempty"`
	Link                 string         `json:"link,omitempty"`
	ImageLink            string         `json:"imageLink,omitempty"`
	AdditionalImageLinks []string       `json:"additionalImageLinks,omitempty"`
	Availability         string         `json:"availability,omitempty"`
	Condition            string         `json:"condition,omitempty"`
	Gender               string         `json:"gender,omitempty"`
	AgeGroup             string         `json:"ageGroup,omitempty"`
	Color                string         `json:"color,omitempty"`
	Sizes                []string       `json:"sizes,omitempty"`
	Material             string         `json:"material,omitempty"`
	Pattern              string         `json:"pattern,omitempty"`
	Brand                string         `json:"brand,omitempty"`
	GTIN                 string         `json:"gtin,omitempty"`
	MPN                  string         `json:"mpn,omitempty"`
	IdentifierExists     *bool          `json:"identifierExists,omitempty"`
	ItemGroupID          string         `json:"itemGroupId,omitempty"`
	Price                *FeedPrice     `json:"price,omitempty"`
	Shipping             []FeedShipping `json:"shipping,omitempty"`
}

type FeedPrice struct {
	AmountMicros int64  `json:"amountMicros"`
	CurrencyCode string `json:"currencyCode"`
}

type FeedShipping struct {
	Price   FeedPrice `json:"price"`
	Country string    `json:"country"`
	Service string    `json:"service"`
}

type CustomAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
