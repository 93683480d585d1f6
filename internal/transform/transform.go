package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"feedsync/internal/mapping"
	"feedsync/internal/models"
)

// ErrNoPrice marks a record that cannot be listed because no price resolves.
var ErrNoPrice = errors.New("no resolvable price")

// defaultShippingService labels the shipping entry when no method attribute
// is present.
const defaultShippingService = "standard"

// standardFields are the destination fields recognized during attribute
// partitioning; everything else passes through as a custom attribute.
var standardFields = map[string]bool{
	"condition":      true,
	"gender":         true,
	"ageGroup":       true,
	"color":          true,
	"size":           true,
	"material":       true,
	"pattern":        true,
	"brand":          true,
	"gtin":           true,
	"mpn":            true,
	"shippingPrice":  true,
	"shippingMethod": true,
}

// enumFields get their values canonicalized through the mapping resolver
// during partitioning, so the standard-field map always holds destination
// enum strings.
var enumFields = map[string]bool{
	"condition": true,
	"gender":    true,
	"ageGroup":  true,
}

// Transformer converts fetched catalog records into the feed schema.
type Transformer struct {
	resolver *mapping.Resolver
}

func New(resolver *mapping.Resolver) *Transformer {
	return &Transformer{resolver: resolver}
}

// ToMicros converts a decimal amount to integer micro-units.
func ToMicros(amount float64) int64 {
	return int64(math.Round(amount * 1_000_000))
}

// Transform converts one simple record into a product input.
func (t *Transformer) Transform(rec *models.CatalogRecord, language, feedLabel, country, urlTemplate string) (*models.ProductInput, error) {
	price, err := resolvePrice(rec)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", rec.SKU, err)
	}

	std, custom := t.partition(rec.Attributes)
	return t.build(rec, rec, rec.Images, std, custom, price, language, feedLabel, country, urlTemplate), nil
}

// TransformVariant converts a parent/child pair into a product input grouped
// under the parent SKU. The variant's standard fields overlay the parent's,
// and the link always points at the parent's product page.
func (t *Transformer) TransformVariant(v models.Variant, language, feedLabel, country, urlTemplate string) (*models.ProductInput, error) {
	price, err := resolvePrice(v.Product)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", v.Product.SKU, err)
	}

	std, custom := t.partition(v.Parent.Attributes)
	varStd, varCustom := t.partition(v.Product.Attributes)
	for field, value := range varStd {
		std[field] = value
	}
	custom = mergeCustom(custom, varCustom)

	images := v.Product.Images
	if len(images) == 0 {
		images = v.Parent.Images
	}

	input := t.build(v.Product, v.Parent, images, std, custom, price, language, feedLabel, country, urlTemplate)
	input.Attributes.ItemGroupID = v.Parent.SKU
	return input, nil
}

// partition splits catalog attributes into recognized destination fields and
// opaque custom attributes, translating names (and enum values) through the
// mapping resolver.
func (t *Transformer) partition(attrs []models.CatalogAttribute) (map[string]string, []models.CustomAttribute) {
	std := make(map[string]string)
	var custom []models.CustomAttribute

	for _, attr := range attrs {
		field := t.resolver.FieldNameToDestination(attr.Name)
		if !standardFields[field] {
			custom = append(custom, models.CustomAttribute{Name: attr.Name, Value: attr.Value})
			continue
		}
		value := attr.Value
		if enumFields[field] {
			value = t.resolver.ValueToDestination(value, field)
		}
		std[field] = value
	}

	return std, custom
}

func (t *Transformer) build(rec, linkRec *models.CatalogRecord, images []models.CatalogImage, std map[string]string, custom []models.CustomAttribute, price *models.Money, language, feedLabel, country, urlTemplate string) *models.ProductInput {
	attrs := models.FeedAttributes{
		Title:       rec.Name,
		Description: firstNonEmpty(rec.Description, rec.ShortDescription),
		Link:        productURL(urlTemplate, linkRec),
		Condition:   models.ConditionNew,
		Gender:      std["gender"],
		AgeGroup:    std["ageGroup"],
		Color:       std["color"],
		Material:    std["material"],
		Pattern:     std["pattern"],
		Price: &models.FeedPrice{
			AmountMicros: ToMicros(price.Amount),
			CurrencyCode: price.Currency,
		},
	}

	if condition := std["condition"]; condition != "" {
		attrs.Condition = condition
	}
	if size := std["size"]; size != "" {
		attrs.Sizes = []string{size}
	}

	if rec.InStock {
		attrs.Availability = models.AvailabilityInStock
	} else {
		attrs.Availability = models.AvailabilityOutOfStock
	}

	applyIdentifiers(&attrs, std)
	applyImages(&attrs, images)
	applyShipping(&attrs, std, price.Currency, country)

	return &models.ProductInput{
		ContentLanguage:  language,
		FeedLabel:        feedLabel,
		OfferID:          rec.SKU,
		Attributes:       attrs,
		CustomAttributes: custom,
	}
}

// applyIdentifiers implements the destination's identifier-exists policy:
// a record is identified by a GTIN, or by brand plus manufacturer part
// number. Anything else must be flagged identifierExists=false explicitly,
// not silently left blank.
func applyIdentifiers(attrs *models.FeedAttributes, std map[string]string) {
	gtin := std["gtin"]
	brand := std["brand"]
	mpn := std["mpn"]

	attrs.Brand = brand
	if gtin != "" {
		attrs.GTIN = gtin
		attrs.MPN = mpn
		return
	}
	if brand != "" && mpn != "" {
		attrs.MPN = mpn
		return
	}
	identified := false
	attrs.IdentifierExists = &identified
}

// applyImages picks the first role-flagged image (or the first overall) as
// primary and deduplicates the remainder by URL.
func applyImages(attrs *models.FeedAttributes, images []models.CatalogImage) {
	if len(images) == 0 {
		return
	}

	primary := images[0].URL
	for _, img := range images {
		if img.HasRole(models.RoleImage) {
			primary = img.URL
			break
		}
	}
	attrs.ImageLink = primary

	seen := map[string]bool{primary: true}
	for _, img := range images {
		if seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		attrs.AdditionalImageLinks = append(attrs.AdditionalImageLinks, img.URL)
	}
}

// applyShipping emits one shipping entry when a shipping-price attribute is
// present; otherwise shipping is omitted and the merchant's account-level
// settings apply.
func applyShipping(attrs *models.FeedAttributes, std map[string]string, currency, country string) {
	raw, ok := std["shippingPrice"]
	if !ok {
		return
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount < 0 {
		return
	}

	service := std["shippingMethod"]
	if service == "" {
		service = defaultShippingService
	}

	attrs.Shipping = []models.FeedShipping{{
		Price: models.FeedPrice{
			AmountMicros: ToMicros(amount),
			CurrencyCode: currency,
		},
		Country: country,
		Service: service,
	}}
}

// resolvePrice prefers the record's direct price and falls back to the price
// range minimum for complex lookups.
func resolvePrice(rec *models.CatalogRecord) (*models.Money, error) {
	var price *models.Money
	switch {
	case rec.Price != nil:
		price = rec.Price
	case rec.PriceRange != nil:
		price = &rec.PriceRange.Minimum
	default:
		return nil, ErrNoPrice
	}
	if price.Amount < 0 {
		return nil, ErrNoPrice
	}
	return price, nil
}

func productURL(template string, rec *models.CatalogRecord) string {
	if template == "" {
		return rec.URL
	}
	link := strings.ReplaceAll(template, "{urlKey}", rec.URLKey)
	return strings.ReplaceAll(link, "{sku}", rec.SKU)
}

func mergeCustom(parent, child []models.CustomAttribute) []models.CustomAttribute {
	byName := make(map[string]int, len(parent))
	merged := make([]models.CustomAttribute, len(parent))
	copy(merged, parent)
	for i, attr := range merged {
		byName[attr.Name] = i
	}
	for _, attr := range child {
		if i, ok := byName[attr.Name]; ok {
			merged[i] = attr
			continue
		}
		byName[attr.Name] = len(merged)
		merged = append(merged, attr)
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
