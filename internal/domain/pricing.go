package domain

import (
	"strings"
	"time"
)

// GeographicArea is the NDIS Modified Monash Model pricing zone.
type GeographicArea string

const (
	AreaStandard   GeographicArea = "standard"
	AreaRemote     GeographicArea = "remote"
	AreaVeryRemote GeographicArea = "very_remote"
)

// ParseArea normalises an area string. An empty string is AreaStandard.
func ParseArea(s string) (GeographicArea, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch GeographicArea(norm) {
	case "", AreaStandard, "national":
		return AreaStandard, nil
	case AreaRemote:
		return AreaRemote, nil
	case AreaVeryRemote:
		return AreaVeryRemote, nil
	}
	return "", NewValidationError("area", "unknown geographic area %q", s)
}

// SupportItem is a catalogue entry from the NDIS price guide.
type SupportItem struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitType  string    `json:"unitType"` // H, E, D, WK, YR
	BasePrice float64   `json:"basePrice"`
	Version   string    `json:"version"` // catalogue release, e.g. 2025-26
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// PriceEntry is the price limit for one (item, area) pair.
// PriceLimit already includes geographic loading.
type PriceEntry struct {
	SupportItemCode string         `json:"supportItemCode"`
	Area            GeographicArea `json:"area"`
	PriceLimit      float64        `json:"priceLimit"`
	EffectiveDate   time.Time      `json:"effectiveDate"`
}

// PriceSource says where a PriceResult came from.
type PriceSource string

const (
	PriceSourceCatalogue PriceSource = "catalogue"
	PriceSourceDefault   PriceSource = "default"
	PriceSourceUnknown   PriceSource = "unknown"
)

// UnknownSupportItemName labels a price that could not be resolved.
const UnknownSupportItemName = "Unknown Support Item"

// PriceResult is the output of a price lookup.
type PriceResult struct {
	ItemCode      string         `json:"itemCode"`
	Name          string         `json:"name"`
	Area          GeographicArea `json:"area"`
	LookupPrice   float64        `json:"lookupPrice"` // before age loading
	AgeLoading    float64        `json:"ageLoading"`  // multiplier, 1.0 when none
	UnitPrice     float64        `json:"unitPrice"`
	Source        PriceSource    `json:"source"`
	EffectiveDate *time.Time     `json:"effectiveDate,omitempty"`
}

// DefaultPrice is a fallback price keyed by item code alone.
type DefaultPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DefaultPriceTable returns the built-in fallback prices (standard area).
func DefaultPriceTable() map[string]DefaultPrice {
	return map[string]DefaultPrice{
		"01_011_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Weekday Daytime", Price: 70.23},
		"01_015_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Weekday Evening", Price: 77.38},
		"01_002_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Weekday Night", Price: 78.81},
		"01_013_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Saturday", Price: 98.83},
		"01_014_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Sunday", Price: 127.43},
		"01_012_0107_1_1": {Name: "Assistance With Self-Care Activities - Standard - Public Holiday", Price: 156.03},
		"04_104_0125_6_1": {Name: "Access Community Social and Rec Activ - Standard - Weekday Daytime", Price: 70.23},
		"07_002_0106_8_3": {Name: "Coordination Of Supports", Price: 100.14},
	}
}
