package domain

// Coordinates is a plain lat/lng pair. No projection handling; sources all
// report WGS84-ish decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CensusProfile carries area-level census enrichments attached to records
// produced by the census adapter.
type CensusProfile struct {
	Population            *float64 `json:"population,omitempty"`
	MedianHomeValue       *float64 `json:"median_home_value,omitempty"`
	MedianHouseholdIncome *float64 `json:"median_household_income,omitempty"`
}

// PropertyData is the normalized record every source adapter produces.
// Only Address is required; everything else is best-effort. A record is
// immutable once an adapter returns it; the orchestrator filters and
// deduplicates but never rewrites fields.
//
// PropertyType is deliberately free text: sources disagree on taxonomy
// ("industrial" vs "commercial_district" vs "foreclosure"), so it is opaque.
type PropertyData struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code,omitempty"`
	PropertyType string `json:"property_type"`
	Source       string `json:"source"`
	ListingURL   string `json:"listing_url,omitempty"`
	Description  string `json:"description,omitempty"`

	SquareFootage *float64 `json:"square_footage,omitempty"`
	AskingPrice   *float64 `json:"asking_price,omitempty"`
	LotSizeAcres  *float64 `json:"lot_size_acres,omitempty"`
	YearBuilt     *int     `json:"year_built,omitempty"`
	AssessedValue *float64 `json:"assessed_value,omitempty"`
	MarketValue   *float64 `json:"market_value,omitempty"`
	OwnerName     string   `json:"owner_name,omitempty"`

	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// Source-specific extensions. Not guaranteed across records.
	AuctionDate  string         `json:"auction_date,omitempty"`
	ROIEstimate  *float64       `json:"roi_estimate,omitempty"`
	Census       *CensusProfile `json:"census_data,omitempty"`
	VoltageLevel string         `json:"voltage_level,omitempty"`
	CapacityMVA  *float64       `json:"capacity_mva,omitempty"`
	FacilityType string         `json:"facility_type,omitempty"`
}

// DedupKey is the composite identity used for request-level deduplication.
// Exact byte match, no case folding or abbreviation expansion.
func (p PropertyData) DedupKey() string {
	return p.Address + "|" + p.City + "|" + p.State
}

// AggregationReport is the per-request result handed back to the HTTP layer.
// It is built once and discarded after the response is written.
type AggregationReport struct {
	Properties       []PropertyData `json:"properties"`
	SourcesAttempted int            `json:"sources_attempted"`
	TotalFound       int            `json:"total_found"`
	Message          string         `json:"message"`
}
