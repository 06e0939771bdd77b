// Package fieldmap turns one untyped API record into a PropertyData through
// a declared canonical-field -> source-path mapping.
package fieldmap

import (
	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
)

// Map applies the field mapping to a decoded JSON record. Returns false when
// the record yields no address, the only field required to keep a record.
// City/state gaps are backfilled from the address heuristics.
func Map(fields map[string]string, rec map[string]any, source, defaultType string) (domain.PropertyData, bool) {
	p := domain.PropertyData{
		Source:       source,
		PropertyType: defaultType,
	}

	get := func(name string) string {
		path, ok := fields[name]
		if !ok {
			return ""
		}
		return extract.StringField(rec, path)
	}
	num := func(name string) *float64 {
		path, ok := fields[name]
		if !ok {
			return nil
		}
		return extract.NumericField(rec, path)
	}

	p.Address = get("address")
	if p.Address == "" {
		return domain.PropertyData{}, false
	}

	p.City = get("city")
	p.State = get("state")
	p.ZipCode = get("zip_code")
	p.OwnerName = get("owner_name")
	p.Description = get("description")
	p.ListingURL = get("listing_url")
	if t := get("property_type"); t != "" {
		p.PropertyType = t
	}

	p.SquareFootage = num("square_footage")
	p.AskingPrice = num("asking_price")
	p.LotSizeAcres = num("lot_size_acres")
	p.AssessedValue = num("assessed_value")
	p.MarketValue = num("market_value")
	if yb := num("year_built"); yb != nil {
		y := int(*yb)
		p.YearBuilt = &y
	}

	if lat, lng := num("lat"), num("lng"); lat != nil && lng != nil {
		p.Coordinates = &domain.Coordinates{Lat: *lat, Lng: *lng}
	}

	if p.City == "" {
		p.City = extract.City(p.Address)
	}
	if p.State == "" {
		p.State = extract.State(p.Address)
	}
	if p.ZipCode == "" {
		p.ZipCode = extract.ZipCode(p.Address)
	}

	return p, true
}
