package types

import (
	"context"

	"propscout-engine/internal/domain"
)

// Query is the normalized request every adapter receives.
type Query struct {
	Location     string // raw location as requested
	City         string // best-effort city extracted from Location
	Jurisdiction string // matched jurisdiction name, "Unknown" if unmatched
	PropertyType string
	RadiusKM     float64
}

// Result is what an adapter hands back. Adapters never return an error:
// any network/parse/config failure becomes an empty Properties list and a
// descriptive Message, so one broken source can never abort an aggregation.
type Result struct {
	Source     string
	Method     string // public_api | web_scraping | data_download
	Properties []domain.PropertyData
	Message    string
}

// Source is one external data source behind the common adapter contract.
type Source interface {
	Name() string
	Method() string
	Fetch(ctx context.Context, q Query) Result
}
