// Package registry is the static table of free data sources, grouped by
// jurisdiction. Loaded once at process start, read-only afterwards.
package registry

import "strings"

type AccessMethod string

const (
	PublicAPI    AccessMethod = "public_api"
	WebScraping  AccessMethod = "web_scraping"
	DataDownload AccessMethod = "data_download"
)

// SourceConfig declares everything an adapter needs to query one external
// source and normalize its response: the endpoint, the access method (which
// picks the adapter flavor), and a canonical-field -> source-path mapping.
type SourceConfig struct {
	Name   string       // request-level source id: county_records, yelp, ...
	Label  string       // human name used in report messages
	Method AccessMethod

	APIURL      string // typed-API endpoint (public_api / data_download)
	SearchURL   string // page to scrape (web_scraping)
	APIKeyEnv   string // env var holding the key; empty means keyless
	RecordsPath string // dotted path to the record array in API responses

	// Canonical PropertyData field -> source field path.
	Fields map[string]string

	DefaultType string // property_type when the source does not classify
}

// Jurisdiction groups the sources that apply to one state/province, matched
// by loose keyword containment rather than geocoding.
type Jurisdiction struct {
	Name     string
	Keywords []string
	Sources  []SourceConfig

	// TransmissionGrid marks jurisdictions served by the specialized
	// grid adapter with its embedded fallback dataset.
	TransmissionGrid bool
}

// Match resolves a free-text location to a jurisdiction by case-insensitive
// substring matching against each jurisdiction's keyword set. "Calgary, AB"
// and "alberta" both land on Alberta. Unrecognized input returns false.
func Match(location string) (Jurisdiction, bool) {
	loc := strings.ToLower(location)
	for _, j := range jurisdictions {
		for _, kw := range j.Keywords {
			if strings.Contains(loc, kw) {
				return j, true
			}
		}
	}
	return Jurisdiction{}, false
}

// Lookup returns the source configs for a location, empty for unknown
// jurisdictions. Order is registration order; the orchestrator's cap relies
// on that as the default priority.
func Lookup(location string) []SourceConfig {
	j, ok := Match(location)
	if !ok {
		return nil
	}
	out := make([]SourceConfig, len(j.Sources))
	copy(out, j.Sources)
	return out
}

// All returns every jurisdiction, for introspection endpoints.
func All() []Jurisdiction {
	out := make([]Jurisdiction, len(jurisdictions))
	copy(out, jurisdictions)
	return out
}
