package registry

// The jurisdiction table. Appending a jurisdiction (or a source within one)
// is the only expected change; nothing mutates this at runtime.
var jurisdictions = []Jurisdiction{
	{
		Name:     "texas",
		Keywords: []string{"texas", ", tx", " tx ", "houston", "dallas", "austin", "san antonio", "fort worth", "tarrant", "harris county"},
		Sources: append([]SourceConfig{
			{
				Name:        "county_records",
				Label:       "Harris County Appraisal District",
				Method:      PublicAPI,
				APIURL:      "https://pdata.hcad.org/api/v1/records",
				RecordsPath: "records",
				Fields: map[string]string{
					"address":        "site_addr",
					"city":           "site_city",
					"state":          "site_state",
					"zip_code":       "site_zip",
					"owner_name":     "owner.name",
					"assessed_value": "appraisal.assessed_val",
					"market_value":   "appraisal.market_val",
					"square_footage": "building.area_sqft",
					"year_built":     "building.year_built",
				},
				DefaultType: "county_assessed",
			},
			{
				Name:        "public_auctions",
				Label:       "Harris County tax sale listings",
				Method:      WebScraping,
				SearchURL:   "https://www.hctax.net/Property/TaxSales",
				DefaultType: "tax_sale",
			},
		}, commonSources("Texas")...),
	},
	{
		Name:     "california",
		Keywords: []string{"california", ", ca", " ca ", "los angeles", "san francisco", "san diego", "sacramento", "oakland"},
		Sources: append([]SourceConfig{
			{
				Name:        "county_records",
				Label:       "LA County Assessor portal",
				Method:      WebScraping,
				SearchURL:   "https://portal.assessor.lacounty.gov/parceldetail",
				DefaultType: "county_assessed",
			},
		}, commonSources("California")...),
	},
	{
		Name:     "georgia",
		Keywords: []string{"georgia", "atlanta", "fulton", "savannah"},
		Sources: append([]SourceConfig{
			{
				Name:        "county_records",
				Label:       "Fulton County Board of Assessors",
				Method:      WebScraping,
				SearchURL:   "https://www.qpublic.net/ga/fulton/search.html",
				DefaultType: "county_assessed",
			},
		}, commonSources("Georgia")...),
	},
	{
		Name:             "alberta",
		Keywords:         []string{"alberta", ", ab", " ab ", "calgary", "edmonton", "red deer"},
		TransmissionGrid: true,
		Sources: []SourceConfig{
			{
				Name:        "county_records",
				Label:       "City of Calgary assessment search",
				Method:      WebScraping,
				SearchURL:   "https://assessmentsearch.calgary.ca",
				DefaultType: "municipal_assessed",
			},
			placesSource("Alberta"),
			yelpSource("Alberta"),
			osmSource("Alberta"),
			{
				Name:        "public_auctions",
				Label:       "Alberta public auction listings",
				Method:      WebScraping,
				SearchURL:   "https://www.servicealberta.gov.ab.ca/find-if-unclaimed-property.cfm",
				DefaultType: "public_auction",
			},
		},
	},
	{
		Name:     "ontario",
		Keywords: []string{"ontario", "toronto", "ottawa", "mississauga", "hamilton"},
		Sources: []SourceConfig{
			{
				Name:        "county_records",
				Label:       "MPAC AboutMyProperty",
				Method:      WebScraping,
				SearchURL:   "https://www.mpac.ca/en/MakingChangesUpdates/AboutMyProperty",
				DefaultType: "municipal_assessed",
			},
			placesSource("Ontario"),
			yelpSource("Ontario"),
			osmSource("Ontario"),
		},
	},
}

// commonSources are the generic place/census/auction sources every US
// jurisdiction carries in addition to its county-specific ones.
func commonSources(label string) []SourceConfig {
	return []SourceConfig{
		placesSource(label),
		yelpSource(label),
		osmSource(label),
		{
			Name:        "census",
			Label:       "US Census ACS 5-year",
			Method:      DataDownload,
			APIURL:      "https://api.census.gov/data/2022/acs/acs5",
			DefaultType: "census_area_profile",
		},
		{
			Name:        "auction_com",
			Label:       "Auction.com " + label + " listings",
			Method:      WebScraping,
			SearchURL:   "https://www.auction.com/residential/",
			DefaultType: "foreclosure",
		},
		{
			Name:        "biggerpockets",
			Label:       "BiggerPockets marketplace",
			Method:      WebScraping,
			SearchURL:   "https://www.biggerpockets.com/insights/markets",
			DefaultType: "investment",
		},
	}
}

func placesSource(label string) SourceConfig {
	return SourceConfig{
		Name:        "google_places",
		Label:       "Google Places (" + label + ")",
		Method:      PublicAPI,
		APIURL:      "https://maps.googleapis.com/maps/api/place/textsearch/json",
		APIKeyEnv:   "GOOGLE_PLACES_API_KEY",
		RecordsPath: "results",
		Fields: map[string]string{
			"address":     "formatted_address",
			"description": "name",
			"lat":         "geometry.location.lat",
			"lng":         "geometry.location.lng",
		},
		DefaultType: "commercial_district",
	}
}

func yelpSource(label string) SourceConfig {
	return SourceConfig{
		Name:        "yelp",
		Label:       "Yelp Fusion (" + label + ")",
		Method:      PublicAPI,
		APIURL:      "https://api.yelp.com/v3/businesses/search",
		APIKeyEnv:   "YELP_API_KEY",
		RecordsPath: "businesses",
		Fields: map[string]string{
			"address":     "location.address1",
			"city":        "location.city",
			"state":       "location.state",
			"zip_code":    "location.zip_code",
			"description": "name",
			"listing_url": "url",
			"lat":         "coordinates.latitude",
			"lng":         "coordinates.longitude",
		},
		DefaultType: "commercial",
	}
}

func osmSource(label string) SourceConfig {
	return SourceConfig{
		Name:        "openstreetmap",
		Label:       "OpenStreetMap Overpass (" + label + ")",
		Method:      PublicAPI,
		APIURL:      "https://overpass-api.de/api/interpreter",
		DefaultType: "industrial",
	}
}
