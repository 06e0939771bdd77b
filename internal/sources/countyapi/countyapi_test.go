package countyapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
)

func testConfig(apiURL string) registry.SourceConfig {
	return registry.SourceConfig{
		Name:        "county_records",
		Label:       "Test County CAD",
		Method:      registry.PublicAPI,
		APIURL:      apiURL,
		RecordsPath: "records",
		Fields: map[string]string{
			"address":        "site_addr",
			"owner_name":     "owner.name",
			"assessed_value": "appraisal.assessed_val",
			"year_built":     "building.year_built",
		},
		DefaultType: "county_assessed",
	}
}

func TestFetchMapsRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "Houston, TX" {
			t.Errorf("search param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[
			{"site_addr":"700 Bagby St, Houston, TX 77002",
			 "owner":{"name":"CITY OF HOUSTON"},
			 "appraisal":{"assessed_val":"$1,250,000"},
			 "building":{"year_built":1961}},
			{"owner":{"name":"NO ADDRESS LLC"}}
		]}`))
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL), nil, 5*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX", City: "Houston"})

	if len(res.Properties) != 1 {
		t.Fatalf("got %d properties, want 1 (address-less record dropped)", len(res.Properties))
	}
	p := res.Properties[0]
	if p.Address != "700 Bagby St, Houston, TX 77002" {
		t.Errorf("Address = %q", p.Address)
	}
	if p.City != "Houston" || p.State != "TX" || p.ZipCode != "77002" {
		t.Errorf("address backfill = %q/%q/%q", p.City, p.State, p.ZipCode)
	}
	if p.AssessedValue == nil || *p.AssessedValue != 1250000 {
		t.Errorf("AssessedValue = %v", p.AssessedValue)
	}
	if p.YearBuilt == nil || *p.YearBuilt != 1961 {
		t.Errorf("YearBuilt = %v", p.YearBuilt)
	}
	if p.Source != "county_records" {
		t.Errorf("Source = %q", p.Source)
	}
	if res.Message == "" {
		t.Error("Message empty")
	}
}

func TestFetchErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL), nil, 5*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX"})

	if len(res.Properties) != 0 {
		t.Errorf("got %d properties on 403, want 0", len(res.Properties))
	}
	if res.Message == "" {
		t.Error("error response must carry a message")
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	s := New(testConfig(srv.URL), nil, 2*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX"})

	if len(res.Properties) != 0 || res.Message == "" {
		t.Errorf("network failure: props=%d message=%q", len(res.Properties), res.Message)
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL), nil, 5*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX"})
	if len(res.Properties) != 0 || res.Message == "" {
		t.Errorf("malformed body: props=%d message=%q", len(res.Properties), res.Message)
	}
}
