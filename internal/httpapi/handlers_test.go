package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propscout-engine/internal/aggregate"
	"propscout-engine/internal/domain"
)

func testRouter(run func(ctx context.Context, req aggregate.Request) domain.AggregationReport) http.Handler {
	return NewRouter(Deps{
		Run: run,
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestIntegrateReturnsReport(t *testing.T) {
	var got aggregate.Request
	router := testRouter(func(ctx context.Context, req aggregate.Request) domain.AggregationReport {
		got = req
		return domain.AggregationReport{
			Properties: []domain.PropertyData{
				{Address: "100 Industrial Blvd", City: "Houston", State: "TX", Source: "county_records"},
			},
			SourcesAttempted: 2,
			TotalFound:       1,
			Message:          "Found 1 properties from county_records (public_api).",
		}
	})

	body := `{"location": "Houston, TX", "property_type": "industrial", "radius": 25}`
	req := httptest.NewRequest(http.MethodPost, "/free-data-integration", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if got.Location != "Houston, TX" || got.PropertyType != "industrial" || got.RadiusKM != 25 {
		t.Errorf("decoded request = %+v", got)
	}

	var rep domain.AggregationReport
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rep.TotalFound != 1 || rep.SourcesAttempted != 2 || len(rep.Properties) != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestIntegrateRejectsMalformedBody(t *testing.T) {
	router := testRouter(func(ctx context.Context, req aggregate.Request) domain.AggregationReport {
		t.Fatal("orchestrator must not run for a malformed body")
		return domain.AggregationReport{}
	})

	req := httptest.NewRequest(http.MethodPost, "/free-data-integration", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var e APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if e.Error == "" || e.Details == "" {
		t.Errorf("error body = %+v, want error and details set", e)
	}
}

func TestIntegrateRejectsMissingLocation(t *testing.T) {
	router := testRouter(func(ctx context.Context, req aggregate.Request) domain.AggregationReport {
		t.Fatal("orchestrator must not run without a location")
		return domain.AggregationReport{}
	})

	req := httptest.NewRequest(http.MethodPost, "/free-data-integration",
		strings.NewReader(`{"property_type": "industrial"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestIntegrateRejectsUnknownSource(t *testing.T) {
	router := testRouter(func(ctx context.Context, req aggregate.Request) domain.AggregationReport {
		t.Fatal("orchestrator must not run for an unknown source")
		return domain.AggregationReport{}
	})

	req := httptest.NewRequest(http.MethodPost, "/free-data-integration",
		strings.NewReader(`{"location": "Houston, TX", "source": "dark_web"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/free-data-integration", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

func TestSourcesListsRegistry(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var jurs []jurisdictionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &jurs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jurs) == 0 {
		t.Fatal("no jurisdictions listed")
	}
	var alberta *jurisdictionInfo
	for i := range jurs {
		if jurs[i].Name == "alberta" {
			alberta = &jurs[i]
		}
	}
	if alberta == nil || !alberta.TransmissionGrid || len(alberta.Sources) == 0 {
		t.Errorf("alberta entry = %+v, want transmission_grid with sources", alberta)
	}
}

func TestSourcesLocationFilter(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/sources?location=Calgary,+AB", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var jurs []jurisdictionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &jurs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jurs) != 1 || jurs[0].Name != "alberta" {
		t.Fatalf("jurisdictions = %+v, want only alberta", jurs)
	}

	req = httptest.NewRequest(http.MethodGet, "/sources?location=Antarctica", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &jurs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jurs) != 0 {
		t.Fatalf("jurisdictions = %+v, want none for an unknown location", jurs)
	}
}

func TestSetAPIKeySecret(t *testing.T) {
	var gotEnv, gotKey string
	router := NewRouter(Deps{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		SetAPIKey: func(envVar, key string) error {
			gotEnv, gotKey = envVar, key
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/secrets/api-key",
		strings.NewReader(`{"env_var": "YELP_API_KEY", "key": "tok-123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body %s", rec.Code, rec.Body.String())
	}
	if gotEnv != "YELP_API_KEY" || gotKey != "tok-123" {
		t.Errorf("stored (%q, %q)", gotEnv, gotKey)
	}

	req = httptest.NewRequest(http.MethodPost, "/secrets/api-key",
		strings.NewReader(`{"key": "tok-123"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing env_var status = %d, want 400", rec.Code)
	}
}

func TestSetMailPasswordSecret(t *testing.T) {
	var gotAccount, gotPassword string
	router := NewRouter(Deps{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		SetMailPassword: func(account, password string) error {
			gotAccount, gotPassword = account, password
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/secrets/mail-password",
		strings.NewReader(`{"account": "listing-alerts", "password": "hunter2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body %s", rec.Code, rec.Body.String())
	}
	if gotAccount != "listing-alerts" || gotPassword != "hunter2" {
		t.Errorf("stored (%q, %q)", gotAccount, gotPassword)
	}

	req = httptest.NewRequest(http.MethodPost, "/secrets/mail-password",
		strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
