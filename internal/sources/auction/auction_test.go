package auction

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
)

func testConfig(searchURL string) registry.SourceConfig {
	return registry.SourceConfig{
		Name:        "auction_com",
		Label:       "Test auction listings",
		Method:      registry.WebScraping,
		SearchURL:   searchURL,
		DefaultType: "foreclosure",
	}
}

func TestFetchParsesAuctionCards(t *testing.T) {
	page := `<html><body>
	<div class="auction-item">2212 Leeland St, Houston, TX 77003 | Opening bid $82,500
	  Est. Value: $140,000 | Auction Mar 14, 2026</div>
	<div class="auction-item">99 Nowhere Pl | no usable street suffix</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL), nil, 5*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX", City: "Houston"})

	if len(res.Properties) != 1 {
		t.Fatalf("got %d properties, want 1", len(res.Properties))
	}
	p := res.Properties[0]
	if p.City != "Houston" || p.State != "TX" {
		t.Errorf("City/State = %q/%q", p.City, p.State)
	}
	if p.AskingPrice == nil || *p.AskingPrice != 82500 {
		t.Errorf("AskingPrice = %v", p.AskingPrice)
	}
	if p.MarketValue == nil || *p.MarketValue != 140000 {
		t.Errorf("MarketValue = %v", p.MarketValue)
	}
	if p.ROIEstimate == nil || *p.ROIEstimate < 69 || *p.ROIEstimate > 70 {
		t.Errorf("ROIEstimate = %v, want ~69.7", p.ROIEstimate)
	}
	if p.AuctionDate != "Mar 14, 2026" {
		t.Errorf("AuctionDate = %q", p.AuctionDate)
	}
	if p.PropertyType != "foreclosure" {
		t.Errorf("PropertyType = %q", p.PropertyType)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := New(testConfig(srv.URL), nil, 2*time.Second, slog.Default())
	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX"})
	if len(res.Properties) != 0 || res.Message == "" {
		t.Errorf("unreachable: props=%d message=%q", len(res.Properties), res.Message)
	}
}
