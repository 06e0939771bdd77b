// Package sources maps registry entries onto concrete fetch adapters.
package sources

import (
	"log/slog"
	"time"

	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/auction"
	"propscout-engine/internal/sources/census"
	"propscout-engine/internal/sources/countyapi"
	"propscout-engine/internal/sources/osm"
	"propscout-engine/internal/sources/places"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
	"propscout-engine/internal/sources/webscrape"
	"propscout-engine/internal/sources/yelp"
)

// Factory builds the adapter for a registry source entry.
type Factory struct {
	Limiter   *util.HostLimiter
	Timeout   time.Duration
	ScrapeCap int
	Log       *slog.Logger
}

func NewFactory(timeout time.Duration, scrapeCap int, log *slog.Logger) *Factory {
	if scrapeCap <= 0 {
		scrapeCap = webscrape.DefaultCap
	}
	return &Factory{
		Limiter:   util.NewHostLimiter(1, 2),
		Timeout:   timeout,
		ScrapeCap: scrapeCap,
		Log:       log,
	}
}

// Build returns the adapter for cfg. Unknown scrape entries fall through to
// the generic HTML scraper; unknown API entries use the typed county client.
func (f *Factory) Build(cfg registry.SourceConfig) types.Source {
	switch cfg.Name {
	case "google_places":
		return places.New(cfg, f.Limiter, f.Timeout, f.Log)
	case "yelp":
		return yelp.New(cfg, f.Limiter, f.Timeout, f.Log)
	case "openstreetmap":
		return osm.New(cfg, f.Limiter, f.Timeout, f.Log)
	case "census":
		return census.New(cfg, f.Limiter, f.Timeout, f.Log)
	case "auction_com":
		return auction.New(cfg, f.Limiter, f.Timeout, f.Log)
	}
	if cfg.Method == registry.PublicAPI && cfg.APIURL != "" {
		return countyapi.New(cfg, f.Limiter, f.Timeout, f.Log)
	}
	return webscrape.New(cfg, f.Limiter, f.Timeout, f.ScrapeCap, f.Log)
}
