// Package osm combines a Nominatim geocode with an Overpass feature query to
// find named industrial/commercial sites around a location. Both endpoints
// are public and keyless but aggressively rate limited, so calls go through
// the shared host limiter.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	maxFeatures         = 20
	defaultRadiusM      = 10000
)

type Source struct {
	cfg          registry.SourceConfig
	nominatimURL string
	hc           *http.Client
	limiter      *util.HostLimiter
	log          *slog.Logger
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, log *slog.Logger) *Source {
	return &Source{
		cfg:          cfg,
		nominatimURL: defaultNominatimURL,
		hc:           util.NewClient(timeout),
		limiter:      limiter,
		log:          log,
	}
}

// WithNominatim overrides the geocoder endpoint. Tests use it.
func (s *Source) WithNominatim(u string) *Source {
	s.nominatimURL = u
	return s
}

func (s *Source) Name() string   { return s.cfg.Name }
func (s *Source) Method() string { return string(s.cfg.Method) }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.cfg.Name, Method: string(s.cfg.Method)}

	lat, lng, err := s.geocode(ctx, q.Location)
	if err != nil {
		s.log.Warn("nominatim geocode failed", "location", q.Location, "err", err)
		res.Message = fmt.Sprintf("OpenStreetMap could not geocode %q", q.Location)
		return res
	}

	radius := int(q.RadiusKM * 1000)
	if radius <= 0 {
		radius = defaultRadiusM
	}
	landuse := "industrial"
	if t := strings.ToLower(q.PropertyType); strings.Contains(t, "commercial") || strings.Contains(t, "retail") {
		landuse = "commercial"
	}

	query := fmt.Sprintf(`[out:json][timeout:20];
(
  node["landuse"="%[1]s"](around:%[2]d,%[3]f,%[4]f);
  way["landuse"="%[1]s"](around:%[2]d,%[3]f,%[4]f);
  node["building"="warehouse"](around:%[2]d,%[3]f,%[4]f);
);
out center %[5]d;`, landuse, radius, lat, lng, maxFeatures)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, s.cfg.APIURL); err != nil {
			res.Message = "Overpass request cancelled"
			return res
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, strings.NewReader("data="+url.QueryEscape(query)))
	req.Header.Set("User-Agent", util.APIUA)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("overpass unreachable", "err", err)
		res.Message = "Overpass API could not be reached"
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		res.Message = fmt.Sprintf("Overpass API returned an error response (%d)", resp.StatusCode)
		return res
	}

	var body struct {
		Elements []struct {
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			Center *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"center"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Message = "Overpass API returned malformed data"
		return res
	}

	for _, el := range body.Elements {
		if len(res.Properties) >= maxFeatures {
			break
		}
		addr := featureAddress(el.Tags)
		if addr == "" {
			continue
		}
		elat, elng := el.Lat, el.Lon
		if el.Center != nil {
			elat, elng = el.Center.Lat, el.Center.Lon
		}
		p := domain.PropertyData{
			Address:      addr,
			City:         firstNonEmpty(el.Tags["addr:city"], q.City),
			State:        el.Tags["addr:state"],
			ZipCode:      el.Tags["addr:postcode"],
			PropertyType: s.cfg.DefaultType,
			Source:       s.cfg.Name,
			Description:  el.Tags["name"],
		}
		if elat != 0 || elng != 0 {
			p.Coordinates = &domain.Coordinates{Lat: elat, Lng: elng}
		}
		res.Properties = append(res.Properties, p)
	}

	if len(res.Properties) == 0 {
		res.Message = "OpenStreetMap had no tagged features near the location"
	} else {
		res.Message = fmt.Sprintf("OpenStreetMap matched %d features", len(res.Properties))
	}
	return res
}

func (s *Source) geocode(ctx context.Context, location string) (lat, lng float64, err error) {
	u, err := url.Parse(s.nominatimURL)
	if err != nil {
		return 0, 0, err
	}
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u.String()); err != nil {
			return 0, 0, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", util.APIUA)

	resp, err := s.hc.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("nominatim get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, 0, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return 0, 0, fmt.Errorf("nominatim decode: %w", err)
	}
	if len(hits) == 0 {
		return 0, 0, fmt.Errorf("no geocode hit for %q", location)
	}
	fmt.Sscanf(hits[0].Lat, "%f", &lat)
	fmt.Sscanf(hits[0].Lon, "%f", &lng)
	return lat, lng, nil
}

// featureAddress assembles addr:housenumber/addr:street, falling back to the
// feature name. Unnamed untagged features are skipped entirely.
func featureAddress(tags map[string]string) string {
	street := tags["addr:street"]
	if street != "" {
		if num := tags["addr:housenumber"]; num != "" {
			return num + " " + street
		}
		return street
	}
	return tags["name"]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
