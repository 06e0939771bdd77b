// Package places queries the Google Places text-search API for commercial
// and industrial sites around a location. Requires GOOGLE_PLACES_API_KEY;
// a missing key is a normal "not configured" outcome, not a failure.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"propscout-engine/internal/extract"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/secrets"
	"propscout-engine/internal/sources/fieldmap"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

const maxResults = 20

type Source struct {
	cfg     registry.SourceConfig
	hc      *http.Client
	limiter *util.HostLimiter
	log     *slog.Logger

	// keyFn is swappable in tests; defaults to secrets.APIKey.
	keyFn func(string) string
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, log *slog.Logger) *Source {
	return &Source{
		cfg:     cfg,
		hc:      util.NewClient(timeout),
		limiter: limiter,
		log:     log,
		keyFn:   secrets.APIKey,
	}
}

func (s *Source) Name() string   { return s.cfg.Name }
func (s *Source) Method() string { return string(s.cfg.Method) }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.cfg.Name, Method: string(s.cfg.Method)}

	key := s.keyFn(s.cfg.APIKeyEnv)
	if key == "" {
		res.Message = "Google Places API key not configured"
		return res
	}

	query := q.PropertyType
	if query == "" {
		query = "commercial property"
	}
	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		res.Message = "Google Places endpoint is misconfigured"
		return res
	}
	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s in %s", query, q.Location))
	params.Set("key", key)
	if q.RadiusKM > 0 {
		params.Set("radius", fmt.Sprintf("%.0f", q.RadiusKM*1000))
	}
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u.String()); err != nil {
			res.Message = "Google Places request cancelled"
			return res
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", util.APIUA)

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("places api unreachable", "err", err)
		res.Message = "Google Places API could not be reached"
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		res.Message = fmt.Sprintf("Google Places API returned an error response (%d)", resp.StatusCode)
		return res
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Message = "Google Places API returned malformed data"
		return res
	}
	if status, _ := body["status"].(string); status != "" && status != "OK" && status != "ZERO_RESULTS" {
		res.Message = fmt.Sprintf("Google Places API rejected the request (%s)", status)
		return res
	}

	records, _ := extract.FieldValue(body, s.cfg.RecordsPath).([]any)
	for _, r := range records {
		if len(res.Properties) >= maxResults {
			break
		}
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		p, ok := fieldmap.Map(s.cfg.Fields, rec, s.cfg.Name, s.cfg.DefaultType)
		if !ok {
			continue
		}
		res.Properties = append(res.Properties, p)
	}

	res.Message = fmt.Sprintf("Google Places returned %d results", len(res.Properties))
	return res
}
