// Package yelp queries the Yelp Fusion business search API for commercial
// property leads. Requires YELP_API_KEY; absence is reported, not thrown.
package yelp

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
		res.Message = "Yelp API key not configured"
		return res
	}

	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		res.Message = "Yelp endpoint is misconfigured"
		return res
	}
	params := url.Values{}
	params.Set("location", q.Location)
	params.Set("categories", "commercialrealestate")
	params.Set("limit", fmt.Sprintf("%d", maxResults))
	if q.PropertyType != "" {
		params.Set("term", q.PropertyType)
	}
	if q.RadiusKM > 0 {
		// Yelp caps radius at 40km
		r := q.RadiusKM
		if r > 40 {
			r = 40
		}
		params.Set("radius", fmt.Sprintf("%.0f", r*1000))
	}
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u.String()); err != nil {
			res.Message = "Yelp request cancelled"
			return res
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", util.APIUA)
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("yelp api unreachable", "err", err)
		res.Message = "Yelp API could not be reached"
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		res.Message = fmt.Sprintf("Yelp API returned an error response (%d)", resp.StatusCode)
		return res
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Message = "Yelp API returned malformed data"
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

	res.Message = fmt.Sprintf("Yelp returned %d businesses", len(res.Properties))
	return res
}
