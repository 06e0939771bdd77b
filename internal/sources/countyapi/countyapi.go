// Package countyapi is the typed-API adapter flavor: an unauthenticated JSON
// GET against a county assessor endpoint, normalized through the source's
// declared field mapping.
package countyapi

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
	"propscout-engine/internal/sources/fieldmap"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

type Source struct {
	cfg     registry.SourceConfig
	hc      *http.Client
	limiter *util.HostLimiter
	log     *slog.Logger
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, log *slog.Logger) *Source {
	return &Source{
		cfg:     cfg,
		hc:      util.NewClient(timeout),
		limiter: limiter,
		log:     log,
	}
}

func (s *Source) Name() string   { return s.cfg.Name }
func (s *Source) Method() string { return string(s.cfg.Method) }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.cfg.Name, Method: string(s.cfg.Method)}

	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		res.Message = fmt.Sprintf("%s has an invalid endpoint", s.cfg.Label)
		return res
	}
	params := u.Query()
	params.Set("search", q.Location)
	if q.City != "" && q.City != "Unknown" {
		params.Set("city", q.City)
	}
	if q.PropertyType != "" {
		params.Set("property_type", q.PropertyType)
	}
	if q.RadiusKM > 0 {
		params.Set("radius", fmt.Sprintf("%.0f", q.RadiusKM))
	}
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u.String()); err != nil {
			res.Message = fmt.Sprintf("%s request cancelled", s.cfg.Label)
			return res
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", util.APIUA)
	req.Header.Set("Accept", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("county api unreachable", "source", s.cfg.Name, "err", err)
		res.Message = fmt.Sprintf("%s could not be reached", s.cfg.Label)
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		res.Message = fmt.Sprintf("%s returned an error response (%d)", s.cfg.Label, resp.StatusCode)
		return res
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Message = fmt.Sprintf("%s returned malformed data", s.cfg.Label)
		return res
	}

	records, _ := extract.FieldValue(body, s.cfg.RecordsPath).([]any)
	for _, r := range records {
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		p, ok := fieldmap.Map(s.cfg.Fields, rec, s.cfg.Name, s.cfg.DefaultType)
		if !ok {
			continue
		}
		if p.PropertyType == s.cfg.DefaultType && q.PropertyType != "" {
			p.PropertyType = q.PropertyType
		}
		res.Properties = append(res.Properties, p)
	}

	res.Message = fmt.Sprintf("%s returned %d records", s.cfg.Label, len(res.Properties))
	return res
}
