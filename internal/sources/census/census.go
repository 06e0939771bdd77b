// Package census pulls area profiles from the US Census ACS 5-year bulk API.
// The API answers with a header row followed by tabular string rows, not
// objects, so this adapter does its own positional decoding.
package census

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
	"propscout-engine/internal/extract"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

// variables: total population, median home value, median household income.
const acsVariables = "NAME,B01003_001E,B25077_001E,B19013_001E"

// maxAreas bounds how many matching places become records.
const maxAreas = 5

// stateFIPS covers the US jurisdictions in the registry.
var stateFIPS = map[string]string{
	"texas":      "48",
	"california": "06",
	"georgia":    "13",
}

type Source struct {
	cfg     registry.SourceConfig
	hc      *http.Client
	limiter *util.HostLimiter
	log     *slog.Logger
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, log *slog.Logger) *Source {
	return &Source{cfg: cfg, hc: util.NewClient(timeout), limiter: limiter, log: log}
}

func (s *Source) Name() string   { return s.cfg.Name }
func (s *Source) Method() string { return string(s.cfg.Method) }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.cfg.Name, Method: string(s.cfg.Method)}

	fips, ok := stateFIPS[q.Jurisdiction]
	if !ok {
		res.Message = fmt.Sprintf("US Census data is not available for %s", q.Jurisdiction)
		return res
	}

	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		res.Message = "Census endpoint is misconfigured"
		return res
	}
	params := url.Values{}
	params.Set("get", acsVariables)
	params.Set("for", "place:*")
	params.Set("in", "state:"+fips)
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u.String()); err != nil {
			res.Message = "Census request cancelled"
			return res
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", util.APIUA)

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("census api unreachable", "err", err)
		res.Message = "US Census API could not be reached"
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		res.Message = fmt.Sprintf("US Census API returned an error response (%d)", resp.StatusCode)
		return res
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		res.Message = "US Census API returned malformed data"
		return res
	}
	if len(rows) < 2 {
		res.Message = "US Census API returned no rows"
		return res
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	nameIdx, ok := col["NAME"]
	if !ok {
		res.Message = "US Census response is missing the NAME column"
		return res
	}

	wantCity := strings.ToLower(q.City)
	for _, row := range rows[1:] {
		if len(res.Properties) >= maxAreas {
			break
		}
		if nameIdx >= len(row) {
			continue
		}
		name := row[nameIdx]
		if wantCity != "" && wantCity != "unknown" && !strings.Contains(strings.ToLower(name), wantCity) {
			continue
		}

		profile := &domain.CensusProfile{
			Population:            cell(row, col, "B01003_001E"),
			MedianHomeValue:       cell(row, col, "B25077_001E"),
			MedianHouseholdIncome: cell(row, col, "B19013_001E"),
		}
		res.Properties = append(res.Properties, domain.PropertyData{
			Address:      name,
			City:         placeFromName(name),
			State:        stateFromName(name),
			PropertyType: s.cfg.DefaultType,
			Source:       s.cfg.Name,
			Description:  "ACS 5-year area profile",
			Census:       profile,
		})
	}

	if len(res.Properties) == 0 {
		res.Message = fmt.Sprintf("US Census API had no place matching %q", q.City)
	} else {
		res.Message = fmt.Sprintf("US Census API matched %d areas", len(res.Properties))
	}
	return res
}

func cell(row []string, col map[string]int, name string) *float64 {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return nil
	}
	// the API encodes suppressed values as large negatives
	v := extract.Numeric(row[i])
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// placeFromName turns "Houston city, Texas" into "Houston".
func placeFromName(name string) string {
	head, _, _ := strings.Cut(name, ",")
	for _, suffix := range []string{" city", " town", " CDP", " village"} {
		head = strings.TrimSuffix(head, suffix)
	}
	return strings.TrimSpace(head)
}

func stateFromName(name string) string {
	_, tail, ok := strings.Cut(name, ",")
	if !ok {
		return ""
	}
	return strings.TrimSpace(tail)
}
