// Package grid is the fallback-capable transmission-grid adapter. It tries
// the grid operator's API first and substitutes a small embedded dataset of
// known Alberta facilities when the live source is down, tagging those
// records so callers can tell fallback data from live data.
package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

const (
	// SourceName is the live-data tag; FallbackSource marks embedded records.
	SourceName     = "transmission_grid"
	FallbackSource = "aeso_fallback_dataset"

	defaultAPIURL = "https://api.aeso.ca/web/api/v1/transmission/facilities"
)

type Source struct {
	apiURL string
	hc     *http.Client
	log    *slog.Logger
}

func New(apiURL string, timeout time.Duration, log *slog.Logger) *Source {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Source{apiURL: apiURL, hc: util.NewClient(timeout), log: log}
}

func (s *Source) Name() string   { return SourceName }
func (s *Source) Method() string { return "public_api" }

type facility struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Voltage     string  `json:"voltage_level"`
	CapacityMVA float64 `json:"capacity_mva"`
	Type        string  `json:"facility_type"`
	Lat         float64 `json:"latitude"`
	Lng         float64 `json:"longitude"`
}

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: SourceName, Method: "public_api"}

	props, err := s.fetchLive(ctx, q)
	if err != nil {
		s.log.Warn("grid api unavailable, using embedded dataset", "err", err)
		res.Source = FallbackSource
		res.Properties = fallbackFacilities(q)
		res.Message = fmt.Sprintf("Transmission grid API unavailable; %d known facilities served from the embedded dataset", len(res.Properties))
		return res
	}

	res.Properties = props
	res.Message = fmt.Sprintf("Transmission grid API returned %d facilities", len(props))
	return res
}

func (s *Source) fetchLive(ctx context.Context, q types.Query) ([]domain.PropertyData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", util.APIUA)
	req.Header.Set("Accept", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grid api get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("grid api status %d", resp.StatusCode)
	}

	var body struct {
		Facilities []facility `json:"facilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("grid api decode: %w", err)
	}

	var out []domain.PropertyData
	for _, f := range body.Facilities {
		p := facilityToProperty(f, SourceName)
		if p.Address == "" {
			continue
		}
		out = append(out, p)
	}
	return filterByCity(out, q.City), nil
}

func facilityToProperty(f facility, source string) domain.PropertyData {
	addr := f.Address
	if addr == "" {
		addr = f.Name
	}
	p := domain.PropertyData{
		Address:      addr,
		City:         f.City,
		State:        "AB",
		PropertyType: "transmission_infrastructure",
		Source:       source,
		Description:  f.Name,
		VoltageLevel: f.Voltage,
		FacilityType: f.Type,
	}
	if p.City == "" {
		p.City = extract.City(addr)
	}
	if f.CapacityMVA > 0 {
		mva := f.CapacityMVA
		p.CapacityMVA = &mva
	}
	if f.Lat != 0 || f.Lng != 0 {
		p.Coordinates = &domain.Coordinates{Lat: f.Lat, Lng: f.Lng}
	}
	return p
}

// filterByCity narrows to the requested city when it is known, otherwise the
// full jurisdiction list passes through.
func filterByCity(props []domain.PropertyData, city string) []domain.PropertyData {
	if city == "" || city == "Unknown" {
		return props
	}
	want := strings.ToLower(city)
	var out []domain.PropertyData
	for _, p := range props {
		if strings.Contains(strings.ToLower(p.City), want) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return props
	}
	return out
}

func fallbackFacilities(q types.Query) []domain.PropertyData {
	out := make([]domain.PropertyData, 0, len(embeddedFacilities))
	for _, f := range embeddedFacilities {
		out = append(out, facilityToProperty(f, FallbackSource))
	}
	return filterByCity(out, q.City)
}

// embeddedFacilities is the static substitute served when the live API is
// down. Figures are public knowledge, kept deliberately small.
var embeddedFacilities = []facility{
	{Name: "Langdon 102S Substation", Address: "Range Road 271, Rocky View County, AB", City: "Calgary", Voltage: "500 kV", CapacityMVA: 1400, Type: "substation", Lat: 50.995, Lng: -113.672},
	{Name: "Janet 74S Substation", Address: "Glenmore Trail SE, Calgary, AB", City: "Calgary", Voltage: "240 kV", CapacityMVA: 900, Type: "substation", Lat: 50.986, Lng: -113.896},
	{Name: "Sarcee 42S Substation", Address: "37 Street SW, Calgary, AB", City: "Calgary", Voltage: "138 kV", CapacityMVA: 450, Type: "substation", Lat: 51.012, Lng: -114.145},
	{Name: "Ellerslie 89S Substation", Address: "9704 41 Avenue NW, Edmonton, AB", City: "Edmonton", Voltage: "240 kV", CapacityMVA: 800, Type: "substation", Lat: 53.449, Lng: -113.476},
	{Name: "Petrolia 719S Substation", Address: "119 Street NW, Edmonton, AB", City: "Edmonton", Voltage: "138 kV", CapacityMVA: 400, Type: "substation", Lat: 53.478, Lng: -113.531},
	{Name: "Red Deer 63S Substation", Address: "Burnt Lake Trail, Red Deer County, AB", City: "Red Deer", Voltage: "240 kV", CapacityMVA: 600, Type: "substation", Lat: 52.284, Lng: -113.897},
}
