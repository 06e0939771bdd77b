// Package parcels reads a locally downloaded county parcel shapefile, the
// data_download access method for counties that publish bulk GIS exports
// instead of an API. The adapter is optional; it only exists when config
// points it at a shapefile on disk.
package parcels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonas-p/go-shp"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

const maxParcels = 50

// Config wires the local dataset: the .shp path, the county label for
// report messages, and the attribute-name mapping for the county's schema.
type Config struct {
	Shapefile string
	County    string
	Fields    map[string]string // canonical field -> dbf attribute name
}

type Source struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Source {
	return &Source{cfg: cfg, log: log}
}

func (s *Source) Name() string   { return "parcel_shapefile" }
func (s *Source) Method() string { return "data_download" }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.Name(), Method: s.Method()}

	r, err := shp.Open(s.cfg.Shapefile)
	if err != nil {
		s.log.Warn("parcel shapefile unreadable", "path", s.cfg.Shapefile, "err", err)
		res.Message = fmt.Sprintf("%s parcel dataset could not be opened", s.cfg.County)
		return res
	}
	defer r.Close()

	fields := r.Fields()
	fieldIdx := map[string]int{}
	for i, f := range fields {
		fieldIdx[strings.ToUpper(strings.TrimRight(f.String(), "\x00"))] = i
	}
	attr := func(row int, canonical string) string {
		name, ok := s.cfg.Fields[canonical]
		if !ok {
			return ""
		}
		i, ok := fieldIdx[strings.ToUpper(name)]
		if !ok {
			return ""
		}
		return util.CleanText(r.ReadAttribute(row, i))
	}

	wantCity := strings.ToLower(q.City)
	for r.Next() {
		if len(res.Properties) >= maxParcels || ctx.Err() != nil {
			break
		}
		idx, shape := r.Shape()

		addr := attr(idx, "address")
		if addr == "" {
			continue
		}
		city := attr(idx, "city")
		if wantCity != "" && wantCity != "unknown" {
			hay := strings.ToLower(city + " " + addr)
			if !strings.Contains(hay, wantCity) {
				continue
			}
		}

		p := domain.PropertyData{
			Address:      addr,
			City:         city,
			State:        attr(idx, "state"),
			ZipCode:      attr(idx, "zip_code"),
			OwnerName:    attr(idx, "owner_name"),
			PropertyType: "county_parcel",
			Source:       s.Name(),
			Description:  attr(idx, "legal_description"),
		}
		if p.City == "" {
			p.City = extract.City(addr)
		}
		if p.State == "" {
			p.State = extract.State(addr)
		}
		if v := extract.Numeric(attr(idx, "market_value")); v != nil {
			p.MarketValue = v
		}
		if v := extract.Numeric(attr(idx, "assessed_value")); v != nil {
			p.AssessedValue = v
		}
		if v := extract.Numeric(attr(idx, "year_built")); v != nil {
			y := int(*v)
			p.YearBuilt = &y
		}
		if v := extract.Numeric(attr(idx, "lot_size_acres")); v != nil {
			p.LotSizeAcres = v
		}
		if pt, ok := shape.(*shp.Point); ok {
			p.Coordinates = &domain.Coordinates{Lat: pt.Y, Lng: pt.X}
		}

		res.Properties = append(res.Properties, p)
	}

	if len(res.Properties) == 0 {
		res.Message = fmt.Sprintf("%s parcel dataset had no parcels matching %q", s.cfg.County, q.City)
	} else {
		res.Message = fmt.Sprintf("%s parcel dataset matched %d parcels", s.cfg.County, len(res.Properties))
	}
	return res
}
