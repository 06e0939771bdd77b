// Package aggregate runs one best-effort sweep over every free data source
// registered for a location and merges whatever comes back.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
)

// Request is the decoded body of an integration call. Source narrows the
// sweep to one registry entry; empty means "everything for the jurisdiction".
type Request struct {
	Source       string  `json:"source,omitempty"`
	Location     string  `json:"location"`
	PropertyType string  `json:"property_type,omitempty"`
	RadiusKM     float64 `json:"radius,omitempty"`
}

// Sink receives the deduplicated records after a sweep. Persistence is
// best-effort; a sink error never fails the aggregation.
type Sink interface {
	SaveProperties(ctx context.Context, location string, props []domain.PropertyData) error
}

type Options struct {
	// PolitenessDelay is the pause between consecutive source fetches.
	// Sources are always dispatched one at a time; parallel fetches would
	// hammer third-party sites and trip their abuse detection.
	PolitenessDelay time.Duration

	// MaxSources bounds how many registry sources one request may hit.
	// MaxAfterSpecialized replaces it when the specialized grid adapter
	// already ran for the jurisdiction.
	MaxSources          int
	MaxAfterSpecialized int

	AdapterTimeout time.Duration

	// Priority reorders the registry set: listed source names go first,
	// in list order. Unlisted sources keep registration order.
	Priority []string
}

func (o Options) withDefaults() Options {
	if o.PolitenessDelay <= 0 {
		o.PolitenessDelay = 250 * time.Millisecond
	}
	if o.MaxSources <= 0 {
		o.MaxSources = 5
	}
	if o.MaxAfterSpecialized <= 0 {
		o.MaxAfterSpecialized = 2
	}
	if o.AdapterTimeout <= 0 {
		o.AdapterTimeout = 15 * time.Second
	}
	return o
}

// Orchestrator owns one sweep's control flow: registry lookup, sequential
// paced dispatch, per-source failure isolation, dedup, report assembly.
type Orchestrator struct {
	opts  Options
	build func(registry.SourceConfig) types.Source
	grid  types.Source   // specialized adapter for grid jurisdictions, may be nil
	extra []types.Source // always-on supplemental sources (email alerts, parcels)
	sink  Sink
	log   *slog.Logger
}

func New(opts Options, build func(registry.SourceConfig) types.Source, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{opts: opts.withDefaults(), build: build, log: log}
}

// WithGrid installs the specialized transmission-grid adapter.
func (o *Orchestrator) WithGrid(s types.Source) *Orchestrator { o.grid = s; return o }

// WithExtra appends supplemental sources run after the registry set.
func (o *Orchestrator) WithExtra(ss ...types.Source) *Orchestrator {
	o.extra = append(o.extra, ss...)
	return o
}

// WithSink installs a persistence sink for deduplicated records.
func (o *Orchestrator) WithSink(s Sink) *Orchestrator { o.sink = s; return o }

// Run executes one aggregation sweep. It always returns a report; source
// failures are folded into the report message, and a canceled context stops
// scheduling further sources and returns whatever was already collected.
func (o *Orchestrator) Run(ctx context.Context, req Request) domain.AggregationReport {
	jur, matched := registry.Match(req.Location)
	q := types.Query{
		Location:     req.Location,
		City:         extract.City(req.Location),
		Jurisdiction: "Unknown",
		PropertyType: req.PropertyType,
		RadiusKM:     req.RadiusKM,
	}
	if matched {
		q.Jurisdiction = jur.Name
	}

	// Lookup hands back a copy, so reordering below never touches the
	// shared registry tables.
	configs := o.ordered(registry.Lookup(req.Location))
	if req.Source != "" {
		configs = filterByName(configs, req.Source)
	}

	pacer := rate.NewLimiter(rate.Every(o.opts.PolitenessDelay), 1)

	var results []types.Result
	maxSources := o.opts.MaxSources
	if matched && jur.TransmissionGrid && o.grid != nil && req.Source == "" {
		_ = pacer.Wait(ctx)
		results = append(results, o.invoke(ctx, o.grid, q))
		maxSources = o.opts.MaxAfterSpecialized
	}
	if len(configs) > maxSources {
		configs = configs[:maxSources]
	}
	for _, cfg := range configs {
		if err := pacer.Wait(ctx); err != nil {
			o.log.Warn("aggregation canceled, returning partial results",
				"location", req.Location, "completed", len(results))
			break
		}
		src := o.build(cfg)
		results = append(results, o.invoke(ctx, src, q))
	}
	if req.Source == "" && ctx.Err() == nil {
		for _, src := range o.extra {
			if err := pacer.Wait(ctx); err != nil {
				break
			}
			results = append(results, o.invoke(ctx, src, q))
		}
	}

	report := buildReport(results)
	if o.sink != nil && len(report.Properties) > 0 {
		if err := o.sink.SaveProperties(ctx, req.Location, report.Properties); err != nil {
			o.log.Error("saving aggregated properties failed", "err", err)
		}
	}
	return report
}

// invoke runs one source with its own timeout and absorbs panics, so a
// misbehaving adapter degrades to a failed-source entry in the report.
func (o *Orchestrator) invoke(ctx context.Context, src types.Source, q types.Query) (res types.Result) {
	cctx, cancel := context.WithTimeout(ctx, o.opts.AdapterTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("source adapter panicked", "source", src.Name(), "panic", r)
			res = types.Result{
				Source:  src.Name(),
				Method:  src.Method(),
				Message: fmt.Sprintf("%s failed unexpectedly", src.Name()),
			}
		}
	}()

	start := time.Now()
	res = src.Fetch(cctx, q)
	o.log.Info("source fetched",
		"source", src.Name(),
		"method", src.Method(),
		"found", len(res.Properties),
		"took", time.Since(start).Round(time.Millisecond))
	return res
}

// ordered applies the configured priority list, keeping registration order
// for everything the list does not name.
func (o *Orchestrator) ordered(configs []registry.SourceConfig) []registry.SourceConfig {
	if len(o.opts.Priority) == 0 {
		return configs
	}
	rank := make(map[string]int, len(o.opts.Priority))
	for i, name := range o.opts.Priority {
		rank[name] = i
	}
	out := make([]registry.SourceConfig, 0, len(configs))
	for _, name := range o.opts.Priority {
		for _, cfg := range configs {
			if cfg.Name == name {
				out = append(out, cfg)
			}
		}
	}
	for _, cfg := range configs {
		if _, listed := rank[cfg.Name]; !listed {
			out = append(out, cfg)
		}
	}
	return out
}

func filterByName(configs []registry.SourceConfig, name string) []registry.SourceConfig {
	var out []registry.SourceConfig
	for _, cfg := range configs {
		if cfg.Name == name {
			out = append(out, cfg)
		}
	}
	return out
}

// buildReport merges adapter results: drops records without an address,
// deduplicates on address|city|state with the first occurrence winning, and
// assembles the outcome message.
func buildReport(results []types.Result) domain.AggregationReport {
	var (
		props      = []domain.PropertyData{} // marshals as [] even when empty
		seen       = map[string]bool{}
		successful []string
		failed     []string
	)
	for _, r := range results {
		for _, p := range r.Properties {
			if p.Address == "" {
				continue
			}
			key := p.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			props = append(props, p)
		}
		if len(r.Properties) > 0 {
			successful = append(successful, fmt.Sprintf("%s (%s)", r.Source, r.Method))
		} else {
			note := r.Source
			if r.Message != "" {
				note = fmt.Sprintf("%s: %s", r.Source, r.Message)
			}
			failed = append(failed, note)
		}
	}

	report := domain.AggregationReport{
		Properties:       props,
		SourcesAttempted: len(results),
		TotalFound:       len(props),
	}

	switch {
	case len(results) == 0:
		report.Message = "No free data sources are registered for this location."
	case len(props) > 0:
		report.Message = fmt.Sprintf("Found %d properties from %s.",
			len(props), strings.Join(successful, ", "))
		if len(failed) > 0 {
			report.Message += fmt.Sprintf(" Unavailable: %s.", strings.Join(failed, "; "))
		}
	default:
		report.Message = fmt.Sprintf(
			"No properties found after trying %d sources. Public records are often behind logins, paywalls, or anti-scraping defenses. Details: %s.",
			len(results), strings.Join(failed, "; "))
	}
	return report
}
