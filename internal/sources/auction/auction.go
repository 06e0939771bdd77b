// Package auction scrapes auction/foreclosure listing sites. Same best-effort
// stance as webscrape, but driven by colly since listing pages paginate and
// lean on repeated card markup.
package auction

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

// Cap bounds listings per run; auction pages repeat card markup heavily.
const Cap = 15

var (
	addressRe = regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z0-9#.'-]+(?:\s+[A-Za-z0-9#.'-]+){0,4}\s+(?:St|Street|Ave|Avenue|Blvd|Boulevard|Dr|Drive|Rd|Road|Ln|Lane|Way|Ct|Court|Pkwy|Parkway|Hwy|Highway)\b[^$\n]*`)
	priceRe   = regexp.MustCompile(`\$\s?[\d,]{4,}(?:\.\d{2})?`)
	dateRe    = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b|\b\d{1,2}/\d{1,2}/\d{4}\b`)
	estValRe  = regexp.MustCompile(`(?i)(?:est\.?\s*(?:resale\s*)?value|arv)[:\s]*(\$\s?[\d,]+)`)
)

type Source struct {
	cfg     registry.SourceConfig
	limiter *util.HostLimiter
	log     *slog.Logger
	timeout time.Duration
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, log *slog.Logger) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Source{cfg: cfg, limiter: limiter, log: log, timeout: timeout}
}

func (s *Source) Name() string   { return s.cfg.Name }
func (s *Source) Method() string { return string(s.cfg.Method) }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.cfg.Name, Method: string(s.cfg.Method)}

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, s.cfg.SearchURL); err != nil {
			res.Message = fmt.Sprintf("%s request cancelled", s.cfg.Label)
			return res
		}
	}
	if ctx.Err() != nil {
		res.Message = fmt.Sprintf("%s request cancelled", s.cfg.Label)
		return res
	}

	c := colly.NewCollector(
		colly.UserAgent(util.BrowserUA),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	var props []domain.PropertyData
	seen := map[string]bool{}

	c.OnHTML("tr, li, .auction-item, .property-card, article", func(e *colly.HTMLElement) {
		if len(props) >= Cap {
			return
		}
		block := util.CleanText(e.Text)
		addr := util.CleanText(addressRe.FindString(block))
		addr = strings.TrimRight(addr, " ,;|-")
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true

		p := domain.PropertyData{
			Address:      addr,
			City:         extract.City(addr),
			State:        extract.State(addr),
			ZipCode:      extract.ZipCode(block),
			PropertyType: s.cfg.DefaultType,
			Source:       s.cfg.Name,
			ListingURL:   e.Request.URL.String(),
			AuctionDate:  dateRe.FindString(block),
		}
		if p.City == "Unknown" && q.City != "" {
			p.City = q.City
		}
		if price := priceRe.FindString(block); price != "" {
			p.AskingPrice = extract.Numeric(price)
		}
		if m := estValRe.FindStringSubmatch(block); m != nil {
			p.MarketValue = extract.Numeric(m[1])
		}
		// crude flip margin when both figures survived extraction
		if p.AskingPrice != nil && p.MarketValue != nil && *p.AskingPrice > 0 {
			roi := (*p.MarketValue - *p.AskingPrice) / *p.AskingPrice * 100
			p.ROIEstimate = &roi
		}
		props = append(props, p)
	})

	target := s.cfg.SearchURL
	if q.City != "" && q.City != "Unknown" {
		// most auction sites accept a trailing location slug
		target = strings.TrimRight(target, "/") + "/" + strings.ToLower(strings.ReplaceAll(q.City, " ", "-"))
	}

	if err := c.Visit(target); err != nil {
		// retry the bare search page before giving up on a bad slug
		if err2 := c.Visit(s.cfg.SearchURL); err2 != nil {
			s.log.Warn("auction site unreachable", "source", s.cfg.Name, "err", err2)
			res.Message = fmt.Sprintf("%s could not be reached or blocked the request", s.cfg.Label)
			return res
		}
	}
	c.Wait()

	res.Properties = props
	if len(props) == 0 {
		res.Message = fmt.Sprintf("%s yielded no extractable listings", s.cfg.Label)
	} else {
		res.Message = fmt.Sprintf("%s yielded %d listings", s.cfg.Label, len(props))
	}
	return res
}
