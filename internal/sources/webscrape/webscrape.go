// Package webscrape is the HTML-scraping adapter flavor. It is explicitly
// best-effort: candidate records come out of regex matches over uncontrolled
// third-party markup, partial or garbage matches are accepted silently, and
// output is capped to keep pathological pages bounded.
package webscrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/registry"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

// DefaultCap bounds extracted records per page.
const DefaultCap = 20

var (
	addressRe = regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z0-9#.'-]+(?:\s+[A-Za-z0-9#.'-]+){0,4}\s+(?:St|Street|Ave|Avenue|Blvd|Boulevard|Dr|Drive|Rd|Road|Ln|Lane|Way|Ct|Court|Pkwy|Parkway|Hwy|Highway|Trail|Tr)\b[^,\n]*`)
	priceRe   = regexp.MustCompile(`\$\s?[\d,]{4,}(?:\.\d{2})?`)
)

type Source struct {
	cfg     registry.SourceConfig
	hc      *http.Client
	limiter *util.HostLimiter
	log     *slog.Logger
	cap     int
}

func New(cfg registry.SourceConfig, limiter *util.HostLimiter, timeout time.Duration, cap int, log *slog.Logger) *Source {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Source{
		cfg:     cfg,
		hc:      util.NewClient(timeout),
		limiter: limiter,
		log:     log,
		cap:     cap,
	}
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SearchURL, nil)
	if err != nil {
		res.Message = fmt.Sprintf("%s has an invalid search URL", s.cfg.Label)
		return res
	}
	req.Header.Set("User-Agent", util.BrowserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn("scrape target unreachable", "source", s.cfg.Name, "err", err)
		res.Message = fmt.Sprintf("%s could not be reached", s.cfg.Label)
		return res
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		// 403s here are usually anti-scraping gates, worth naming in the report
		res.Message = fmt.Sprintf("%s blocked the request (%d)", s.cfg.Label, resp.StatusCode)
		return res
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		res.Message = fmt.Sprintf("%s returned unparseable markup", s.cfg.Label)
		return res
	}

	res.Properties = s.extract(doc, q)
	if len(res.Properties) == 0 {
		res.Message = fmt.Sprintf("%s yielded no extractable listings", s.cfg.Label)
	} else {
		res.Message = fmt.Sprintf("%s yielded %d listings", s.cfg.Label, len(res.Properties))
	}
	return res
}

// extract scans table rows and list items first, then falls back to raw body
// text. Each address-looking match becomes a candidate; a price in the same
// block is attached when present.
func (s *Source) extract(doc *goquery.Document, q types.Query) []domain.PropertyData {
	var out []domain.PropertyData
	seen := map[string]bool{}

	consume := func(block string) {
		if len(out) >= s.cap {
			return
		}
		block = util.CleanText(block)
		loc := addressRe.FindStringIndex(block)
		if loc == nil {
			return
		}
		// keep the city/state/zip tail after the street match, stop at the
		// first price figure and keep the whole thing bounded
		addr := block[loc[0]:]
		if cut := strings.Index(addr, "$"); cut >= 0 {
			addr = addr[:cut]
		}
		if len(addr) > 100 {
			cut := 100
			for cut > 0 && !utf8.RuneStart(addr[cut]) {
				cut--
			}
			addr = addr[:cut]
		}
		addr = strings.TrimRight(util.CleanText(addr), " ,;|-")
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true

		p := domain.PropertyData{
			Address:      util.CleanText(addr),
			City:         extract.City(addr),
			State:        extract.State(addr),
			ZipCode:      extract.ZipCode(block),
			PropertyType: s.cfg.DefaultType,
			Source:       s.cfg.Name,
			ListingURL:   s.cfg.SearchURL,
		}
		if p.City == "Unknown" && q.City != "" {
			p.City = q.City
		}
		if price := priceRe.FindString(block); price != "" {
			p.AskingPrice = extract.Numeric(price)
		}
		if q.PropertyType != "" {
			p.PropertyType = q.PropertyType
		}
		out = append(out, p)
	}

	doc.Find("tr, li, .listing, .property, article").Each(func(_ int, sel *goquery.Selection) {
		consume(sel.Text())
	})

	if len(out) == 0 {
		// last resort: whole-body line scan
		for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
			if len(out) >= s.cap {
				break
			}
			consume(line)
		}
	}
	return out
}
