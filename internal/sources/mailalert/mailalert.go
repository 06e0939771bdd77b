// Package mailalert ingests county/listing alert emails from an IMAP inbox
// as one more best-effort property source. Alert mails from assessor and
// listing services carry plain address lines; those are pulled out with the
// same heuristics the scrapers use. The IMAP password lives in the OS
// keyring, never in config.
package mailalert

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"propscout-engine/internal/domain"
	"propscout-engine/internal/extract"
	"propscout-engine/internal/secrets"
	"propscout-engine/internal/sources/types"
	"propscout-engine/internal/sources/util"
)

const defaultMaxMessages = 25

var addressLineRe = regexp.MustCompile(`\b\d{1,6}\s+[A-Za-z0-9#.'-]+(?:\s+[A-Za-z0-9#.'-]+){0,4}\s+(?:St|Street|Ave|Avenue|Blvd|Boulevard|Dr|Drive|Rd|Road|Ln|Lane|Way|Ct|Court|Pkwy|Parkway|Hwy|Highway)\b[^$\n]*`)

type Config struct {
	IMAPHost       string
	IMAPPort       int
	Username       string
	KeyringAccount string
	Senders        []string // only mails From these substrings are scanned
	MaxMessages    int
}

type Source struct {
	cfg Config
	log *slog.Logger

	// passwordFn is swappable in tests; defaults to secrets.MailPassword.
	passwordFn func(string) (string, error)
}

func New(cfg Config, log *slog.Logger) *Source {
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = defaultMaxMessages
	}
	if cfg.IMAPPort <= 0 {
		cfg.IMAPPort = 993
	}
	return &Source{cfg: cfg, log: log, passwordFn: secrets.MailPassword}
}

func (s *Source) Name() string   { return "listing_alert_email" }
func (s *Source) Method() string { return "data_download" }

func (s *Source) Fetch(ctx context.Context, q types.Query) types.Result {
	res := types.Result{Source: s.Name(), Method: s.Method()}

	password, err := s.passwordFn(s.cfg.KeyringAccount)
	if err != nil {
		res.Message = "Listing alert inbox password not configured"
		return res
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.IMAPHost, s.cfg.IMAPPort)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: s.cfg.IMAPHost},
	})
	if err != nil {
		s.log.Warn("imap dial failed", "addr", addr, "err", err)
		res.Message = "Listing alert inbox could not be reached"
		return res
	}
	defer func() {
		_ = c.Logout().Wait()
		_ = c.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(s.cfg.Username, password).Wait(); err != nil {
		res.Message = "Listing alert inbox rejected the login"
		return res
	}
	if _, err := c.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		res.Message = "Listing alert inbox could not be opened"
		return res
	}

	bodies, err := s.fetchRecentBodies(ctx, c)
	if err != nil {
		s.log.Warn("imap fetch failed", "err", err)
		res.Message = "Listing alert messages could not be fetched"
		return res
	}

	res.Properties = s.extractProperties(bodies, q)
	if len(res.Properties) == 0 {
		res.Message = "Listing alert inbox had no address-bearing messages"
	} else {
		res.Message = fmt.Sprintf("Listing alert inbox yielded %d addresses", len(res.Properties))
	}
	return res
}

func (s *Source) fetchRecentBodies(ctx context.Context, c *imapclient.Client) ([]string, error) {
	cutoff := time.Now().AddDate(0, -1, 0)
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > s.cfg.MaxMessages {
		uids = uids[:s.cfg.MaxMessages]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true, // don't mark \Seen
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var bodies []string
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}
		if buf.Envelope != nil && !s.fromWatchedSender(buf.Envelope.From) {
			continue
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			bodies = append(bodies, string(b))
		}
	}
	return bodies, nil
}

func (s *Source) fromWatchedSender(addrs []imap.Address) bool {
	if len(s.cfg.Senders) == 0 {
		return true
	}
	for i := range addrs {
		from := strings.ToLower(addrs[i].Addr())
		for _, want := range s.cfg.Senders {
			if strings.Contains(from, strings.ToLower(want)) {
				return true
			}
		}
	}
	return false
}

// extractProperties runs the address heuristics over every message body.
func (s *Source) extractProperties(bodies []string, q types.Query) []domain.PropertyData {
	var out []domain.PropertyData
	seen := map[string]bool{}

	for _, body := range bodies {
		for _, m := range addressLineRe.FindAllString(body, -1) {
			addr := strings.TrimRight(util.CleanText(m), " ,;|-")
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true

			p := domain.PropertyData{
				Address:      addr,
				City:         extract.City(addr),
				State:        extract.State(addr),
				ZipCode:      extract.ZipCode(addr),
				PropertyType: "listing_alert",
				Source:       s.Name(),
			}
			if p.City == "Unknown" && q.City != "" {
				p.City = q.City
			}
			if q.PropertyType != "" {
				p.PropertyType = q.PropertyType
			}
			out = append(out, p)
		}
	}
	return out
}
