package mailalert

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"propscout-engine/internal/sources/types"
)

func TestFetchMissingPassword(t *testing.T) {
	s := New(Config{IMAPHost: "imap.example.com", Username: "u"}, slog.Default())
	s.passwordFn = func(string) (string, error) { return "", errors.New("not set") }

	res := s.Fetch(context.Background(), types.Query{Location: "Houston, TX"})
	if len(res.Properties) != 0 {
		t.Errorf("got %d properties without credentials", len(res.Properties))
	}
	if res.Message == "" {
		t.Error("missing password must produce a message")
	}
}

func TestExtractProperties(t *testing.T) {
	s := New(Config{}, slog.Default())
	bodies := []string{
		"New tax sale posted:\n4815 Canal St, Houston, TX 77011\nOpening bid $30,000",
		"Duplicate alert: 4815 Canal St, Houston, TX 77011",
		"Nothing of interest in this one.",
	}
	props := s.extractProperties(bodies, types.Query{City: "Houston"})

	if len(props) != 1 {
		t.Fatalf("got %d properties, want 1 (deduped across messages)", len(props))
	}
	p := props[0]
	if p.City != "Houston" || p.State != "TX" || p.ZipCode != "77011" {
		t.Errorf("record = %q/%q/%q", p.City, p.State, p.ZipCode)
	}
	if p.Source != "listing_alert_email" || p.PropertyType != "listing_alert" {
		t.Errorf("Source/Type = %q/%q", p.Source, p.PropertyType)
	}
}
