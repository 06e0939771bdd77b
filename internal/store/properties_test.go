package store

import (
	"context"
	"path/filepath"
	"testing"

	"propscout-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestInsertPropertyIgnoreIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	p := domain.PropertyData{
		Address:      "100 Industrial Blvd",
		City:         "Houston",
		State:        "TX",
		PropertyType: "industrial",
		Source:       "county_records",
	}

	added, err := InsertPropertyIgnore(db.Pool, "Houston, TX", p)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !added {
		t.Error("first insert reported added = false")
	}

	added, err = InsertPropertyIgnore(db.Pool, "Houston, TX", p)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if added {
		t.Error("duplicate insert reported added = true")
	}

	got, err := ListProperties(context.Background(), db.Pool, ListPropertiesOpts{})
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(properties) = %d, want 1", len(got))
	}
	if got[0].Address != p.Address || got[0].Source != p.Source {
		t.Errorf("round-tripped record = %+v, want %+v", got[0], p)
	}
}

func TestListPropertiesFilters(t *testing.T) {
	db := openTestDB(t)

	seed := []struct {
		loc string
		p   domain.PropertyData
	}{
		{"Houston, TX", domain.PropertyData{Address: "100 Industrial Blvd", City: "Houston", State: "TX", Source: "county_records"}},
		{"Houston, TX", domain.PropertyData{Address: "200 Port Rd", City: "Houston", State: "TX", Source: "public_auctions"}},
		{"Calgary, AB", domain.PropertyData{Address: "37 Street SW", City: "Calgary", State: "AB", Source: "transmission_grid",
			Coordinates: &domain.Coordinates{Lat: 51.012, Lng: -114.145}}},
	}
	for _, s := range seed {
		if _, err := InsertPropertyIgnore(db.Pool, s.loc, s.p); err != nil {
			t.Fatalf("seed %q: %v", s.p.Address, err)
		}
	}

	got, err := ListProperties(context.Background(), db.Pool, ListPropertiesOpts{Location: "Houston, TX"})
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Houston records = %d, want 2", len(got))
	}

	got, err = ListProperties(context.Background(), db.Pool, ListPropertiesOpts{Source: "transmission_grid"})
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(got) != 1 || got[0].Coordinates == nil {
		t.Fatalf("grid records = %+v, want one with coordinates", got)
	}
}

func TestSavePropertiesSink(t *testing.T) {
	db := openTestDB(t)
	sink := Properties{DB: db}

	props := []domain.PropertyData{
		{Address: "100 Industrial Blvd", City: "Houston", State: "TX", Source: "county_records"},
		{Address: "200 Port Rd", City: "Houston", State: "TX", Source: "county_records"},
	}
	if err := sink.SaveProperties(context.Background(), "Houston, TX", props); err != nil {
		t.Fatalf("SaveProperties: %v", err)
	}

	got, err := ListProperties(context.Background(), db.Pool, ListPropertiesOpts{})
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(properties) = %d, want 2", len(got))
	}
}
