package extract

import "testing"

func TestCity(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"123 Main St, Austin, TX 78701", "Austin"},
		{"456 Elm Ave, Houston, TX", "Houston"},
		{"no commas here", "Unknown"},
		{"", "Unknown"},
		{"just one, TX", "just one"},
	}
	for _, c := range cases {
		if got := City(c.address); got != c.want {
			t.Errorf("City(%q) = %q, want %q", c.address, got, c.want)
		}
	}
}

func TestState(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"123 Main St, Austin, TX 78701", "TX"},
		{"123 Main St, Austin, Texas", "Texas"},
		{"", ""},
		{"500 4 Ave SW, Calgary, AB T2P 0J6", "AB"},
	}
	for _, c := range cases {
		if got := State(c.address); got != c.want {
			t.Errorf("State(%q) = %q, want %q", c.address, got, c.want)
		}
	}
}

func TestZipCode(t *testing.T) {
	if got := ZipCode("123 Main St, Austin, TX 78701"); got != "78701" {
		t.Errorf("ZipCode = %q, want %q", got, "78701")
	}
	if got := ZipCode("100 Oak Ln, Dallas, TX 75201-1234"); got != "75201-1234" {
		t.Errorf("ZipCode with +4 = %q, want %q", got, "75201-1234")
	}
	if got := ZipCode("no zip here"); got != "" {
		t.Errorf("ZipCode(no zip) = %q, want empty", got)
	}
}

func TestFieldValue(t *testing.T) {
	rec := map[string]any{
		"situs": "700 Bagby St",
		"location": map[string]any{
			"lat": 29.76,
			"lng": -95.36,
		},
	}
	if got := FieldValue(rec, "situs"); got != "700 Bagby St" {
		t.Errorf("FieldValue(situs) = %v", got)
	}
	if got := FieldValue(rec, "location.lat"); got != 29.76 {
		t.Errorf("FieldValue(location.lat) = %v", got)
	}
	if got := FieldValue(rec, "location.missing"); got != nil {
		t.Errorf("FieldValue on missing leaf = %v, want nil", got)
	}
	if got := FieldValue(rec, "situs.deeper"); got != nil {
		t.Errorf("FieldValue through non-object = %v, want nil", got)
	}
	if got := FieldValue(nil, "situs"); got != nil {
		t.Errorf("FieldValue(nil record) = %v, want nil", got)
	}
}

func TestNumeric(t *testing.T) {
	if got := Numeric("$1,234.50"); got == nil || *got != 1234.5 {
		t.Errorf("Numeric($1,234.50) = %v, want 1234.5", got)
	}
	if got := Numeric(""); got != nil {
		t.Errorf("Numeric(empty) = %v, want nil", got)
	}
	if got := Numeric("abc"); got != nil {
		t.Errorf("Numeric(abc) = %v, want nil", got)
	}
	if got := Numeric("1450 sqft"); got == nil || *got != 1450 {
		t.Errorf("Numeric(1450 sqft) = %v, want 1450", got)
	}
}

func TestNumericField(t *testing.T) {
	rec := map[string]any{
		"assessed": 250000.0,
		"price":    "$98,500",
		"junk":     true,
	}
	if got := NumericField(rec, "assessed"); got == nil || *got != 250000 {
		t.Errorf("NumericField(assessed) = %v", got)
	}
	if got := NumericField(rec, "price"); got == nil || *got != 98500 {
		t.Errorf("NumericField(price) = %v", got)
	}
	if got := NumericField(rec, "junk"); got != nil {
		t.Errorf("NumericField(bool) = %v, want nil", got)
	}
}
