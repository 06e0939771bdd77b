// Package extract holds the heuristic field extractors used by every source
// adapter to pull structure out of loosely formatted address strings and
// untyped API records. All of them are best-effort: absence of a match is a
// zero value or nil, never an error.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	zipRe        = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	stateZipRe   = regexp.MustCompile(`\b([A-Z]{2})\s+\d{5}`)
	numericJunk  = strings.NewReplacer("$", "", ",", "", "€", "", " ", "")
	numericBody  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// City returns the second-to-last comma segment of an address line, the usual
// position of the city in "street, city, state zip". Unknown when the address
// has no usable segment.
func City(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return "Unknown"
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	if city == "" {
		return "Unknown"
	}
	return city
}

// State looks in the final comma segment for a two-letter uppercase token
// followed by a ZIP-like number ("TX 78701"). Falls back to the first word of
// that segment.
func State(address string) string {
	parts := strings.Split(address, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return ""
	}
	if m := stateZipRe.FindStringSubmatch(last); m != nil {
		return m[1]
	}
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ZipCode returns the first 5-digit (or ZIP+4) group in the string, or "".
func ZipCode(address string) string {
	return zipRe.FindString(address)
}

// FieldValue walks a decoded JSON record along a dotted path ("location.lat").
// Any missing or non-object segment yields nil.
func FieldValue(record map[string]any, path string) any {
	if record == nil || path == "" {
		return nil
	}
	segs := strings.Split(path, ".")
	var cur any = record
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Numeric strips currency symbols and separators and parses a float.
// nil on anything unparseable.
func Numeric(raw string) *float64 {
	s := numericJunk.Replace(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	// tolerate trailing units ("1450 sqft")
	s = numericBody.FindString(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// NumericField combines FieldValue and Numeric: JSON numbers pass through,
// strings go through the currency-stripping parse.
func NumericField(record map[string]any, path string) *float64 {
	switch v := FieldValue(record, path).(type) {
	case float64:
		f := v
		return &f
	case string:
		return Numeric(v)
	default:
		return nil
	}
}

// StringField returns the trimmed string at path, or "" for anything else.
func StringField(record map[string]any, path string) string {
	if s, ok := FieldValue(record, path).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
