package importer

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Column keys after header normalization.
const (
	ColReference           = "reference"
	ColName                = "name"
	ColGender              = "gender"
	ColNationalID          = "national_id_number"
	ColDateOfBirth         = "date_of_birth"
	ColPhone               = "phone"
	ColEmail               = "email"
	ColAddress             = "address"
	ColMembershipStartDate = "membership_start_date"
)

// Row is one input record keyed by normalized header.
type Row map[string]string

func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

func (r Row) Blank() bool {
	return r.Get(ColName) == ""
}

func (r Row) JSON() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// NormalizeHeader lower-cases h and collapses every run of characters that
// are not letters or digits into a single underscore.
func NormalizeHeader(h string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// excelEpoch is day zero of the spreadsheet serial date system, accounting
// for the fictitious 1900-02-29.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"2-1-2006",
	"2.1.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// ParseDate accepts a spreadsheet serial number, a bare four digit year
// (January 1st of that year) or a formatted date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) == 4 {
		if year, err := strconv.Atoi(s); err == nil {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		days := int(serial)
		frac := time.Duration((serial - float64(days)) * float64(24*time.Hour))
		return excelEpoch.AddDate(0, 0, days).Add(frac.Round(time.Second)), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
