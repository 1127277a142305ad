// Package ranking loads and serves the journal ranking table.
//
// The table is a JSON object keyed by normalized (digits-only) ISSN, loaded
// once at process start. It is immutable after load, so lookups are safe for
// unsynchronized concurrent use by every pipeline run.
package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// nonDigitRegex matches every character that is not a decimal digit.
var nonDigitRegex = regexp.MustCompile(`\D`)

// CleanISSN strips all non-digit characters from an ISSN string.
func CleanISSN(issn string) string {
	return nonDigitRegex.ReplaceAllString(issn, "")
}

// Record holds the ranking fields for one journal.
type Record struct {
	// Quartile is the journal rank tier, Q1 (best) through Q4, or empty
	// when the source table does not classify the journal.
	Quartile string

	// HIndex is the journal h-index, nil when absent.
	HIndex *int

	// SJR is the SCImago journal rank score, nil when absent.
	SJR *float64

	// ImpactFactor is the journal impact factor, nil when absent.
	ImpactFactor *float64
}

// recordJSON tolerates the schema drift observed in upstream ranking dumps:
// the impact factor appears under several alternate key spellings, resolved
// in priority order.
type recordJSON struct {
	Quartile           string   `json:"quartile"`
	HIndex             *int     `json:"h_index"`
	SJR                *float64 `json:"sjr"`
	ImpactFactor       *float64 `json:"impact_factor"`
	ImpactFactorCamel  *float64 `json:"ImpactFactor"`
	JournalImpactUpper *float64 `json:"JIF"`
	JournalImpactLower *float64 `json:"jif"`
}

// impactFactor resolves the impact factor from the alternate key spellings.
func (r *recordJSON) impactFactor() *float64 {
	for _, v := range []*float64{r.ImpactFactor, r.ImpactFactorCamel, r.JournalImpactUpper, r.JournalImpactLower} {
		if v != nil {
			return v
		}
	}
	return nil
}

// Table is a read-only ISSN-to-record mapping.
type Table struct {
	records map[string]Record
}

// Empty returns a table with no records. Lookups against it always miss,
// which degrades scoring gracefully when the ranking resource is absent.
func Empty() *Table {
	return &Table{records: map[string]Record{}}
}

// NewTable builds a table from an already-decoded record map.
// Keys are normalized with CleanISSN; entries with no digits are dropped.
func NewTable(records map[string]Record) *Table {
	t := &Table{records: make(map[string]Record, len(records))}
	for issn, rec := range records {
		if key := CleanISSN(issn); key != "" {
			t.records[key] = rec
		}
	}
	return t
}

// Load reads the ranking table from a JSON file. The file holds an object
// keyed by ISSN, valued by ranking records. Returns an error when the file
// is missing or cannot be decoded; callers are expected to fall back to
// Empty() and continue.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ranking table: %w", err)
	}

	var raw map[string]recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding ranking table: %w", err)
	}

	records := make(map[string]Record, len(raw))
	for issn, rec := range raw {
		records[issn] = Record{
			Quartile:     rec.Quartile,
			HIndex:       rec.HIndex,
			SJR:          rec.SJR,
			ImpactFactor: rec.impactFactor(),
		}
	}
	return NewTable(records), nil
}

// Lookup returns the record for a normalized ISSN.
func (t *Table) Lookup(issn string) (Record, bool) {
	rec, ok := t.records[issn]
	return rec, ok
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// QuartileDistribution counts records per quartile. Records without a
// quartile are counted under "None".
func (t *Table) QuartileDistribution() map[string]int {
	dist := make(map[string]int)
	for _, rec := range t.records {
		q := rec.Quartile
		if q == "" {
			q = "None"
		}
		dist[q]++
	}
	return dist
}
