// Package domain defines the core entities of the research discovery service.
package domain

import (
	"strconv"
	"strings"
)

// doiPrefix is the URL prefix that OpenAlex uses for DOIs.
const doiPrefix = "https://doi.org/"

// Paper is the merged, externally visible result of the discovery pipeline.
// It combines primary-source fields (title, authors, citations, abstract),
// secondary-source metadata (publisher, journal, ISSN) and ranking-table
// fields (quartile, h-index, SJR, impact factor). Ranking fields are nil
// when the journal could not be resolved against the ranking table.
type Paper struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	DOI             string   `json:"doi,omitempty"`
	CitationCount   int      `json:"citationCount"`
	Publisher       string   `json:"publisher,omitempty"`
	YearPublished   int      `json:"yearPublished,omitempty"`
	Abstract        *string  `json:"abstract"`
	FreelyAvailable bool     `json:"isFreelyAvailable"`
	DownloadURL     string   `json:"downloadUrl,omitempty"`
	JournalTitle    string   `json:"journalTitle,omitempty"`
	ISSN            string   `json:"issn,omitempty"`
	Quartile        string   `json:"quartile,omitempty"`
	HIndex          *int     `json:"h_index"`
	SJRScore        *float64 `json:"sjrScore"`
	ImpactFactor    *float64 `json:"impactFactor"`
	QualityScore    float64  `json:"qualityScore"`
	SourceKeyword   string   `json:"sourceKeyword"`
}

// HasAbstract reports whether the paper carries a non-empty abstract.
func (p *Paper) HasAbstract() bool {
	return p.Abstract != nil && *p.Abstract != ""
}

// IdentityKey returns the canonical identity used for cross-keyword
// deduplication. Priority: normalized DOI, then normalized title plus
// publication year. Returns empty string when neither is available.
func (p *Paper) IdentityKey() string {
	if doi := NormalizeDOI(p.DOI); doi != "" {
		return "doi:" + doi
	}
	title := strings.ToLower(strings.TrimSpace(p.Title))
	if title == "" {
		return ""
	}
	return "title:" + title + "|" + strconv.Itoa(p.YearPublished)
}

// NormalizeDOI strips URL and scheme prefixes from a DOI and lowercases it.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}
