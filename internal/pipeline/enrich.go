// Package pipeline implements the discovery-enrichment-deduplication
// pipeline: keyword fan-out, per-work metadata enrichment, composite
// quality scoring and cross-keyword deduplication.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ismart/research-discovery-service/internal/domain"
	"github.com/ismart/research-discovery-service/internal/ranking"
	"github.com/ismart/research-discovery-service/internal/sources/crossref"
	"github.com/ismart/research-discovery-service/internal/sources/openalex"
)

// DefaultEnrichConcurrency caps simultaneous in-flight secondary-metadata
// lookups across the whole run.
const DefaultEnrichConcurrency = 5

// maxAbstractTokens guards abstract reconstruction against malicious or
// corrupt inverted indexes with excessive positions.
const maxAbstractTokens = 100_000

// MetadataSource looks up publisher/journal metadata for one DOI.
// Implemented by crossref.Client; nil results mean the work is emitted
// without secondary enrichment.
type MetadataSource interface {
	GetWork(ctx context.Context, doi string) *crossref.Metadata
}

// Enricher turns raw discovered works into scored Paper records by fetching
// secondary metadata with bounded fan-out, reconstructing abstracts,
// resolving ISSNs and joining the ranking table.
type Enricher struct {
	metadata MetadataSource
	ranking  *ranking.Table
	sem      chan struct{}
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEnricher creates an enricher. maxInFlight bounds concurrent metadata
// lookups process-wide; non-positive values use DefaultEnrichConcurrency.
func NewEnricher(metadata MetadataSource, table *ranking.Table, maxInFlight int, logger zerolog.Logger) *Enricher {
	if maxInFlight <= 0 {
		maxInFlight = DefaultEnrichConcurrency
	}
	if table == nil {
		table = ranking.Empty()
	}
	return &Enricher{
		metadata: metadata,
		ranking:  table,
		sem:      make(chan struct{}, maxInFlight),
		logger:   logger.With().Str("component", "enricher").Logger(),
		now:      time.Now,
	}
}

// EnrichWorks fetches secondary metadata for every work concurrently, then
// assembles and scores Paper records. Works without a DOI skip the metadata
// fetch entirely but are still emitted when they carry a title. Metadata
// failures degrade to papers without publisher/journal enrichment.
func (e *Enricher) EnrichWorks(ctx context.Context, works []openalex.Work, keyword string) []*domain.Paper {
	metas := make([]*crossref.Metadata, len(works))

	var wg sync.WaitGroup
	for i := range works {
		doi := works[i].DOI
		if domain.NormalizeDOI(doi) == "" {
			continue
		}
		wg.Add(1)
		go func(i int, doi string) {
			defer wg.Done()
			select {
			case e.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-e.sem }()
			metas[i] = e.metadata.GetWork(ctx, doi)
		}(i, doi)
	}
	wg.Wait()

	currentYear := e.now().Year()
	papers := make([]*domain.Paper, 0, len(works))
	for i := range works {
		if p := e.buildPaper(&works[i], metas[i], keyword, currentYear); p != nil {
			papers = append(papers, p)
		}
	}
	return papers
}

// buildPaper assembles one Paper from a discovered work and its optional
// secondary metadata. Returns nil when the work carries neither a DOI nor
// a title.
func (e *Enricher) buildPaper(work *openalex.Work, meta *crossref.Metadata, keyword string, currentYear int) *domain.Paper {
	title := strings.TrimSpace(work.Title)
	if title == "" && domain.NormalizeDOI(work.DOI) == "" {
		return nil
	}

	paper := &domain.Paper{
		Title:         title,
		Authors:       work.AuthorNames(),
		DOI:           work.DOI,
		CitationCount: work.CitedByCount,
		YearPublished: work.PublicationYear,
		Abstract:      ReconstructAbstract(work.AbstractInvertedIndex),
		SourceKeyword: keyword,
	}
	if work.OpenAccess != nil {
		paper.FreelyAvailable = work.OpenAccess.IsOA
		paper.DownloadURL = work.OpenAccess.OAURL
	}
	if meta != nil {
		paper.Publisher = meta.Publisher
		paper.JournalTitle = meta.JournalTitle()
	}
	if paper.JournalTitle == "" && work.HostVenue != nil {
		paper.JournalTitle = work.HostVenue.DisplayName
	}

	if issn := ResolveISSN(meta, work.HostVenue); issn != "" {
		paper.ISSN = issn
		if rec, ok := e.ranking.Lookup(issn); ok {
			paper.Quartile = rec.Quartile
			paper.HIndex = rec.HIndex
			paper.SJRScore = rec.SJR
			paper.ImpactFactor = rec.ImpactFactor
		}
	}

	paper.QualityScore = Score(paper, currentYear)
	return paper
}

// ResolveISSN picks the resolved ISSN from the candidate fields: secondary
// source ISSN list first, then the venue-level linking ISSN, then the venue
// ISSN list. Each candidate is stripped to digits; the first one that
// remains non-empty wins. Returns empty when nothing resolves.
func ResolveISSN(meta *crossref.Metadata, venue *openalex.HostVenue) string {
	var candidates []string
	if meta != nil {
		candidates = append(candidates, meta.ISSN...)
	}
	if venue != nil {
		if venue.ISSNL != "" {
			candidates = append(candidates, venue.ISSNL)
		}
		candidates = append(candidates, venue.ISSN...)
	}
	for _, c := range candidates {
		if cleaned := ranking.CleanISSN(c); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// ReconstructAbstract rebuilds plain text from a positional inverted index
// mapping each word to its zero-based token positions. Slots are filled in
// sorted word order so the result is deterministic regardless of map
// iteration order; non-empty slots join with single spaces. An empty,
// absent or structurally invalid index yields nil rather than an error.
func ReconstructAbstract(invertedIndex map[string][]int) *string {
	if len(invertedIndex) == 0 {
		return nil
	}

	maxPos := -1
	total := 0
	for _, positions := range invertedIndex {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
		total += len(positions)
	}
	if maxPos < 0 || maxPos >= maxAbstractTokens || total > maxAbstractTokens {
		return nil
	}

	words := make([]string, 0, len(invertedIndex))
	for w := range invertedIndex {
		words = append(words, w)
	}
	sort.Strings(words)

	slots := make([]string, maxPos+1)
	for _, w := range words {
		for _, p := range invertedIndex[w] {
			if p >= 0 && p < len(slots) {
				slots[p] = w
			}
		}
	}

	var b strings.Builder
	for _, w := range slots {
		if w == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		return nil
	}
	text := b.String()
	return &text
}
