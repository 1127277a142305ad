package pipeline

import "github.com/ismart/research-discovery-service/internal/domain"

// Deduplicate collapses papers that describe the same work across keyword
// partitions. Identity is the DOI when present, otherwise normalized
// title plus publication year. When two papers share an identity the one
// with the strictly higher quality score wins; on equal scores a paper
// carrying an abstract replaces one without. Papers with no identity key
// at all pass through untouched. Output preserves first-arrival order.
func Deduplicate(papers []*domain.Paper) []*domain.Paper {
	out := make([]*domain.Paper, 0, len(papers))
	index := make(map[string]int, len(papers))

	for _, p := range papers {
		key := p.IdentityKey()
		if key == "" {
			out = append(out, p)
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		kept := out[at]
		if p.QualityScore > kept.QualityScore ||
			(p.QualityScore == kept.QualityScore && p.HasAbstract() && !kept.HasAbstract()) {
			out[at] = p
		}
	}
	return out
}
