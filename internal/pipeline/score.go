package pipeline

import (
	"math"

	"github.com/ismart/research-discovery-service/internal/domain"
)

// MaxQualityScore is the ceiling of the composite quality score.
const MaxQualityScore = 150.0

// Score computes the composite quality score for a paper on a 0-150 scale.
// Components: journal prestige (SJR, up to 40), journal h-index (up to 30),
// quartile (up to 20), citation impact (up to 30, logarithmic), recency
// (up to 10, linear decay over five years), plus flat bonuses for open
// access (5) and an available abstract (5). Missing inputs contribute
// zero; the result is clamped and rounded to two decimals.
func Score(p *domain.Paper, currentYear int) float64 {
	score := 0.0

	if p.SJRScore != nil && *p.SJRScore > 0 {
		score += math.Min(40, 40*(1-math.Exp(-*p.SJRScore/3)))
	}

	if p.HIndex != nil && *p.HIndex > 0 {
		h := math.Min(float64(*p.HIndex), 200)
		score += 30 * h / 200
	}

	switch p.Quartile {
	case "Q1":
		score += 20
	case "Q2":
		score += 15
	case "Q3":
		score += 10
	case "Q4":
		score += 5
	}

	if p.CitationCount > 0 {
		score += math.Min(30, 10*math.Log10(float64(p.CitationCount)+1))
	}

	if p.YearPublished > 0 {
		age := currentYear - p.YearPublished
		if age >= 0 && age <= 5 {
			score += math.Max(0, 10-2*float64(age))
		}
	}

	if p.FreelyAvailable {
		score += 5
	}
	if p.HasAbstract() {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > MaxQualityScore {
		score = MaxQualityScore
	}
	return math.Round(score*100) / 100
}
