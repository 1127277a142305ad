package httpserver

import "net/http"

type benchmark struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
}

type metricGuide struct {
	Description    string               `json:"description"`
	Interpretation string               `json:"interpretation,omitempty"`
	Benchmarks     map[string]benchmark `json:"benchmarks,omitempty"`
}

type filterPreset struct {
	Description string         `json:"description"`
	Filters     map[string]any `json:"filters"`
}

type filterGuideResponse struct {
	Guide   map[string]metricGuide  `json:"guide"`
	Presets map[string]filterPreset `json:"recommended_presets"`
}

// filterGuide serves static recommended filter values for finding
// high-quality papers.
func (s *Server) filterGuide(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, filterGuideResponse{
		Guide: map[string]metricGuide{
			"h_index": {
				Description:    "Measures journal's productivity and citation impact",
				Interpretation: "Higher h-index = more influential journal",
				Benchmarks: map[string]benchmark{
					"basic":     {Min: 20, Label: "Decent journal"},
					"good":      {Min: 50, Label: "Reputable journal"},
					"very_good": {Min: 100, Label: "Highly reputable journal"},
					"excellent": {Min: 200, Label: "Top-tier journal"},
					"elite":     {Min: 300, Label: "World-class journal"},
				},
			},
			"sjr_score": {
				Description:    "SCImago Journal Rank, measures journal prestige",
				Interpretation: "Higher SJR = more prestigious journal",
				Benchmarks: map[string]benchmark{
					"basic":       {Min: 0.2, Label: "Published in indexed journal"},
					"decent":      {Min: 0.5, Label: "Good quality journal"},
					"good":        {Min: 1.0, Label: "Very good quality journal"},
					"excellent":   {Min: 2.0, Label: "Excellent journal"},
					"outstanding": {Min: 5.0, Label: "Outstanding journal"},
					"elite":       {Min: 10.0, Label: "Elite journal"},
				},
			},
			"citation_count": {
				Description:    "Number of times a paper has been cited",
				Interpretation: "Higher citations = more influential paper",
				Benchmarks: map[string]benchmark{
					"emerging":    {Min: 5, Label: "Gaining attention"},
					"established": {Min: 10, Label: "Established research"},
					"notable":     {Min: 25, Label: "Notable contribution"},
					"influential": {Min: 50, Label: "Influential work"},
					"landmark":    {Min: 500, Label: "Landmark paper"},
					"seminal":     {Min: 1000, Label: "Seminal work in the field"},
				},
			},
			"quality_score": {
				Description: "Composite score (0-150) calculated from multiple metrics",
				Benchmarks: map[string]benchmark{
					"acceptable":  {Min: 30, Label: "Acceptable quality"},
					"good":        {Min: 50, Label: "Good quality"},
					"very_good":   {Min: 70, Label: "Very good quality"},
					"excellent":   {Min: 90, Label: "Excellent quality"},
					"outstanding": {Min: 110, Label: "Outstanding quality"},
					"exceptional": {Min: 130, Label: "Exceptional quality"},
				},
			},
		},
		Presets: map[string]filterPreset{
			"high_quality_recent": {
				Description: "Recent, high-quality papers from top journals",
				Filters:     map[string]any{"quartile": "Q1", "min_year": 2020, "min_quality_score": 60, "sort_by": "qualityScore"},
			},
			"highly_cited_influential": {
				Description: "Highly influential papers regardless of recency",
				Filters:     map[string]any{"min_citations": 100, "min_sjr": 2.0, "quartile": "Q1", "sort_by": "citationCount"},
			},
			"top_tier_journals": {
				Description: "Papers from elite journals only",
				Filters:     map[string]any{"min_h_index": 200, "min_sjr": 3.0, "quartile": "Q1", "sort_by": "qualityScore"},
			},
			"emerging_research": {
				Description: "Recent papers showing early promise",
				Filters:     map[string]any{"min_year": 2023, "min_citations": 5, "quartile": "Q1", "sort_by": "yearPublished"},
			},
			"accessible_quality": {
				Description: "High-quality, freely available papers",
				Filters:     map[string]any{"only_open_access": true, "min_quality_score": 50, "quartile": "Q1", "require_abstract": true, "sort_by": "qualityScore"},
			},
		},
	})
}
