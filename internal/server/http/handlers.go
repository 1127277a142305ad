package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ismart/research-discovery-service/internal/domain"
)

const (
	defaultLimit = 10

	defaultSortField = "qualityScore"

	// require_abstract keeps only abstracts longer than this.
	minAbstractLength = 50
)

var validate = validator.New()

// searchRequest carries the parsed and validated search query parameters.
type searchRequest struct {
	Query           string   `validate:"required"`
	Limit           int      `validate:"min=1,max=50"`
	MinYear         *int     `validate:"omitempty,min=1900,max=2030"`
	MaxYear         *int     `validate:"omitempty,min=1900,max=2030"`
	MinCitations    *int     `validate:"omitempty,min=0"`
	MaxCitations    *int     `validate:"omitempty,min=0"`
	Quartile        string   `validate:"omitempty,oneof=Q1 Q2 Q3 Q4"`
	MinSJR          *float64 `validate:"omitempty,min=0"`
	MinHIndex       *int     `validate:"omitempty,min=0"`
	MinImpactFactor *float64 `validate:"omitempty,min=0"`
	OnlyOpenAccess  bool
	RequireAbstract bool
	MinQualityScore *float64 `validate:"omitempty,min=0,max=150"`
	SortBy          string   `validate:"oneof=qualityScore citationCount yearPublished sjrScore h_index impactFactor"`
}

// searchResponse is the search endpoint envelope.
type searchResponse struct {
	Query               string          `json:"query"`
	Keywords            []string        `json:"keywords"`
	TotalDiscovered     int             `json:"totalDiscovered"`
	TotalAfterFiltering int             `json:"totalAfterFiltering"`
	ResultCount         int             `json:"resultCount"`
	SortedBy            string          `json:"sortedBy"`
	Results             []*domain.Paper `json:"results"`
}

// searchPapers discovers, ranks, filters and sorts papers for a query.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.discoverer.Discover(r.Context(), req.Query, 0)
	if result == nil || len(result.Papers) == 0 {
		writeError(w, http.StatusNotFound, "No papers found. Try a different search query.")
		return
	}

	filtered := applyFilters(result.Papers, req)
	if len(filtered) == 0 {
		writeError(w, http.StatusNotFound, "No papers match the specified filters. Try relaxing your criteria.")
		return
	}

	sortPapers(filtered, req.SortBy)

	final := filtered
	if len(final) > req.Limit {
		final = final[:req.Limit]
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:               req.Query,
		Keywords:            result.Keywords,
		TotalDiscovered:     len(result.Papers),
		TotalAfterFiltering: len(filtered),
		ResultCount:         len(final),
		SortedBy:            req.SortBy,
		Results:             final,
	})
}

// parseSearchRequest decodes query parameters into a searchRequest and
// validates individual fields plus the cross-field range constraints.
func parseSearchRequest(params url.Values) (*searchRequest, error) {
	req := &searchRequest{
		Query:  strings.TrimSpace(params.Get("query")),
		Limit:  defaultLimit,
		SortBy: defaultSortField,
	}
	if req.Query == "" {
		return nil, domain.NewValidationError("query", "cannot be empty")
	}

	var err error
	if req.Limit, err = intParam(params, "limit", defaultLimit); err != nil {
		return nil, err
	}
	if req.MinYear, err = optionalIntParam(params, "min_year"); err != nil {
		return nil, err
	}
	if req.MaxYear, err = optionalIntParam(params, "max_year"); err != nil {
		return nil, err
	}
	if req.MinCitations, err = optionalIntParam(params, "min_citations"); err != nil {
		return nil, err
	}
	if req.MaxCitations, err = optionalIntParam(params, "max_citations"); err != nil {
		return nil, err
	}
	if req.MinSJR, err = optionalFloatParam(params, "min_sjr"); err != nil {
		return nil, err
	}
	if req.MinHIndex, err = optionalIntParam(params, "min_h_index"); err != nil {
		return nil, err
	}
	if req.MinImpactFactor, err = optionalFloatParam(params, "min_impact_factor"); err != nil {
		return nil, err
	}
	if req.MinQualityScore, err = optionalFloatParam(params, "min_quality_score"); err != nil {
		return nil, err
	}
	if req.OnlyOpenAccess, err = boolParam(params, "only_open_access"); err != nil {
		return nil, err
	}
	if req.RequireAbstract, err = boolParam(params, "require_abstract"); err != nil {
		return nil, err
	}
	if v := params.Get("quartile"); v != "" {
		req.Quartile = strings.ToUpper(v)
	}
	if v := params.Get("sort_by"); v != "" {
		req.SortBy = v
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, domain.NewValidationError(paramName(verrs[0].Field()), "out of range")
		}
		return nil, err
	}

	if req.MinYear != nil && req.MaxYear != nil && *req.MinYear > *req.MaxYear {
		return nil, domain.NewValidationError("min_year", "cannot be greater than max_year")
	}
	if req.MinCitations != nil && req.MaxCitations != nil && *req.MinCitations > *req.MaxCitations {
		return nil, domain.NewValidationError("min_citations", "cannot be greater than max_citations")
	}

	return req, nil
}

// applyFilters keeps papers matching every requested constraint. Papers
// missing a filtered attribute are excluded by that filter.
func applyFilters(papers []*domain.Paper, req *searchRequest) []*domain.Paper {
	out := make([]*domain.Paper, 0, len(papers))
	for _, p := range papers {
		if req.MinYear != nil && (p.YearPublished == 0 || p.YearPublished < *req.MinYear) {
			continue
		}
		if req.MaxYear != nil && (p.YearPublished == 0 || p.YearPublished > *req.MaxYear) {
			continue
		}
		if req.MinCitations != nil && p.CitationCount < *req.MinCitations {
			continue
		}
		if req.MaxCitations != nil && p.CitationCount > *req.MaxCitations {
			continue
		}
		if req.Quartile != "" && !strings.EqualFold(p.Quartile, req.Quartile) {
			continue
		}
		if req.MinSJR != nil && (p.SJRScore == nil || *p.SJRScore < *req.MinSJR) {
			continue
		}
		if req.MinHIndex != nil && (p.HIndex == nil || *p.HIndex < *req.MinHIndex) {
			continue
		}
		if req.MinImpactFactor != nil && (p.ImpactFactor == nil || *p.ImpactFactor < *req.MinImpactFactor) {
			continue
		}
		if req.OnlyOpenAccess && !p.FreelyAvailable {
			continue
		}
		if req.RequireAbstract && (p.Abstract == nil || len(*p.Abstract) <= minAbstractLength) {
			continue
		}
		if req.MinQualityScore != nil && p.QualityScore < *req.MinQualityScore {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sortPapers orders papers descending by the requested field. Ties keep
// their relative order.
func sortPapers(papers []*domain.Paper, sortBy string) {
	key := sortKey(sortBy)
	sort.SliceStable(papers, func(i, j int) bool {
		return key(papers[i]) > key(papers[j])
	})
}

func sortKey(sortBy string) func(*domain.Paper) float64 {
	switch sortBy {
	case "citationCount":
		return func(p *domain.Paper) float64 { return float64(p.CitationCount) }
	case "yearPublished":
		return func(p *domain.Paper) float64 { return float64(p.YearPublished) }
	case "sjrScore":
		return func(p *domain.Paper) float64 { return deref(p.SJRScore) }
	case "h_index":
		return func(p *domain.Paper) float64 {
			if p.HIndex == nil {
				return 0
			}
			return float64(*p.HIndex)
		}
	case "impactFactor":
		return func(p *domain.Paper) float64 { return deref(p.ImpactFactor) }
	default:
		return func(p *domain.Paper) float64 { return p.QualityScore }
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intParam(params url.Values, name string, fallback int) (int, error) {
	raw := params.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

func optionalIntParam(params url.Values, name string) (*int, error) {
	raw := params.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

func optionalFloatParam(params url.Values, name string) (*float64, error) {
	raw := params.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a number")
	}
	return &v, nil
}

func boolParam(params url.Values, name string) (bool, error) {
	raw := params.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewValidationError(name, "must be a boolean")
	}
	return v, nil
}

// paramName maps struct field names back to their query parameter names
// for error messages.
func paramName(field string) string {
	names := map[string]string{
		"Query":           "query",
		"Limit":           "limit",
		"MinYear":         "min_year",
		"MaxYear":         "max_year",
		"MinCitations":    "min_citations",
		"MaxCitations":    "max_citations",
		"Quartile":        "quartile",
		"MinSJR":          "min_sjr",
		"MinHIndex":       "min_h_index",
		"MinImpactFactor": "min_impact_factor",
		"MinQualityScore": "min_quality_score",
		"SortBy":          "sort_by",
	}
	if n, ok := names[field]; ok {
		return n
	}
	return field
}
