// Package openalex implements the primary discovery source client.
//
// Discovery is cursor-paginated: each page of works carries an opaque
// continuation cursor that the next request reuses until the page budget is
// spent, a page comes back empty, or the cursor disappears.
package openalex

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ismart/research-discovery-service/internal/domain"
	"github.com/ismart/research-discovery-service/internal/sources"
)

const (
	// SourceName is the rate-governor key for OpenAlex.
	SourceName = "openalex"

	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default request timeout for discovery calls.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the page size for discovery requests.
	// 200 is the OpenAlex per-page maximum.
	DefaultPerPage = 200

	// DefaultPages is the default page budget per keyword.
	DefaultPages = 4

	// initialCursor starts a cursor-paginated result walk.
	initialCursor = "*"

	// selectFields trims the response to the work fields the pipeline
	// consumes.
	selectFields = "id,doi,title,authorships,cited_by_count,publication_year,open_access,abstract_inverted_index,host_venue"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	BaseURL string

	// Email is the contact email for the polite pool. When set it is
	// attached as the mailto query parameter.
	Email string

	// PerPage is the page size for discovery requests, capped at 200.
	PerPage int

	// Timeout is the per-call request timeout.
	Timeout time.Duration

	// MaxAttempts, InitialBackoff and BackoffFactor tune the retrying
	// fetcher; zero values use the sources package defaults.
	MaxAttempts    int
	InitialBackoff time.Duration
	BackoffFactor  float64
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PerPage == 0 || c.PerPage > 200 {
		c.PerPage = DefaultPerPage
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Client queries OpenAlex for works matching a keyword.
type Client struct {
	config  Config
	fetcher *sources.Fetcher
	logger  zerolog.Logger
}

// New creates an OpenAlex client. The governor is shared process-wide so
// request spacing holds across concurrent keyword pipelines.
func New(cfg Config, governor *sources.Governor, recorder sources.RequestRecorder, logger zerolog.Logger) *Client {
	cfg.applyDefaults()

	userAgent := "ResearchDiscoveryService/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	fetcher := sources.NewFetcher(sources.FetcherConfig{
		Source:         SourceName,
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		BackoffFactor:  cfg.BackoffFactor,
		Timeout:        cfg.Timeout,
		UserAgent:      userAgent,
	}, governor, recorder, logger)

	return &Client{
		config:  cfg,
		fetcher: fetcher,
		logger:  logger.With().Str("component", "openalex").Logger(),
	}
}

// FetchKeyword walks cursor-paginated search results for one keyword and
// returns the accumulated works. Pagination stops when the page budget is
// exhausted, a page returns zero works, or the response carries no
// continuation cursor. An unrecoverable fetch abandons pagination for this
// keyword only and returns whatever was accumulated so far; it never
// returns an error.
func (c *Client) FetchKeyword(ctx context.Context, keyword string, pages int) []Work {
	if pages <= 0 {
		pages = DefaultPages
	}

	var collected []Work
	cursor := initialCursor

	for page := 0; page < pages; page++ {
		searchURL := c.buildSearchURL(keyword, cursor)

		var resp SearchResponse
		status := c.fetcher.GetJSON(ctx, searchURL, &resp)
		if status != sources.StatusOK {
			c.logger.Warn().
				Str("keyword", keyword).
				Int("page", page+1).
				Stringer("status", status).
				Msg("abandoning pagination for keyword")
			break
		}

		if len(resp.Results) == 0 {
			c.logger.Debug().Str("keyword", keyword).Int("page", page+1).Msg("no more results")
			break
		}
		collected = append(collected, resp.Results...)

		if resp.Meta.NextCursor == "" {
			c.logger.Debug().Str("keyword", keyword).Msg("end of results")
			break
		}
		cursor = resp.Meta.NextCursor
	}

	c.logger.Debug().Str("keyword", keyword).Int("works", len(collected)).Msg("discovery finished")
	return collected
}

// buildSearchURL constructs the cursor-paginated search URL for a keyword.
func (c *Client) buildSearchURL(keyword, cursor string) string {
	query := url.Values{}
	query.Set("filter", "default.search:"+domain.NormalizeQuery(keyword)+",has_doi:true")
	query.Set("per_page", strconv.Itoa(c.config.PerPage))
	query.Set("sort", "relevance_score:desc")
	query.Set("select", selectFields)
	query.Set("cursor", cursor)
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}
	return c.config.BaseURL + "/works?" + query.Encode()
}
