// Package crossref implements the secondary metadata source client.
// Works are looked up one at a time by DOI.
package crossref

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ismart/research-discovery-service/internal/domain"
	"github.com/ismart/research-discovery-service/internal/sources"
)

const (
	// SourceName is the rate-governor key for Crossref.
	SourceName = "crossref"

	// DefaultBaseURL is the default Crossref API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default request timeout for metadata calls.
	// Shorter than discovery calls: a single-item lookup should be quick.
	DefaultTimeout = 15 * time.Second
)

// Metadata is the publisher and journal metadata for one work.
type Metadata struct {
	Publisher      string   `json:"publisher"`
	ContainerTitle []string `json:"container-title"`
	ISSN           []string `json:"ISSN"`
}

// JournalTitle returns the first container title, or empty.
func (m *Metadata) JournalTitle() string {
	if len(m.ContainerTitle) > 0 {
		return m.ContainerTitle[0]
	}
	return ""
}

// workResponse is the Crossref response envelope.
type workResponse struct {
	Message Metadata `json:"message"`
}

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the Crossref API base URL.
	BaseURL string

	// Email is the contact email attached to the User-Agent for the
	// polite pool.
	Email string

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
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Client looks up work metadata on Crossref by DOI.
type Client struct {
	config  Config
	fetcher *sources.Fetcher
	logger  zerolog.Logger
}

// New creates a Crossref client sharing the process-wide governor.
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
		logger:  logger.With().Str("component", "crossref").Logger(),
	}
}

// GetWork fetches metadata for one DOI. Every failure mode (not found,
// exhausted rate-limit retries, transport failures, malformed bodies)
// resolves to nil so the caller can emit the work without enrichment.
// An empty DOI returns nil immediately.
func (c *Client) GetWork(ctx context.Context, doi string) *Metadata {
	doi = domain.NormalizeDOI(doi)
	if doi == "" {
		return nil
	}

	var resp workResponse
	status := c.fetcher.GetJSON(ctx, c.buildWorkURL(doi), &resp)
	if status != sources.StatusOK {
		c.logger.Debug().Str("doi", doi).Stringer("status", status).Msg("metadata lookup failed")
		return nil
	}
	return &resp.Message
}

// buildWorkURL constructs the single-work lookup URL for a bare DOI.
func (c *Client) buildWorkURL(doi string) string {
	return c.config.BaseURL + "/works/" + url.PathEscape(doi)
}
