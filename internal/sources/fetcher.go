package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the retrying fetcher.
const (
	// DefaultMaxAttempts is the attempt budget for one logical request.
	DefaultMaxAttempts = 5

	// DefaultInitialBackoff is the starting delay for exponential backoff.
	DefaultInitialBackoff = 2 * time.Second

	// DefaultBackoffFactor is the per-attempt backoff multiplier.
	DefaultBackoffFactor = 1.5

	// DefaultTimeout is the per-call request timeout.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes limits response bodies to prevent resource exhaustion.
	maxBodyBytes = 10 << 20
)

// Status classifies the outcome of one logical fetch. Every failure mode
// resolves to a non-OK status rather than an error, so callers can proceed
// past a single bad lookup without aborting the whole pipeline.
type Status int

const (
	// StatusOK means the payload was fetched and decoded.
	StatusOK Status = iota

	// StatusNotFound means the source returned 404; terminal, no retry.
	StatusNotFound

	// StatusRateLimited means 429 responses exhausted the attempt budget.
	StatusRateLimited

	// StatusTransientError means transport errors, timeouts or malformed
	// bodies exhausted the attempt budget.
	StatusTransientError

	// StatusFatalError means the source answered with a non-retryable
	// error status (4xx other than 404/429, or 5xx).
	StatusFatalError
)

// String returns the status name used in logs and metric labels.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusRateLimited:
		return "rate_limited"
	case StatusTransientError:
		return "transient_error"
	case StatusFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// RequestRecorder receives the outcome of each logical fetch, labeled by
// source name. Implemented by observability.Metrics.
type RequestRecorder interface {
	RecordSourceRequest(source, outcome string)
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Source is the external source name used for rate governance,
	// logging and metrics (e.g. "openalex", "crossref").
	Source string

	// MaxAttempts is the attempt budget for one logical request.
	MaxAttempts int

	// InitialBackoff is the starting delay for exponential backoff.
	InitialBackoff time.Duration

	// BackoffFactor is the per-attempt backoff multiplier.
	BackoffFactor float64

	// Timeout is the per-call request timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// applyDefaults sets default values for unset configuration fields.
func (c *FetcherConfig) applyDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Fetcher performs one logical GET with bounded retries and exponential
// backoff, classifying every outcome into a Status. It never returns an
// error past its boundary. Safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	governor *Governor
	cfg      FetcherConfig
	recorder RequestRecorder
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher for one external source. The governor is
// shared across fetchers so per-source spacing holds process-wide.
// recorder may be nil.
func NewFetcher(cfg FetcherConfig, governor *Governor, recorder RequestRecorder, logger zerolog.Logger) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		governor: governor,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger.With().Str("source", cfg.Source).Logger(),
	}
}

// GetJSON fetches rawURL and decodes the JSON body into v.
// Classification:
//   - 404 terminates immediately with StatusNotFound.
//   - 429 retries with backoff scaled by the attempt index; exhausting the
//     budget yields StatusRateLimited.
//   - Other 4xx/5xx terminate immediately with StatusFatalError.
//   - Transport errors, timeouts and malformed bodies retry with backoff;
//     exhausting the budget yields StatusTransientError.
//
// v is only written on StatusOK.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, v interface{}) Status {
	status := f.getJSON(ctx, rawURL, v)
	if f.recorder != nil {
		f.recorder.RecordSourceRequest(f.cfg.Source, status.String())
	}
	return status
}

func (f *Fetcher) getJSON(ctx context.Context, rawURL string, v interface{}) Status {
	delay := f.cfg.InitialBackoff

	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		if err := f.governor.Wait(ctx, f.cfg.Source); err != nil {
			return StatusTransientError
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			f.logger.Error().Err(err).Str("url", rawURL).Msg("building request")
			return StatusFatalError
		}
		req.Header.Set("Accept", "application/json")
		if f.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", f.cfg.UserAgent)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			// Timeouts are treated identically to transport errors.
			f.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("request failed")
			if ctx.Err() != nil {
				return StatusTransientError
			}
			if attempt < f.cfg.MaxAttempts-1 {
				if !f.sleep(ctx, delay) {
					return StatusTransientError
				}
				delay = f.nextDelay(delay)
				continue
			}
			return StatusTransientError
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			drain(resp)
			return StatusNotFound

		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			if attempt < f.cfg.MaxAttempts-1 {
				// Scale the wait by the attempt index so repeated 429s
				// back off harder than plain transient errors.
				wait := delay * time.Duration(attempt+1)
				f.logger.Warn().
					Int("attempt", attempt+1).
					Dur("wait", wait).
					Msg("rate limited, backing off")
				if !f.sleep(ctx, wait) {
					return StatusTransientError
				}
				delay = f.nextDelay(delay)
				continue
			}
			return StatusRateLimited

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v)
			drain(resp)
			if err != nil {
				// Malformed body counts against the retry budget.
				f.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("decoding response")
				if attempt < f.cfg.MaxAttempts-1 {
					if !f.sleep(ctx, delay) {
						return StatusTransientError
					}
					delay = f.nextDelay(delay)
					continue
				}
				return StatusTransientError
			}
			return StatusOK

		default:
			drain(resp)
			f.logger.Warn().Int("status", resp.StatusCode).Str("url", rawURL).Msg("unexpected status")
			return StatusFatalError
		}
	}

	return StatusTransientError
}

// nextDelay grows the backoff delay by the configured factor.
func (f *Fetcher) nextDelay(delay time.Duration) time.Duration {
	return time.Duration(float64(delay) * f.cfg.BackoffFactor)
}

// sleep waits for the given duration, returning false when the context is
// cancelled first.
func (f *Fetcher) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// drain consumes and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
