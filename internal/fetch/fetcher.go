package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/lexfold/canondoc/internal/apperr"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultMaxBackoff  = 10 * time.Second

	maxBodySize = 32 << 20 // 32MB cap on fetched artifacts
)

type Config struct {
	Timeout           time.Duration
	MaxAttempts       int
	BackoffBase       time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// RatePerSecond throttles outgoing requests; zero means unlimited.
	RatePerSecond float64
	UserAgent     string
}

func DefaultConfig() Config {
	return Config{
		Timeout:           DefaultTimeout,
		MaxAttempts:       DefaultMaxAttempts,
		BackoffBase:       DefaultBackoffBase,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: 2.0,
	}
}

// Result is one successfully fetched artifact.
type Result struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FetchedAt   time.Time
}

// Fetcher downloads raw content over HTTP with a per-source rate limit and a
// bounded retry for transient failures. Permanent failures (the content is
// genuinely gone or forbidden) surface immediately without retry.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
}

func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = 2.0
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		cfg:     cfg,
	}
}

// Fetch downloads url, retrying transient failures up to MaxAttempts with
// exponential backoff and jitter. The returned error is always a classified
// apperr.AcquisitionError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, apperr.NewAcquisitionTransient("rate limit wait cancelled", err)
			}
		}

		res, err := f.doFetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if apperr.IsPermanentAcquisition(err) {
			return nil, err
		}

		if attempt < f.cfg.MaxAttempts {
			backoff := f.calculateBackoff(attempt)
			slog.Debug("fetch failed, retrying",
				"url", url,
				"attempt", attempt,
				"max_attempts", f.cfg.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, apperr.NewAcquisitionTransient("fetch cancelled", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, lastErr
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.NewAcquisitionPermanent("invalid fetch url", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.NewAcquisitionTransient("fetch request failed", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperr.NewAcquisitionTransient("failed to read response body", err)
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FetchedAt:   time.Now(),
	}, nil
}

// classifyStatus maps an HTTP status to the acquisition failure taxonomy.
// 4xx statuses that will never change on retry are permanent; everything else
// non-2xx is transient.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound,
		status == http.StatusGone,
		status == http.StatusForbidden,
		status == http.StatusUnauthorized,
		status == http.StatusUnavailableForLegalReasons:
		return apperr.NewAcquisitionPermanent(fmt.Sprintf("content not retrievable: status %d", status), nil)
	default:
		return apperr.NewAcquisitionTransient(fmt.Sprintf("unexpected status %d", status), nil)
	}
}

// calculateBackoff computes exponential backoff with +/-25% jitter.
func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= f.cfg.BackoffMultiplier
	}

	backoff := time.Duration(float64(f.cfg.BackoffBase) * multiplier)
	if backoff > f.cfg.MaxBackoff {
		backoff = f.cfg.MaxBackoff
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}
