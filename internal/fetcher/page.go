package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrPageBlocked indicates the tariff site refused the request (HTTP 403),
// usually bot filtering. Treated the same as a missing price: skip the
// commodity this run.
var ErrPageBlocked = errors.New("fetcher: page access blocked")

const defaultUserAgent = "Mozilla/5.0 (compatible; PriceBot/1.0; +https://example.org/bot)"

// PageOptions parameterise the tariff page fetcher.
type PageOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// Page fetches tariff pages over HTTP.
type Page struct {
	opts   PageOptions
	logger zerolog.Logger
	client *http.Client
}

// NewPage constructs a tariff page fetcher.
func NewPage(opts PageOptions, logger zerolog.Logger) *Page {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Page{
		opts:   opts,
		logger: logger.With().Str("component", "page_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPage retrieves the raw body of the tariff page.
func (p *Page) FetchPage(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", errors.New("tariff url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create tariff request: %w", err)
	}

	ua := strings.TrimSpace(p.opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch tariff page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		p.logger.Warn().Str("url", url).Msg("got 403 from tariff page; scraping might be blocked")
		return "", ErrPageBlocked
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("tariff page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tariff page body: %w", err)
	}

	return string(body), nil
}

var _ PageFetcher = (*Page)(nil)
