// Package doiorg fetches citation text for a DOI from doi.org using
// content negotiation.
package doiorg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DOI resolver.
	BaseURL = "https://doi.org"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps interactive use well under the resolver's limits.
	RateLimit = 5.0

	// MaxBodySize caps the citation text read from a response.
	MaxBodySize = 1 << 20

	bibtexMediaType = "application/x-bibtex"
	userAgent       = "papernote"
)

// Client is a rate-limited doi.org client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom resolver URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMailto adds a contact address to the User-Agent, as the resolver's
// polite-pool convention asks.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// NewClient creates a doi.org client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeDOI strips resolver URLs and "doi:" prefixes.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/"} {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	if len(doi) >= 4 && strings.EqualFold(doi[:4], "doi:") {
		doi = strings.TrimSpace(doi[4:])
	}
	return doi
}

// FetchBibTeX returns the BibTeX record the resolver serves for doi.
func (c *Client) FetchBibTeX(ctx context.Context, doi string) (string, error) {
	doi = NormalizeDOI(doi)
	if !strings.HasPrefix(doi, "10.") || !strings.Contains(doi, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDOI, doi)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+escapeDOI(doi), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", bibtexMediaType)
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, doi); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "@") {
		return "", fmt.Errorf("%w: expected BibTeX for %s", ErrInvalidResponse, doi)
	}
	return text, nil
}

func (c *Client) userAgent() string {
	if c.mailto == "" {
		return userAgent
	}
	return fmt.Sprintf("%s (mailto:%s)", userAgent, c.mailto)
}

// escapeDOI escapes each path segment but keeps the slashes a DOI
// suffix may contain.
func escapeDOI(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func checkHTTPErrors(resp *http.Response, doi string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, doi)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, DOI: doi}
	}
	return nil
}
