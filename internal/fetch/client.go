package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"harristax/internal/config"
)

// Client fetches pages and files from the county sites with rate
// limiting and retry on transient failures.
type Client struct {
	httpClient *http.Client
	limiter    *rateLimiter
	userAgent  string
	retryMax   int
}

func NewClient(cfg config.Config) *Client {
	retryMax := cfg.RetryMax
	if retryMax <= 0 {
		retryMax = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond},
		limiter:    newRateLimiter(cfg.RateLimitRPS),
		userAgent:  cfg.UserAgent,
		retryMax:   retryMax,
	}
}

// GetDocument fetches pageURL and parses the body as HTML. The returned
// document carries the request URL so relative links can be resolved.
func (c *Client) GetDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, _, err := c.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	if parsed, err := url.Parse(pageURL); err == nil {
		doc.Url = parsed
	}
	return doc, nil
}

// Download fetches fileURL raw and returns the body with its content
// type, for binary documents such as the statement PDF.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, string, error) {
	return c.get(ctx, fileURL, "*/*")
}

func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryMax; attempt++ {
		c.limiter.waitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < c.retryMax {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("status %d for %s", resp.StatusCode, rawURL)
				continue
			}
			return nil, "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		}

		return body, resp.Header.Get("Content-Type"), nil
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return nil, "", fmt.Errorf("get %s: %w", rawURL, lastErr)
}

// StatusError is a terminal non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("get %s: status %d", e.URL, e.StatusCode)
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ResolveURL resolves href against base, for account links and download
// buttons extracted from a page.
func ResolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
