package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"harristax/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	cfg, _ := config.Load()
	cfg.RateLimitRPS = 1000
	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func TestGetDocumentRetriesOnServerError(t *testing.T) {
	attempt := 0
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		attempt++
		if attempt == 1 {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader("busy")),
				Header:     make(http.Header),
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`<html><body><h1>Statement</h1></body></html>`)),
			Header:     make(http.Header),
		}, nil
	})

	doc, err := client.GetDocument(context.Background(), "https://example.test/statement")
	if err != nil {
		t.Fatal(err)
	}
	if attempt != 2 {
		t.Fatalf("attempt=%d", attempt)
	}
	if doc.Find("h1").Text() != "Statement" {
		t.Fatalf("title=%q", doc.Find("h1").Text())
	}
	if doc.Url == nil || doc.Url.Host != "example.test" {
		t.Fatalf("url=%v", doc.Url)
	}
}

func TestGetDocumentTerminalStatus(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("nope")),
			Header:     make(http.Header),
		}, nil
	})

	_, err := client.GetDocument(context.Background(), "https://example.test/missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err=%v", err)
	}
}

func TestDownloadContentType(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Content-Type", "application/pdf")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("%PDF-1.4 fake")),
			Header:     header,
		}, nil
	})

	body, contentType, err := client.Download(context.Background(), "https://example.test/statement.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("contentType=%q", contentType)
	}
	if !strings.HasPrefix(string(body), "%PDF") {
		t.Fatalf("body=%q", body)
	}
}

func TestResolveURL(t *testing.T) {
	got, err := ResolveURL("https://example.test/Property/Search?x=1", "/Property/Statement.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.test/Property/Statement.pdf" {
		t.Fatalf("got=%q", got)
	}
}
