package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"harristax/internal"
	"harristax/internal/config"
	"harristax/internal/extract"
	"harristax/internal/fetch"
	"harristax/internal/normalize"
	"harristax/internal/runlog"
)

// Scraper drives both county sites and turns their pages into the
// structured result shapes. All page-shape knowledge (candidate
// selectors, container classes) lives here; the extract and normalize
// packages stay site-agnostic.
type Scraper struct {
	cfg    config.Config
	client *fetch.Client
	log    *runlog.Logger
}

func NewScraper(cfg config.Config, log *runlog.Logger) *Scraper {
	return &Scraper{cfg: cfg, client: fetch.NewClient(cfg), log: log}
}

// Selectors are tried in order; the sites change without notice, so each
// known historical variant stays on the list.
var propertySummarySelectors = []string{
	".property-summary-container.custom-container",
	".property-summary-container",
	".summary-container",
}

var taxSummarySelectors = []string{
	"#propertys-summary-table",
	".propertys-summary-table",
}

const (
	jurisdictionContainerSelector = ".middle-container"
	jurisdictionPanelSelector     = ".custom-container"
)

// ScrapeAccount runs the TrueProdigy property-search flow for one
// account: search, follow the account link, transcribe the detail page.
// A missing account or summary region is reported inside the result, not
// as an error; errors are reserved for fetch failures.
func (s *Scraper) ScrapeAccount(ctx context.Context, account string) (internal.AccountResult, error) {
	result := internal.AccountResult{Account: account}

	searchURL := siteURL(s.cfg.TrueProdigyBaseURL, s.cfg.TrueProdigySearchPath, account)
	doc, err := s.client.GetDocument(ctx, searchURL)
	if err != nil {
		return result, err
	}

	detailURL := findAccountLink(doc, account)
	if detailURL == "" {
		message := fmt.Sprintf("account %s not found in search results", account)
		s.log.Error(message)
		result.Error = message
		result.PageTitle = strings.TrimSpace(doc.Find("title").First().Text())
		return result, nil
	}

	detail, err := s.client.GetDocument(ctx, detailURL)
	if err != nil {
		return result, err
	}
	result.URL = detailURL

	if summary, selector := extract.Locate(detail.Selection, propertySummarySelectors...); summary != nil {
		block := normalize.SplitLines(extract.Lines(summary))
		if !block.Empty() {
			result.PropertySummary = &internal.PropertySummary{LineBlock: block, Selector: selector}
		}
	}

	result.TaxSummary = tablesFromCandidates(detail, taxSummarySelectors...)

	if middle, _ := extract.Locate(detail.Selection, jurisdictionContainerSelector); middle != nil {
		details := normalize.SplitLines(extract.Lines(middle))
		if !details.Empty() {
			result.JurisdictionDetails = &details
		}
		for _, panel := range extract.Panels(middle, jurisdictionPanelSelector) {
			block := normalize.AssemblePanel(panel)
			if !block.Empty() {
				result.Jurisdictions = append(result.Jurisdictions, block)
			}
		}
		result.JurisdictionSummary = normalize.NormalizeTables(extract.Tables(middle))
	}

	if result.PropertySummary == nil && result.TaxSummary == nil && result.JurisdictionSummary == nil {
		result.Fallback = fallbackContent(detail)
	}

	return result, nil
}

func siteURL(base, pathPattern, account string) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf(pathPattern, url.QueryEscape(account))
}

// findAccountLink scans result anchors for the requested account number
// and resolves the first usable href against the page URL.
func findAccountLink(doc *goquery.Document, account string) string {
	var href string
	doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !strings.Contains(link.Text(), account) {
			return true
		}
		value, ok := link.Attr("href")
		value = strings.TrimSpace(value)
		if !ok || value == "" || strings.HasPrefix(value, "javascript:") {
			return true
		}
		href = value
		return false
	})
	if href == "" {
		return ""
	}

	base := ""
	if doc.Url != nil {
		base = doc.Url.String()
	}
	resolved, err := fetch.ResolveURL(base, href)
	if err != nil {
		return href
	}
	return resolved
}

// tablesFromCandidates normalizes the tables under the first candidate
// selector that matches anything.
func tablesFromCandidates(doc *goquery.Document, candidates ...string) []normalize.NormalizedTable {
	sel, _ := extract.LocateAll(doc.Selection, candidates...)
	if sel == nil {
		return nil
	}
	return normalize.NormalizeTables(extract.Tables(sel))
}

const fallbackSnippetLimit = 10000

// fallbackContent is the generic last-resort extraction: every table on
// the page, or a bounded text snippet when there are none.
func fallbackContent(doc *goquery.Document) *internal.FallbackContent {
	body := doc.Find("body")
	tables := normalize.NormalizeTables(extract.Tables(body))
	if len(tables) > 0 {
		return &internal.FallbackContent{Tables: tables}
	}

	snippet := strings.Join(extract.SplitTextLines(extract.BlockText(body)), "\n")
	if runes := []rune(snippet); len(runes) > fallbackSnippetLimit {
		snippet = string(runes[:fallbackSnippetLimit])
	}
	return &internal.FallbackContent{TextSnippet: snippet}
}
