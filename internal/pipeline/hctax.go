package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"harristax/internal"
	"harristax/internal/extract"
	"harristax/internal/fetch"
	"harristax/internal/normalize"
)

// The statement heading sits inside one of these wrappers depending on
// the page revision; the heading's parent is the last resort.
const statementContainerSelector = ".card, .panel, section, .modal, .row, .col-12, .container"

// ScrapeStatement runs the hctax.net ViewStatementReceipts flow: search
// for the account, drill into the statement page, transcribe the
// statement section, and download its PDF. A missing heading or failed
// download degrades into the result; errors are reserved for fetch
// failures on the HTML pages.
func (s *Scraper) ScrapeStatement(ctx context.Context, account, year string) (internal.StatementResult, error) {
	result := internal.StatementResult{Account: account, StatementYear: year}

	searchURL := siteURL(s.cfg.HctaxBaseURL, s.cfg.HctaxSearchPath, account)
	doc, err := s.client.GetDocument(ctx, searchURL)
	if err != nil {
		return result, err
	}
	result.URL = searchURL

	if detailURL := findAccountLink(doc, account); detailURL != "" && detailURL != searchURL {
		detail, err := s.client.GetDocument(ctx, detailURL)
		if err != nil {
			return result, err
		}
		doc = detail
		result.URL = detailURL
	}

	container := findStatementContainer(doc, year)
	if container == nil {
		message := fmt.Sprintf("could not locate heading %q", statementHeading(year))
		s.log.Error("account %s: %s", account, message)
		result.Error = message
		return result, nil
	}

	result.Tables = normalize.NormalizeTables(extract.Tables(container))
	result.Paragraphs = extract.Paragraphs(container)

	status, blob := s.downloadStatementPDF(ctx, findStatementPDFLink(doc, container), account, year)
	result.PDF = &status
	if status.Status != internal.StatusOK {
		s.log.Error("statement pdf for account %s: %s", account, status.Message)
	} else if s.cfg.InspectPDF {
		summary, err := InspectPDF(blob)
		if err != nil {
			s.log.Error("statement pdf inspect for account %s: %v", account, err)
		} else {
			result.PDFSummary = summary
		}
	}

	return result, nil
}

func statementHeading(year string) string {
	return fmt.Sprintf("%s Property Tax Statement", year)
}

// findStatementContainer locates the element whose entire text is the
// statement heading and walks up to the nearest known wrapper.
func findStatementContainer(doc *goquery.Document, year string) *goquery.Selection {
	target := statementHeading(year)
	var container *goquery.Selection
	doc.Find("h1,h2,h3,h4,h5,h6,strong,legend,span,div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != target {
			return true
		}
		if closest := sel.Closest(statementContainerSelector); closest.Length() > 0 {
			container = closest.First()
		} else {
			container = sel.Parent()
		}
		return false
	})
	return container
}

// findStatementPDFLink looks for the Print Statement control inside the
// statement container first, then anywhere on the page, and resolves the
// href against the page URL.
func findStatementPDFLink(doc *goquery.Document, container *goquery.Selection) string {
	for _, scope := range []*goquery.Selection{container, doc.Selection} {
		var href string
		scope.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			value, ok := link.Attr("href")
			value = strings.TrimSpace(value)
			if !ok || value == "" || strings.HasPrefix(value, "javascript:") {
				return true
			}
			text := strings.TrimSpace(link.Text())
			if strings.EqualFold(text, "Print Statement") || strings.Contains(strings.ToLower(value), ".pdf") {
				href = value
				return false
			}
			return true
		})
		if href == "" {
			continue
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
	return ""
}

func (s *Scraper) downloadStatementPDF(ctx context.Context, pdfURL, account, year string) (internal.DocumentStatus, []byte) {
	dest := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("hctax_statement_%s_%s.pdf", account, year))
	status := internal.DocumentStatus{Path: dest, Status: internal.StatusError}

	if pdfURL == "" {
		status.Message = "Print Statement control not found"
		return status, nil
	}

	blob, contentType, err := s.client.Download(ctx, pdfURL)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			status.HTTPStatus = statusErr.StatusCode
		}
		status.Message = err.Error()
		return status, nil
	}

	if !looksLikePDF(blob, contentType) {
		status.Message = fmt.Sprintf("unexpected content type %q", contentType)
		return status, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		status.Message = err.Error()
		return status, nil
	}
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		status.Message = err.Error()
		return status, nil
	}

	status.Status = internal.StatusOK
	status.Source = "direct_request"
	status.Bytes = len(blob)
	return status, blob
}

func looksLikePDF(blob []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(blob, []byte("%PDF"))
}
