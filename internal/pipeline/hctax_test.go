package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"harristax/internal"
)

const hctaxStatementPage = `<html><body>
<div class="container">
  <p>Unrelated banner text.</p>
  <div class="card">
    <h4>2024 Property Tax Statement</h4>
    <table>
      <tr><th>Jurisdiction</th><th>Taxable Value</th><th>Tax</th></tr>
      <tr><td>Harris County</td><td>$250,000</td><td>$875.00</td></tr>
      <tr><td></td><td></td><td></td></tr>
    </table>
    <p>Payments are due by January 31.</p>
    <a href="/statement.pdf">Print Statement</a>
  </div>
</div>
</body></html>`

func hctaxServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Property/ViewStatementReceipts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, hctaxStatementPage)
	})
	mux.HandleFunc("/statement.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4 fake body")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeStatement(t *testing.T) {
	srv := hctaxServer(t)
	cfg := testConfig(t)
	cfg.HctaxBaseURL = srv.URL

	result, err := newTestScraper(cfg).ScrapeStatement(context.Background(), testAccount, "2024")
	if err != nil {
		t.Fatalf("ScrapeStatement: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected result error: %s", result.Error)
	}

	if len(result.Tables) != 1 {
		t.Fatalf("tables = %d", len(result.Tables))
	}
	table := result.Tables[0]
	if len(table.Headers) != 3 || table.Headers[0] != "Jurisdiction" {
		t.Errorf("headers = %v", table.Headers)
	}
	if len(table.Records) != 1 {
		t.Fatalf("records = %d (all-blank row should be dropped)", len(table.Records))
	}
	if tax, _ := table.Records[0].Get("Tax"); tax.First() != "$875.00" {
		t.Errorf("tax = %q", tax.First())
	}

	if len(result.Paragraphs) != 1 || result.Paragraphs[0] != "Payments are due by January 31." {
		t.Errorf("paragraphs = %v (banner outside the card should be excluded)", result.Paragraphs)
	}

	if result.PDF == nil {
		t.Fatal("missing pdf status")
	}
	if result.PDF.Status != internal.StatusOK {
		t.Fatalf("pdf status = %q message = %q", result.PDF.Status, result.PDF.Message)
	}
	blob, err := os.ReadFile(result.PDF.Path)
	if err != nil {
		t.Fatalf("read downloaded pdf: %v", err)
	}
	if !strings.HasPrefix(string(blob), "%PDF") {
		t.Errorf("downloaded file is not a pdf: %q", blob[:8])
	}
	if result.PDF.Bytes != len(blob) {
		t.Errorf("pdf bytes = %d, file = %d", result.PDF.Bytes, len(blob))
	}
}

func TestScrapeStatementHeadingMissing(t *testing.T) {
	srv := hctaxServer(t)
	cfg := testConfig(t)
	cfg.HctaxBaseURL = srv.URL

	result, err := newTestScraper(cfg).ScrapeStatement(context.Background(), testAccount, "2019")
	if err != nil {
		t.Fatalf("ScrapeStatement: %v", err)
	}
	if result.Error == "" {
		t.Fatal("expected heading-not-found error in result")
	}
	if !strings.Contains(result.Error, "2019 Property Tax Statement") {
		t.Errorf("error = %q", result.Error)
	}
	if result.PDF != nil {
		t.Error("pdf download should not run without the statement section")
	}
}

func TestFindStatementContainer(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(hctaxStatementPage))
	if err != nil {
		t.Fatal(err)
	}

	container := findStatementContainer(doc, "2024")
	if container == nil {
		t.Fatal("container not found")
	}
	if !container.Is(".card") {
		t.Errorf("container should be the nearest .card wrapper")
	}

	if findStatementContainer(doc, "2023") != nil {
		t.Error("no container expected for a year without a statement")
	}
}

func TestFindStatementContainerFallsBackToParent(t *testing.T) {
	page := `<html><body><article><span>2024 Property Tax Statement</span><p>body</p></article></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	container := findStatementContainer(doc, "2024")
	if container == nil {
		t.Fatal("container not found")
	}
	if !container.Is("article") {
		t.Error("expected the heading's parent when no known wrapper matches")
	}
}

func TestLooksLikePDF(t *testing.T) {
	if !looksLikePDF([]byte("%PDF-1.7"), "application/octet-stream") {
		t.Error("magic prefix should win")
	}
	if !looksLikePDF([]byte("anything"), "application/pdf; charset=binary") {
		t.Error("content type should win")
	}
	if looksLikePDF([]byte("<html>error page</html>"), "text/html") {
		t.Error("html error page misdetected as pdf")
	}
}
