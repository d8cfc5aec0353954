package internal

import "harristax/internal/normalize"

type Site string

const (
	SiteTrueProdigy Site = "trueprodigy"
	SiteHctax       Site = "hctax"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PropertySummary is the TrueProdigy summary panel plus the candidate
// selector that matched it.
type PropertySummary struct {
	normalize.LineBlock
	Selector string `json:"selector,omitempty"`
}

// FallbackContent is the generic extraction used when none of the known
// page regions matched.
type FallbackContent struct {
	Tables      []normalize.NormalizedTable `json:"tables,omitempty"`
	TextSnippet string                      `json:"text_snippet,omitempty"`
}

// AccountResult is the structured transcription of one TrueProdigy
// account detail page.
type AccountResult struct {
	Account             string                      `json:"account"`
	URL                 string                      `json:"url,omitempty"`
	PageTitle           string                      `json:"page_title,omitempty"`
	Error               string                      `json:"error,omitempty"`
	PropertySummary     *PropertySummary            `json:"property_summary,omitempty"`
	TaxSummary          []normalize.NormalizedTable `json:"tax_summary,omitempty"`
	JurisdictionDetails *normalize.LineBlock        `json:"jurisdiction_details,omitempty"`
	Jurisdictions       []normalize.ContainerBlock  `json:"jurisdictions,omitempty"`
	JurisdictionSummary []normalize.NormalizedTable `json:"jurisdiction_summary,omitempty"`
	Fallback            *FallbackContent            `json:"fallback,omitempty"`
}

// DocumentStatus records the outcome of a statement PDF download.
type DocumentStatus struct {
	Path       string `json:"path,omitempty"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Bytes      int    `json:"bytes,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
	Message    string `json:"message,omitempty"`
}

// PDFSummary is the content inspection of a downloaded statement PDF.
type PDFSummary struct {
	Pages int                  `json:"pages"`
	Text  *normalize.LineBlock `json:"text,omitempty"`
}

// StatementResult is the structured transcription of one hctax.net
// statement section plus its downloaded PDF.
type StatementResult struct {
	Account       string                      `json:"account"`
	StatementYear string                      `json:"statement_year"`
	URL           string                      `json:"url,omitempty"`
	Error         string                      `json:"error,omitempty"`
	Tables        []normalize.NormalizedTable `json:"tables,omitempty"`
	Paragraphs    []string                    `json:"paragraphs,omitempty"`
	PDF           *DocumentStatus             `json:"pdf,omitempty"`
	PDFSummary    *PDFSummary                 `json:"pdf_summary,omitempty"`
}

type RunRow struct {
	ID            int
	TraceID       string
	Account       string
	StatementYear string
	TimingsJSON   string
	CountsJSON    string
	CreatedAt     string
}

type ResultRow struct {
	ID          int
	Account     string
	Site        string
	URL         string
	PayloadJSON string
	CreatedAt   string
}

type DocumentRow struct {
	ID            int
	Account       string
	StatementYear string
	Path          string
	Bytes         int
	Status        string
	Source        string
	CreatedAt     string
}
