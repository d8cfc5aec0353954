package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"harristax/internal"
	"harristax/internal/config"
	"harristax/internal/runlog"
	"harristax/internal/storage"
)

// RunService orchestrates one full run: both site scrapes, JSON
// persistence, the PDF download, and the run-history row.
type RunService struct {
	db      *storage.DB
	cfg     config.Config
	log     *runlog.Logger
	scraper *Scraper
}

func NewRunService(db *storage.DB, cfg config.Config) *RunService {
	log := runlog.New(cfg.LogPath)
	return &RunService{db: db, cfg: cfg, log: log, scraper: NewScraper(cfg, log)}
}

type RunSummary struct {
	TraceID       string
	Account       string
	StatementYear string
	AccountPath   string
	StatementPath string
	PDF           *internal.DocumentStatus
}

// Run never fails on a per-site scrape problem: each site's error is
// folded into its result file so the other site still gets captured.
// Only persistence failures propagate.
func (s *RunService) Run(ctx context.Context, account, year string) (RunSummary, error) {
	start := time.Now()
	s.log.Event("run start account=%s statement_year=%s", account, year)

	summary := RunSummary{TraceID: traceID(), Account: account, StatementYear: year}
	timings := map[string]float64{}
	counts := map[string]int{}

	tpStart := time.Now()
	accountResult, err := s.scraper.ScrapeAccount(ctx, account)
	if err != nil {
		s.log.Error("trueprodigy scrape failed for account %s: %v", account, err)
		accountResult = internal.AccountResult{Account: account, Error: err.Error()}
	}
	timings["trueprodigyMs"] = float64(time.Since(tpStart).Milliseconds())

	summary.AccountPath = filepath.Join(s.cfg.OutputDir, fmt.Sprintf("harris_trueprodigy_%s.json", account))
	if err := s.persistResult(summary.AccountPath, account, internal.SiteTrueProdigy, accountResult.URL, accountResult); err != nil {
		return summary, err
	}
	counts["taxSummaryTables"] = len(accountResult.TaxSummary)
	counts["jurisdictions"] = len(accountResult.Jurisdictions)

	stStart := time.Now()
	statement, err := s.scraper.ScrapeStatement(ctx, account, year)
	if err != nil {
		s.log.Error("hctax statement error for account %s: %v", account, err)
		statement = internal.StatementResult{Account: account, StatementYear: year, Error: err.Error()}
	}
	timings["hctaxMs"] = float64(time.Since(stStart).Milliseconds())

	summary.StatementPath = filepath.Join(s.cfg.OutputDir, fmt.Sprintf("hctax_statement_%s_%s.json", account, year))
	if err := s.persistResult(summary.StatementPath, account, internal.SiteHctax, statement.URL, statement); err != nil {
		return summary, err
	}
	counts["statementTables"] = len(statement.Tables)
	counts["paragraphs"] = len(statement.Paragraphs)

	outputs := []string{summary.AccountPath, summary.StatementPath}
	if statement.PDF != nil {
		summary.PDF = statement.PDF
		counts["pdfBytes"] = statement.PDF.Bytes
		_ = s.db.InsertDocument(account, year, statement.PDF.Path, statement.PDF.Bytes, statement.PDF.Status, statement.PDF.Source)
		if statement.PDF.Status == internal.StatusOK {
			outputs = append(outputs, statement.PDF.Path)
		}
	}

	timings["totalMs"] = float64(time.Since(start).Milliseconds())
	if err := s.db.InsertRun(summary.TraceID, account, year, timings, counts); err != nil {
		return summary, err
	}
	_ = s.db.SetMetadata("run.last_completed", time.Now().UTC().Format(time.RFC3339))

	s.log.Event("run end account=%s statement_year=%s runtime_total=%.2fs outputs=%s",
		account, year, time.Since(start).Seconds(), outputSummary(outputs))
	return summary, nil
}

func (s *RunService) persistResult(path, account string, site internal.Site, url string, value any) error {
	if err := writeJSON(path, value); err != nil {
		return err
	}
	blob, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.UpsertResult(account, site, url, string(blob))
}

func writeJSON(path string, value any) error {
	blob, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}

func outputSummary(paths []string) string {
	var parts []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%dB", filepath.Base(path), info.Size()))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
