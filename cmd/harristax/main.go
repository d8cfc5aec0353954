package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"harristax/internal"
	"harristax/internal/config"
	"harristax/internal/pipeline"
	"harristax/internal/runlog"
	"harristax/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		account := fs.String("account", cfg.Account, "property account number")
		year := fs.String("year", cfg.StatementYear, "statement year")
		_ = fs.Parse(os.Args[2:])
		svc := pipeline.NewRunService(db, cfg)
		summary, err := svc.Run(context.Background(), *account, *year)
		must(err)
		fmt.Printf("scrape done trace=%s account=%s outputs=%s, %s\n",
			summary.TraceID, summary.Account, summary.AccountPath, summary.StatementPath)
		if summary.PDF != nil {
			fmt.Printf("statement pdf status=%s path=%s bytes=%d\n",
				summary.PDF.Status, summary.PDF.Path, summary.PDF.Bytes)
		}
	case "scrape:account":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		account := fs.String("account", cfg.Account, "property account number")
		out := fs.String("out", "", "output json path (default under OUTPUT_DIR)")
		_ = fs.Parse(os.Args[2:])
		scraper := pipeline.NewScraper(cfg, runlog.New(cfg.LogPath))
		result, err := scraper.ScrapeAccount(context.Background(), *account)
		must(err)
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, fmt.Sprintf("harris_trueprodigy_%s.json", *account))
		}
		must(writeJSONFile(path, result))
		fmt.Printf("account scrape done account=%s output=%s\n", *account, path)
	case "scrape:statement":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		account := fs.String("account", cfg.Account, "property account number")
		year := fs.String("year", cfg.StatementYear, "statement year")
		out := fs.String("out", "", "output json path (default under OUTPUT_DIR)")
		_ = fs.Parse(os.Args[2:])
		scraper := pipeline.NewScraper(cfg, runlog.New(cfg.LogPath))
		result, err := scraper.ScrapeStatement(context.Background(), *account, *year)
		must(err)
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, fmt.Sprintf("hctax_statement_%s_%s.json", *account, *year))
		}
		must(writeJSONFile(path, result))
		fmt.Printf("statement scrape done account=%s year=%s output=%s\n", *account, *year, path)
	case "normalize":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw table dump (json)")
		output := fs.String("output", "", "normalized output path (json)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		count, err := pipeline.NormalizeRawFile(*input, *output)
		must(err)
		fmt.Printf("normalize done tables=%d output=%s\n", count, *output)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		account := fs.String("account", cfg.Account, "property account number")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		result, statement, err := loadStoredResults(db, *account)
		must(err)
		must(pipeline.ExportAccountToXLSX(result, statement, *out))
		fmt.Printf("exported account=%s to %s\n", *account, *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 10, "max rows")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s  trace=%s account=%s year=%s timings=%s counts=%s\n",
				run.CreatedAt, run.TraceID, run.Account, run.StatementYear, run.TimingsJSON, run.CountsJSON)
		}
		last, err := db.GetMetadata("run.last_completed")
		must(err)
		if last != nil {
			fmt.Printf("last completed: %s\n", *last)
		}
	default:
		usage()
		os.Exit(1)
	}
}

// loadStoredResults rebuilds the result shapes from the payloads persisted
// by the last scrape of the account. The statement side is optional.
func loadStoredResults(db *storage.DB, account string) (internal.AccountResult, *internal.StatementResult, error) {
	var result internal.AccountResult

	row, err := db.GetResult(account, internal.SiteTrueProdigy)
	if err != nil {
		return result, nil, err
	}
	if row == nil {
		return result, nil, fmt.Errorf("no stored result for account %s; run scrape first", account)
	}
	if err := json.Unmarshal([]byte(row.PayloadJSON), &result); err != nil {
		return result, nil, fmt.Errorf("stored payload for account %s: %w", account, err)
	}

	stRow, err := db.GetResult(account, internal.SiteHctax)
	if err != nil {
		return result, nil, err
	}
	if stRow == nil {
		return result, nil, nil
	}
	var statement internal.StatementResult
	if err := json.Unmarshal([]byte(stRow.PayloadJSON), &statement); err != nil {
		return result, nil, fmt.Errorf("stored statement for account %s: %w", account, err)
	}
	return result, &statement, nil
}

func writeJSONFile(path string, value any) error {
	blob, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}

func usage() {
	fmt.Println("usage: harristax <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape [--account=...] [--year=2024]")
	fmt.Println("  scrape:account [--account=...] [--out=...json]")
	fmt.Println("  scrape:statement [--account=...] [--year=2024] [--out=...json]")
	fmt.Println("  normalize --input=raw.json --output=normalized.json")
	fmt.Println("  export:xlsx [--account=...] --out=./out/account.xlsx")
	fmt.Println("  runs:list [--limit=10]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
