package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	LogPath   string

	// Search paths are format strings receiving the URL-escaped account
	// number.
	TrueProdigyBaseURL    string
	TrueProdigySearchPath string
	HctaxBaseURL          string
	HctaxSearchPath       string

	HTTPTimeoutMs int
	RateLimitRPS  int
	RetryMax      int
	UserAgent     string

	Account       string
	StatementYear string

	// InspectPDF controls whether a downloaded statement PDF is opened
	// and its text summarized into the result.
	InspectPDF bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogPath:   getEnv("LOG_PATH", filepath.Join(cwd, "out", "scrape_errors.log")),

		TrueProdigyBaseURL:    getEnv("TRUEPRODIGY_BASE_URL", "https://harris.trueprodigy-taxtransparency.com"),
		TrueProdigySearchPath: getEnv("TRUEPRODIGY_SEARCH_PATH", "/taxTransparency/propertySearch?searchText=%s"),
		HctaxBaseURL:          getEnv("HCTAX_BASE_URL", "https://www.hctax.net"),
		HctaxSearchPath:       getEnv("HCTAX_SEARCH_PATH", "/Property/ViewStatementReceipts?searchText=%s"),

		HTTPTimeoutMs: getEnvInt("HTTP_TIMEOUT_MS", 30000),
		RateLimitRPS:  getEnvInt("RATE_LIMIT_RPS", 2),
		RetryMax:      getEnvInt("RETRY_MAX", 5),
		UserAgent:     getEnv("USER_AGENT", "harristax/1.0"),

		Account:       getEnv("ACCOUNT", "0552850000031"),
		StatementYear: getEnv("STATEMENT_YEAR", "2024"),

		InspectPDF: getEnvBool("INSPECT_PDF", true),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
