package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"harristax/internal/normalize"
)

// NormalizeRawFile runs the table normalizer over a raw extraction dump
// (a JSON array of table entries, or a single entry) and writes the
// normalized tables. Useful for replaying captures without touching the
// sites.
func NormalizeRawFile(inputPath, outputPath string) (int, error) {
	blob, err := os.ReadFile(inputPath)
	if err != nil {
		return 0, err
	}

	var entries []normalize.RawTableEntry
	if err := json.Unmarshal(blob, &entries); err != nil {
		var single normalize.RawTableEntry
		if err2 := json.Unmarshal(blob, &single); err2 != nil {
			return 0, fmt.Errorf("input is neither a table entry nor a list of entries: %w", err)
		}
		entries = []normalize.RawTableEntry{single}
	}

	tables := normalize.NormalizeTables(entries)
	if err := writeJSON(outputPath, tables); err != nil {
		return 0, err
	}
	return len(tables), nil
}
