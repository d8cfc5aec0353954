package normalize

import "strings"

// RawRow is one extracted table row: ordered cell texts plus a flag set
// when the row was rendered as a header band.
type RawRow struct {
	Cells  []string `json:"cells"`
	Header bool     `json:"header"`
}

// RawTableEntry is one physical table as found in a page region. The
// title is resolved by the extraction layer from a caption or a short
// preceding text node and may be absent.
type RawTableEntry struct {
	Title string   `json:"title,omitempty"`
	Rows  []RawRow `json:"rows"`
}

// NormalizedTable is the canonical structured form of one table. Every
// member is present only when non-empty; omission signals absence.
type NormalizedTable struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Fields  *Fields    `json:"fields,omitempty"`
	Records []*Fields  `json:"records,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

func (t NormalizedTable) Empty() bool {
	return t.Title == "" && len(t.Headers) == 0 && t.Fields.Len() == 0 &&
		len(t.Records) == 0 && len(t.Rows) == 0
}

// NormalizeTable classifies each row of the entry by shape. A header row
// sets the current header band (a later one supersedes an earlier one).
// A row whose width matches the current headers becomes a record; a
// two-cell row becomes a key/value field; anything else is retained
// verbatim as a residual row. The function is total: malformed input
// degrades into the residual bucket, never into an error.
func NormalizeTable(entry RawTableEntry) NormalizedTable {
	out := NormalizedTable{Title: strings.TrimSpace(entry.Title)}

	var headers []string
	fields := NewFields()
	var records []*Fields
	var residual [][]string

	for _, row := range entry.Rows {
		cells := compactCells(row.Cells)
		if len(cells) == 0 {
			continue
		}
		if row.Header {
			headers = cells
			continue
		}
		if headers != nil && len(cells) == len(headers) {
			record := NewFields()
			for i, header := range headers {
				record.Add(header, cells[i])
			}
			records = append(records, record)
			continue
		}
		if len(cells) == 2 {
			fields.Add(strings.TrimRight(cells[0], ":"), cells[1])
			continue
		}
		residual = append(residual, cells)
	}

	out.Headers = headers
	if fields.Len() > 0 {
		out.Fields = fields
	}
	out.Records = records
	out.Rows = residual
	return out
}

// NormalizeTables applies NormalizeTable to each entry in order, dropping
// entries that normalize to nothing.
func NormalizeTables(entries []RawTableEntry) []NormalizedTable {
	var out []NormalizedTable
	for _, entry := range entries {
		table := NormalizeTable(entry)
		if table.Empty() {
			continue
		}
		out = append(out, table)
	}
	return out
}

func compactCells(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			out = append(out, cell)
		}
	}
	return out
}
